// Package score computes omission scores for candidate artists, applies
// persisted feedback, and filters results through the confidence gate.
//
// A high omission score means "this artist should already be in the user's
// library, but isn't": strong contextual fit combined with low popularity,
// low playlist saturation, and an established catalog.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/bomac1193/latent-search/internal/expand"
	"github.com/bomac1193/latent-search/internal/profile"
)

// Subscores are the five weighted components of the omission score, each in
// [0, 1] with higher meaning better for recommendation.
type Subscores struct {
	Contextual float64
	Exposure   float64
	Saturation float64
	Popularity float64
	Recency    float64
}

// Evidence backs a result for transparency. It never influences ranking.
type Evidence struct {
	SeedArtists       []string `yaml:"seed_artists" json:"seed_artists"`
	GenreOverlapCount int      `yaml:"genre_overlap_count" json:"genre_overlap_count"`
	AudioSimilarity   float64  `yaml:"audio_similarity" json:"audio_similarity"`
	Popularity        int      `yaml:"popularity" json:"popularity"`
	EarliestAlbumYear *int     `yaml:"earliest_album_year,omitempty" json:"earliest_album_year,omitempty"`
}

// Result is one scored candidate. It is constructed fresh per scan and not
// mutated after being returned.
type Result struct {
	Candidate     expand.Candidate
	Subscores     Subscores
	OmissionScore float64
	Explanation   string
	Evidence      Evidence
}

func scoreCandidate(c expand.Candidate, p *profile.ContextProfile, cfg Config) Result {
	audioSim := audioSimilarity(c.Features, p.AudioProfile)
	sub := Subscores{
		Contextual: contextualSimilarity(c, p, cfg, audioSim),
		// Candidates are pre-filtered for absence from listening history, so
		// exposure is 1.0 by construction. The weighted term is kept so the
		// weight stays auditable and leaves headroom for a graded signal.
		Exposure:   1.0,
		Saturation: saturationScore(c.PlaylistCount, cfg),
		Popularity: popularityScore(c.Popularity, cfg),
		Recency:    recencyScore(c.EarliestReleaseYear, cfg),
	}

	w := cfg.Weights
	base := sub.Contextual*w.Context +
		sub.Exposure*w.Exposure +
		sub.Saturation*w.Saturation +
		sub.Popularity*w.Popularity +
		sub.Recency*w.Recency

	r := Result{
		Candidate:     c,
		Subscores:     sub,
		OmissionScore: base,
		Evidence: Evidence{
			SeedArtists:       c.SeedArtists,
			GenreOverlapCount: genreOverlapCount(c.Genres, p.GenreWeights),
			AudioSimilarity:   math.Round(audioSim*1000) / 1000,
			Popularity:        c.Popularity,
			EarliestAlbumYear: c.EarliestReleaseYear,
		},
	}
	r.Explanation = explain(r)
	return r
}

// contextualSimilarity is the unweighted mean of the genre-overlap ratio
// and the audio-feature similarity.
func contextualSimilarity(c expand.Candidate, p *profile.ContextProfile, cfg Config, audioSim float64) float64 {
	return (genreOverlapRatio(c.Genres, p.TopGenres(cfg.ContextGenreCount)) + audioSim) / 2
}

// genreOverlapRatio is the fraction of the profile's top weighted genres
// present in the candidate's genre set.
func genreOverlapRatio(candidateGenres, topGenres []string) float64 {
	if len(topGenres) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candidateGenres))
	for _, g := range candidateGenres {
		set[g] = true
	}
	matched := 0
	for _, g := range topGenres {
		if set[g] {
			matched++
		}
	}
	return float64(matched) / float64(len(topGenres))
}

// audioSimilarity is 1 minus the Euclidean distance between the candidate's
// features and the profile centers over the five bounded dimensions,
// normalized by the maximum distance sqrt(5). Tempo is unbounded and
// excluded. A candidate without feature data gets a neutral 0.5.
func audioSimilarity(f *profile.TrackFeatures, center profile.AudioFeatureProfile) float64 {
	if f == nil {
		return 0.5
	}
	diffs := []float64{
		f.Energy - center.Energy,
		f.Danceability - center.Danceability,
		f.Valence - center.Valence,
		f.Acousticness - center.Acousticness,
		f.Instrumentalness - center.Instrumentalness,
	}
	var sum float64
	for _, d := range diffs {
		sum += d * d
	}
	return 1 - math.Sqrt(sum)/math.Sqrt(float64(len(diffs)))
}

// saturationScore inverts the playlist-presence count: artists every
// algorithmic playlist already carries score low. Counts clamp to the
// configured ceiling; unknown counts are neutral.
func saturationScore(playlistCount *int, cfg Config) float64 {
	if playlistCount == nil {
		return 0.5
	}
	n := *playlistCount
	if n < 0 {
		n = 0
	}
	if n > cfg.SaturationCeiling {
		n = cfg.SaturationCeiling
	}
	return 1 - float64(n)/float64(cfg.SaturationCeiling)
}

// popularityScore penalizes popularity, capped at the ceiling so moderate
// popularity is not over-penalized.
func popularityScore(popularity int, cfg Config) float64 {
	if popularity > cfg.PopularityCeiling {
		popularity = cfg.PopularityCeiling
	}
	return 1 - float64(popularity)/100
}

// recencyScore favors established catalogs: 1.0 at or before the cutoff
// year, 0.2 at cutoff+5 and later, linear in between. Unknown years get the
// interpolation midpoint.
func recencyScore(earliestYear *int, cfg Config) float64 {
	const (
		full = 1.0
		min  = 0.2
		span = 5
	)
	if earliestYear == nil {
		return (full + min) / 2
	}
	year := *earliestYear
	switch {
	case year <= cfg.RecencyCutoffYear:
		return full
	case year >= cfg.RecencyCutoffYear+span:
		return min
	default:
		return full - float64(year-cfg.RecencyCutoffYear)/span*(full-min)
	}
}

// genreOverlapCount counts candidate genres matching the profile, allowing
// partial containment ("indie rock" matches "rock"). Evidence only.
func genreOverlapCount(candidateGenres []string, weights []profile.GenreWeight) int {
	count := 0
	for _, g := range candidateGenres {
		for _, gw := range weights {
			if strings.Contains(g, gw.Genre) || strings.Contains(gw.Genre, g) {
				count++
				break
			}
		}
	}
	return count
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// sortResults orders by omission score descending with a stable id
// ascending tie-break, so identical inputs always produce identical output.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].OmissionScore != results[j].OmissionScore {
			return results[i].OmissionScore > results[j].OmissionScore
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})
}
