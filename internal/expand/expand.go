// Package expand turns a profile's recurring artists into a pool of
// candidate artists the user has never listened to. A candidate survives
// only if it is related to at least MinSeedSupport independent recurring
// artists, so a single coincidental adjacency is never enough.
package expand

import (
	"sort"

	"github.com/bomac1193/latent-search/internal/profile"
)

// RelatedArtist is one entry from a recurring artist's related-artist list,
// as fetched by the API client.
type RelatedArtist struct {
	ID                  string
	Name                string
	Genres              []string
	Popularity          int
	EarliestReleaseYear *int
	PlaylistCount       *int
	SampleTrack         string
	Features            *profile.TrackFeatures
}

// Candidate is a deduplicated potential recommendation. SeedArtists holds
// the names of the recurring artists whose related lists produced it, with
// set semantics.
type Candidate struct {
	ID                  string
	Name                string
	Genres              []string
	Popularity          int
	EarliestReleaseYear *int
	PlaylistCount       *int
	SampleTrack         string
	Features            *profile.TrackFeatures
	SeedArtists         []string
}

// Options controls candidate expansion.
type Options struct {
	// MinSeedSupport is the minimum number of distinct seed artists that
	// must link to a candidate.
	MinSeedSupport int

	// MinPopularity and MaxPopularity bound the candidate popularity band
	// at expansion time.
	MinPopularity int
	MaxPopularity int
}

// DefaultOptions returns the expansion defaults.
func DefaultOptions() Options {
	return Options{
		MinSeedSupport: 2,
		MinPopularity:  0,
		MaxPopularity:  100,
	}
}

// Expand builds the candidate set from per-seed related-artist lists.
// Artists present anywhere in the listening history are excluded before a
// candidate is materialized. Degenerate input (no recurring artists, no
// related data) returns an empty set, never an error: the caller treats
// that as "could not evaluate".
func Expand(recurring []profile.RecurringArtist, related map[string][]RelatedArtist, history map[string]bool, opts Options) []Candidate {
	type support struct {
		candidate Candidate
		seeds     map[string]bool
	}
	pool := make(map[string]*support)

	for _, seed := range recurring {
		for _, r := range related[seed.ID] {
			if r.ID == "" || history[r.ID] {
				continue
			}
			s, ok := pool[r.ID]
			if !ok {
				if r.Popularity < opts.MinPopularity || r.Popularity > opts.MaxPopularity {
					continue
				}
				s = &support{
					candidate: Candidate{
						ID:                  r.ID,
						Name:                r.Name,
						Genres:              r.Genres,
						Popularity:          r.Popularity,
						EarliestReleaseYear: r.EarliestReleaseYear,
						PlaylistCount:       r.PlaylistCount,
						SampleTrack:         r.SampleTrack,
						Features:            r.Features,
					},
					seeds: make(map[string]bool),
				}
				pool[r.ID] = s
			}
			if !s.seeds[seed.Name] {
				s.seeds[seed.Name] = true
				s.candidate.SeedArtists = append(s.candidate.SeedArtists, seed.Name)
			}
		}
	}

	var candidates []Candidate
	for _, s := range pool {
		if len(s.candidate.SeedArtists) < opts.MinSeedSupport {
			continue
		}
		sort.Strings(s.candidate.SeedArtists)
		candidates = append(candidates, s.candidate)
	}

	// Strongest structural support first; id ties keep output deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].SeedArtists) != len(candidates[j].SeedArtists) {
			return len(candidates[i].SeedArtists) > len(candidates[j].SeedArtists)
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}
