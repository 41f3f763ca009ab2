package profile

import (
	"sort"
)

const minRecurrence = 2

// Build merges the three window snapshots into a ContextProfile. It never
// fails: degenerate input (no recurring artists, no tracks) yields a valid
// profile with an explanatory note.
func Build(short, medium, long WindowSnapshot) *ContextProfile {
	type merged struct {
		Artist
		inShort, inMedium, inLong bool
	}

	artists := make(map[string]*merged)
	mark := func(snap WindowSnapshot, window Window) {
		for _, a := range snap.Artists {
			if a.ID == "" {
				continue
			}
			m, ok := artists[a.ID]
			if !ok {
				m = &merged{Artist: a}
				artists[a.ID] = m
			}
			switch window {
			case WindowShort:
				m.inShort = true
			case WindowMedium:
				m.inMedium = true
			case WindowLong:
				m.inLong = true
			}
		}
	}
	mark(short, WindowShort)
	mark(medium, WindowMedium)
	mark(long, WindowLong)

	known := make(map[string]bool, len(artists))
	var recurring []RecurringArtist
	for id, m := range artists {
		known[id] = true
		score := windowCount(m.inShort, m.inMedium, m.inLong)
		if score < minRecurrence {
			continue
		}
		recurring = append(recurring, RecurringArtist{
			ID:              m.ID,
			Name:            m.Name,
			Genres:          m.Genres,
			Popularity:      m.Popularity,
			InShort:         m.inShort,
			InMedium:        m.inMedium,
			InLong:          m.inLong,
			RecurrenceScore: score,
		})
	}

	// Highest recurrence first; among equals the less popular artist leads.
	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].RecurrenceScore != recurring[j].RecurrenceScore {
			return recurring[i].RecurrenceScore > recurring[j].RecurrenceScore
		}
		if recurring[i].Popularity != recurring[j].Popularity {
			return recurring[i].Popularity < recurring[j].Popularity
		}
		return recurring[i].ID < recurring[j].ID
	})

	var tracks []TrackFeatures
	tracks = append(tracks, short.Tracks...)
	tracks = append(tracks, medium.Tracks...)
	tracks = append(tracks, long.Tracks...)

	p := &ContextProfile{
		RecurringArtists: recurring,
		GenreWeights:     computeGenreWeights(recurring),
		AudioProfile:     computeAudioProfile(tracks),
		TotalArtists:     len(artists),
		TotalTracks:      len(tracks),
		KnownArtistIDs:   known,
	}
	p.Notes = generateNotes(p)
	return p
}

func windowCount(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// computeGenreWeights distributes each recurring artist's recurrence score
// uniformly across its genres, then normalizes so the weights sum to 1.0.
func computeGenreWeights(recurring []RecurringArtist) []GenreWeight {
	raw := make(map[string]float64)
	var total float64
	for _, a := range recurring {
		if len(a.Genres) == 0 {
			continue
		}
		share := float64(a.RecurrenceScore) / float64(len(a.Genres))
		for _, g := range a.Genres {
			raw[g] += share
			total += share
		}
	}
	if total == 0 {
		return nil
	}

	weights := make([]GenreWeight, 0, len(raw))
	for genre, w := range raw {
		weights = append(weights, GenreWeight{Genre: genre, Weight: w / total})
	}
	sort.Slice(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].Genre < weights[j].Genre
	})
	return weights
}

// computeAudioProfile averages features per track across all windows.
// With no tracks the centers default to neutral midpoints.
func computeAudioProfile(tracks []TrackFeatures) AudioFeatureProfile {
	if len(tracks) == 0 {
		return AudioFeatureProfile{
			Energy:           0.5,
			Danceability:     0.5,
			Valence:          0.5,
			Acousticness:     0.5,
			Instrumentalness: 0.5,
			Tempo:            120,
		}
	}

	var sum AudioFeatureProfile
	for _, t := range tracks {
		sum.Energy += t.Energy
		sum.Danceability += t.Danceability
		sum.Valence += t.Valence
		sum.Acousticness += t.Acousticness
		sum.Instrumentalness += t.Instrumentalness
		sum.Tempo += t.Tempo
	}
	n := float64(len(tracks))
	return AudioFeatureProfile{
		Energy:           sum.Energy / n,
		Danceability:     sum.Danceability / n,
		Valence:          sum.Valence / n,
		Acousticness:     sum.Acousticness / n,
		Instrumentalness: sum.Instrumentalness / n,
		Tempo:            sum.Tempo / n,
	}
}
