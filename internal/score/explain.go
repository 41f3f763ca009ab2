package score

import (
	"fmt"
	"strings"
)

// explainRule pairs a condition over a scored result with a template.
// Rules are checked in priority order and the first match wins, keeping
// explanations template-based and deterministic.
type explainRule struct {
	match  func(Result) bool
	render func(Result) string
}

var explainRules = []explainRule{
	{
		match: func(r Result) bool { return len(r.Candidate.SeedArtists) >= 3 },
		render: func(r Result) string {
			seeds := r.Candidate.SeedArtists
			if len(seeds) > 3 {
				seeds = seeds[:3]
			}
			return fmt.Sprintf("Connected to multiple stable preferences: %s.", strings.Join(seeds, ", "))
		},
	},
	{
		match: func(r Result) bool { return len(r.Candidate.SeedArtists) >= 2 },
		render: func(r Result) string {
			return fmt.Sprintf("Related to %d of your recurring artists, yet absent from your library.",
				len(r.Candidate.SeedArtists))
		},
	},
	{
		match: func(r Result) bool {
			return r.Subscores.Recency >= 0.9 && r.Candidate.EarliestReleaseYear != nil
		},
		render: func(r Result) string {
			return fmt.Sprintf("Established catalog (since %d) matching your context, often missed by recency bias.",
				*r.Candidate.EarliestReleaseYear)
		},
	},
	{
		match: func(r Result) bool { return r.Subscores.Popularity >= 0.6 },
		render: func(r Result) string {
			return fmt.Sprintf("Contextually relevant but under-promoted (popularity: %d).", r.Candidate.Popularity)
		},
	},
	{
		match: func(r Result) bool { return r.Evidence.GenreOverlapCount >= 2 },
		render: func(r Result) string {
			genres := r.Candidate.Genres
			if len(genres) > 3 {
				genres = genres[:3]
			}
			return fmt.Sprintf("Strong match to your genre profile (%s), with low algorithmic visibility.",
				strings.Join(genres, ", "))
		},
	},
}

func explain(r Result) string {
	for _, rule := range explainRules {
		if rule.match(r) {
			return rule.render(r)
		}
	}
	return fmt.Sprintf("Related to %d of your recurring artists, yet absent from your library.",
		len(r.Candidate.SeedArtists))
}
