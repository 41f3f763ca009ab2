package profile

import (
	"fmt"
	"strings"
)

// noteRule maps a condition over the built profile to a rendered note.
// Rules are evaluated in order and every matching rule contributes a note,
// so note generation is deterministic for a given profile.
type noteRule struct {
	when   func(*ContextProfile) bool
	render func(*ContextProfile) string
}

var noteRules = []noteRule{
	{
		when: func(p *ContextProfile) bool { return len(p.RecurringArtists) == 0 },
		render: func(p *ContextProfile) string {
			return "Not enough recurring listening data to build a stable profile."
		},
	},
	{
		when: func(p *ContextProfile) bool { return len(p.GenreWeights) > 0 },
		render: func(p *ContextProfile) string {
			return fmt.Sprintf("Your listening clusters around: %s.", strings.Join(p.TopGenres(3), ", "))
		},
	},
	{
		when: func(p *ContextProfile) bool { return len(p.RecurringArtists) > 0 },
		render: func(p *ContextProfile) string {
			names := make([]string, 0, 3)
			for _, a := range p.RecurringArtists {
				names = append(names, a.Name)
				if len(names) == 3 {
					break
				}
			}
			return fmt.Sprintf("Your most stable recurring artists: %s.", strings.Join(names, ", "))
		},
	},
	{
		when: func(p *ContextProfile) bool {
			return len(p.GenreWeights) > 0 && p.GenreWeights[0].Weight >= 0.5
		},
		render: func(p *ContextProfile) string {
			return fmt.Sprintf("Narrow taste: %q carries %.0f%% of your genre weight.",
				p.GenreWeights[0].Genre, p.GenreWeights[0].Weight*100)
		},
	},
	{
		when: func(p *ContextProfile) bool {
			return len(p.GenreWeights) >= 8 && p.GenreWeights[0].Weight < 0.2
		},
		render: func(p *ContextProfile) string {
			return fmt.Sprintf("Diverse taste: %d genres with no dominant cluster.", len(p.GenreWeights))
		},
	},
	{
		when: func(p *ContextProfile) bool {
			return p.TotalArtists > 0 && recurrenceRate(p) > 0.5
		},
		render: func(p *ContextProfile) string {
			return "High listening stability: over half of your artists recur across time windows."
		},
	},
	{
		when: func(p *ContextProfile) bool {
			return p.TotalArtists > 0 && len(p.RecurringArtists) > 0 && recurrenceRate(p) < 0.2
		},
		render: func(p *ContextProfile) string {
			return "High variety: less than 20% of your artists recur across time windows."
		},
	},
	{
		when: func(p *ContextProfile) bool { return p.TotalTracks > 0 && p.AudioProfile.Energy > 0.7 },
		render: func(p *ContextProfile) string {
			return "Your listening skews high-energy."
		},
	},
	{
		when: func(p *ContextProfile) bool { return p.TotalTracks > 0 && p.AudioProfile.Energy < 0.4 },
		render: func(p *ContextProfile) string {
			return "Your listening skews low-energy and calm."
		},
	},
	{
		when: func(p *ContextProfile) bool { return p.TotalTracks > 0 && p.AudioProfile.Valence > 0.6 },
		render: func(p *ContextProfile) string {
			return "Your listening tends toward positive, upbeat moods."
		},
	},
	{
		when: func(p *ContextProfile) bool { return p.TotalTracks > 0 && p.AudioProfile.Valence < 0.4 },
		render: func(p *ContextProfile) string {
			return "Your listening tends toward darker, melancholic moods."
		},
	},
}

func generateNotes(p *ContextProfile) []string {
	var notes []string
	for _, rule := range noteRules {
		if rule.when(p) {
			notes = append(notes, rule.render(p))
		}
	}
	return notes
}

func recurrenceRate(p *ContextProfile) float64 {
	return float64(len(p.RecurringArtists)) / float64(p.TotalArtists)
}
