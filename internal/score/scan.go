package score

import (
	"fmt"
	"strings"

	"github.com/bomac1193/latent-search/internal/expand"
	"github.com/bomac1193/latent-search/internal/profile"
)

// FeedbackSource is the read side of the feedback store. The scorer stays
// testable with an in-memory implementation; the SQLite store satisfies it
// in production.
type FeedbackSource interface {
	// Aggregate returns the accept and reject counts for one artist.
	Aggregate(user, artistID string) (accepts, rejects int, err error)

	// IsHardExcluded reports whether repeated rejects permanently suppress
	// the artist for this user.
	IsHardExcluded(user, artistID string) (bool, error)
}

// Report is the outcome of one omission scan.
type Report struct {
	Results             []Result
	Summary             string
	CandidatesEvaluated int
	ThresholdUsed       float64
}

// Scan scores every candidate against the profile, applies feedback
// adjustments, and runs the confidence gate. Hard-excluded artists are
// dropped from the pool before scoring. A nil feedback source skips
// adjustment and exclusion. An empty candidate set is not an error: the
// report explains that nothing could be evaluated.
func Scan(p *profile.ContextProfile, candidates []expand.Candidate, user string, feedback FeedbackSource, cfg Config) (*Report, error) {
	report := &Report{ThresholdUsed: cfg.MinContextualSimilarity}

	var scored []Result
	for _, c := range candidates {
		if feedback != nil {
			excluded, err := feedback.IsHardExcluded(user, c.ID)
			if err != nil {
				return nil, fmt.Errorf("checking hard exclusion for %q: %w", c.ID, err)
			}
			if excluded {
				continue
			}
		}

		r := scoreCandidate(c, p, cfg)
		if feedback != nil {
			accepts, rejects, err := feedback.Aggregate(user, c.ID)
			if err != nil {
				return nil, fmt.Errorf("reading feedback for %q: %w", c.ID, err)
			}
			// Deltas re-apply to the fresh base score on every scan, so
			// weight changes never require replaying old feedback.
			r.OmissionScore = clamp01(r.OmissionScore +
				float64(accepts)*cfg.AcceptBoost -
				float64(rejects)*cfg.RejectPenalty)
		}
		scored = append(scored, r)
	}
	report.CandidatesEvaluated = len(scored)

	var passed []Result
	for _, r := range scored {
		if len(r.Candidate.SeedArtists) < cfg.MinSeedSupport {
			continue
		}
		if r.Subscores.Contextual < cfg.MinContextualSimilarity {
			continue
		}
		if r.Candidate.Popularity > cfg.MaxPopularityGate {
			continue
		}
		passed = append(passed, r)
	}

	sortResults(passed)
	if len(passed) > cfg.MaxResults {
		passed = passed[:cfg.MaxResults]
	}
	report.Results = passed
	report.Summary = summarize(p, report, cfg)
	return report, nil
}

func summarize(p *profile.ContextProfile, report *Report, cfg Config) string {
	if report.CandidatesEvaluated == 0 {
		return fmt.Sprintf("No candidates could be evaluated (%d recurring artists). Not enough structural data for an omission scan.",
			len(p.RecurringArtists))
	}
	if len(report.Results) == 0 {
		return fmt.Sprintf("Evaluated %d candidates; none passed the confidence gate (similarity >= %.2f, popularity <= %d).",
			report.CandidatesEvaluated, cfg.MinContextualSimilarity, cfg.MaxPopularityGate)
	}
	genres := "none"
	if top := p.TopGenres(3); len(top) > 0 {
		genres = strings.Join(top, ", ")
	}
	return fmt.Sprintf("Based on %d artists, %d recurring. Top genres: %s. Evaluated %d candidates at similarity threshold %.2f.",
		p.TotalArtists, len(p.RecurringArtists), genres, report.CandidatesEvaluated, cfg.MinContextualSimilarity)
}
