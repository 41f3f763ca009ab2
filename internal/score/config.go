package score

import (
	"fmt"
	"math"
)

// Weights are the five omission-score term weights. They must sum to 1.0.
type Weights struct {
	Context    float64
	Exposure   float64
	Saturation float64
	Popularity float64
	Recency    float64
}

// Config holds every scoring and gating threshold. It is built once at
// startup, validated, and passed explicitly; scoring code never reads
// ambient configuration.
type Config struct {
	Weights Weights

	// MinSeedSupport and MinContextualSimilarity and MaxPopularityGate are
	// the confidence-gate thresholds.
	MinSeedSupport          int
	MinContextualSimilarity float64
	MaxPopularityGate       int

	// PopularityCeiling caps the popularity penalty: popularity above the
	// ceiling saturates instead of penalizing further.
	PopularityCeiling int

	// RecencyCutoffYear is the earliest-release year at or before which a
	// candidate gets the full recency score.
	RecencyCutoffYear int

	// SaturationCeiling is the playlist-presence count treated as fully
	// saturated.
	SaturationCeiling int

	// ContextGenreCount is how many top profile genres the genre-overlap
	// ratio considers.
	ContextGenreCount int

	MaxResults int

	AcceptBoost     float64
	RejectPenalty   float64
	HardRejectCount int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Context:    0.35,
			Exposure:   0.25,
			Saturation: 0.15,
			Popularity: 0.15,
			Recency:    0.10,
		},
		MinSeedSupport:          2,
		MinContextualSimilarity: 0.55,
		MaxPopularityGate:       70,
		PopularityCeiling:       60,
		RecencyCutoffYear:       2018,
		SaturationCeiling:       50,
		ContextGenreCount:       10,
		MaxResults:              7,
		AcceptBoost:             0.10,
		RejectPenalty:           0.15,
		HardRejectCount:         2,
	}
}

// Validate checks the configuration invariants. A failure here is fatal at
// startup; it is never a per-request condition.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"context":    w.Context,
		"exposure":   w.Exposure,
		"saturation": w.Saturation,
		"popularity": w.Popularity,
		"recency":    w.Recency,
	} {
		if v < 0 {
			return fmt.Errorf("weight %q is negative: %v", name, v)
		}
	}
	sum := w.Context + w.Exposure + w.Saturation + w.Popularity + w.Recency
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}

	if c.MinSeedSupport < 1 {
		return fmt.Errorf("min seed support must be at least 1, got %d", c.MinSeedSupport)
	}
	if c.MinContextualSimilarity < 0 || c.MinContextualSimilarity > 1 {
		return fmt.Errorf("min contextual similarity must be in [0, 1], got %v", c.MinContextualSimilarity)
	}
	if c.MaxPopularityGate < 0 || c.MaxPopularityGate > 100 {
		return fmt.Errorf("max popularity gate must be in [0, 100], got %d", c.MaxPopularityGate)
	}
	if c.PopularityCeiling < 1 || c.PopularityCeiling > 100 {
		return fmt.Errorf("popularity ceiling must be in [1, 100], got %d", c.PopularityCeiling)
	}
	if c.SaturationCeiling < 1 {
		return fmt.Errorf("saturation ceiling must be positive, got %d", c.SaturationCeiling)
	}
	if c.ContextGenreCount < 1 {
		return fmt.Errorf("context genre count must be positive, got %d", c.ContextGenreCount)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max results must be positive, got %d", c.MaxResults)
	}
	if c.AcceptBoost < 0 || c.RejectPenalty < 0 {
		return fmt.Errorf("feedback deltas must not be negative")
	}
	if c.HardRejectCount < 1 {
		return fmt.Errorf("hard reject count must be positive, got %d", c.HardRejectCount)
	}
	return nil
}
