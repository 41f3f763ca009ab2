/*
Copyright 2026 The latent-search Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/expand"
	"github.com/bomac1193/latent-search/internal/score"
)

func TestBuildScoreConfig(t *testing.T) {
	cfg, err := buildScoreConfig(0)
	if err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.MaxResults != score.DefaultConfig().MaxResults {
		t.Errorf("limit 0 should keep the default max results, got %d", cfg.MaxResults)
	}

	cfg, err = buildScoreConfig(3)
	if err != nil {
		t.Fatalf("buildScoreConfig(3): %v", err)
	}
	if cfg.MaxResults != 3 {
		t.Errorf("expected limit to override max results, got %d", cfg.MaxResults)
	}

	// A config-file weight override that breaks the sum must be fatal
	// before any scan work happens.
	viper.Set("weights.context", 0.9)
	defer viper.Set("weights.context", score.DefaultConfig().Weights.Context)

	if _, err := buildScoreConfig(0); err == nil {
		t.Errorf("expected malformed weights to fail validation")
	}
}

func TestBuildScoreConfigOverridesEveryThreshold(t *testing.T) {
	keys := map[string]interface{}{
		"min-seed-support":          3,
		"min-contextual-similarity": 0.9,
		"max-popularity-gate":       50,
		"popularity-ceiling":        80,
		"recency-cutoff-year":       2010,
		"saturation-ceiling":        25,
		"context-genre-count":       5,
		"accept-boost":              0.2,
		"reject-penalty":            0.3,
		"hard-reject-count":         4,
	}
	for key, value := range keys {
		viper.Set(key, value)
	}
	defer func() {
		for key := range keys {
			viper.Set(key, nil)
		}
	}()

	cfg, err := buildScoreConfig(0)
	if err != nil {
		t.Fatalf("buildScoreConfig: %v", err)
	}

	if cfg.MinSeedSupport != 3 {
		t.Errorf("min-seed-support override ignored, got %d", cfg.MinSeedSupport)
	}
	if cfg.MinContextualSimilarity != 0.9 {
		t.Errorf("min-contextual-similarity override ignored, got %v", cfg.MinContextualSimilarity)
	}
	if cfg.MaxPopularityGate != 50 {
		t.Errorf("max-popularity-gate override ignored, got %d", cfg.MaxPopularityGate)
	}
	if cfg.PopularityCeiling != 80 {
		t.Errorf("popularity-ceiling override ignored, got %d", cfg.PopularityCeiling)
	}
	if cfg.RecencyCutoffYear != 2010 {
		t.Errorf("recency-cutoff-year override ignored, got %d", cfg.RecencyCutoffYear)
	}
	if cfg.SaturationCeiling != 25 {
		t.Errorf("saturation-ceiling override ignored, got %d", cfg.SaturationCeiling)
	}
	if cfg.ContextGenreCount != 5 {
		t.Errorf("context-genre-count override ignored, got %d", cfg.ContextGenreCount)
	}
	if cfg.AcceptBoost != 0.2 {
		t.Errorf("accept-boost override ignored, got %v", cfg.AcceptBoost)
	}
	if cfg.RejectPenalty != 0.3 {
		t.Errorf("reject-penalty override ignored, got %v", cfg.RejectPenalty)
	}
	if cfg.HardRejectCount != 4 {
		t.Errorf("hard-reject-count override ignored, got %d", cfg.HardRejectCount)
	}
}

func TestGenerateEmailContent(t *testing.T) {
	config := SendEmailConfig{User: "testuser"}
	report := &score.Report{
		Summary: "Based on 12 artists, 5 recurring.",
		Results: []score.Result{
			{
				Candidate: expand.Candidate{
					Name:        "Artist <One>",
					SeedArtists: []string{"Seed A", "Seed B"},
				},
				OmissionScore: 0.865,
				Explanation:   "Related to 2 of your recurring artists, yet absent from your library.",
			},
		},
	}

	out := generateEmailContent(config, report)

	if !strings.Contains(out, "<html>") {
		t.Errorf("expected HTML body")
	}
	if !strings.Contains(out, "0.865") {
		t.Errorf("expected the omission score in the body")
	}
	if !strings.Contains(out, "Artist &lt;One&gt;") {
		t.Errorf("expected the artist name to be escaped, got:\n%s", out)
	}
	if !strings.Contains(out, "Seed A, Seed B") {
		t.Errorf("expected seed artists in the body")
	}
}

func TestGenerateEmailContentEmptyResults(t *testing.T) {
	config := SendEmailConfig{User: "testuser"}
	report := &score.Report{
		Summary: "Evaluated 4 candidates; none passed the confidence gate (similarity >= 0.55, popularity <= 70).",
	}

	out := generateEmailContent(config, report)

	if strings.Contains(out, "<table>") {
		t.Errorf("empty results should not render a table")
	}
	if !strings.Contains(out, "none passed the confidence gate") {
		t.Errorf("expected the summary in the body")
	}
}
