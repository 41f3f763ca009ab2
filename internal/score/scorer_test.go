package score

import (
	"math"
	"testing"

	"github.com/bomac1193/latent-search/internal/expand"
	"github.com/bomac1193/latent-search/internal/profile"
)

func intp(v int) *int { return &v }

func testProfile() *profile.ContextProfile {
	return &profile.ContextProfile{
		RecurringArtists: []profile.RecurringArtist{
			{ID: "s1", Name: "Seed One", RecurrenceScore: 3},
			{ID: "s2", Name: "Seed Two", RecurrenceScore: 2},
		},
		GenreWeights: []profile.GenreWeight{
			{Genre: "techno", Weight: 0.6},
			{Genre: "ambient", Weight: 0.4},
		},
		AudioProfile: profile.AudioFeatureProfile{
			Energy: 0.5, Danceability: 0.5, Valence: 0.5,
			Acousticness: 0.5, Instrumentalness: 0.5, Tempo: 120,
		},
		TotalArtists: 10,
	}
}

func TestRecencyScoreBoundaries(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		year *int
		want float64
	}{
		{intp(2010), 1.0},
		{intp(2018), 1.0},
		{intp(2023), 0.2},
		{intp(2030), 0.2},
		{nil, 0.6},
	}
	for _, c := range cases {
		got := recencyScore(c.year, cfg)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("recencyScore(%v) = %v, want %v", c.year, got, c.want)
		}
	}

	// Midpoints interpolate strictly between the endpoints.
	mid := recencyScore(intp(2020), cfg)
	if mid <= 0.2 || mid >= 1.0 {
		t.Errorf("recencyScore(2020) = %v, want strictly between 0.2 and 1.0", mid)
	}
}

func TestSaturationScore(t *testing.T) {
	cfg := DefaultConfig()

	if got := saturationScore(nil, cfg); got != 0.5 {
		t.Errorf("missing playlist count should score 0.5, got %v", got)
	}
	if got := saturationScore(intp(0), cfg); got != 1.0 {
		t.Errorf("zero playlist count should score 1.0, got %v", got)
	}
	if got := saturationScore(intp(cfg.SaturationCeiling), cfg); got != 0.0 {
		t.Errorf("ceiling playlist count should score 0.0, got %v", got)
	}
	// Above the ceiling clamps instead of going negative.
	if got := saturationScore(intp(cfg.SaturationCeiling*10), cfg); got != 0.0 {
		t.Errorf("clamped playlist count should score 0.0, got %v", got)
	}
}

func TestPopularityScoreMonotonicAndCapped(t *testing.T) {
	cfg := DefaultConfig()

	last := 2.0
	for pop := 0; pop <= cfg.PopularityCeiling; pop += 10 {
		got := popularityScore(pop, cfg)
		if got > last {
			t.Errorf("popularityScore should not increase with popularity: %d -> %v", pop, got)
		}
		last = got
	}

	// Beyond the ceiling the penalty saturates.
	atCeiling := popularityScore(cfg.PopularityCeiling, cfg)
	if got := popularityScore(100, cfg); got != atCeiling {
		t.Errorf("popularity above ceiling should saturate: got %v, want %v", got, atCeiling)
	}
}

func TestAudioSimilarity(t *testing.T) {
	center := profile.AudioFeatureProfile{
		Energy: 0.5, Danceability: 0.5, Valence: 0.5,
		Acousticness: 0.5, Instrumentalness: 0.5, Tempo: 120,
	}

	if got := audioSimilarity(nil, center); got != 0.5 {
		t.Errorf("nil features should be neutral 0.5, got %v", got)
	}

	identical := &profile.TrackFeatures{
		Energy: 0.5, Danceability: 0.5, Valence: 0.5,
		Acousticness: 0.5, Instrumentalness: 0.5, Tempo: 300,
	}
	if got := audioSimilarity(identical, center); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical features should score 1.0 regardless of tempo, got %v", got)
	}

	opposite := &profile.TrackFeatures{
		Energy: 1.5, Danceability: 1.5, Valence: 1.5,
		Acousticness: 1.5, Instrumentalness: 1.5,
	}
	if got := audioSimilarity(opposite, center); math.Abs(got-0.0) > 1e-9 {
		t.Errorf("maximally distant features should score 0.0, got %v", got)
	}
}

func TestGenreOverlapRatio(t *testing.T) {
	top := []string{"techno", "ambient"}

	if got := genreOverlapRatio([]string{"techno", "ambient", "jazz"}, top); got != 1.0 {
		t.Errorf("full overlap should be 1.0, got %v", got)
	}
	if got := genreOverlapRatio([]string{"techno"}, top); got != 0.5 {
		t.Errorf("half overlap should be 0.5, got %v", got)
	}
	if got := genreOverlapRatio([]string{"jazz"}, top); got != 0.0 {
		t.Errorf("no overlap should be 0.0, got %v", got)
	}
	if got := genreOverlapRatio([]string{"techno"}, nil); got != 0.0 {
		t.Errorf("empty profile genres should be 0.0, got %v", got)
	}
}

func TestScoreCandidateWorkedExample(t *testing.T) {
	// Perfect contextual fit, popularity 40, missing playlist count,
	// catalog back to the recency cutoff. The weighted sum is
	// 0.35 + 0.25 + 0.075 + 0.09 + 0.10 = 0.865.
	p := testProfile()
	c := expand.Candidate{
		ID:         "c1",
		Name:       "Candidate",
		Genres:     []string{"techno", "ambient"},
		Popularity: 40,
		Features: &profile.TrackFeatures{
			Energy: 0.5, Danceability: 0.5, Valence: 0.5,
			Acousticness: 0.5, Instrumentalness: 0.5, Tempo: 120,
		},
		EarliestReleaseYear: intp(2018),
		SeedArtists:         []string{"Seed One", "Seed Two"},
	}

	r := scoreCandidate(c, p, DefaultConfig())

	if math.Abs(r.Subscores.Contextual-1.0) > 1e-9 {
		t.Errorf("expected contextual 1.0, got %v", r.Subscores.Contextual)
	}
	if r.Subscores.Exposure != 1.0 {
		t.Errorf("expected exposure fixed at 1.0, got %v", r.Subscores.Exposure)
	}
	if math.Abs(r.OmissionScore-0.865) > 1e-9 {
		t.Errorf("expected omission score 0.865, got %v", r.OmissionScore)
	}
	if r.Explanation == "" {
		t.Errorf("expected an explanation")
	}
	if r.Evidence.Popularity != 40 {
		t.Errorf("expected evidence popularity 40, got %d", r.Evidence.Popularity)
	}
}

func TestExplainPriority(t *testing.T) {
	r := Result{
		Candidate: expand.Candidate{
			SeedArtists: []string{"A", "B", "C", "D"},
			Popularity:  10,
		},
		Subscores: Subscores{Popularity: 0.9, Recency: 1.0},
	}
	got := explain(r)
	if got != "Connected to multiple stable preferences: A, B, C." {
		t.Errorf("expected the multi-seed rule to win, got %q", got)
	}

	r.Candidate.SeedArtists = []string{"A", "B"}
	got = explain(r)
	if got != "Related to 2 of your recurring artists, yet absent from your library." {
		t.Errorf("expected the two-seed rule, got %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Weights.Context = 0.5
	if err := bad.Validate(); err == nil {
		t.Errorf("weights not summing to 1.0 should fail validation")
	}

	neg := DefaultConfig()
	neg.Weights.Recency = -0.1
	neg.Weights.Context = 0.55
	if err := neg.Validate(); err == nil {
		t.Errorf("negative weight should fail validation")
	}

	zero := DefaultConfig()
	zero.MaxResults = 0
	if err := zero.Validate(); err == nil {
		t.Errorf("zero max results should fail validation")
	}
}
