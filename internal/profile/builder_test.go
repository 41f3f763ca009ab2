package profile

import (
	"math"
	"testing"
)

func artist(id, name string, popularity int, genres ...string) Artist {
	return Artist{ID: id, Name: name, Genres: genres, Popularity: popularity}
}

func TestBuildRecurrenceRequiresTwoWindows(t *testing.T) {
	short := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient"),
		artist("b2", "Beta", 50, "techno"),
	}}
	medium := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient"),
	}}
	long := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient"),
		artist("c3", "Gamma", 30, "jazz"),
	}}

	p := Build(short, medium, long)

	if len(p.RecurringArtists) != 1 {
		t.Fatalf("expected 1 recurring artist, got %d", len(p.RecurringArtists))
	}
	a := p.RecurringArtists[0]
	if a.ID != "a1" {
		t.Errorf("expected a1 to recur, got %s", a.ID)
	}
	if a.RecurrenceScore != 3 {
		t.Errorf("expected recurrence score 3, got %d", a.RecurrenceScore)
	}
	if !a.InShort || !a.InMedium || !a.InLong {
		t.Errorf("expected a1 in all windows, got %v %v %v", a.InShort, a.InMedium, a.InLong)
	}
}

func TestBuildRecurrenceScoreIsWindowCount(t *testing.T) {
	short := WindowSnapshot{Artists: []Artist{artist("a1", "Alpha", 40, "ambient")}}
	medium := WindowSnapshot{Artists: []Artist{artist("a1", "Alpha", 40, "ambient")}}
	long := WindowSnapshot{}

	p := Build(short, medium, long)

	if len(p.RecurringArtists) != 1 {
		t.Fatalf("expected 1 recurring artist, got %d", len(p.RecurringArtists))
	}
	if got := p.RecurringArtists[0].RecurrenceScore; got != 2 {
		t.Errorf("expected recurrence score 2, got %d", got)
	}
}

func TestBuildKnownArtistsIncludeNonRecurring(t *testing.T) {
	short := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient"),
		artist("b2", "Beta", 50, "techno"),
	}}
	medium := WindowSnapshot{Artists: []Artist{artist("a1", "Alpha", 40, "ambient")}}

	p := Build(short, medium, WindowSnapshot{})

	// b2 only appears once, so it is not recurring, but the listening
	// history still covers it.
	if !p.KnownArtistIDs["b2"] {
		t.Errorf("expected b2 in known artist ids")
	}
	if p.TotalArtists != 2 {
		t.Errorf("expected 2 total artists, got %d", p.TotalArtists)
	}
}

func TestBuildGenreWeightsNormalized(t *testing.T) {
	// Alpha recurs in 3 windows with two genres, Beta in 2 with one.
	short := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient", "drone"),
		artist("b2", "Beta", 50, "techno"),
	}}
	medium := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient", "drone"),
		artist("b2", "Beta", 50, "techno"),
	}}
	long := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 40, "ambient", "drone"),
	}}

	p := Build(short, medium, long)

	var sum float64
	weights := make(map[string]float64)
	for _, g := range p.GenreWeights {
		sum += g.Weight
		weights[g.Genre] = g.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("genre weights should sum to 1.0, got %v", sum)
	}

	// Alpha's score 3 splits into 1.5 per genre; Beta contributes 2 to
	// techno. Total mass 5: techno 0.4, ambient 0.3, drone 0.3.
	if math.Abs(weights["techno"]-0.4) > 1e-9 {
		t.Errorf("expected techno weight 0.4, got %v", weights["techno"])
	}
	if math.Abs(weights["ambient"]-0.3) > 1e-9 {
		t.Errorf("expected ambient weight 0.3, got %v", weights["ambient"])
	}
	if p.GenreWeights[0].Genre != "techno" {
		t.Errorf("expected techno first, got %s", p.GenreWeights[0].Genre)
	}
}

func TestBuildRecurringOrderPrefersLessPopularOnTies(t *testing.T) {
	short := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 70, "ambient"),
		artist("b2", "Beta", 20, "techno"),
	}}
	medium := WindowSnapshot{Artists: []Artist{
		artist("a1", "Alpha", 70, "ambient"),
		artist("b2", "Beta", 20, "techno"),
	}}

	p := Build(short, medium, WindowSnapshot{})

	if p.RecurringArtists[0].ID != "b2" {
		t.Errorf("expected less popular artist first on recurrence tie, got %s", p.RecurringArtists[0].ID)
	}
}

func TestBuildAudioProfileAverages(t *testing.T) {
	short := WindowSnapshot{Tracks: []TrackFeatures{
		{Energy: 0.2, Danceability: 0.4, Valence: 0.6, Acousticness: 0.8, Instrumentalness: 1.0, Tempo: 100},
	}}
	medium := WindowSnapshot{Tracks: []TrackFeatures{
		{Energy: 0.4, Danceability: 0.6, Valence: 0.8, Acousticness: 1.0, Instrumentalness: 0.0, Tempo: 140},
	}}

	p := Build(short, medium, WindowSnapshot{})

	if math.Abs(p.AudioProfile.Energy-0.3) > 1e-9 {
		t.Errorf("expected energy 0.3, got %v", p.AudioProfile.Energy)
	}
	if math.Abs(p.AudioProfile.Tempo-120) > 1e-9 {
		t.Errorf("expected tempo 120, got %v", p.AudioProfile.Tempo)
	}
	if p.TotalTracks != 2 {
		t.Errorf("expected 2 total tracks, got %d", p.TotalTracks)
	}
}

func TestBuildEmptyInputDegrades(t *testing.T) {
	p := Build(WindowSnapshot{}, WindowSnapshot{}, WindowSnapshot{})

	if len(p.RecurringArtists) != 0 {
		t.Errorf("expected no recurring artists")
	}
	if p.GenreWeights != nil {
		t.Errorf("expected nil genre weights, got %v", p.GenreWeights)
	}
	if p.AudioProfile.Energy != 0.5 || p.AudioProfile.Tempo != 120 {
		t.Errorf("expected neutral audio profile, got %+v", p.AudioProfile)
	}
	if len(p.Notes) == 0 {
		t.Fatalf("expected an explanatory note for empty input")
	}
}

func TestTopGenres(t *testing.T) {
	p := &ContextProfile{GenreWeights: []GenreWeight{
		{Genre: "techno", Weight: 0.5},
		{Genre: "ambient", Weight: 0.3},
		{Genre: "jazz", Weight: 0.2},
	}}

	top := p.TopGenres(2)
	if len(top) != 2 || top[0] != "techno" || top[1] != "ambient" {
		t.Errorf("unexpected top genres: %v", top)
	}

	all := p.TopGenres(10)
	if len(all) != 3 {
		t.Errorf("expected 3 genres, got %d", len(all))
	}
}
