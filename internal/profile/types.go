package profile

// Window identifies one of the three listening-history time windows.
type Window int

const (
	WindowShort Window = iota
	WindowMedium
	WindowLong
)

func (w Window) String() string {
	switch w {
	case WindowShort:
		return "short"
	case WindowMedium:
		return "medium"
	case WindowLong:
		return "long"
	}
	return "unknown"
}

// Artist is one artist entry from a listening snapshot.
type Artist struct {
	ID         string
	Name       string
	Genres     []string
	Popularity int
}

// TrackFeatures holds the audio features of a single track. Tempo is in
// BPM; the other five values lie in [0, 1].
type TrackFeatures struct {
	Energy           float64 `yaml:"energy"`
	Danceability     float64 `yaml:"danceability"`
	Valence          float64 `yaml:"valence"`
	Acousticness     float64 `yaml:"acousticness"`
	Instrumentalness float64 `yaml:"instrumentalness"`
	Tempo            float64 `yaml:"tempo"`
}

// WindowSnapshot is the already-fetched listening data for one time window.
type WindowSnapshot struct {
	Artists []Artist
	Tracks  []TrackFeatures
}

// RecurringArtist is an artist present in at least two time windows.
// RecurrenceScore is the exact count of windows the artist appears in.
type RecurringArtist struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Genres          []string `yaml:"genres"`
	Popularity      int      `yaml:"popularity"`
	InShort         bool     `yaml:"in_short"`
	InMedium        bool     `yaml:"in_medium"`
	InLong          bool     `yaml:"in_long"`
	RecurrenceScore int      `yaml:"recurrence_score"`
}

// GenreWeight is one genre with its normalized weight. The weights of a
// profile sum to 1.0.
type GenreWeight struct {
	Genre  string  `yaml:"genre"`
	Weight float64 `yaml:"weight"`
}

// AudioFeatureProfile holds the per-feature arithmetic means across every
// analyzed track.
type AudioFeatureProfile struct {
	Energy           float64 `yaml:"energy" json:"energy"`
	Danceability     float64 `yaml:"danceability" json:"danceability"`
	Valence          float64 `yaml:"valence" json:"valence"`
	Acousticness     float64 `yaml:"acousticness" json:"acousticness"`
	Instrumentalness float64 `yaml:"instrumentalness" json:"instrumentalness"`
	Tempo            float64 `yaml:"tempo" json:"tempo"`
}

// ContextProfile is the longitudinal listening profile built from the three
// window snapshots. It is immutable after Build and lives for one
// diagnosis/scan request.
type ContextProfile struct {
	RecurringArtists []RecurringArtist   `yaml:"recurring_artists"`
	GenreWeights     []GenreWeight       `yaml:"genre_weights"`
	AudioProfile     AudioFeatureProfile `yaml:"audio_profile"`
	Notes            []string            `yaml:"notes"`
	TotalArtists     int                 `yaml:"total_artists"`
	TotalTracks      int                 `yaml:"total_tracks"`

	// KnownArtistIDs is every artist id seen in any window, used to exclude
	// already-heard artists during candidate expansion.
	KnownArtistIDs map[string]bool `yaml:"-"`
}

// TopGenres returns up to n genre names, highest weight first.
func (p *ContextProfile) TopGenres(n int) []string {
	if n > len(p.GenreWeights) {
		n = len(p.GenreWeights)
	}
	genres := make([]string, 0, n)
	for _, gw := range p.GenreWeights[:n] {
		genres = append(genres, gw.Genre)
	}
	return genres
}
