package spotify

// Wire types for the Spotify Web API responses this client consumes.

type artistObject struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

type albumObject struct {
	Name                 string `json:"name"`
	ReleaseDate          string `json:"release_date"`
	ReleaseDatePrecision string `json:"release_date_precision"`
}

type trackObject struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Artists []artistObject `json:"artists"`
	Album   albumObject    `json:"album"`
}

type topArtistsResponse struct {
	Items []artistObject `json:"items"`
	Total int            `json:"total"`
}

type topTracksResponse struct {
	Items []trackObject `json:"items"`
	Total int           `json:"total"`
}

type audioFeaturesObject struct {
	ID               string  `json:"id"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Tempo            float64 `json:"tempo"`
}

type audioFeaturesResponse struct {
	AudioFeatures []*audioFeaturesObject `json:"audio_features"`
}

type relatedArtistsResponse struct {
	Artists []artistObject `json:"artists"`
}

type artistAlbumsResponse struct {
	Items []albumObject `json:"items"`
}

type artistTopTracksResponse struct {
	Tracks []trackObject `json:"tracks"`
}

type playlistSearchResponse struct {
	Playlists struct {
		Total int `json:"total"`
	} `json:"playlists"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}
