// Package spotify is a thin JSON client for the Spotify Web API. All
// network I/O for the pipeline lives here; the profile, expand, and score
// packages never touch the network.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/bomac1193/latent-search/internal/profile"
)

const apiBase = "https://api.spotify.com/v1"

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify returned %d: %s", e.Code, e.Body)
}

type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	token   string
	baseURL string
}

func NewClient(accessToken string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
		token:   accessToken,
		baseURL: apiBase,
	}
}

// SetBaseURL overrides the API root, for tests against a local server.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+c.token)
			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode/100 != 2 {
				return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			}
			return json.Unmarshal(body, out)
		},
		retry.Attempts(3),
		retry.RetryIf(func(err error) bool {
			if serr, ok := err.(*StatusError); ok {
				if serr.Code/100 == 5 {
					fmt.Printf("spotify errored, retrying: %v\n", serr)
					return true
				}
				return false
			}
			return false
		}),
	)
}

// Track is one of the current user's top tracks.
type Track struct {
	ID     string
	Name   string
	Artist string
}

// TopArtists returns the user's top artists for one time range
// ("short_term", "medium_term", or "long_term").
func (c *Client) TopArtists(ctx context.Context, timeRange string, limit int) ([]profile.Artist, error) {
	query := url.Values{
		"time_range": {timeRange},
		"limit":      {fmt.Sprint(limit)},
	}
	var resp topArtistsResponse
	if err := c.get(ctx, "/me/top/artists", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching top artists (%s): %w", timeRange, err)
	}
	var artists []profile.Artist
	for _, a := range resp.Items {
		artists = append(artists, profile.Artist{
			ID:         a.ID,
			Name:       a.Name,
			Genres:     a.Genres,
			Popularity: a.Popularity,
		})
	}
	return artists, nil
}

// TopTracks returns the user's top tracks for one time range.
func (c *Client) TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	query := url.Values{
		"time_range": {timeRange},
		"limit":      {fmt.Sprint(limit)},
	}
	var resp topTracksResponse
	if err := c.get(ctx, "/me/top/tracks", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching top tracks (%s): %w", timeRange, err)
	}
	var tracks []Track
	for _, t := range resp.Items {
		track := Track{ID: t.ID, Name: t.Name}
		if len(t.Artists) > 0 {
			track.Artist = t.Artists[0].Name
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// AudioFeatures fetches audio features for up to 100 track ids per call.
// Tracks the API has no analysis for are omitted from the result.
func (c *Client) AudioFeatures(ctx context.Context, trackIDs []string) ([]profile.TrackFeatures, error) {
	var features []profile.TrackFeatures
	for start := 0; start < len(trackIDs); start += 100 {
		end := start + 100
		if end > len(trackIDs) {
			end = len(trackIDs)
		}
		query := url.Values{"ids": {strings.Join(trackIDs[start:end], ",")}}
		var resp audioFeaturesResponse
		if err := c.get(ctx, "/audio-features", query, &resp); err != nil {
			return nil, fmt.Errorf("fetching audio features: %w", err)
		}
		for _, f := range resp.AudioFeatures {
			if f == nil {
				continue
			}
			features = append(features, profile.TrackFeatures{
				Energy:           f.Energy,
				Danceability:     f.Danceability,
				Valence:          f.Valence,
				Acousticness:     f.Acousticness,
				Instrumentalness: f.Instrumentalness,
				Tempo:            f.Tempo,
			})
		}
	}
	return features, nil
}

// RelatedArtists returns the artists Spotify relates to the given artist.
func (c *Client) RelatedArtists(ctx context.Context, artistID string) ([]profile.Artist, error) {
	var resp relatedArtistsResponse
	if err := c.get(ctx, "/artists/"+artistID+"/related-artists", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching related artists for %s: %w", artistID, err)
	}
	var artists []profile.Artist
	for _, a := range resp.Artists {
		artists = append(artists, profile.Artist{
			ID:         a.ID,
			Name:       a.Name,
			Genres:     a.Genres,
			Popularity: a.Popularity,
		})
	}
	return artists, nil
}

// EarliestReleaseYear returns the year of the artist's oldest album or
// single, or nil when the API reports none.
func (c *Client) EarliestReleaseYear(ctx context.Context, artistID string) (*int, error) {
	query := url.Values{
		"include_groups": {"album,single"},
		"limit":          {"50"},
	}
	var resp artistAlbumsResponse
	if err := c.get(ctx, "/artists/"+artistID+"/albums", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching albums for %s: %w", artistID, err)
	}
	var earliest *int
	for _, album := range resp.Items {
		year := releaseYear(album.ReleaseDate)
		if year == 0 {
			continue
		}
		if earliest == nil || year < *earliest {
			y := year
			earliest = &y
		}
	}
	return earliest, nil
}

// SampleTrack returns the artist's current top track and its audio
// features. A missing analysis yields nil features and no error.
func (c *Client) SampleTrack(ctx context.Context, artistID string) (string, *profile.TrackFeatures, error) {
	query := url.Values{"market": {"US"}}
	var resp artistTopTracksResponse
	if err := c.get(ctx, "/artists/"+artistID+"/top-tracks", query, &resp); err != nil {
		return "", nil, fmt.Errorf("fetching top tracks for %s: %w", artistID, err)
	}
	if len(resp.Tracks) == 0 {
		return "", nil, nil
	}
	top := resp.Tracks[0]
	features, err := c.AudioFeatures(ctx, []string{top.ID})
	if err != nil {
		return top.Name, nil, nil
	}
	if len(features) == 0 {
		return top.Name, nil, nil
	}
	return top.Name, &features[0], nil
}

// PlaylistCount estimates how saturated an artist is in editorial and
// user playlists, via the search index's total for the artist name.
func (c *Client) PlaylistCount(ctx context.Context, artistName string) (*int, error) {
	query := url.Values{
		"q":     {artistName},
		"type":  {"playlist"},
		"limit": {"1"},
	}
	var resp playlistSearchResponse
	if err := c.get(ctx, "/search", query, &resp); err != nil {
		return nil, fmt.Errorf("searching playlists for %q: %w", artistName, err)
	}
	total := resp.Playlists.Total
	return &total, nil
}

// releaseYear parses the leading year out of a Spotify release date, which
// arrives as "2006", "2006-01", or "2006-01-02" depending on precision.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(date[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}
