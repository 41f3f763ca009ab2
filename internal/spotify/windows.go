package spotify

import (
	"context"
	"fmt"

	"github.com/bomac1193/latent-search/internal/expand"
	"github.com/bomac1193/latent-search/internal/profile"
)

var windowRanges = map[profile.Window]string{
	profile.WindowShort:  "short_term",
	profile.WindowMedium: "medium_term",
	profile.WindowLong:   "long_term",
}

const windowLimit = 50

// FetchWindows pulls the three listening snapshots the profile builder
// needs. A window the API returns nothing for comes back empty, not as an
// error; the builder degrades on its own.
func (c *Client) FetchWindows(ctx context.Context) (short, medium, long profile.WindowSnapshot, err error) {
	snapshots := make(map[profile.Window]profile.WindowSnapshot)
	for window, timeRange := range windowRanges {
		artists, ferr := c.TopArtists(ctx, timeRange, windowLimit)
		if ferr != nil {
			err = fmt.Errorf("window %s: %w", window, ferr)
			return
		}
		tracks, ferr := c.TopTracks(ctx, timeRange, windowLimit)
		if ferr != nil {
			err = fmt.Errorf("window %s: %w", window, ferr)
			return
		}
		var trackIDs []string
		for _, t := range tracks {
			if t.ID != "" {
				trackIDs = append(trackIDs, t.ID)
			}
		}
		features, ferr := c.AudioFeatures(ctx, trackIDs)
		if ferr != nil {
			err = fmt.Errorf("window %s: %w", window, ferr)
			return
		}
		snapshots[window] = profile.WindowSnapshot{Artists: artists, Tracks: features}
	}
	return snapshots[profile.WindowShort], snapshots[profile.WindowMedium], snapshots[profile.WindowLong], nil
}

// FetchRelated builds the per-seed related-artist map for candidate
// expansion, keyed by seed artist id. A seed whose related-artist call
// fails is skipped with a notice rather than aborting the whole scan.
func (c *Client) FetchRelated(ctx context.Context, seeds []profile.RecurringArtist) map[string][]expand.RelatedArtist {
	related := make(map[string][]expand.RelatedArtist)
	for _, seed := range seeds {
		artists, err := c.RelatedArtists(ctx, seed.ID)
		if err != nil {
			fmt.Printf("Skipping related artists for %q: %v\n", seed.Name, err)
			continue
		}
		var rs []expand.RelatedArtist
		for _, a := range artists {
			rs = append(rs, expand.RelatedArtist{
				ID:         a.ID,
				Name:       a.Name,
				Genres:     a.Genres,
				Popularity: a.Popularity,
			})
		}
		related[seed.ID] = rs
	}
	return related
}

// EnrichCandidates fills in the per-candidate signals that need extra API
// calls: sample track with audio features, earliest release year, and
// playlist saturation. Only the first maxEnrich candidates are enriched;
// the rest keep their defaults. Enrichment failures leave the candidate's
// fields unset, and the scorer falls back to its neutral values.
func (c *Client) EnrichCandidates(ctx context.Context, candidates []expand.Candidate, maxEnrich int) {
	for i := range candidates {
		if i >= maxEnrich {
			return
		}
		cand := &candidates[i]

		if track, features, err := c.SampleTrack(ctx, cand.ID); err == nil {
			cand.SampleTrack = track
			cand.Features = features
		}
		if year, err := c.EarliestReleaseYear(ctx, cand.ID); err == nil {
			cand.EarliestReleaseYear = year
		}
		if count, err := c.PlaylistCount(ctx, cand.Name); err == nil {
			cand.PlaylistCount = count
		}
	}
}
