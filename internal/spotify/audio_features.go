package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/catalog"
)

const maxTracksPerRequest = 100

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place with their energy and valence.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features keep nil feature fields.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []catalog.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = i
	}

	total := len(ids)
	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)

		features, err := c.api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			applyAudioFeatures(&tracks[idx], f)
		}
	}

	c.log.Debug("fetched audio features", zap.Int("tracks", total))
	return nil
}

// applyAudioFeatures copies the features used for mood mixes to a track.
func applyAudioFeatures(t *catalog.Track, f *spotify.AudioFeatures) {
	energy, valence := f.Energy, f.Valence
	t.Energy = &energy
	t.Valence = &valence
}
