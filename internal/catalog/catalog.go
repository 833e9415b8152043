// Package catalog provides the tracks shown in the player: recommendations for a mood,
// search over them, and mood mixes built from audio features.
package catalog

import (
	"context"
	"errors"

	"github.com/justestif/go-tuneaura/internal/session"
)

// Common errors.
var (
	// ErrNoTracks is returned when no genre of a mood produced any track.
	ErrNoTracks = errors.New("no tracks found")
)

// Track is a playable song with optional audio features.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration int // seconds
	// Audio features (nil if not fetched or unavailable)
	Energy  *float32
	Valence *float32
}

// HasFeatures reports whether the track can be placed in a mood mix.
func (t Track) HasFeatures() bool {
	return t.Energy != nil && t.Valence != nil
}

// Ref returns the now-playing reference for the track.
func (t Track) Ref() session.TrackRef {
	return session.TrackRef{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Duration: t.Duration,
	}
}

// Source looks up tracks by genre.
type Source interface {
	TracksForGenre(ctx context.Context, genre string, limit int) ([]Track, error)
}
