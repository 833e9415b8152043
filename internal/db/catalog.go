package db

import (
	"context"

	"github.com/justestif/go-tuneaura/internal/catalog"
)

// CatalogSource serves catalog lookups from the tracks table.
type CatalogSource struct {
	tracks *TrackRepository
}

// CatalogSource returns a catalog.Source backed by the tracks table.
func (db *DB) CatalogSource() *CatalogSource {
	return &CatalogSource{tracks: db.Tracks()}
}

// TracksForGenre returns up to limit stored tracks of genre.
func (s *CatalogSource) TracksForGenre(ctx context.Context, genre string, limit int) ([]catalog.Track, error) {
	if limit <= 0 {
		limit = catalog.DefaultPerGenre
	}
	rows, err := s.tracks.ForGenre(ctx, genre, limit)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.Track, len(rows))
	for i, t := range rows {
		out[i] = fromDBTrack(t)
	}
	return out, nil
}

// ImportTracks upserts catalog tracks into the tracks table.
func (db *DB) ImportTracks(ctx context.Context, tracks []catalog.Track) error {
	rows := make([]Track, len(tracks))
	for i, t := range tracks {
		rows[i] = toDBTrack(t)
	}
	return db.Tracks().UpsertBatch(ctx, rows)
}

// toDBTrack converts a catalog track to a row. An empty album is stored as NULL.
func toDBTrack(t catalog.Track) Track {
	var album *string
	if t.Album != "" {
		a := t.Album
		album = &a
	}
	return Track{
		ID:          t.ID,
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       album,
		Genre:       t.Genre,
		DurationSec: t.Duration,
		Energy:      t.Energy,
		Valence:     t.Valence,
	}
}

// fromDBTrack converts a row to a catalog track.
func fromDBTrack(t Track) catalog.Track {
	var album string
	if t.Album != nil {
		album = *t.Album
	}
	return catalog.Track{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    album,
		Genre:    t.Genre,
		Duration: t.DurationSec,
		Energy:   t.Energy,
		Valence:  t.Valence,
	}
}

var _ catalog.Source = (*CatalogSource)(nil)
