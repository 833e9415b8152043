package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// UpsertBatch inserts or updates multiple tracks efficiently.
func (r *TrackRepository) UpsertBatch(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tracks (id, title, artist, album, genre, duration_sec, energy, valence, created_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::int[], $7::real[], $8::real[], $9::timestamptz[])
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			album = EXCLUDED.album,
			genre = EXCLUDED.genre,
			duration_sec = EXCLUDED.duration_sec,
			energy = EXCLUDED.energy,
			valence = EXCLUDED.valence
	`

	ids := make([]string, len(tracks))
	titles := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	albums := make([]*string, len(tracks))
	genres := make([]string, len(tracks))
	durations := make([]int, len(tracks))
	energies := make([]*float32, len(tracks))
	valences := make([]*float32, len(tracks))
	createdAts := make([]time.Time, len(tracks))

	now := time.Now()
	for i, t := range tracks {
		ids[i] = t.ID
		titles[i] = t.Title
		artists[i] = t.Artist
		albums[i] = t.Album
		genres[i] = t.Genre
		durations[i] = t.DurationSec
		energies[i] = t.Energy
		valences[i] = t.Valence
		createdAts[i] = now
	}

	_, err := r.pool.Exec(ctx, query, ids, titles, artists, albums, genres, durations, energies, valences, createdAts)
	if err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}
	return nil
}

// ForGenre returns up to limit tracks of a genre, matched case-insensitively,
// ordered by title.
func (r *TrackRepository) ForGenre(ctx context.Context, genre string, limit int) ([]Track, error) {
	query := `
		SELECT id, title, artist, album, genre, duration_sec, energy, valence, created_at
		FROM tracks
		WHERE lower(genre) = lower($1)
		ORDER BY title, id
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, genre, limit)
	if err != nil {
		return nil, fmt.Errorf("querying genre tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Artist,
			&t.Album,
			&t.Genre,
			&t.DurationSec,
			&t.Energy,
			&t.Valence,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Count returns the number of stored tracks.
func (r *TrackRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return n, nil
}
