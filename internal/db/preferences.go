package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceRepository handles preference database operations.
type PreferenceRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves one preference of a profile.
func (r *PreferenceRepository) Get(ctx context.Context, profileID, key string) (*Preference, error) {
	query := `
		SELECT profile_id, key, value, updated_at
		FROM preferences
		WHERE profile_id = $1 AND key = $2
	`
	var p Preference
	err := r.pool.QueryRow(ctx, query, profileID, key).Scan(
		&p.ProfileID,
		&p.Key,
		&p.Value,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying preference: %w", err)
	}
	return &p, nil
}

// Set creates or updates a preference.
func (r *PreferenceRepository) Set(ctx context.Context, profileID, key, value string) error {
	query := `
		INSERT INTO preferences (profile_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (profile_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, profileID, key, value); err != nil {
		return fmt.Errorf("upserting preference: %w", err)
	}
	return nil
}

// Delete removes a preference. Deleting a missing preference is not an error.
func (r *PreferenceRepository) Delete(ctx context.Context, profileID, key string) error {
	query := `DELETE FROM preferences WHERE profile_id = $1 AND key = $2`
	if _, err := r.pool.Exec(ctx, query, profileID, key); err != nil {
		return fmt.Errorf("deleting preference: %w", err)
	}
	return nil
}

// List returns every preference of a profile, ordered by key.
func (r *PreferenceRepository) List(ctx context.Context, profileID string) ([]Preference, error) {
	query := `
		SELECT profile_id, key, value, updated_at
		FROM preferences
		WHERE profile_id = $1
		ORDER BY key
	`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.ProfileID, &p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
