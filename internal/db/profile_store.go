package db

import (
	"context"
	"errors"

	"github.com/justestif/go-tuneaura/internal/store"
)

// ProfileStore is a store.Store holding one profile's keys in the preferences table.
type ProfileStore struct {
	prefs     *PreferenceRepository
	profileID string
}

// ProfileStore returns the store for one browser profile.
func (db *DB) ProfileStore(profileID string) *ProfileStore {
	return &ProfileStore{prefs: db.Preferences(), profileID: profileID}
}

// Get returns the stored value for key.
func (s *ProfileStore) Get(ctx context.Context, key string) (string, bool, error) {
	p, err := s.prefs.Get(ctx, s.profileID, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &store.Error{Backend: "postgres", Op: "get", Key: key, Err: err}
	}
	return p.Value, true, nil
}

// Set stores value under key.
func (s *ProfileStore) Set(ctx context.Context, key, value string) error {
	if err := s.prefs.Set(ctx, s.profileID, key, value); err != nil {
		return &store.Error{Backend: "postgres", Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes key.
func (s *ProfileStore) Delete(ctx context.Context, key string) error {
	if err := s.prefs.Delete(ctx, s.profileID, key); err != nil {
		return &store.Error{Backend: "postgres", Op: "delete", Key: key, Err: err}
	}
	return nil
}

var _ store.Store = (*ProfileStore)(nil)
