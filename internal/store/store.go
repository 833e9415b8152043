// Package store provides the per-profile key-value storage the player persists its
// session into: the logged-in user and the current mood.
package store

import (
	"context"
	"fmt"
)

// Keys written by the session machine.
const (
	UserKey = "tuneaura_user"
	MoodKey = "tuneaura_mood"
)

// Store is a string key-value store scoped to one browser profile.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Error describes a failed store operation.
type Error struct {
	Backend string // "memory", "file", "badger", "postgres"
	Op      string // "get", "set", "delete", "open"
	Key     string
	Err     error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store error [%s] %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
