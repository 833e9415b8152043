package db

import (
	"time"
)

// Preference is one key/value pair saved for a browser profile.
type Preference struct {
	ProfileID string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Track represents a catalog track.
type Track struct {
	ID          string
	Title       string
	Artist      string
	Album       *string // nullable
	Genre       string
	DurationSec int
	Energy      *float32 // nullable
	Valence     *float32 // nullable
	CreatedAt   time.Time
}
