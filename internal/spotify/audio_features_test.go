package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-tuneaura/internal/catalog"
)

func TestApplyAudioFeatures(t *testing.T) {
	track := catalog.Track{ID: "test123", Title: "Test Track"}
	features := &spotify.AudioFeatures{
		ID:      "test123",
		Energy:  0.8,
		Valence: 0.6,
	}

	applyAudioFeatures(&track, features)

	if track.Energy == nil || *track.Energy != 0.8 {
		t.Errorf("Energy = %v, want 0.8", track.Energy)
	}
	if track.Valence == nil || *track.Valence != 0.6 {
		t.Errorf("Valence = %v, want 0.6", track.Valence)
	}

	// The track must not alias the response.
	features.Energy = 0.1
	if *track.Energy != 0.8 {
		t.Error("track energy changed with the source features")
	}
}

func TestApplyAudioFeaturesZeroValues(t *testing.T) {
	track := catalog.Track{ID: "silent"}
	applyAudioFeatures(&track, &spotify.AudioFeatures{ID: "silent"})

	if !track.HasFeatures() {
		t.Fatal("zero-valued features should still count as present")
	}
	if *track.Energy != 0 || *track.Valence != 0 {
		t.Errorf("features = %v, %v; want zeros", *track.Energy, *track.Valence)
	}
}

func TestAudioFeaturesBatchCount(t *testing.T) {
	tests := []struct {
		name          string
		totalTracks   int
		expectedCalls int
	}{
		{"empty", 0, 0},
		{"single track", 1, 1},
		{"exactly 100", 100, 1},
		{"101 tracks", 101, 2},
		{"250 tracks", 250, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			for i := 0; i < tt.totalTracks; i += maxTracksPerRequest {
				calls++
			}
			if calls != tt.expectedCalls {
				t.Errorf("got %d API calls, want %d", calls, tt.expectedCalls)
			}
		})
	}
}
