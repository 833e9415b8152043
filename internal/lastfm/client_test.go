package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func topTracks(names ...string) topTracksResponse {
	var resp topTracksResponse
	for i, n := range names {
		t := topTrack{Name: n, Duration: "200", URL: "https://www.last.fm/music/x/_/" + n}
		t.Artist.Name = "Artist"
		if i == 0 {
			t.MBID = "mbid-" + n
		}
		resp.Tracks.Track = append(resp.Tracks.Track, t)
	}
	return resp
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		apiKey:      "test-api-key",
		httpClient:  server.Client(),
		baseURL:     server.URL + "/",
		retryDelays: []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
		log:         zap.NewNop(),
	}
}

func TestTracksForGenre(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		response  any
		wantNames []string
		wantErr   error
	}{
		{
			name:      "tracks returned",
			limit:     5,
			response:  topTracks("Alpha", "Beta"),
			wantNames: []string{"Alpha", "Beta"},
		},
		{
			name:      "limit applied",
			limit:     1,
			response:  topTracks("Alpha", "Beta", "Gamma"),
			wantNames: []string{"Alpha"},
		},
		{
			name:      "empty tag",
			limit:     5,
			response:  topTracksResponse{},
			wantNames: []string{},
		},
		{
			name:     "invalid API key",
			limit:    5,
			response: apiError{Error: 10, Message: "Invalid API key"},
			wantErr:  ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("method") != "tag.getTopTracks" {
					t.Errorf("unexpected method: %s", q.Get("method"))
				}
				if q.Get("tag") != "lo-fi" {
					t.Errorf("tag = %q, want lowercased genre", q.Get("tag"))
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(tt.response)
			})

			tracks, err := client.TracksForGenre(context.Background(), "Lo-fi", tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("TracksForGenre() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if len(tracks) != len(tt.wantNames) {
				t.Fatalf("TracksForGenre() got %d tracks, want %d", len(tracks), len(tt.wantNames))
			}
			for i, track := range tracks {
				if track.Title != tt.wantNames[i] {
					t.Errorf("track[%d].Title = %s, want %s", i, track.Title, tt.wantNames[i])
				}
				if track.Genre != "Lo-fi" || track.Duration != 200 || track.HasFeatures() {
					t.Errorf("track[%d] = %+v", i, track)
				}
			}
		})
	}
}

func TestConvertTrackIDs(t *testing.T) {
	var withMBID, without topTrack
	withMBID.MBID = "abc"
	without.Name = "Song"
	without.Artist.Name = "Band"

	if got := convertTrack(withMBID, "Pop").ID; got != "abc" {
		t.Errorf("ID = %q, want the MBID", got)
	}
	a := convertTrack(without, "Pop").ID
	b := convertTrack(without, "Rock").ID
	if a == "" || a != b {
		t.Errorf("derived IDs %q and %q should be equal and non-empty", a, b)
	}
}

func TestTracksForGenre_RateLimitRetry(t *testing.T) {
	var requestCount atomic.Int32

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		w.Header().Set("Content-Type", "application/json")

		// Fail first 2 requests with rate limit, succeed on 3rd
		if count < 3 {
			json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
			return
		}
		json.NewEncoder(w).Encode(topTracks("Alpha"))
	})

	tracks, err := client.TracksForGenre(context.Background(), "Lo-fi", 5)
	if err != nil {
		t.Fatalf("TracksForGenre() error = %v", err)
	}
	if len(tracks) != 1 {
		t.Errorf("got %d tracks, want 1", len(tracks))
	}
	if count := requestCount.Load(); count != 3 {
		t.Errorf("Expected 3 requests, got %d", count)
	}
}

func TestTracksForGenre_RateLimitExhausted(t *testing.T) {
	var requestCount atomic.Int32

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
	})

	_, err := client.TracksForGenre(context.Background(), "Lo-fi", 5)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("TracksForGenre() error = %v, want ErrRateLimited", err)
	}

	// 1 initial + 3 retries
	if count := requestCount.Load(); count != 4 {
		t.Errorf("Expected 4 requests, got %d", count)
	}
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient("", nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("NewClient(\"\") error = %v, want ErrMissingAPIKey", err)
	}

	client, err := NewClient("test-key", nil)
	if err != nil {
		t.Fatal(err)
	}
	if client.apiKey != "test-key" || client.httpClient == nil || client.baseURL != baseURL {
		t.Errorf("NewClient() = %+v", client)
	}
	if len(client.retryDelays) != 3 {
		t.Errorf("retry delays = %v", client.retryDelays)
	}
}
