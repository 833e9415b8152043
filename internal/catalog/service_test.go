package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justestif/go-tuneaura/internal/mood"
)

// mockSource implements Source for testing.
type mockSource struct {
	// tracks maps genre to tracks
	tracks map[string][]Track
	// errors maps genre to errors
	errors map[string]error
	// callCount tracks number of TracksForGenre calls
	callCount atomic.Int32
	// delay simulates network latency
	delay time.Duration

	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func newMockSource() *mockSource {
	return &mockSource{
		tracks: make(map[string][]Track),
		errors: make(map[string]error),
	}
}

func (m *mockSource) add(genre string, ids ...string) {
	for _, id := range ids {
		m.tracks[genre] = append(m.tracks[genre], Track{ID: id, Title: "Song " + id, Artist: "Artist", Genre: genre})
	}
}

func (m *mockSource) TracksForGenre(ctx context.Context, genre string, limit int) ([]Track, error) {
	m.callCount.Add(1)

	m.mu.Lock()
	m.inFlight++
	m.maxSeen = max(m.maxSeen, m.inFlight)
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.errors[genre]; ok {
		return nil, err
	}
	tracks := m.tracks[genre]
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func ids(tracks []Track) string {
	parts := make([]string, len(tracks))
	for i, t := range tracks {
		parts[i] = t.ID
	}
	return strings.Join(parts, ",")
}

func TestForMoodInterleaves(t *testing.T) {
	src := newMockSource()
	// happy: Pop, Dance, Funk, Disco
	src.add("Pop", "p1", "p2", "p3")
	src.add("Dance", "d1", "shared")
	src.add("Funk", "f1")
	src.add("Disco", "shared", "x2")

	svc := NewService(src)
	recs, err := svc.ForMood(context.Background(), mood.Happy)
	if err != nil {
		t.Fatalf("ForMood() error = %v", err)
	}

	if want := "p1,d1,f1,shared,p2,x2,p3"; ids(recs.Tracks) != want {
		t.Errorf("tracks = %s, want %s", ids(recs.Tracks), want)
	}
	if len(recs.Genres) != 4 || recs.Genres[0].Genre != "Pop" || recs.Genres[3].Genre != "Disco" {
		t.Errorf("genres = %+v, want mood genre order", recs.Genres)
	}
	if recs.Mood != mood.Happy {
		t.Errorf("mood = %s", recs.Mood)
	}
}

func TestForMoodPartialFailure(t *testing.T) {
	src := newMockSource()
	src.add("Ambient", "a1")
	src.errors["Classical"] = errors.New("rate limited")

	recs, err := NewService(src).ForMood(context.Background(), mood.Calm)
	if err != nil {
		t.Fatalf("ForMood() error = %v", err)
	}
	if ids(recs.Tracks) != "a1" {
		t.Errorf("tracks = %s, want a1", ids(recs.Tracks))
	}
	if recs.Genres[1].Error == nil {
		t.Error("Classical error not recorded")
	}
}

func TestForMoodNothingFound(t *testing.T) {
	src := newMockSource()
	boom := errors.New("boom")
	src.errors["Lo-fi"] = boom

	_, err := NewService(src).ForMood(context.Background(), mood.Focused)
	if !errors.Is(err, ErrNoTracks) {
		t.Fatalf("ForMood() error = %v, want ErrNoTracks", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("ForMood() error = %v, want it to carry the genre error", err)
	}
}

func TestForMoodInvalid(t *testing.T) {
	_, err := NewService(newMockSource()).ForMood(context.Background(), mood.Mood("meh"))
	if !errors.Is(err, mood.ErrInvalidMood) {
		t.Errorf("ForMood() error = %v, want ErrInvalidMood", err)
	}
}

func TestForMoodConcurrency(t *testing.T) {
	src := newMockSource()
	src.delay = 20 * time.Millisecond
	for _, g := range mood.Party.Genres() {
		src.add(g, g+"-1")
	}

	svc := NewService(src, WithConcurrency(2))
	if _, err := svc.ForMood(context.Background(), mood.Party); err != nil {
		t.Fatal(err)
	}
	if src.maxSeen > 2 {
		t.Errorf("max concurrent lookups = %d, want <= 2", src.maxSeen)
	}
	if got := src.callCount.Load(); got != 4 {
		t.Errorf("calls = %d, want 4", got)
	}
}

func TestForMoodCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(newMockSource()).ForMood(ctx, mood.Sad)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ForMood() error = %v, want context.Canceled", err)
	}
}

func TestWithPerGenre(t *testing.T) {
	src := newMockSource()
	for i := range 10 {
		src.add("Metal", fmt.Sprintf("m%d", i))
	}

	recs, err := NewService(src, WithPerGenre(3)).ForMood(context.Background(), mood.Angry)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs.Tracks) != 3 {
		t.Errorf("len(tracks) = %d, want 3", len(recs.Tracks))
	}
}

func TestSearch(t *testing.T) {
	tracks := []Track{
		{ID: "1", Title: "Golden Hour", Artist: "Luna Park", Genre: "Pop"},
		{ID: "2", Title: "Night Drive", Artist: "Echo Drive", Genre: "EDM"},
		{ID: "3", Title: "Rain", Artist: "Mara Vey", Album: "Golden Days", Genre: "Jazz"},
	}

	tests := []struct {
		query string
		want  string
	}{
		{"", "1,2,3"},
		{"   ", "1,2,3"},
		{"golden", "1,3"},
		{"DRIVE", "2"},
		{"jazz", "3"},
		{"polka", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ids(Search(tracks, tt.query)); got != tt.want {
				t.Errorf("Search(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b", Title: "Bee"}}

	if got, ok := Find(tracks, "b"); !ok || got.Title != "Bee" {
		t.Errorf("Find(b) = %+v, %v", got, ok)
	}
	if _, ok := Find(tracks, "z"); ok {
		t.Error("Find(z) found a track")
	}
}

func TestTrackRef(t *testing.T) {
	tr := Track{ID: "x", Title: "T", Artist: "A", Genre: "Pop", Duration: 200}
	ref := tr.Ref()
	if ref.ID != "x" || ref.Title != "T" || ref.Artist != "A" || ref.Duration != 200 {
		t.Errorf("Ref() = %+v", ref)
	}
}
