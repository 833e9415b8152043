package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/justestif/go-tuneaura/internal/mood"
)

// Defaults for Service.
const (
	DefaultConcurrency = 4
	DefaultPerGenre    = 6
)

// GenreTracks holds the result of one genre lookup.
type GenreTracks struct {
	Genre  string
	Tracks []Track
	Error  error // Non-nil if the lookup failed
}

// Recommendations are the tracks suggested for a mood.
type Recommendations struct {
	Mood   mood.Mood
	Genres []GenreTracks // In the mood's genre order
	Tracks []Track       // Genres interleaved, duplicates removed
}

// Service builds mood recommendations from a Source.
type Service struct {
	source      Source
	concurrency int
	perGenre    int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of genres looked up at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPerGenre sets how many tracks are requested for each genre.
func WithPerGenre(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.perGenre = n
		}
	}
}

// NewService creates a recommendation service.
func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source:      source,
		concurrency: DefaultConcurrency,
		perGenre:    DefaultPerGenre,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForMood looks up every genre of m concurrently and interleaves the results.
// A failing genre is recorded in its GenreTracks and does not fail the batch;
// ErrNoTracks is returned only when nothing at all was found.
func (s *Service) ForMood(ctx context.Context, m mood.Mood) (*Recommendations, error) {
	info, ok := mood.Lookup(m)
	if !ok {
		return nil, fmt.Errorf("recommending for %q: %w", string(m), mood.ErrInvalidMood)
	}

	genres := s.fetchGenres(ctx, info.Genres)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recommending for %s: %w", m, err)
	}

	recs := &Recommendations{
		Mood:   m,
		Genres: genres,
		Tracks: interleave(genres),
	}
	if len(recs.Tracks) == 0 {
		var errs []error
		for _, g := range genres {
			if g.Error != nil {
				errs = append(errs, fmt.Errorf("%s: %w", g.Genre, g.Error))
			}
		}
		return recs, fmt.Errorf("recommending for %s: %w", m, errors.Join(append([]error{ErrNoTracks}, errs...)...))
	}
	return recs, nil
}

// fetchGenres runs the lookups on a worker pool. Results keep the input order.
func (s *Service) fetchGenres(ctx context.Context, genres []string) []GenreTracks {
	results := make([]GenreTracks, len(genres))

	type workItem struct {
		index int
		genre string
	}
	workCh := make(chan workItem, len(genres))
	for i, g := range genres {
		workCh <- workItem{index: i, genre: g}
	}
	close(workCh)

	var wg sync.WaitGroup
	for range min(s.concurrency, len(genres)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				if err := ctx.Err(); err != nil {
					results[work.index] = GenreTracks{Genre: work.genre, Error: err}
					continue
				}

				tracks, err := s.source.TracksForGenre(ctx, work.genre, s.perGenre)
				if err != nil {
					tracks = nil
				}
				results[work.index] = GenreTracks{Genre: work.genre, Tracks: tracks, Error: err}
			}
		}()
	}
	wg.Wait()

	return results
}

// interleave takes one track from each genre in turn, skipping IDs already taken.
func interleave(genres []GenreTracks) []Track {
	var out []Track
	seen := make(map[string]bool)

	for i := 0; ; i++ {
		took := false
		for _, g := range genres {
			if i >= len(g.Tracks) {
				continue
			}
			took = true
			t := g.Tracks[i]
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
		if !took {
			return out
		}
	}
}

// Search returns the tracks whose title, artist, album or genre contains query,
// ignoring case. A blank query returns all tracks.
func Search(tracks []Track, query string) []Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(tracks)
	}

	var out []Track
	for _, t := range tracks {
		for _, field := range []string{t.Title, t.Artist, t.Album, t.Genre} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Find returns the track with the given ID.
func Find(tracks []Track, id string) (Track, bool) {
	i := slices.IndexFunc(tracks, func(t Track) bool { return t.ID == id })
	if i < 0 {
		return Track{}, false
	}
	return tracks[i], true
}
