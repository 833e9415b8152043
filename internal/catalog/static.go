package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/justestif/go-tuneaura/internal/mood"
)

// trackNamespace derives stable track IDs for the built-in catalog.
var trackNamespace = uuid.MustParse("6f1c3a1e-8d5b-4f0e-9a57-2b8f4d7c9e10")

var (
	titleWords = []string{
		"Midnight", "Golden", "Electric", "Velvet", "Neon", "Paper", "Silver", "Summer",
		"Ocean", "Wild", "Quiet", "Crimson", "Falling", "Northern", "Hollow", "Bright",
	}
	titleNouns = []string{
		"Lights", "Heart", "Skyline", "Echoes", "Road", "Dreams", "Waves", "Fire",
		"Letters", "Garden", "Signal", "Rain", "Horizon", "Static", "Mirrors", "Bloom",
	}
	artists = []string{
		"Luna Park", "The Satellites", "Mara Vey", "Echo Drive", "Kite Harbor", "Nova Lane",
		"Iris & The Tides", "Sundial", "Glass Animals Club", "Rowan Gray", "Polar Youth", "Amber Fields",
	}
)

// Static is a deterministic built-in catalog. Every genre yields the same tracks on
// every call, with audio features centred on the moods that list the genre.
type Static struct {
	perGenre int
}

// NewStatic creates a built-in catalog holding perGenre tracks for each genre.
func NewStatic(perGenre int) *Static {
	if perGenre <= 0 {
		perGenre = DefaultPerGenre
	}
	return &Static{perGenre: perGenre}
}

// TracksForGenre returns up to limit tracks for genre.
func (s *Static) TracksForGenre(ctx context.Context, genre string, limit int) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, fmt.Errorf("static catalog: empty genre")
	}

	n := s.perGenre
	if limit > 0 && limit < n {
		n = limit
	}

	energy, valence := genreProfile(genre)
	tracks := make([]Track, n)
	for i := range tracks {
		id := uuid.NewSHA1(trackNamespace, []byte(fmt.Sprintf("%s/%d", strings.ToLower(genre), i)))
		b := id[:]

		e := jitter(energy, b[0])
		v := jitter(valence, b[1])
		tracks[i] = Track{
			ID:       id.String(),
			Title:    titleWords[int(b[2])%len(titleWords)] + " " + titleNouns[int(b[3])%len(titleNouns)],
			Artist:   artists[int(b[4])%len(artists)],
			Album:    genre + " Sessions",
			Genre:    genre,
			Duration: 150 + int(b[5])%150,
			Energy:   &e,
			Valence:  &v,
		}
	}
	return tracks, nil
}

// AllTracks returns every built-in track across the genres of all moods.
func (s *Static) AllTracks(ctx context.Context) ([]Track, error) {
	var out []Track
	seen := make(map[string]bool)
	for _, m := range mood.All() {
		for _, g := range m.Genres() {
			if seen[g] {
				continue
			}
			seen[g] = true
			tracks, err := s.TracksForGenre(ctx, g, s.perGenre)
			if err != nil {
				return nil, err
			}
			out = append(out, tracks...)
		}
	}
	return out, nil
}

// genreProfile averages the feature profiles of the moods that list genre.
func genreProfile(genre string) (energy, valence float64) {
	var n float64
	for _, m := range mood.All() {
		for _, g := range m.Genres() {
			if !strings.EqualFold(g, genre) {
				continue
			}
			e, v, _ := mood.Profile(m)
			energy += e
			valence += v
			n++
		}
	}
	if n == 0 {
		return 0.5, 0.5
	}
	return energy / n, valence / n
}

// jitter moves v by up to ±0.08 based on b and keeps it in [0, 1].
func jitter(v float64, b byte) float32 {
	out := v + (float64(b)/255-0.5)*0.16
	return float32(min(max(out, 0), 1))
}

var _ Source = (*Static)(nil)
