// Package spotify provides a catalog source backed by the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/justestif/go-tuneaura/internal/catalog"
)

// maxSearchLimit is the largest page Spotify returns for a search.
const maxSearchLimit = 50

// ErrMissingCredentials is returned when the client ID or secret is empty.
var ErrMissingCredentials = errors.New("missing Spotify client ID or secret")

// Client wraps the Spotify API client with catalog lookups.
type Client struct {
	api *spotify.Client
	log *zap.Logger
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, log: log}
}

// Connect authenticates with the client credentials flow. No user is involved, so only
// public catalog endpoints are available.
func Connect(ctx context.Context, clientID, clientSecret string, log *zap.Logger) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := cfg.Token(ctx); err != nil {
		return nil, fmt.Errorf("getting client credentials token: %w", err)
	}

	api := spotify.New(cfg.Client(ctx), spotify.WithRetry(true))
	return New(api, log), nil
}

// TracksForGenre searches for tracks tagged with genre and attaches their audio
// features when Spotify has them.
func (c *Client) TracksForGenre(ctx context.Context, genre string, limit int) ([]catalog.Track, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	result, err := c.api.Search(ctx, genreQuery(genre), spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching genre %q: %w", genre, err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]catalog.Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(ft, genre))
	}

	// Audio features are optional. Tracks without them are left out of mood mixes.
	if err := c.FetchAudioFeatures(ctx, tracks); err != nil {
		c.log.Warn("audio features unavailable", zap.String("genre", genre), zap.Error(err))
	}

	c.log.Debug("genre search", zap.String("genre", genre), zap.Int("tracks", len(tracks)))
	return tracks, nil
}

// genreQuery builds a search query restricted to one genre.
func genreQuery(genre string) string {
	return fmt.Sprintf("genre:%q", strings.ToLower(strings.TrimSpace(genre)))
}

// convertTrack converts a Spotify FullTrack to catalog.Track.
func convertTrack(ft spotify.FullTrack, genre string) catalog.Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	return catalog.Track{
		ID:       ft.ID.String(),
		Title:    ft.Name,
		Artist:   strings.Join(artists, ", "),
		Album:    ft.Album.Name,
		Genre:    genre,
		Duration: int(ft.Duration) / 1000,
	}
}

var _ catalog.Source = (*Client)(nil)
