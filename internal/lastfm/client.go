// Package lastfm looks up the top tracks of a genre tag on Last.fm.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/catalog"
)

const (
	baseURL   = "http://ws.audioscrobbler.com/2.0/"
	userAgent = "tuneaura/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("missing Last.fm API key")

	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// trackNamespace derives stable IDs for tracks without a MusicBrainz ID.
var trackNamespace = uuid.MustParse("0b7d7a52-3c59-4a86-9d0e-5e0c1f6a2b44")

// Client is a Last.fm API client. Tracks have no audio features, so they appear
// in recommendations but never in mood mixes.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	baseURL     string
	retryDelays []time.Duration
	log         *zap.Logger
}

// NewClient creates a Last.fm client.
func NewClient(apiKey string, log *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		retryDelays: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		log:         log,
	}, nil
}

// TracksForGenre returns the top tracks tagged with genre.
func (c *Client) TracksForGenre(ctx context.Context, genre string, limit int) ([]catalog.Track, error) {
	params := url.Values{
		"method":  {"tag.getTopTracks"},
		"tag":     {strings.ToLower(genre)},
		"limit":   {strconv.Itoa(limit)},
		"format":  {"json"},
		"api_key": {c.apiKey},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks for %s: %w", genre, err)
	}

	var resp topTracksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing top tracks response: %w", err)
	}

	tracks := make([]catalog.Track, 0, len(resp.Tracks.Track))
	for _, t := range resp.Tracks.Track {
		if limit > 0 && len(tracks) == limit {
			break
		}
		tracks = append(tracks, convertTrack(t, genre))
	}
	c.log.Debug("lastfm top tracks", zap.String("genre", genre), zap.Int("tracks", len(tracks)))
	return tracks, nil
}

func convertTrack(t topTrack, genre string) catalog.Track {
	id := t.MBID
	if id == "" {
		id = uuid.NewSHA1(trackNamespace, []byte(t.Artist.Name+"\x00"+t.Name)).String()
	}
	duration, _ := strconv.Atoi(t.Duration)
	return catalog.Track{
		ID:       id,
		Title:    t.Name,
		Artist:   t.Artist.Name,
		Genre:    genre,
		Duration: duration,
	}
}

// doRequest performs an HTTP GET request, retrying with backoff while rate limited.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= len(c.retryDelays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		lastErr = err
		c.log.Debug("lastfm rate limited", zap.Int("attempt", attempt+1))
	}

	return nil, lastErr
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	return body, nil
}

var _ catalog.Source = (*Client)(nil)
