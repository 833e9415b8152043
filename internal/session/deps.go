package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/clock"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/store"
)

// Stream is an opaque handle to an acquired camera stream.
type Stream interface{}

// Camera acquires and releases the capture device used for mood detection.
type Camera interface {
	// Acquire returns a stream, or an error wrapping ErrPermissionDenied.
	Acquire(ctx context.Context) (Stream, error)
	Release(s Stream)
}

// Renderer receives a snapshot after every transition and user-facing alerts on
// rejected input. It is called with the machine locked and must not call back into it.
type Renderer interface {
	Render(s Snapshot)
	Alert(message string)
}

// Config holds machine timing parameters.
type Config struct {
	DetectionDelay time.Duration // Delay between camera acquisition and detection
	TrackDuration  int           // Ticks in a simulated track
	TickInterval   time.Duration // Time between playback ticks
}

// DefaultConfig returns the standard timings: detection after three
// seconds, a 3:45 track ticking once per second.
func DefaultConfig() Config {
	return Config{
		DetectionDelay: 3 * time.Second,
		TrackDuration:  225,
		TickInterval:   time.Second,
	}
}

// Deps are the collaborators a Machine talks to. Nil fields get inert defaults.
type Deps struct {
	Store    store.Store
	Camera   Camera
	Renderer Renderer
	Clock    clock.Clock
	Resolver *mood.Resolver
	Logger   *zap.Logger
}

type noCamera struct{}

func (noCamera) Acquire(context.Context) (Stream, error) { return nil, ErrPermissionDenied }
func (noCamera) Release(Stream)                          {}

type noRenderer struct{}

func (noRenderer) Render(Snapshot) {}
func (noRenderer) Alert(string)    {}

func (d Deps) withDefaults() Deps {
	if d.Store == nil {
		d.Store = store.NewMemory()
	}
	if d.Camera == nil {
		d.Camera = noCamera{}
	}
	if d.Renderer == nil {
		d.Renderer = noRenderer{}
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Resolver == nil {
		d.Resolver = mood.NewResolver(nil)
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DetectionDelay <= 0 {
		c.DetectionDelay = def.DetectionDelay
	}
	if c.TrackDuration <= 0 {
		c.TrackDuration = def.TrackDuration
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	return c
}
