// Package camera provides a simulated capture device for mood detection.
package camera

import (
	"context"
	"fmt"
	"sync"

	"github.com/justestif/go-tuneaura/internal/session"
)

// Stream is a handle returned by Simulated.Acquire.
type Stream struct {
	ID int
}

// Simulated grants or denies camera access according to a permission flag and counts
// open streams. It never captures frames.
type Simulated struct {
	mu       sync.Mutex
	allowed  bool
	nextID   int
	open     map[int]bool
	acquired int
	released int
}

// NewSimulated creates a camera that grants access when allowed is true.
func NewSimulated(allowed bool) *Simulated {
	return &Simulated{allowed: allowed, open: make(map[int]bool)}
}

// SetPermission changes whether future Acquire calls succeed.
func (c *Simulated) SetPermission(allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowed = allowed
}

// Allowed reports whether Acquire currently succeeds.
func (c *Simulated) Allowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allowed
}

// Acquire opens a stream or returns an error wrapping session.ErrPermissionDenied.
func (c *Simulated) Acquire(ctx context.Context) (session.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquiring camera: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.allowed {
		return nil, fmt.Errorf("acquiring camera: %w", session.ErrPermissionDenied)
	}
	c.nextID++
	c.acquired++
	c.open[c.nextID] = true
	return Stream{ID: c.nextID}, nil
}

// Release stops the stream. Releasing an unknown or already released stream does nothing.
func (c *Simulated) Release(s session.Stream) {
	st, ok := s.(Stream)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open[st.ID] {
		return
	}
	delete(c.open, st.ID)
	c.released++
}

// Open returns the number of streams acquired and not yet released.
func (c *Simulated) Open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.open)
}

// Counts returns how many streams were acquired and released.
func (c *Simulated) Counts() (acquired, released int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquired, c.released
}

var _ session.Camera = (*Simulated)(nil)
