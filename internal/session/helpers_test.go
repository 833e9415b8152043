package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/justestif/go-tuneaura/internal/clock"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/store"
)

// fakeCamera counts acquisitions and releases.
type fakeCamera struct {
	mu       sync.Mutex
	deny     bool
	next     int
	acquired int
	released map[int]int // stream id -> release count
}

func newFakeCamera() *fakeCamera {
	return &fakeCamera{released: make(map[int]int)}
}

func (c *fakeCamera) Acquire(context.Context) (Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deny {
		return nil, ErrPermissionDenied
	}
	c.next++
	c.acquired++
	return c.next, nil
}

func (c *fakeCamera) Release(s Stream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released[s.(int)]++
}

func (c *fakeCamera) totalReleases() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, count := range c.released {
		n += count
	}
	return n
}

// checkBalanced fails if any stream was released other than exactly once.
func (c *fakeCamera) checkBalanced(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := 1; id <= c.acquired; id++ {
		if n := c.released[id]; n != 1 {
			t.Errorf("stream %d released %d times, want 1", id, n)
		}
	}
}

// recordingRenderer keeps every snapshot and alert, and checks the state invariants
// on each render.
type recordingRenderer struct {
	t      *testing.T
	mu     sync.Mutex
	frames []Snapshot
	alerts []string
}

func (r *recordingRenderer) Render(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, s)
	checkInvariants(r.t, s)
}

func (r *recordingRenderer) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

func (r *recordingRenderer) lastAlert() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.alerts) == 0 {
		return ""
	}
	return r.alerts[len(r.alerts)-1]
}

func (r *recordingRenderer) renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func checkInvariants(t *testing.T, s Snapshot) {
	t.Helper()

	if s.State == StateMainApp {
		if !s.Session.LoggedIn || s.Session.User == nil {
			t.Errorf("main app shown without a logged-in user: %+v", s)
		}
		if !s.Session.Mood.Valid() {
			t.Errorf("main app shown with invalid mood %q", s.Session.Mood)
		}
	}
	if s.State != StateMainApp && s.Nav.Section != SectionNone {
		t.Errorf("section %q set outside the main app", s.Nav.Section)
	}
	if s.Detection.Camera && s.Nav.Modal != ModalFacialDetection {
		t.Errorf("camera held with modal %q", s.Nav.Modal)
	}
	if !s.Session.LoggedIn && s.Session.Playback.IsPlaying {
		t.Error("playing while logged out")
	}
	p := s.Session.Playback
	if p.Elapsed < 0 || (p.Duration > 0 && p.Elapsed >= p.Duration) {
		t.Errorf("elapsed %d outside [0, %d)", p.Elapsed, p.Duration)
	}
}

// failingStore fails every operation once armed.
type failingStore struct {
	store.Store
	fail bool
}

var errDisk = errors.New("disk unavailable")

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.fail {
		return &store.Error{Backend: "test", Op: "set", Key: key, Err: errDisk}
	}
	return s.Store.Set(ctx, key, value)
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if s.fail {
		return &store.Error{Backend: "test", Op: "delete", Key: key, Err: errDisk}
	}
	return s.Store.Delete(ctx, key)
}

// seqRand returns the queued values in order.
type seqRand struct{ vals []int }

func (r *seqRand) IntN(n int) int {
	v := r.vals[0] % n
	r.vals = r.vals[1:]
	return v
}

type harness struct {
	m        *Machine
	store    *store.Memory
	camera   *fakeCamera
	renderer *recordingRenderer
	clock    *clock.Manual
}

func testConfig() Config {
	return Config{DetectionDelay: 3 * time.Second, TrackDuration: 5, TickInterval: time.Second}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:    store.NewMemory(),
		camera:   newFakeCamera(),
		renderer: &recordingRenderer{t: t},
		clock:    clock.NewManual(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)),
	}
	h.m = New(Deps{
		Store:    h.store,
		Camera:   h.camera,
		Renderer: h.renderer,
		Clock:    h.clock,
		Resolver: mood.NewResolver(&seqRand{vals: []int{1, 3, 0, 2, 4}}),
	}, testConfig())
	t.Cleanup(h.m.Close)
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	if err := h.m.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}

// mainApp logs in and selects a mood.
func (h *harness) mainApp(t *testing.T) {
	t.Helper()
	h.login(t)
	if err := h.m.SelectMood(context.Background(), mood.Calm); err != nil {
		t.Fatalf("SelectMood() error = %v", err)
	}
}

func (h *harness) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("store.Get(%q) error = %v", key, err)
	}
	return v, ok
}
