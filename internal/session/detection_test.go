package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/store"
)

func TestDetectionConfirm(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	if err := h.m.StartDetection(ctx); err != nil {
		t.Fatalf("StartDetection() error = %v", err)
	}
	s := h.m.Snapshot()
	if s.Nav.Modal != ModalFacialDetection || !s.Detection.Active || !s.Detection.Camera {
		t.Fatalf("after start: %+v", s)
	}
	if _, ok := h.m.DetectedMood(); ok {
		t.Error("mood detected before the delay elapsed")
	}

	h.clock.Advance(2 * time.Second)
	if _, ok := h.m.DetectedMood(); ok {
		t.Error("mood detected early")
	}

	h.clock.Advance(time.Second)
	got, ok := h.m.DetectedMood()
	if !ok || got != mood.Calm {
		t.Fatalf("DetectedMood() = %q, %v; want calm", got, ok)
	}
	if s := h.m.Snapshot(); s.Session.Mood != mood.Happy || s.State != StateAwaitingMood {
		t.Errorf("mood applied before confirmation: %+v", s)
	}

	if err := h.m.ConfirmDetection(ctx); err != nil {
		t.Fatalf("ConfirmDetection() error = %v", err)
	}
	s = h.m.Snapshot()
	if s.Session.Mood != mood.Calm || s.State != StateMainApp || s.Nav.Modal != ModalNone {
		t.Errorf("after confirm: %+v", s)
	}
	if s.Detection.Active {
		t.Error("detection still active after confirm")
	}
	if v, _ := h.stored(t, store.MoodKey); v != "calm" {
		t.Errorf("saved mood = %q, want calm", v)
	}
	h.camera.checkBalanced(t)
	if h.camera.totalReleases() != 1 {
		t.Errorf("releases = %d, want 1", h.camera.totalReleases())
	}
}

func TestConfirmWithoutResult(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	if err := h.m.ConfirmDetection(ctx); !errors.Is(err, ErrNoDetection) {
		t.Errorf("ConfirmDetection() idle error = %v, want ErrNoDetection", err)
	}

	if err := h.m.StartDetection(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.m.ConfirmDetection(ctx); !errors.Is(err, ErrNoDetection) {
		t.Errorf("ConfirmDetection() pending error = %v, want ErrNoDetection", err)
	}
	if !h.m.Snapshot().Detection.Active {
		t.Error("early confirm cancelled the detection")
	}
}

func TestStopDetection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	if err := h.m.StartDetection(ctx); err != nil {
		t.Fatal(err)
	}
	h.m.StopDetection()

	s := h.m.Snapshot()
	if s.Nav.Modal != ModalNone || s.Detection.Active {
		t.Errorf("after stop: %+v", s)
	}
	if h.clock.Pending() != 0 {
		t.Errorf("detection timer still pending")
	}

	h.clock.Advance(10 * time.Second)
	if _, ok := h.m.DetectedMood(); ok {
		t.Error("cancelled detection fired")
	}

	h.m.StopDetection()
	h.m.CloseModal()
	h.camera.checkBalanced(t)
	if h.camera.totalReleases() != 1 {
		t.Errorf("releases = %d, want exactly 1", h.camera.totalReleases())
	}
}

func TestDetectionPermissionDenied(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)
	h.camera.deny = true

	err := h.m.StartDetection(ctx)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("StartDetection() error = %v, want ErrPermissionDenied", err)
	}

	s := h.m.Snapshot()
	if s.Nav.Modal != ModalNone || s.Detection.Active {
		t.Errorf("modal left open after denial: %+v", s)
	}
	if s.Session.Mood != mood.Happy || s.State != StateAwaitingMood {
		t.Errorf("denial changed the session: %+v", s)
	}
	if got := h.renderer.lastAlert(); got != alertCamera {
		t.Errorf("alert = %q, want camera message", got)
	}
	if h.clock.Pending() != 0 {
		t.Error("timer scheduled without a camera")
	}
}

func TestDetectionReplacedByOtherModal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	if err := h.m.StartDetection(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.m.OpenModal(ModalMoodSelector); err != nil {
		t.Fatal(err)
	}

	if s := h.m.Snapshot(); s.Nav.Modal != ModalMoodSelector || s.Detection.Active {
		t.Errorf("after replacing modal: %+v", s)
	}
	h.clock.Advance(5 * time.Second)
	if _, ok := h.m.DetectedMood(); ok {
		t.Error("replaced detection fired")
	}
	h.camera.checkBalanced(t)
}

func TestDetectionRestart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.login(t)

	if err := h.m.StartDetection(ctx); err != nil {
		t.Fatal(err)
	}
	h.clock.Advance(2 * time.Second)
	if err := h.m.StartDetection(ctx); err != nil {
		t.Fatal(err)
	}

	// The first timer would have fired here.
	h.clock.Advance(time.Second)
	if _, ok := h.m.DetectedMood(); ok {
		t.Error("first detection's timer fired after restart")
	}
	h.clock.Advance(2 * time.Second)
	if _, ok := h.m.DetectedMood(); !ok {
		t.Error("second detection did not fire")
	}

	h.m.StopDetection()
	h.camera.checkBalanced(t)
	if h.camera.acquired != 2 {
		t.Errorf("acquired = %d, want 2", h.camera.acquired)
	}
}

func TestDetectionLoggedOut(t *testing.T) {
	h := newHarness(t)
	if err := h.m.StartDetection(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("StartDetection() error = %v, want ErrNotLoggedIn", err)
	}
	if h.camera.acquired != 0 {
		t.Error("camera acquired while logged out")
	}
}

// blockingCamera holds Acquire until released by the test.
type blockingCamera struct {
	*fakeCamera
	entered chan struct{}
	proceed chan struct{}
}

func (c *blockingCamera) Acquire(ctx context.Context) (Stream, error) {
	close(c.entered)
	<-c.proceed
	return c.fakeCamera.Acquire(ctx)
}

func TestDetectionStoppedDuringAcquire(t *testing.T) {
	ctx := context.Background()
	cam := &blockingCamera{
		fakeCamera: newFakeCamera(),
		entered:    make(chan struct{}),
		proceed:    make(chan struct{}),
	}
	m := New(Deps{Camera: cam}, testConfig())
	defer m.Close()

	if err := m.Login(ctx, Credentials{Email: "a@b.c", Password: "p"}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var startErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		startErr = m.StartDetection(ctx)
	}()

	<-cam.entered
	if err := m.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	close(cam.proceed)
	wg.Wait()

	if startErr != nil {
		t.Errorf("StartDetection() error = %v, want nil for a superseded detection", startErr)
	}
	if s := m.Snapshot(); s.Detection.Active || s.Nav.Modal != ModalNone {
		t.Errorf("stale detection resurrected: %+v", s)
	}
	cam.checkBalanced(t)
}
