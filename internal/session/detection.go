package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/mood"
)

// ErrNoDetection is returned by ConfirmDetection when no detected mood is waiting.
var ErrNoDetection = errors.New("no detected mood to confirm")

// StartDetection opens the facial detection modal, acquires the camera and schedules
// the detector. The detected mood is held until ConfirmDetection applies it. If the
// camera cannot be acquired the modal is closed, the user is alerted and the mood is
// left as it was.
func (m *Machine) StartDetection(ctx context.Context) error {
	m.mu.Lock()
	if !m.session.LoggedIn {
		m.mu.Unlock()
		return ErrNotLoggedIn
	}
	m.closeModalLocked()

	m.seq++
	d := &detection{token: m.seq, gen: m.generation}
	m.detection = d
	m.nav.Modal = ModalFacialDetection
	m.render()
	m.mu.Unlock()

	// Acquire may block on a permission prompt, so it runs unlocked.
	stream, err := m.camera.Acquire(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detection != d {
		// Stopped, replaced or logged out while waiting.
		if err == nil {
			m.camera.Release(stream)
		}
		return nil
	}

	if err != nil {
		m.detection = nil
		m.nav.Modal = ModalNone
		m.renderer.Alert(alertCamera)
		m.log.Warn("camera unavailable", zap.Error(err))
		m.render()
		return fmt.Errorf("starting detection: %w", err)
	}

	d.stream = stream
	d.timer = m.clock.After(m.cfg.DetectionDelay, func() { m.detectionFired(d.gen, d.token) })

	m.log.Debug("detection started", zap.Uint64("token", d.token))
	m.render()
	return nil
}

func (m *Machine) detectionFired(gen, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.detection
	if d == nil || d.token != token || gen != m.generation || d.result != "" {
		return
	}

	d.timer = nil
	d.result = m.resolver.ResolveFromDetection()

	m.log.Debug("mood detected", zap.String("mood", string(d.result)))
	m.render()
}

// ConfirmDetection applies the detected mood, releases the camera and enters the main app.
func (m *Machine) ConfirmDetection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	d := m.detection
	if d == nil || d.result == "" {
		return ErrNoDetection
	}

	detected := d.result
	m.cancelDetectionLocked()
	m.nav.Modal = ModalNone
	return m.applyMoodLocked(ctx, detected, "detection")
}

// StopDetection cancels a running detection and closes its modal.
func (m *Machine) StopDetection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detection == nil && m.nav.Modal != ModalFacialDetection {
		return
	}
	m.cancelDetectionLocked()
	m.nav.Modal = ModalNone
	m.render()
}

// cancelDetectionLocked stops the pending timer and releases the stream. The detection
// is cleared first, so a second call finds nothing to release.
func (m *Machine) cancelDetectionLocked() {
	d := m.detection
	if d == nil {
		return
	}
	m.detection = nil

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.stream != nil {
		m.camera.Release(d.stream)
	}
}

// DetectedMood returns the mood waiting for confirmation, if any.
func (m *Machine) DetectedMood() (mood.Mood, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detection == nil || m.detection.result == "" {
		return "", false
	}
	return m.detection.result, true
}
