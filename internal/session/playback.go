package session

import (
	"go.uber.org/zap"
)

// StartPlayback starts the simulated player. Starting while already playing does nothing.
func (m *Machine) StartPlayback() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	if m.session.Playback.IsPlaying {
		return nil
	}
	m.startPlaybackLocked()
	m.render()
	return nil
}

// StopPlayback stops the player and rewinds it. Stopping a stopped player does nothing.
func (m *Machine) StopPlayback() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.Playback.IsPlaying {
		return
	}
	m.stopPlaybackLocked()
	m.render()
}

// TogglePlayback starts a stopped player or stops a playing one.
func (m *Machine) TogglePlayback() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Playback.IsPlaying {
		m.stopPlaybackLocked()
		m.render()
		return nil
	}
	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	m.startPlaybackLocked()
	m.render()
	return nil
}

// PlayTrack makes t the now-playing track and plays it from the start.
func (m *Machine) PlayTrack(t TrackRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}

	m.stopPlaybackLocked()
	track := t
	m.session.Playback.Track = &track
	m.session.Playback.Duration = m.cfg.TrackDuration
	if t.Duration > 0 {
		m.session.Playback.Duration = t.Duration
	}
	m.startPlaybackLocked()

	m.log.Debug("track started", zap.String("title", t.Title), zap.String("artist", t.Artist))
	m.render()
	return nil
}

// Seek moves the playing track to position, clamped into [0, duration).
func (m *Machine) Seek(position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &m.session.Playback
	if !p.IsPlaying {
		return transitionError("seek", m.nav.State())
	}
	p.Elapsed = min(max(position, 0), p.Duration-1)
	m.render()
	return nil
}

func (m *Machine) startPlaybackLocked() {
	p := &m.session.Playback
	if p.Duration <= 0 {
		p.Duration = m.cfg.TrackDuration
	}
	p.IsPlaying = true

	m.seq++
	token, gen := m.seq, m.generation
	m.player.token = token
	m.player.ticker = m.clock.Every(m.cfg.TickInterval, func() { m.tick(gen, token) })
}

// stopPlaybackLocked cancels the ticker and rewinds. The token is cleared with the
// ticker, so the ticker is stopped at most once and late ticks are ignored.
func (m *Machine) stopPlaybackLocked() {
	if m.player.ticker != nil {
		m.player.ticker.Stop()
		m.player.ticker = nil
	}
	m.player.token = 0
	m.session.Playback.IsPlaying = false
	m.session.Playback.Elapsed = 0
}

func (m *Machine) tick(gen, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || token != m.player.token || !m.session.Playback.IsPlaying {
		return
	}

	p := &m.session.Playback
	p.Elapsed++
	if p.Elapsed >= p.Duration {
		m.log.Debug("track finished", zap.Int("duration", p.Duration))
		m.stopPlaybackLocked()
	}
	m.render()
}
