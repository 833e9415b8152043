package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/clock"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/store"
)

// Machine owns one profile's Session and NavigationState and applies UI events to
// them. Events are serialized by a mutex; timer callbacks check a token captured when
// they were scheduled and are dropped once the state they belonged to is gone.
type Machine struct {
	store    store.Store
	camera   Camera
	renderer Renderer
	clock    clock.Clock
	resolver *mood.Resolver
	log      *zap.Logger
	cfg      Config

	mu         sync.Mutex
	session    Session
	nav        NavigationState
	generation uint64 // bumped whenever the logged-in identity changes
	seq        uint64 // source of detection and playback tokens
	detection  *detection
	player     player
}

type detection struct {
	token  uint64
	gen    uint64
	stream Stream
	timer  clock.Timer
	result mood.Mood
}

type player struct {
	token  uint64
	ticker clock.Timer
}

// New creates a Machine showing the login page. Call Start to rehydrate persisted state.
func New(deps Deps, cfg Config) *Machine {
	deps = deps.withDefaults()
	cfg = cfg.withDefaults()

	return &Machine{
		store:    deps.Store,
		camera:   deps.Camera,
		renderer: deps.Renderer,
		clock:    deps.Clock,
		resolver: deps.Resolver,
		log:      deps.Logger,
		cfg:      cfg,
		session:  Session{Mood: mood.Default, Playback: Playback{Duration: cfg.TrackDuration}},
		nav:      NavigationState{Page: PageLogin},
	}
}

// Start restores the session from the store: a saved user and mood open the main
// app, a saved user alone opens mood detection, anything else shows the login page.
// A corrupt user record or an unknown saved mood is ignored.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopPlaybackLocked()
	m.cancelDetectionLocked()
	m.generation++
	m.session = Session{Mood: mood.Default, Playback: Playback{Duration: m.cfg.TrackDuration}}
	m.nav = NavigationState{Page: PageLogin}

	raw, ok, err := m.store.Get(ctx, store.UserKey)
	if err != nil {
		m.render()
		return fmt.Errorf("loading saved user: %w", err)
	}
	if !ok {
		m.render()
		return nil
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn("ignoring unreadable saved user", zap.Error(err))
		m.render()
		return nil
	}

	m.session.User = &user
	m.session.LoggedIn = true
	m.routeAfterLogin(ctx)

	m.log.Debug("session restored",
		zap.String("username", user.Username),
		zap.String("state", string(m.nav.State())),
	)
	m.render()
	return nil
}

// ShowSignup switches from the login page to the signup page.
func (m *Machine) ShowSignup() error {
	return m.switchAuthPage(PageSignup)
}

// ShowLogin switches from the signup page to the login page.
func (m *Machine) ShowLogin() error {
	return m.switchAuthPage(PageLogin)
}

func (m *Machine) switchAuthPage(page Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state := m.nav.State(); state != StateLoggedOut {
		return transitionError("show "+string(page), state)
	}
	m.closeModalLocked()
	m.nav.Page = page
	m.render()
	return nil
}

// Login logs in with the given credentials. Both fields must be non-blank; nothing
// else is checked. The user lands on the main app if a mood was saved earlier and on
// mood detection otherwise.
func (m *Machine) Login(ctx context.Context, c Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state := m.nav.State(); state != StateLoggedOut {
		return transitionError("login", state)
	}

	var missing []string
	if isBlank(c.Email) {
		missing = append(missing, "email")
	}
	if isBlank(c.Password) {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		m.renderer.Alert(alertCredentials)
		return &MissingFieldError{Form: "login", Fields: missing}
	}

	email := strings.TrimSpace(c.Email)
	user := User{
		Email:    email,
		Username: usernameFromEmail(email),
		LoginAt:  m.clock.Now().UTC(),
	}
	if err := m.saveUser(ctx, user); err != nil {
		return err
	}

	m.beginSession(user)
	m.routeAfterLogin(ctx)

	m.log.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("state", string(m.nav.State())),
	)
	m.render()
	return nil
}

// Signup registers a user and sends them to mood detection.
func (m *Machine) Signup(ctx context.Context, f SignupForm) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state := m.nav.State(); state != StateLoggedOut {
		return transitionError("signup", state)
	}

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"email", f.Email},
		{"password", f.Password},
		{"username", f.Username},
		{"dob", f.DOB},
	} {
		if isBlank(field.value) {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		m.renderer.Alert(alertSignup)
		return &MissingFieldError{Form: "signup", Fields: missing}
	}

	user := User{
		Email:    strings.TrimSpace(f.Email),
		Username: strings.TrimSpace(f.Username),
		DOB:      strings.TrimSpace(f.DOB),
		SignupAt: m.clock.Now().UTC(),
	}
	if err := m.saveUser(ctx, user); err != nil {
		return err
	}

	m.beginSession(user)
	m.nav = NavigationState{Page: PageMoodDetection}

	m.log.Info("user signed up", zap.String("username", user.Username))
	m.render()
	return nil
}

// Logout ends the session from any state. Playback stops, a held camera is released,
// the saved user and mood are deleted and the login page is shown. The transition
// happens even if the store fails; the store error is returned afterwards.
func (m *Machine) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopPlaybackLocked()
	m.closeModalLocked()
	m.cancelDetectionLocked()

	errUser := m.store.Delete(ctx, store.UserKey)
	errMood := m.store.Delete(ctx, store.MoodKey)

	m.generation++
	m.session = Session{Mood: mood.Default, Playback: Playback{Duration: m.cfg.TrackDuration}}
	m.nav = NavigationState{Page: PageLogin}

	m.log.Info("user logged out")
	m.render()

	if err := errors.Join(errUser, errMood); err != nil {
		return fmt.Errorf("clearing saved session: %w", err)
	}
	return nil
}

// SelectMood applies a mood picked from the selector.
func (m *Machine) SelectMood(ctx context.Context, md mood.Mood) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	resolved, err := m.resolver.ResolveFromSelection(md)
	if err != nil {
		m.renderer.Alert(alertInvalidMood)
		return err
	}
	return m.applyMoodLocked(ctx, resolved, "selection")
}

// AnalyzeMind resolves a mood from free text and applies it.
// The text is used once and not stored.
func (m *Machine) AnalyzeMind(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	resolved, err := m.resolver.ResolveFromKeywords(text)
	if err != nil {
		m.renderer.Alert(alertMindInput)
		return err
	}
	return m.applyMoodLocked(ctx, resolved, "keywords")
}

// SkipMood skips detection and continues with the happy mood.
func (m *Machine) SkipMood(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	return m.applyMoodLocked(ctx, mood.Happy, "skip")
}

// ShowMoodDetection returns to the mood detection page from the main app.
func (m *Machine) ShowMoodDetection() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn {
		return ErrNotLoggedIn
	}
	m.closeModalLocked()
	m.nav = NavigationState{Page: PageMoodDetection}
	m.render()
	return nil
}

// Navigate shows a content section of the main app. Navigating to the current
// section leaves the state unchanged.
func (m *Machine) Navigate(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state := m.nav.State(); state != StateMainApp {
		return transitionError("navigate", state)
	}
	if !section.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSection, string(section))
	}
	m.nav.Section = section
	m.render()
	return nil
}

// OpenModal opens the mood selector or the mind-input dialog, closing any other
// modal first. Facial detection is opened with StartDetection.
func (m *Machine) OpenModal(modal Modal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if modal != ModalMoodSelector && modal != ModalMindInput {
		return transitionError("open "+string(modal), m.nav.State())
	}
	m.closeModalLocked()
	m.nav.Modal = modal
	m.render()
	return nil
}

// CloseModal closes the open modal. Closing facial detection releases the camera.
func (m *Machine) CloseModal() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeModalLocked()
	m.render()
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Close stops timers and releases the camera without touching saved data.
// The machine should not be used afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopPlaybackLocked()
	m.cancelDetectionLocked()
	m.nav.Modal = ModalNone
	m.generation++
}

// applyMoodLocked persists md and moves to the main app.
func (m *Machine) applyMoodLocked(ctx context.Context, md mood.Mood, source string) error {
	if err := m.store.Set(ctx, store.MoodKey, string(md)); err != nil {
		return fmt.Errorf("saving mood: %w", err)
	}

	m.session.Mood = md
	m.enterMainAppLocked()

	m.log.Info("mood resolved", zap.String("mood", string(md)), zap.String("source", source))
	m.render()
	return nil
}

// routeAfterLogin picks the main app or mood detection depending on a saved mood.
func (m *Machine) routeAfterLogin(ctx context.Context) {
	saved, ok, err := m.store.Get(ctx, store.MoodKey)
	if err != nil {
		m.log.Warn("could not read saved mood", zap.Error(err))
		ok = false
	}
	if ok {
		md, err := m.resolver.ResolveFromSelection(mood.Mood(saved))
		if err != nil {
			m.log.Warn("ignoring unknown saved mood", zap.String("mood", saved))
			ok = false
		} else {
			m.session.Mood = md
		}
	}

	if ok {
		m.enterMainAppLocked()
		return
	}
	m.nav = NavigationState{Page: PageMoodDetection}
}

func (m *Machine) enterMainAppLocked() {
	m.closeModalLocked()
	if m.nav.Page != PageMainApp {
		m.nav = NavigationState{Page: PageMainApp, Section: SectionHome}
	}
}

func (m *Machine) beginSession(user User) {
	m.generation++
	m.session = Session{
		User:     &user,
		Mood:     mood.Default,
		LoggedIn: true,
		Playback: Playback{Duration: m.cfg.TrackDuration},
	}
}

func (m *Machine) saveUser(ctx context.Context, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := m.store.Set(ctx, store.UserKey, string(data)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (m *Machine) closeModalLocked() {
	if m.nav.Modal == ModalFacialDetection {
		m.cancelDetectionLocked()
	}
	m.nav.Modal = ModalNone
}

func (m *Machine) snapshotLocked() Snapshot {
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.Playback.Track != nil {
		t := *s.Playback.Track
		s.Playback.Track = &t
	}

	var d Detection
	if m.detection != nil {
		d = Detection{
			Active:   true,
			Camera:   m.detection.stream != nil,
			Detected: m.detection.result,
		}
	}

	return Snapshot{
		State:     m.nav.State(),
		Session:   s,
		Nav:       m.nav,
		Detection: d,
	}
}

func (m *Machine) render() {
	m.renderer.Render(m.snapshotLocked())
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// usernameFromEmail returns the part of the address before the "@".
func usernameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
