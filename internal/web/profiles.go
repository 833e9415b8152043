package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/camera"
	"github.com/justestif/go-tuneaura/internal/clock"
	"github.com/justestif/go-tuneaura/internal/session"
	"github.com/justestif/go-tuneaura/internal/store"
)

const (
	profileCookieName = "tuneaura_profile"
	defaultProfileTTL = 24 * time.Hour
	defaultCookieAge  = 365 * 24 * time.Hour
)

// StoreFactory returns the store that persists the profile with the given ID.
type StoreFactory func(profileID string) (store.Store, error)

// MemoryStores gives every profile its own in-memory store.
func MemoryStores(string) (store.Store, error) {
	return store.NewMemory(), nil
}

// Profile is one browser's player: a state machine, its simulated camera and the
// alerts it raised since the last page.
type Profile struct {
	ID      string
	Machine *session.Machine
	Camera  *camera.Simulated
	view    *view
}

// view is the session.Renderer of a profile. Pages are built from Machine.Snapshot
// on each request, so only alerts are kept, until the next page takes them.
type view struct {
	mu      sync.Mutex
	renders int
	alerts  []string
}

func (v *view) Render(session.Snapshot) {
	v.mu.Lock()
	v.renders++
	v.mu.Unlock()
}

func (v *view) Alert(msg string) {
	v.mu.Lock()
	v.alerts = append(v.alerts, msg)
	v.mu.Unlock()
}

func (v *view) pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.alerts)
}

// takeAlerts returns and clears the pending alerts.
func (v *view) takeAlerts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	alerts := v.alerts
	v.alerts = nil
	return alerts
}

// ProfilesConfig configures a profile registry.
type ProfilesConfig struct {
	IdleTTL       time.Duration // Idle profiles are closed after this long
	CookieMaxAge  time.Duration // Lifetime of the profile cookie, renewed on every request
	Stores        StoreFactory  // Defaults to MemoryStores
	Player        session.Config
	CameraAllowed bool // Initial permission of each profile's camera
	Clock         clock.Clock
	Logger        *zap.Logger
}

// Profiles maps profile cookies to running state machines. Profiles idle for longer
// than the TTL are evicted and their machines closed.
type Profiles struct {
	cfg   ProfilesConfig
	items *cache.Cache
	mu    sync.Mutex // serializes creation
	log   *zap.Logger
}

// NewProfiles creates an empty registry.
func NewProfiles(cfg ProfilesConfig) *Profiles {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultProfileTTL
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = defaultCookieAge
	}
	if cfg.Stores == nil {
		cfg.Stores = MemoryStores
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	p := &Profiles{
		cfg:   cfg,
		items: cache.New(cfg.IdleTTL, cfg.IdleTTL/2),
		log:   cfg.Logger,
	}
	p.items.OnEvicted(func(id string, v interface{}) {
		v.(*Profile).Machine.Close()
		p.log.Debug("profile closed", zap.String("profile", id))
	})
	return p
}

// Get returns the profile with the given ID and refreshes its idle timer.
func (p *Profiles) Get(id string) (*Profile, bool) {
	v, ok := p.items.Get(id)
	if !ok {
		return nil, false
	}
	prof := v.(*Profile)
	p.items.Set(id, prof, cache.DefaultExpiration)
	return prof, true
}

// Open returns the running profile for id, or starts one. An empty or malformed id
// gets a fresh random ID. Starting restores whatever the profile's store holds.
func (p *Profiles) Open(ctx context.Context, id string) (*Profile, error) {
	if prof, ok := p.Get(id); ok {
		return prof, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if prof, ok := p.Get(id); ok {
		return prof, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	st, err := p.cfg.Stores(id)
	if err != nil {
		return nil, fmt.Errorf("opening store for profile %s: %w", id, err)
	}

	v := &view{}
	cam := camera.NewSimulated(p.cfg.CameraAllowed)
	m := session.New(session.Deps{
		Store:    st,
		Camera:   cam,
		Renderer: v,
		Clock:    p.cfg.Clock,
		Logger:   p.log.With(zap.String("profile", id)),
	}, p.cfg.Player)

	if err := m.Start(ctx); err != nil {
		// The profile still works; it just starts logged out.
		p.log.Warn("restoring profile", zap.String("profile", id), zap.Error(err))
	}

	prof := &Profile{ID: id, Machine: m, Camera: cam, view: v}
	p.items.Set(id, prof, cache.DefaultExpiration)
	p.log.Debug("profile opened", zap.String("profile", id))
	return prof, nil
}

// FromRequest opens the profile named by the request cookie and renews the cookie,
// so a browser keeps its saved profile for as long as it keeps coming back.
func (p *Profiles) FromRequest(w http.ResponseWriter, r *http.Request) (*Profile, error) {
	var id string
	if c, err := r.Cookie(profileCookieName); err == nil {
		id = c.Value
	}

	prof, err := p.Open(r.Context(), id)
	if err != nil {
		return nil, err
	}
	setCookie(w, prof.ID, p.cfg.CookieMaxAge)
	return prof, nil
}

// Len returns the number of live profiles.
func (p *Profiles) Len() int {
	return p.items.ItemCount()
}

// Close closes every profile.
func (p *Profiles) Close() {
	for id := range p.items.Items() {
		p.items.Delete(id)
	}
}

// setCookie sets the profile cookie on the response.
func setCookie(w http.ResponseWriter, id string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}
