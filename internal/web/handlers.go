package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/session"
)

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	profiles  *Profiles
	templates *Templates
	catalog   *catalog.Service
	mixes     catalog.MixConfig
	log       *zap.Logger
}

// NewHandlers creates a new Handlers instance. A nil catalog disables recommendations.
func NewHandlers(profiles *Profiles, templates *Templates, cat *catalog.Service, mixes catalog.MixConfig, log *zap.Logger) *Handlers {
	return &Handlers{
		profiles:  profiles,
		templates: templates,
		catalog:   cat,
		mixes:     mixes,
		log:       log,
	}
}

// actions registers the state machine events. Under /api they answer with JSON,
// elsewhere they redirect back to the page.
func (h *Handlers) actions(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/logout", h.Logout)
	r.Post("/auth/show-signup", h.event((*session.Machine).ShowSignup))
	r.Post("/auth/show-login", h.event((*session.Machine).ShowLogin))

	r.Post("/mood/select", h.SelectMood)
	r.Post("/mood/mind", h.AnalyzeMind)
	r.Post("/mood/skip", h.SkipMood)
	r.Post("/mood/detector", h.event((*session.Machine).ShowMoodDetection))
	r.Post("/mood/detect", h.StartDetection)
	r.Post("/mood/confirm", h.ConfirmDetection)
	r.Post("/mood/stop", h.event(stopDetection))

	r.Post("/nav/{section}", h.Navigate)
	r.Post("/modal/close", h.event(closeModal))
	r.Post("/modal/{modal}", h.OpenModal)

	r.Post("/player/toggle", h.event((*session.Machine).TogglePlayback))
	r.Post("/player/stop", h.event(stopPlayback))
	r.Post("/player/play/{id}", h.PlayTrack)
	r.Post("/player/seek", h.Seek)

	r.Post("/camera", h.SetCameraPermission)
}

func stopDetection(m *session.Machine) error { m.StopDetection(); return nil }
func closeModal(m *session.Machine) error    { m.CloseModal(); return nil }
func stopPlayback(m *session.Machine) error  { m.StopPlayback(); return nil }

// Home renders the page for the profile's current state (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.FromRequest(w, r)
	if err != nil {
		h.log.Error("opening profile", zap.Error(err))
		http.Error(w, "Failed to open profile", http.StatusInternalServerError)
		return
	}

	snap := p.Machine.Snapshot()
	base := PageData{
		Title:       "TuneAura",
		Flash:       flashes(p.view.takeAlerts()),
		CurrentPath: r.URL.Path,
		State:       snap,
	}

	var page string
	var data any
	switch snap.Nav.Page {
	case session.PageSignup:
		page, data = "signup", AuthPageData{PageData: base}
	case session.PageMoodDetection:
		page, data = "mood", h.moodData(base, p)
	case session.PageMainApp:
		page, data = "app", h.appData(r.Context(), base, p, r.URL.Query().Get("q"))
	default:
		page, data = "login", AuthPageData{PageData: base}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		h.log.Error("rendering page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// PlayerPartial renders the now-playing bar on its own (GET /partials/player).
func (h *Handlers) PlayerPartial(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.FromRequest(w, r)
	if err != nil {
		http.Error(w, "Failed to open profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := PageData{State: p.Machine.Snapshot(), CurrentPath: r.URL.Path}
	if err := h.templates.RenderPartial(w, "player", data); err != nil {
		h.log.Error("rendering player", zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// State returns the profile's snapshot as JSON (GET /api/state).
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.FromRequest(w, r)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, stateResponse{Error: "failed to open profile"})
		return
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: p.Machine.Snapshot(), Alerts: p.view.takeAlerts()})
}

// Login handles the login form (POST /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.Login(ctx, session.Credentials{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		})
	})
}

// Signup handles the signup form (POST /auth/signup).
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.Signup(ctx, session.SignupForm{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
			Username: r.FormValue("username"),
			DOB:      r.FormValue("dob"),
		})
	})
}

// Logout clears the saved session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.Logout(ctx)
	})
}

// SelectMood applies a mood picked from the list (POST /mood/select).
func (h *Handlers) SelectMood(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.SelectMood(ctx, mood.Mood(r.FormValue("mood")))
	})
}

// AnalyzeMind resolves a mood from free text (POST /mood/mind).
func (h *Handlers) AnalyzeMind(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.AnalyzeMind(ctx, r.FormValue("text"))
	})
}

// SkipMood continues with the default mood (POST /mood/skip).
func (h *Handlers) SkipMood(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.SkipMood(ctx)
	})
}

// StartDetection opens the camera (POST /mood/detect).
func (h *Handlers) StartDetection(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.StartDetection(ctx)
	})
}

// ConfirmDetection applies the detected mood (POST /mood/confirm).
func (h *Handlers) ConfirmDetection(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		return p.Machine.ConfirmDetection(ctx)
	})
}

// Navigate switches the main app section (POST /nav/{section}).
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	section := session.Section(chi.URLParam(r, "section"))
	h.do(w, r, func(_ context.Context, p *Profile) error {
		return p.Machine.Navigate(section)
	})
}

// OpenModal opens the mood selector or mind input (POST /modal/{modal}).
func (h *Handlers) OpenModal(w http.ResponseWriter, r *http.Request) {
	modal := session.Modal(chi.URLParam(r, "modal"))
	h.do(w, r, func(_ context.Context, p *Profile) error {
		return p.Machine.OpenModal(modal)
	})
}

// PlayTrack plays a recommended track (POST /player/play/{id}).
func (h *Handlers) PlayTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.do(w, r, func(ctx context.Context, p *Profile) error {
		recs, err := h.recommend(ctx, p.Machine.Snapshot().Session.Mood)
		if err != nil && recs == nil {
			return err
		}
		track, ok := catalog.Find(recs.Tracks, id)
		if !ok {
			return errTrackNotFound
		}
		return p.Machine.PlayTrack(track.Ref())
	})
}

// Seek moves the playing track (POST /player/seek).
func (h *Handlers) Seek(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(_ context.Context, p *Profile) error {
		pos, err := strconv.Atoi(r.FormValue("position"))
		if err != nil {
			return errBadPosition
		}
		return p.Machine.Seek(pos)
	})
}

// SetCameraPermission grants or revokes the simulated camera (POST /camera).
func (h *Handlers) SetCameraPermission(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(_ context.Context, p *Profile) error {
		allow, err := strconv.ParseBool(r.FormValue("allow"))
		if err != nil {
			return errBadPermission
		}
		p.Camera.SetPermission(allow)
		return nil
	})
}

// event adapts a machine method with no arguments to a handler.
func (h *Handlers) event(fn func(*session.Machine) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.do(w, r, func(_ context.Context, p *Profile) error {
			return fn(p.Machine)
		})
	}
}

// do runs action against the request's profile and answers with JSON under /api,
// or with a redirect to the page otherwise. Errors the machine did not already
// report through an alert become a flash message.
func (h *Handlers) do(w http.ResponseWriter, r *http.Request, action func(context.Context, *Profile) error) {
	p, err := h.profiles.FromRequest(w, r)
	if err != nil {
		h.log.Error("opening profile", zap.Error(err))
		if isJSON(r) {
			h.writeJSON(w, http.StatusInternalServerError, stateResponse{Error: "failed to open profile"})
			return
		}
		http.Error(w, "Failed to open profile", http.StatusInternalServerError)
		return
	}

	before := p.view.pending()
	err = action(r.Context(), p)
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("handling event", zap.String("path", r.URL.Path), zap.Error(err))
	}

	if isJSON(r) {
		resp := stateResponse{State: p.Machine.Snapshot(), Alerts: p.view.takeAlerts()}
		if err != nil {
			resp.Error = err.Error()
		}
		h.writeJSON(w, status, resp)
		return
	}

	if err != nil && p.view.pending() == before {
		p.view.Alert(messageFor(err))
	}
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// redirectTarget keeps the search query when the form carried one.
func redirectTarget(r *http.Request) string {
	if q := r.FormValue("q"); q != "" {
		return "/?q=" + url.QueryEscape(q)
	}
	return "/"
}

// stateResponse is the body of every /api response.
type stateResponse struct {
	State  session.Snapshot `json:"state"`
	Alerts []string         `json:"alerts,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("writing response", zap.Error(err))
	}
}

func (h *Handlers) moodData(base PageData, p *Profile) MoodPageData {
	var infos []mood.Info
	for _, m := range mood.All() {
		info, _ := mood.Lookup(m)
		infos = append(infos, info)
	}
	return MoodPageData{
		PageData:      base,
		Moods:         infos,
		CameraAllowed: p.Camera.Allowed(),
	}
}

// appData loads what the current section shows: recommendations on home, filtered
// recommendations on search, mood mixes in the library.
func (h *Handlers) appData(ctx context.Context, base PageData, p *Profile, query string) AppPageData {
	data := AppPageData{
		MoodPageData: h.moodData(base, p),
		Sections:     session.Sections(),
		Query:        query,
	}

	section := base.State.Nav.Section
	if section == session.SectionSettings || h.catalog == nil {
		return data
	}

	recs, err := h.recommend(ctx, base.State.Session.Mood)
	if err != nil {
		h.log.Warn("loading recommendations", zap.Error(err))
		data.CatalogError = "No recommendations available right now."
	}
	if recs == nil {
		return data
	}
	data.Recommendations = recs

	switch section {
	case session.SectionSearch:
		data.Results = catalog.Search(recs.Tracks, query)
	case session.SectionLibrary:
		data.Mixes, data.Outliers = catalog.Mixes(recs.Tracks, h.mixes)
	}
	return data
}

func (h *Handlers) recommend(ctx context.Context, m mood.Mood) (*catalog.Recommendations, error) {
	if h.catalog == nil {
		return nil, catalog.ErrNoTracks
	}
	return h.catalog.ForMood(ctx, m)
}

func flashes(alerts []string) []FlashMessage {
	var out []FlashMessage
	for _, a := range alerts {
		out = append(out, FlashMessage{Type: "error", Message: a})
	}
	return out
}
