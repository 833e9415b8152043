// Package session implements the login, mood and navigation state machine behind the
// player UI, plus the simulated playback flag it owns.
package session

import (
	"time"

	"github.com/justestif/go-tuneaura/internal/mood"
)

// Page is the top-level screen that is visible.
type Page string

// Pages. Exactly one is active at a time.
const (
	PageLogin         Page = "login"
	PageSignup        Page = "signup"
	PageMoodDetection Page = "mood-detection"
	PageMainApp       Page = "main-app"
)

// Section is the content area shown inside the main app.
type Section string

// Sections of the main app.
const (
	SectionNone     Section = ""
	SectionHome     Section = "home"
	SectionSearch   Section = "search"
	SectionLibrary  Section = "library"
	SectionSettings Section = "settings"
)

// Sections lists the navigable sections in sidebar order.
func Sections() []Section {
	return []Section{SectionHome, SectionSearch, SectionLibrary, SectionSettings}
}

// Valid reports whether s is a navigable section.
func (s Section) Valid() bool {
	switch s {
	case SectionHome, SectionSearch, SectionLibrary, SectionSettings:
		return true
	}
	return false
}

// Modal is an overlay dialog. At most one is open.
type Modal string

// Modals.
const (
	ModalNone            Modal = ""
	ModalMoodSelector    Modal = "mood-selector"
	ModalMindInput       Modal = "mind-input"
	ModalFacialDetection Modal = "facial-detection"
)

// State is the coarse machine state derived from the active page.
type State string

// Machine states.
const (
	StateLoggedOut    State = "logged-out"
	StateAwaitingMood State = "awaiting-mood"
	StateMainApp      State = "main-app"
)

// NavigationState records which page, section and modal are visible.
type NavigationState struct {
	Page    Page    `json:"page"`
	Section Section `json:"section,omitempty"`
	Modal   Modal   `json:"modal,omitempty"`
}

// State derives the machine state from the page.
func (n NavigationState) State() State {
	switch n.Page {
	case PageMainApp:
		return StateMainApp
	case PageMoodDetection:
		return StateAwaitingMood
	default:
		return StateLoggedOut
	}
}

// User is the persisted identity of the logged-in user.
type User struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	DOB      string    `json:"dob,omitempty"`
	LoginAt  time.Time `json:"loginDate,omitzero"`
	SignupAt time.Time `json:"signupDate,omitzero"`
}

// Credentials is the login form.
type Credentials struct {
	Email    string
	Password string
}

// SignupForm is the signup form. Every field is required.
type SignupForm struct {
	Email    string
	Password string
	Username string
	DOB      string
}

// TrackRef identifies the track shown in the now-playing bar.
type TrackRef struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration,omitempty"` // ticks; zero uses the configured track duration
}

// Playback is the simulated player state.
type Playback struct {
	IsPlaying bool      `json:"isPlaying"`
	Elapsed   int       `json:"elapsed"`
	Duration  int       `json:"duration"`
	Track     *TrackRef `json:"track,omitempty"`
}

// Session is the logged-in user's identity, mood and playback state.
type Session struct {
	User     *User     `json:"user,omitempty"`
	Mood     mood.Mood `json:"mood"`
	LoggedIn bool      `json:"loggedIn"`
	Playback Playback  `json:"playback"`
}

// Detection is the progress of a facial mood detection.
type Detection struct {
	Active   bool      `json:"active"`
	Camera   bool      `json:"camera"`             // a camera stream is held
	Detected mood.Mood `json:"detected,omitempty"` // set once the detector has fired
}

// Snapshot is a copy of everything the renderer needs.
type Snapshot struct {
	State     State           `json:"state"`
	Session   Session         `json:"session"`
	Nav       NavigationState `json:"nav"`
	Detection Detection       `json:"detection"`
}
