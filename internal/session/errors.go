package session

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrPermissionDenied is returned when camera access is refused.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrNotLoggedIn is returned for operations that need a logged-in session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidTransition is returned when an event is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnknownSection is returned when navigating to a section that does not exist.
	ErrUnknownSection = errors.New("unknown section")
)

// MissingFieldError reports required form fields that were left blank.
type MissingFieldError struct {
	Form   string   // "login" or "signup"
	Fields []string // Blank fields, in form order
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s form: missing %s", e.Form, strings.Join(e.Fields, ", "))
}

// User-facing messages passed to Renderer.Alert.
const (
	alertCredentials = "Please enter valid credentials"
	alertSignup      = "Please fill in all fields"
	alertMindInput   = "Please share your thoughts"
	alertCamera      = "Unable to access camera. Please ensure you have granted camera permissions."
	alertInvalidMood = "Please pick one of the listed moods"
)

func transitionError(event string, from State) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, from)
}
