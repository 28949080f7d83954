// Package authflow drives the two-mode (sign-in / sign-up) credential form.
package authflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"psyplanner/internal/backend"
	"psyplanner/internal/session"
)

type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

func (m Mode) String() string {
	if m == ModeSignUp {
		return "sign-up"
	}
	return "sign-in"
}

const (
	// msgPasswordMismatch is a local rejection; no network call is issued.
	msgPasswordMismatch = "passwords do not match"
	// fallbackDisplayName is used when a sign-up leaves both name fields
	// empty.
	fallbackDisplayName = "User"
	// fallbackMessage covers failures with no recognizable message.
	fallbackMessage = "an error occurred"
)

// Flow is the credential form state machine. Initial mode is sign-in.
type Flow struct {
	sessions *session.Store

	mu sync.Mutex

	mode Mode

	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string

	errMsg  string
	loading bool
}

func New(sessions *session.Store) *Flow {
	return &Flow{sessions: sessions}
}

func (f *Flow) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// ToggleMode switches sign-in <-> sign-up, clearing any error but keeping
// everything the user has typed.
func (f *Flow) ToggleMode() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == ModeSignIn {
		f.mode = ModeSignUp
	} else {
		f.mode = ModeSignIn
	}
	f.errMsg = ""
}

func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// DisplayName computes the sign-up display name: trimmed "first last", with a
// fixed fallback when both are empty.
func (f *Flow) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
	if name == "" {
		return fallbackDisplayName
	}
	return name
}

// Submit runs the round trip for the current mode. Sign-up first checks the
// password confirmation locally and never touches the network on mismatch.
// Re-entrant calls while one is in flight return ErrInFlight and are
// otherwise no-ops.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrInFlight
	}
	f.errMsg = ""

	mode := f.mode
	if mode == ModeSignUp && f.Password != f.PasswordConfirm {
		f.errMsg = msgPasswordMismatch
		f.mu.Unlock()
		return errors.New(msgPasswordMismatch)
	}

	email, password, displayName := f.Email, f.Password, f.DisplayName()
	f.loading = true
	f.mu.Unlock()

	var err error
	if mode == ModeSignIn {
		_, err = f.sessions.SignIn(ctx, email, password)
	} else {
		_, err = f.sessions.SignUp(ctx, email, password, displayName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.errMsg = Message(err)
		return err
	}
	return nil
}

// ErrInFlight gates re-entrant submits.
var ErrInFlight = errors.New("submit already in flight")

// Message maps a failure to the string shown to the user: the identity
// provider's rejection verbatim when recognizable, a fixed fallback
// otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var aerr *backend.AuthError
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	return fallbackMessage
}
