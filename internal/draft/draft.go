// Package draft implements the new-record form controller shared by every
// "add X" workflow: field state, validation, defaults, and a gated submit
// that tags the record with the active session's user id.
package draft

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"psyplanner/internal/backend"
	"psyplanner/internal/session"
)

// Kind selects the field schema the controller operates over.
type Kind int

const (
	KindSession Kind = iota
	KindPayment
	KindNote
	KindClient
)

func (k Kind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindPayment:
		return "payment"
	case KindNote:
		return "note"
	case KindClient:
		return "client"
	}
	return "unknown"
}

// Table returns the record-store table the kind persists into.
func (k Kind) Table() string {
	switch k {
	case KindSession:
		return "sessions"
	case KindPayment:
		return "payments"
	case KindNote:
		return "notes"
	case KindClient:
		return "clients"
	}
	return ""
}

type schema struct {
	required []string
	optional []string
	// defaults are applied before validation and submission; they are not
	// user-editable unless the field also appears in required/optional.
	defaults map[string]string
}

var schemas = map[Kind]schema{
	KindSession: {
		required: []string{"client_id", "session_date", "session_time"},
		optional: []string{"duration", "session_type", "comment"},
		defaults: map[string]string{
			"duration":     "60",
			"session_type": "Active session",
		},
	},
	KindPayment: {
		required: []string{"client_id", "amount", "payment_date"},
		optional: []string{"currency", "comment"},
		defaults: map[string]string{
			"currency": "RUB",
		},
	},
	KindNote: {
		required: []string{"client_id", "content"},
	},
	KindClient: {
		required: []string{"full_name"},
		optional: []string{"phone", "email", "comment"},
	},
}

// fieldLabels name fields in user-facing validation messages.
var fieldLabels = map[string]string{
	"client_id":    "client",
	"session_date": "date",
	"session_time": "time",
	"payment_date": "date",
	"amount":       "amount",
	"duration":     "duration",
	"content":      "content",
	"full_name":    "full name",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

var (
	// ErrNoSession rejects a submit attempted with no active session. No
	// network call is made.
	ErrNoSession = errors.New("sign in to continue")
	// ErrSubmitInFlight gates re-entrant submits; callers treat it as a
	// no-op, not a failure to surface.
	ErrSubmitInFlight = errors.New("submit already in flight")
)

// FallbackMessage is shown when a failure carries no usable message of its
// own.
const FallbackMessage = "an error occurred"

type FieldError struct {
	Field   string
	Message string
}

// ValidationError is a purely local rejection; no network call was issued.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Controller owns one in-progress draft. It is safe for concurrent use: the
// UI reads state while a submit command runs on another goroutine.
type Controller struct {
	kind     Kind
	sessions *session.Store
	records  backend.RecordStore

	mu        sync.Mutex
	fields    map[string]string
	submitErr string
	loading   bool
}

func New(kind Kind, sessions *session.Store, records backend.RecordStore) *Controller {
	return &Controller{
		kind:     kind,
		sessions: sessions,
		records:  records,
		fields:   map[string]string{},
	}
}

func (c *Controller) Kind() Kind { return c.kind }

// SetField records a local edit. It never performs I/O; its only side effect
// beyond the field itself is dropping any retained submit error.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = value
	c.submitErr = ""
}

func (c *Controller) Field(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields[name]
}

// Err returns the message retained from the last failed submit, if any.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitErr
}

// Loading reports whether a submit round trip is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Reset discards the draft.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = map[string]string{}
	c.submitErr = ""
}

// Validate checks the draft locally. Defaults count as present, so a field
// with a default never produces a missing-field error.
func (c *Controller) Validate() *ValidationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Controller) validateLocked() *ValidationError {
	sc := schemas[c.kind]
	var errs []FieldError

	for _, f := range sc.required {
		if strings.TrimSpace(c.valueLocked(f)) == "" {
			errs = append(errs, FieldError{Field: f, Message: label(f) + " is required"})
		}
	}

	if c.kind == KindPayment {
		if raw := strings.TrimSpace(c.valueLocked("amount")); raw != "" {
			if _, err := ParseAmount(raw); err != nil {
				errs = append(errs, FieldError{Field: "amount", Message: "amount must be a non-negative number"})
			}
		}
	}
	if dur := strings.TrimSpace(c.valueLocked("duration")); dur != "" {
		if n, err := strconv.Atoi(dur); err != nil || n <= 0 {
			errs = append(errs, FieldError{Field: "duration", Message: "duration must be a positive number of minutes"})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// valueLocked resolves a field through the defaults table.
func (c *Controller) valueLocked(name string) string {
	if v := c.fields[name]; strings.TrimSpace(v) != "" {
		return v
	}
	return schemas[c.kind].defaults[name]
}

// Submit validates and persists the draft as exactly one owner-tagged insert.
//
// Preconditions resolve locally with zero network calls: no active session
// returns ErrNoSession, a failed Validate returns the *ValidationError, and a
// submit already in flight returns ErrSubmitInFlight. On success the draft is
// reset; on any other failure it is retained unchanged along with a user
// message (Err) so the form can redisplay it.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}

	sess := c.sessions.Current()
	if sess == nil {
		c.submitErr = ErrNoSession.Error()
		c.mu.Unlock()
		return ErrNoSession
	}
	if verr := c.validateLocked(); verr != nil {
		c.submitErr = verr.Error()
		c.mu.Unlock()
		return verr
	}

	rec, err := c.recordLocked(sess.UserID)
	if err != nil {
		c.submitErr = SubmitMessage(err)
		c.mu.Unlock()
		return err
	}
	c.loading = true
	c.mu.Unlock()

	insertErr := c.records.Insert(ctx, c.kind.Table(), rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if insertErr != nil {
		c.submitErr = SubmitMessage(insertErr)
		return insertErr
	}
	c.fields = map[string]string{}
	c.submitErr = ""
	return nil
}

// recordLocked builds the insert payload: every schema field resolved through
// defaults, numeric fields converted, plus the owning user id.
func (c *Controller) recordLocked(userID string) (backend.Record, error) {
	sc := schemas[c.kind]
	rec := backend.Record{"user_id": userID}

	for _, f := range append(append([]string{}, sc.required...), sc.optional...) {
		val := c.valueLocked(f)
		switch f {
		case "amount":
			amt, err := ParseAmount(val)
			if err != nil {
				return nil, &ValidationError{Fields: []FieldError{{Field: f, Message: "amount must be a non-negative number"}}}
			}
			rec[f] = amt
		case "duration":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return nil, &ValidationError{Fields: []FieldError{{Field: f, Message: "duration must be a positive number of minutes"}}}
			}
			rec[f] = n
		default:
			rec[f] = strings.TrimSpace(val)
		}
	}
	return rec, nil
}

// ParseAmount parses a money amount with two-decimal precision.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount: %w", err)
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("amount out of range: %s", s)
	}
	return math.Round(v*100) / 100, nil
}

// SubmitMessage maps a submit failure to the message retained for the user:
// the store's own text when present, a fixed fallback otherwise.
func SubmitMessage(err error) string {
	if err == nil {
		return ""
	}
	var serr *backend.StoreError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, ErrNoSession) {
		return ErrNoSession.Error()
	}
	return FallbackMessage
}
