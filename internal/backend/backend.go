// Package backend defines the contracts the app core depends on: an identity
// provider and a record store. Implementations live in subpackages; the core
// never imports them directly, so backends can be swapped without touching
// controller logic.
package backend

import (
	"context"

	"psyplanner/internal/model"
)

// Identity authenticates users and owns session persistence. Current restores
// whatever session the provider has persisted, or returns nil when there is
// none (an expired or unreadable session is "none", not an error).
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*model.Session, error)
	SignOut(ctx context.Context) error
	Current(ctx context.Context) (*model.Session, error)
}

// Record is one row of a named table, keyed by column name.
type Record map[string]any

// Filter is an equality constraint on a single column. A zero Filter matches
// everything.
type Filter struct {
	Column string
	Value  any
}

// RecordStore exposes collection-style reads and writes over named tables.
// Select never partially returns: on error the result is nil. Insert writes
// exactly one row; the caller is responsible for including the owner column.
type RecordStore interface {
	Select(ctx context.Context, table string, filter Filter, orderBy string) ([]Record, error)
	Insert(ctx context.Context, table string, rec Record) error
}

// Str reads a string column, tolerating missing or differently typed values.
func (r Record) Str(column string) string {
	if v, ok := r[column].(string); ok {
		return v
	}
	return ""
}

// Float reads a numeric column stored as either float64 or int64.
func (r Record) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// Int reads an integer column stored as either int64 or float64.
func (r Record) Int(column string) int {
	switch v := r[column].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
