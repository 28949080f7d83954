package tui

import (
	"psyplanner/internal/model"
)

type view int

const (
	viewLogin view = iota
	viewHome
)

type tab int

const (
	tabSessions tab = iota
	tabPayments
	tabNotes
	tabClients
)

func (t tab) String() string {
	switch t {
	case tabSessions:
		return "Sessions"
	case tabPayments:
		return "Payments"
	case tabNotes:
		return "Notes"
	case tabClients:
		return "Clients"
	}
	return ""
}

// loginDoneMsg reports the credential round trip. The flow controller already
// retains the user-facing message; err is only for flow decisions.
type loginDoneMsg struct{ err error }

type signOutDoneMsg struct{ err error }

// homeDataMsg carries one refresh of every home list.
type homeDataMsg struct {
	sessions []model.SessionRecord
	payments []model.Payment
	notes    []model.Note
	clients  []model.Client
	err      error
}

// refsLoadedMsg is the workflow shell's reference load resolving.
type refsLoadedMsg struct {
	clients []model.ClientRef
	err     error
}

// submitDoneMsg is the workflow shell's submit round trip resolving.
type submitDoneMsg struct{ err error }
