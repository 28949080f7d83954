package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"psyplanner/internal/backend"
	"psyplanner/internal/draft"
	"psyplanner/internal/model"
	"psyplanner/internal/refdata"
	"psyplanner/internal/session"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// The add-modal is the shared "create a new X" shell: open, load the client
// list, accept input, submit once, close on success. It never closes itself
// after a failed submit.

type shellPhase int

const (
	shellLoading shellPhase = iota
	shellReady
	shellSubmitting
)

type formField struct {
	name        string
	label       string
	placeholder string
	multiline   bool
	picker      bool // client selector fed by the reference loader
}

var formFields = map[draft.Kind][]formField{
	draft.KindSession: {
		{name: "client_id", label: "client", picker: true},
		{name: "session_date", label: "date", placeholder: "2024-01-10"},
		{name: "session_time", label: "time", placeholder: "14:00"},
		{name: "duration", label: "duration (min)", placeholder: "60"},
		{name: "session_type", label: "type", placeholder: "Active session"},
		{name: "comment", label: "comment", multiline: true},
	},
	draft.KindPayment: {
		{name: "client_id", label: "client", picker: true},
		{name: "amount", label: "amount", placeholder: "0.00"},
		{name: "payment_date", label: "date", placeholder: "2024-01-10"},
		{name: "currency", label: "currency", placeholder: "RUB"},
		{name: "comment", label: "comment", multiline: true},
	},
	draft.KindNote: {
		{name: "client_id", label: "client", picker: true},
		{name: "content", label: "content", multiline: true},
	},
	draft.KindClient: {
		{name: "full_name", label: "full name"},
		{name: "phone", label: "phone"},
		{name: "email", label: "email"},
		{name: "comment", label: "comment", multiline: true},
	},
}

type addModal struct {
	kind  draft.Kind
	ctrl  *draft.Controller
	phase shellPhase

	fields []formField
	inputs []textinput.Model
	areas  map[int]textarea.Model

	clients   []model.ClientRef
	clientIdx int

	focus int
}

func newAddModal(kind draft.Kind, ctrl *draft.Controller) addModal {
	fields := formFields[kind]
	m := addModal{
		kind:      kind,
		ctrl:      ctrl,
		phase:     shellLoading,
		fields:    fields,
		inputs:    make([]textinput.Model, len(fields)),
		areas:     map[int]textarea.Model{},
		clientIdx: -1,
	}
	if !m.needsRefs() {
		m.phase = shellReady
	}

	for i, f := range fields {
		switch {
		case f.picker:
			// picker has no input widget
		case f.multiline:
			a := textarea.New()
			a.Placeholder = f.placeholder
			a.SetHeight(3)
			a.CharLimit = 0
			m.areas[i] = a
		default:
			m.inputs[i] = newFieldInput(f.placeholder)
		}
	}
	m.setFocus(0)
	return m
}

func (m *addModal) needsRefs() bool {
	for _, f := range m.fields {
		if f.picker {
			return true
		}
	}
	return false
}

func (m *addModal) setClients(clients []model.ClientRef) {
	m.clients = clients
	if len(clients) > 0 {
		m.clientIdx = 0
	} else {
		m.clientIdx = -1
	}
	m.phase = shellReady
}

func (m *addModal) setFocus(idx int) {
	n := len(m.fields)
	if n == 0 {
		return
	}
	m.focus = ((idx % n) + n) % n
	for i := range m.fields {
		if a, ok := m.areas[i]; ok {
			if i == m.focus {
				a.Focus()
			} else {
				a.Blur()
			}
			m.areas[i] = a
			continue
		}
		if m.fields[i].picker {
			continue
		}
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// syncDraft copies widget state into the draft controller.
func (m *addModal) syncDraft() {
	for i, f := range m.fields {
		switch {
		case f.picker:
			id := ""
			if m.clientIdx >= 0 && m.clientIdx < len(m.clients) {
				id = m.clients[m.clientIdx].ID
			}
			m.ctrl.SetField(f.name, id)
		case f.multiline:
			m.ctrl.SetField(f.name, m.areas[i].Value())
		default:
			m.ctrl.SetField(f.name, m.inputs[i].Value())
		}
	}
}

func (m addModal) update(msg tea.Msg) (addModal, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.phase != shellReady && m.phase != shellLoading {
		return m, nil
	}

	switch key.String() {
	case "tab":
		m.setFocus(m.focus + 1)
		return m, nil
	case "shift+tab":
		m.setFocus(m.focus - 1)
		return m, nil
	case "ctrl+s":
		return m.startSubmit()
	}

	field := m.fields[m.focus]
	if field.picker {
		switch key.String() {
		case "left", "h":
			if len(m.clients) > 0 {
				m.clientIdx = ((m.clientIdx-1)%len(m.clients) + len(m.clients)) % len(m.clients)
			}
		case "right", "l", " ":
			if len(m.clients) > 0 {
				m.clientIdx = (m.clientIdx + 1) % len(m.clients)
			}
		case "enter":
			return m.startSubmit()
		}
		return m, nil
	}

	if key.String() == "enter" && !field.multiline {
		return m.startSubmit()
	}

	var cmd tea.Cmd
	if a, ok := m.areas[m.focus]; ok {
		a, cmd = a.Update(msg)
		m.areas[m.focus] = a
	} else {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m addModal) startSubmit() (addModal, tea.Cmd) {
	if m.phase != shellReady {
		return m, nil
	}
	m.syncDraft()
	m.phase = shellSubmitting
	return m, submitDraftCmd(m.ctrl)
}

func (m addModal) view(width int) string {
	bodyW := modalBodyWidth(width)
	var b strings.Builder

	if m.phase == shellLoading {
		b.WriteString(styleMuted().Render("Loading clients…"))
		return renderModalBox(width, m.title(), b.String())
	}

	for i, f := range m.fields {
		label := f.label
		if i == m.focus {
			label = styleAccent().Render(label)
		} else {
			label = styleMuted().Render(label)
		}
		b.WriteString(label + "\n")

		switch {
		case f.picker:
			b.WriteString(m.pickerLine(bodyW, i == m.focus) + "\n")
		case f.multiline:
			b.WriteString(m.areas[i].View() + "\n")
		default:
			b.WriteString(renderInputLine(bodyW, m.inputs[i].View()) + "\n")
		}
	}

	if msg := m.ctrl.Err(); msg != "" {
		b.WriteString("\n" + styleError().Width(bodyW).Render(msg) + "\n")
	}

	b.WriteString("\n")
	if m.phase == shellSubmitting {
		b.WriteString(styleMuted().Render("Creating…"))
	} else {
		b.WriteString(styleMuted().Render("tab: next field   enter/ctrl+s: create   esc: cancel"))
	}
	return renderModalBox(width, m.title(), b.String())
}

func (m addModal) pickerLine(bodyW int, focused bool) string {
	if len(m.clients) == 0 {
		return styleMuted().Render("(no clients yet)")
	}
	name := "(select a client)"
	if m.clientIdx >= 0 && m.clientIdx < len(m.clients) {
		name = m.clients[m.clientIdx].FullName
	}
	line := fmt.Sprintf("◀ %s ▶  %d/%d", name, m.clientIdx+1, len(m.clients))
	if focused {
		return styleAccent().Render(line)
	}
	return line
}

func (m addModal) title() string {
	switch m.kind {
	case draft.KindSession:
		return "Add session"
	case draft.KindPayment:
		return "Add payment"
	case draft.KindNote:
		return "Add note"
	case draft.KindClient:
		return "Add client"
	}
	return "Add"
}

func submitDraftCmd(ctrl *draft.Controller) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(context.Background())}
	}
}

// loadRefsCmd runs the shell's reference load. A failure degrades to an empty
// list; the modal stays usable either way.
func loadRefsCmd(records backend.RecordStore, sessions *session.Store) tea.Cmd {
	return func() tea.Msg {
		sess := sessions.Current()
		if sess == nil {
			return refsLoadedMsg{}
		}
		clients, err := refdata.Clients(context.Background(), records, sess.UserID)
		if err != nil {
			slog.Warn("client list load failed", "error", err)
			return refsLoadedMsg{err: err}
		}
		return refsLoadedMsg{clients: clients}
	}
}
