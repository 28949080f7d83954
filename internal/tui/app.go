package tui

import (
	"context"
	"errors"

	"psyplanner/internal/authflow"
	"psyplanner/internal/backend"
	"psyplanner/internal/draft"
	"psyplanner/internal/refdata"
	"psyplanner/internal/session"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type appModel struct {
	records  backend.RecordStore
	sessions *session.Store

	width  int
	height int

	view view
	tab  tab

	flow  *authflow.Flow
	login loginModel

	sessionsList list.Model
	paymentsList list.Model
	notesList    list.Model
	clientsList  list.Model

	// clientNames resolves client ids for list rows.
	clientNames map[string]string

	modal *addModal

	statusMsg string
}

func newAppModel(records backend.RecordStore, sessions *session.Store) appModel {
	flow := authflow.New(sessions)
	m := appModel{
		records:     records,
		sessions:    sessions,
		view:        viewLogin,
		flow:        flow,
		login:       newLoginModel(flow),
		clientNames: map[string]string{},
	}
	m.sessionsList = newList(nil)
	m.paymentsList = newList(nil)
	m.notesList = newList(nil)
	m.clientsList = newList(nil)

	if sessions.Current() != nil {
		m.view = viewHome
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewHome {
		return loadHomeCmd(m.records, m.sessions)
	}
	return nil
}

// loadHomeCmd refreshes every home list in one round of scoped selects.
func loadHomeCmd(records backend.RecordStore, sessions *session.Store) tea.Cmd {
	return func() tea.Msg {
		sess := sessions.Current()
		if sess == nil {
			return homeDataMsg{err: draft.ErrNoSession}
		}
		ctx := context.Background()

		clients, err := refdata.ClientDetails(ctx, records, sess.UserID)
		if err != nil {
			return homeDataMsg{err: err}
		}
		sessionRecords, err := refdata.Sessions(ctx, records, sess.UserID)
		if err != nil {
			return homeDataMsg{err: err}
		}
		payments, err := refdata.Payments(ctx, records, sess.UserID)
		if err != nil {
			return homeDataMsg{err: err}
		}
		notes, err := refdata.Notes(ctx, records, sess.UserID)
		if err != nil {
			return homeDataMsg{err: err}
		}
		return homeDataMsg{
			sessions: sessionRecords,
			payments: payments,
			notes:    notes,
			clients:  clients,
		}
	}
}

func signOutCmd(sessions *session.Store) tea.Cmd {
	return func() tea.Msg {
		return signOutDoneMsg{err: sessions.SignOut(context.Background())}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			// Error text is retained in the flow controller; the form shows it.
			return m, nil
		}
		m.view = viewHome
		m.statusMsg = ""
		return m, loadHomeCmd(m.records, m.sessions)

	case signOutDoneMsg:
		if msg.err == nil {
			m.view = viewLogin
			m.modal = nil
			m.statusMsg = ""
		}
		return m, nil

	case homeDataMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		m.applyHomeData(msg)
		return m, nil

	case refsLoadedMsg:
		if m.modal != nil {
			// A failed load degrades to an empty picker; the workflow stays
			// usable either way.
			m.modal.setClients(msg.clients)
		}
		return m, nil

	case submitDoneMsg:
		if m.modal == nil || errors.Is(msg.err, draft.ErrSubmitInFlight) {
			return m, nil
		}
		if msg.err != nil {
			// Stay open; the controller retains the message.
			m.modal.phase = shellReady
			return m, nil
		}
		// Refresh listings (onSuccess) before the modal closes.
		m.modal = nil
		m.statusMsg = "created"
		return m, loadHomeCmd(m.records, m.sessions)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m appModel) updateKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != nil {
		switch key.String() {
		case "esc", "ctrl+g":
			if m.modal.phase != shellSubmitting {
				// Cancel: close with no side effects.
				m.modal = nil
			}
			return m, nil
		}
		modal, cmd := m.modal.update(key)
		m.modal = &modal
		return m, cmd
	}

	if m.view == viewLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.update(key)
		return m, cmd
	}

	if m.activeListFiltering() {
		return m.updateActiveList(key)
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.tab = tabSessions
		return m, nil
	case "2":
		m.tab = tabPayments
		return m, nil
	case "3":
		m.tab = tabNotes
		return m, nil
	case "4":
		m.tab = tabClients
		return m, nil
	case "tab":
		m.tab = (m.tab + 1) % 4
		return m, nil
	case "a":
		return m.openAddModal()
	case "r":
		return m, loadHomeCmd(m.records, m.sessions)
	case "ctrl+x":
		return m, signOutCmd(m.sessions)
	}

	return m.updateActiveList(key)
}

// openAddModal mounts the workflow shell for the active tab's resource kind.
func (m appModel) openAddModal() (tea.Model, tea.Cmd) {
	var kind draft.Kind
	switch m.tab {
	case tabSessions:
		kind = draft.KindSession
	case tabPayments:
		kind = draft.KindPayment
	case tabNotes:
		kind = draft.KindNote
	case tabClients:
		kind = draft.KindClient
	}

	ctrl := draft.New(kind, m.sessions, m.records)
	modal := newAddModal(kind, ctrl)
	m.modal = &modal
	m.statusMsg = ""

	if modal.needsRefs() {
		return m, loadRefsCmd(m.records, m.sessions)
	}
	return m, nil
}

func (m appModel) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case tabSessions:
		m.sessionsList, cmd = m.sessionsList.Update(msg)
	case tabPayments:
		m.paymentsList, cmd = m.paymentsList.Update(msg)
	case tabNotes:
		m.notesList, cmd = m.notesList.Update(msg)
	case tabClients:
		m.clientsList, cmd = m.clientsList.Update(msg)
	}
	return m, cmd
}

func (m *appModel) activeListFiltering() bool {
	switch m.tab {
	case tabSessions:
		return m.sessionsList.SettingFilter()
	case tabPayments:
		return m.paymentsList.SettingFilter()
	case tabNotes:
		return m.notesList.SettingFilter()
	case tabClients:
		return m.clientsList.SettingFilter()
	}
	return false
}

func (m *appModel) applyHomeData(data homeDataMsg) {
	m.clientNames = make(map[string]string, len(data.clients))
	for _, c := range data.clients {
		m.clientNames[c.ID] = c.FullName
	}

	sessionItems := make([]list.Item, 0, len(data.sessions))
	for _, r := range data.sessions {
		sessionItems = append(sessionItems, sessionItem{record: r, clientName: m.clientName(r.ClientID)})
	}
	m.sessionsList.SetItems(sessionItems)

	paymentItems := make([]list.Item, 0, len(data.payments))
	for _, p := range data.payments {
		paymentItems = append(paymentItems, paymentItem{payment: p, clientName: m.clientName(p.ClientID)})
	}
	m.paymentsList.SetItems(paymentItems)

	noteItems := make([]list.Item, 0, len(data.notes))
	for _, n := range data.notes {
		noteItems = append(noteItems, noteItem{note: n, clientName: m.clientName(n.ClientID)})
	}
	m.notesList.SetItems(noteItems)

	clientItems := make([]list.Item, 0, len(data.clients))
	for _, c := range data.clients {
		clientItems = append(clientItems, clientItem{client: c})
	}
	m.clientsList.SetItems(clientItems)

	m.resizeLists()
}

func (m *appModel) clientName(id string) string {
	if name, ok := m.clientNames[id]; ok && name != "" {
		return name
	}
	return "(unknown client)"
}

func (m *appModel) resizeLists() {
	w := m.width - 4
	if m.tab == tabNotes {
		// Notes split the row with the markdown preview pane.
		w = m.width/2 - 2
	}
	h := m.height - 6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.sessionsList.SetSize(m.width-4, h)
	m.paymentsList.SetSize(m.width-4, h)
	m.notesList.SetSize(w, h)
	m.clientsList.SetSize(m.width-4, h)
}

func (m appModel) View() string {
	if m.view == viewLogin {
		return placeCentered(m.width, m.height, m.login.view(m.width))
	}
	if m.modal != nil {
		return placeCentered(m.width, m.height, m.modal.view(m.width))
	}
	return m.homeView()
}

func (m appModel) homeView() string {
	header := m.headerView()
	footer := m.footerView()

	var body string
	switch m.tab {
	case tabSessions:
		body = m.sessionsList.View()
	case tabPayments:
		body = m.paymentsList.View()
	case tabNotes:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.notesList.View(), m.notePreview())
	case tabClients:
		body = m.clientsList.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) headerView() string {
	tabs := make([]string, 0, 4)
	for t := tabSessions; t <= tabClients; t++ {
		label := t.String()
		if t == m.tab {
			tabs = append(tabs, styleAccent().Render(label))
		} else {
			tabs = append(tabs, styleMuted().Render(label))
		}
	}
	who := ""
	if sess := m.sessions.Current(); sess != nil {
		who = styleMuted().Render(sess.Email)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Padding(0, 1).Render(
		"PsyPlanner  "+joinWithSep(tabs, "  ")), "  ", who)
	return row + "\n"
}

func (m appModel) footerView() string {
	if m.statusMsg != "" {
		return "\n" + styleMuted().Padding(0, 1).Render(m.statusMsg)
	}
	return "\n" + styleMuted().Padding(0, 1).Render(
		"1-4/tab: switch   a: add   r: reload   /: filter   ctrl+x: sign out   q: quit")
}

func (m appModel) notePreview() string {
	w := m.width/2 - 2
	if w < 20 {
		w = 20
	}
	it, ok := m.notesList.SelectedItem().(noteItem)
	if !ok {
		return lipgloss.NewStyle().Width(w).Render("")
	}
	head := styleAccent().Render(it.clientName) + "\n" +
		styleMuted().Render(it.note.CreatedAt.Format("2006-01-02 15:04")) + "\n\n"
	return lipgloss.NewStyle().Width(w).Padding(0, 1).Render(head + renderMarkdown(it.note.Content, w-2))
}

func joinWithSep(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
