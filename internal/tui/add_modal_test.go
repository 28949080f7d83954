package tui

import (
	"strings"
	"testing"

	"psyplanner/internal/draft"
	"psyplanner/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModal(t *testing.T, kind draft.Kind, records *fakeRecords) addModal {
	t.Helper()
	ctrl := draft.New(kind, signedInSessions(t), records)
	return newAddModal(kind, ctrl)
}

func TestModalWaitsForReferencesWhenKindHasPicker(t *testing.T) {
	m := newTestModal(t, draft.KindSession, &fakeRecords{})
	if m.phase != shellLoading {
		t.Fatalf("expected shellLoading, got %v", m.phase)
	}
	if !strings.Contains(m.view(80), "Loading clients…") {
		t.Fatalf("expected loading hint in view")
	}

	m.setClients([]model.ClientRef{{ID: "c1", FullName: "Anna"}})
	if m.phase != shellReady {
		t.Fatalf("expected shellReady after refs, got %v", m.phase)
	}
	if m.clientIdx != 0 {
		t.Fatalf("expected first client preselected, got %d", m.clientIdx)
	}
}

func TestPickerCyclesClients(t *testing.T) {
	m := newTestModal(t, draft.KindNote, &fakeRecords{})
	m.setClients([]model.ClientRef{
		{ID: "c1", FullName: "Anna"},
		{ID: "c2", FullName: "Boris"},
		{ID: "c3", FullName: "Vera"},
	})

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})
	if m.clientIdx != 1 {
		t.Fatalf("expected idx 1 after right, got %d", m.clientIdx)
	}
	m, _ = m.update(keyRunes("l"))
	m, _ = m.update(keyRunes("l"))
	if m.clientIdx != 0 {
		t.Fatalf("expected wrap to 0, got %d", m.clientIdx)
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.clientIdx != 2 {
		t.Fatalf("expected wrap to last on left, got %d", m.clientIdx)
	}
}

func TestPickerShowsEmptyHint(t *testing.T) {
	m := newTestModal(t, draft.KindNote, &fakeRecords{})
	m.setClients(nil)

	if m.clientIdx != -1 {
		t.Fatalf("expected no selection with an empty list, got %d", m.clientIdx)
	}
	if !strings.Contains(m.view(80), "(no clients yet)") {
		t.Fatalf("expected empty-picker hint in view")
	}
}

func TestSyncDraftCopiesPickerSelection(t *testing.T) {
	m := newTestModal(t, draft.KindNote, &fakeRecords{})
	m.setClients([]model.ClientRef{{ID: "c1", FullName: "Anna"}, {ID: "c2", FullName: "Boris"}})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})

	m.syncDraft()
	if got := m.ctrl.Field("client_id"); got != "c2" {
		t.Fatalf("expected c2 in the draft, got %q", got)
	}
}

func TestCtrlSSubmitsAndEntersSubmittingPhase(t *testing.T) {
	records := &fakeRecords{}
	m := newTestModal(t, draft.KindClient, records)

	// Type into the focused full_name input.
	m, _ = m.update(keyRunes("Anna"))

	m2, cmd := m.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m2.phase != shellSubmitting {
		t.Fatalf("expected shellSubmitting, got %v", m2.phase)
	}
	if cmd == nil {
		t.Fatalf("expected a submit command")
	}
	if !strings.Contains(m2.view(80), "Creating…") {
		t.Fatalf("expected submitting hint in view")
	}

	msg, ok := cmd().(submitDoneMsg)
	if !ok {
		t.Fatalf("expected submitDoneMsg, got %T", cmd())
	}
	if msg.err != nil {
		t.Fatalf("expected a clean submit, got %v", msg.err)
	}
	if records.insertCount() != 1 {
		t.Fatalf("expected exactly one insert, got %d", records.insertCount())
	}
}

func TestSubmitIgnoredWhileLoadingRefs(t *testing.T) {
	m := newTestModal(t, draft.KindSession, &fakeRecords{})

	m2, cmd := m.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m2.phase != shellLoading {
		t.Fatalf("expected to stay in shellLoading, got %v", m2.phase)
	}
	if cmd != nil {
		t.Fatalf("no submit may start before references are in")
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	m := newTestModal(t, draft.KindClient, &fakeRecords{})
	m.phase = shellSubmitting

	m2, cmd := m.update(keyRunes("x"))
	if cmd != nil {
		t.Fatalf("expected input to be ignored while submitting")
	}
	if m2.inputs[0].Value() != "" {
		t.Fatalf("expected no input mutation while submitting, got %q", m2.inputs[0].Value())
	}
}

func TestValidationErrorShownInView(t *testing.T) {
	m := newTestModal(t, draft.KindClient, &fakeRecords{})

	// Submit with an empty form; the controller retains the message.
	m2, cmd := m.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected a submit command")
	}
	cmd()
	m2.phase = shellReady
	if m2.ctrl.Err() == "" {
		t.Fatalf("expected a retained validation message")
	}
	if !strings.Contains(m2.view(80), m2.ctrl.Err()) {
		t.Fatalf("expected the message in the view")
	}
}

func TestTabCyclesFormFocus(t *testing.T) {
	m := newTestModal(t, draft.KindClient, &fakeRecords{})
	if m.focus != 0 {
		t.Fatalf("expected initial focus on the first field, got %d", m.focus)
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 1 {
		t.Fatalf("expected focus 1 after tab, got %d", m.focus)
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != len(m.fields)-1 {
		t.Fatalf("expected focus to wrap to the last field, got %d", m.focus)
	}
}
