package tui

import (
	"psyplanner/internal/backend"
	"psyplanner/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(records backend.RecordStore, sessions *session.Store) error {
	applyThemePreference()

	m := newAppModel(records, sessions)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
