package tui

import (
	"fmt"
	"strings"

	"psyplanner/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type sessionItem struct {
	record     model.SessionRecord
	clientName string
}

func (i sessionItem) FilterValue() string { return i.clientName }
func (i sessionItem) Title() string {
	return fmt.Sprintf("%s %s  %s", i.record.SessionDate, i.record.SessionTime, i.clientName)
}
func (i sessionItem) Description() string {
	desc := fmt.Sprintf("%s, %d min", i.record.SessionType, i.record.Duration)
	if c := strings.TrimSpace(i.record.Comment); c != "" {
		desc += "  " + c
	}
	return desc
}

type paymentItem struct {
	payment    model.Payment
	clientName string
}

func (i paymentItem) FilterValue() string { return i.clientName }
func (i paymentItem) Title() string {
	return fmt.Sprintf("%s  %.2f %s  %s", i.payment.PaymentDate, i.payment.Amount, i.payment.Currency, i.clientName)
}
func (i paymentItem) Description() string {
	if c := strings.TrimSpace(i.payment.Comment); c != "" {
		return c
	}
	return i.payment.ID
}

type noteItem struct {
	note       model.Note
	clientName string
}

func (i noteItem) FilterValue() string { return i.clientName + " " + i.note.Content }
func (i noteItem) Title() string       { return i.clientName }
func (i noteItem) Description() string {
	// First line only; the preview pane shows the rest.
	content := strings.TrimSpace(i.note.Content)
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	return content
}

type clientItem struct {
	client model.Client
}

func (i clientItem) FilterValue() string { return i.client.FullName }
func (i clientItem) Title() string       { return i.client.FullName }
func (i clientItem) Description() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(i.client.Phone); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(i.client.Email); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return i.client.ID
	}
	return strings.Join(parts, "  ")
}

func newList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// We render our own header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("ctrl+c")
	return l
}
