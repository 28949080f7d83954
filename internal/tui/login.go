package tui

import (
	"context"
	"strings"

	"psyplanner/internal/authflow"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginModel renders the two-mode credential form on top of authflow.Flow.
// The text inputs are the live field state; they are copied into the flow
// right before a submit, so toggling modes preserves whatever was typed.
type loginModel struct {
	flow *authflow.Flow

	email     textinput.Model
	password  textinput.Model
	password2 textinput.Model
	firstName textinput.Model
	lastName  textinput.Model

	focus int
}

func newLoginModel(flow *authflow.Flow) loginModel {
	m := loginModel{flow: flow}

	m.email = newFieldInput("email")
	m.password = newFieldInput("password")
	m.password.EchoMode = textinput.EchoPassword
	m.password2 = newFieldInput("repeat password")
	m.password2.EchoMode = textinput.EchoPassword
	m.firstName = newFieldInput("first name")
	m.lastName = newFieldInput("last name")

	m.email.Focus()
	return m
}

func newFieldInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Prompt = ""
	return in
}

// orderedInputs returns the focusable inputs for the current mode.
func (m *loginModel) orderedInputs() []*textinput.Model {
	if m.flow.Mode() == authflow.ModeSignUp {
		return []*textinput.Model{&m.firstName, &m.lastName, &m.email, &m.password, &m.password2}
	}
	return []*textinput.Model{&m.email, &m.password}
}

func (m *loginModel) setFocus(idx int) {
	inputs := m.orderedInputs()
	if len(inputs) == 0 {
		return
	}
	m.focus = ((idx % len(inputs)) + len(inputs)) % len(inputs)
	for i, in := range inputs {
		if i == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m *loginModel) toggleMode() {
	m.flow.ToggleMode()
	m.setFocus(0)
}

// syncFlow copies input values into the flow controller.
func (m *loginModel) syncFlow() {
	m.flow.Email = strings.TrimSpace(m.email.Value())
	m.flow.Password = m.password.Value()
	m.flow.PasswordConfirm = m.password2.Value()
	m.flow.FirstName = m.firstName.Value()
	m.flow.LastName = m.lastName.Value()
}

func submitLoginCmd(f *authflow.Flow) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: f.Submit(context.Background())}
	}
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "tab", "down":
		m.setFocus(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.setFocus(m.focus - 1)
		return m, nil
	case "ctrl+t":
		m.toggleMode()
		return m, nil
	case "enter":
		if m.flow.Loading() {
			return m, nil
		}
		m.syncFlow()
		return m, submitLoginCmd(m.flow)
	}

	inputs := m.orderedInputs()
	if m.focus >= 0 && m.focus < len(inputs) {
		var cmd tea.Cmd
		*inputs[m.focus], cmd = inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loginModel) view(width int) string {
	bodyW := modalBodyWidth(width)
	signUp := m.flow.Mode() == authflow.ModeSignUp

	var b strings.Builder
	if signUp {
		b.WriteString(styleMuted().Render("Already registered? ctrl+t to sign in") + "\n\n")
		b.WriteString("first name\n" + renderInputLine(bodyW, m.firstName.View()) + "\n")
		b.WriteString("last name\n" + renderInputLine(bodyW, m.lastName.View()) + "\n")
	} else {
		b.WriteString(styleMuted().Render("First time here? ctrl+t to register") + "\n\n")
	}
	b.WriteString("email\n" + renderInputLine(bodyW, m.email.View()) + "\n")
	b.WriteString("password\n" + renderInputLine(bodyW, m.password.View()) + "\n")
	if signUp {
		b.WriteString("repeat password\n" + renderInputLine(bodyW, m.password2.View()) + "\n")
	}

	if msg := m.flow.Err(); msg != "" {
		b.WriteString("\n" + styleError().Width(bodyW).Render(msg) + "\n")
	}

	b.WriteString("\n")
	if m.flow.Loading() {
		b.WriteString(styleMuted().Render("Signing in…"))
	} else {
		b.WriteString(styleMuted().Render("tab: next field   enter: submit   ctrl+c: quit"))
	}

	title := "PsyPlanner — sign in"
	if signUp {
		title = "PsyPlanner — register"
	}
	return renderModalBox(width, title, b.String())
}
