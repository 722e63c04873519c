package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrPromptCancelled = errors.New("prompt cancelled")

const (
	usernameField = iota
	passwordField
)

// CredentialsModel is the bubbletea model of the username/password form.
type CredentialsModel struct {
	inputs    []textinput.Model
	focus     int
	keys      keyMap
	help      help.Model
	palette   *Palette
	message   string
	submitted bool
	cancelled bool
}

// NewCredentialsModel builds the form, pre-filling username when given. Focus starts on the first empty field.
func NewCredentialsModel(username string) CredentialsModel {
	user := textinput.New()
	user.Prompt = "Username: "
	user.Placeholder = "email or username"
	user.CharLimit = 256
	user.SetValue(username)

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 256

	m := CredentialsModel{
		inputs:  []textinput.Model{user, pass},
		keys:    newKeyMap(),
		help:    help.New(),
		palette: DefaultPalette,
	}

	if username != "" {
		m.setFocus(passwordField)
	} else {
		m.setFocus(usernameField)
	}

	return m
}

func (m CredentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m CredentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.next):
			cmd := m.setFocus(m.focus + 1)
			return m, cmd
		case key.Matches(msg, m.keys.prev):
			cmd := m.setFocus(m.focus - 1)
			return m, cmd
		case key.Matches(msg, m.keys.submit):
			if m.focus < len(m.inputs)-1 {
				cmd := m.setFocus(m.focus + 1)
				return m, cmd
			}
			if m.Username() == "" || m.Password() == "" {
				m.message = "username and password are required"
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m CredentialsModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.palette.Title("Log in to SoundCloud") + "\n\n")
	for _, input := range m.inputs {
		b.WriteString(input.View() + "\n")
	}
	if m.message != "" {
		b.WriteString("\n" + m.palette.Err(m.message) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// Username returns the trimmed username value.
func (m CredentialsModel) Username() string {
	return strings.TrimSpace(m.inputs[usernameField].Value())
}

// Password returns the password value as typed.
func (m CredentialsModel) Password() string {
	return m.inputs[passwordField].Value()
}

func (m CredentialsModel) Submitted() bool { return m.submitted }
func (m CredentialsModel) Cancelled() bool { return m.cancelled }

// setFocus moves focus to field i, wrapping around.
func (m *CredentialsModel) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	m.focus = ((i % n) + n) % n

	var cmd tea.Cmd
	for idx := range m.inputs {
		if idx == m.focus {
			cmd = m.inputs[idx].Focus()
			continue
		}
		m.inputs[idx].Blur()
	}
	return cmd
}

// PromptCredentials runs the form on in/out and returns the submitted username and password.
func PromptCredentials(in io.Reader, out io.Writer, username string) (string, string, error) {
	program := tea.NewProgram(NewCredentialsModel(username), tea.WithInput(in), tea.WithOutput(out))

	final, err := program.Run()
	if err != nil {
		return "", "", fmt.Errorf("failed to run credentials prompt: %w", err)
	}

	m, ok := final.(CredentialsModel)
	if !ok || !m.Submitted() {
		return "", "", ErrPromptCancelled
	}

	return m.Username(), m.Password(), nil
}
