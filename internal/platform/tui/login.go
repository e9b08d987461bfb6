package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/session"
)

// LoginModel asks for the player name.
type LoginModel struct {
	sess     *session.Context
	input    textinput.Model
	err      string
	width    int
	height   int
	done     bool
	quitting bool
}

// NewLoginModel creates the login screen for a session.
func NewLoginModel(sess *session.Context, width, height int) LoginModel {
	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.CharLimit = leaderboard.MaxUsernameLength
	ti.Width = leaderboard.MaxUsernameLength + 1
	ti.Prompt = "> "
	ti.Focus()

	return LoginModel{
		sess:   sess,
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init starts the cursor blink.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login screen.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if err := m.sess.Login(m.input.Value()); err != nil {
				m.err = leaderboard.AsError(err).Message
				return m, nil
			}
			m.done = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.err = ""
	}
	return m, cmd
}

// View renders the login box.
func (m LoginModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("S N A K E"))
	b.WriteString("\n\n")
	b.WriteString("Enter your name to play\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
	} else {
		b.WriteString(mutedStyle.Render("2-20 letters, digits or _"))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("enter: continue  esc: quit"))

	box := boxStyle.Render(lipgloss.NewStyle().Align(lipgloss.Center).Render(b.String()))
	return center(m.width, m.height, box)
}

// Done reports whether a valid name was entered.
func (m LoginModel) Done() bool {
	return m.done
}

// IsQuitting returns true if user requested to quit.
func (m LoginModel) IsQuitting() bool {
	return m.quitting
}
