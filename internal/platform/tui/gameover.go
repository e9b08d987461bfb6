package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/session"
)

// SubmitResultMsg carries the outcome of a score submission back into the
// program. Round ties it to the round it was sent for.
type SubmitResultMsg struct {
	Round  int
	Result leaderboard.Result
}

var gameOverItems = []struct {
	choice MenuChoice
	title  string
}{
	{ChoicePlay, "Play Again"},
	{ChoiceLeaderboard, "Leaderboard"},
	{ChoiceNone, "Main Menu"},
}

// GameOverModel shows the final score and the submission outcome.
type GameOverModel struct {
	sess      *session.Context
	prevBest  int
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	chosen    bool
	quitting  bool
}

// NewGameOverModel creates the game over screen. prevBest is the high
// score before this round.
func NewGameOverModel(sess *session.Context, prevBest, width, height int) GameOverModel {
	return GameOverModel{
		sess:      sess,
		prevBest:  prevBest,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the game over screen.
func (m GameOverModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the game over screen.
func (m GameOverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.keyMapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			m.quitting = true
			return m, tea.Quit
		case MenuActionUp:
			if m.cursor > 0 {
				m.cursor--
			}
		case MenuActionDown:
			if m.cursor < len(gameOverItems)-1 {
				m.cursor++
			}
		case MenuActionSelect:
			m.chosen = true
		case MenuActionBack:
			m.cursor = len(gameOverItems) - 1
			m.chosen = true
		case MenuActionScoreboard:
			m.cursor = 1
			m.chosen = true
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the final score box.
func (m GameOverModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(errorStyle.Bold(true).Render("G A M E   O V E R"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", m.sess.Username, mutedStyle.Render(m.sess.Mode.Title())))
	b.WriteString(fmt.Sprintf("Score: %s\n", accentStyle.Render(fmt.Sprintf("%d", m.sess.LastScore))))
	b.WriteString(m.submitLine())
	b.WriteString("\n\n")

	for i, item := range gameOverItems {
		cursor := "  "
		line := item.title
		if i == m.cursor {
			cursor = "> "
			line = accentStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter: select  tab: scores  esc: menu"))

	return center(m.width, m.height, boxStyle.Render(b.String()))
}

func (m GameOverModel) submitLine() string {
	res := m.sess.Submit
	switch {
	case res == nil:
		return mutedStyle.Render("Saving score...")
	case res.Skipped:
		return mutedStyle.Render("Score not saved")
	case res.Err != nil:
		return errorStyle.Render(leaderboard.AsError(res.Err).Message)
	case m.sess.LastScore > m.prevBest:
		return titleStyle.Render("New best score!")
	}
	return mutedStyle.Render("Score saved")
}

// Chosen returns the selected follow-up, if any.
func (m GameOverModel) Chosen() (MenuChoice, bool) {
	if !m.chosen {
		return ChoiceNone, false
	}
	return gameOverItems[m.cursor].choice, true
}

// IsQuitting returns true if user requested to quit.
func (m GameOverModel) IsQuitting() bool {
	return m.quitting
}
