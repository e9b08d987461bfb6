package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/registry"
)

// MenuChoice is what a menu item does when selected.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceLeaderboard
	ChoiceLogout
	ChoiceQuit
)

// MenuItem is one selectable line in the main menu.
type MenuItem struct {
	Choice MenuChoice
	GameID string // Set for ChoicePlay
	Title  string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	username  string
	bests     map[string]int // Keyed by game ID
	keyMapper *KeyMapper
	selected  *MenuItem // Set when user selects an item
	quitting  bool
}

// NewMenuModel creates the main menu. bests holds the stored high score
// per game ID and may be nil.
func NewMenuModel(username string, bests map[string]int, width, height int) MenuModel {
	games := registry.List()
	items := make([]MenuItem, 0, len(games)+3)

	for _, g := range games {
		items = append(items, MenuItem{
			Choice: ChoicePlay,
			GameID: g.ID,
			Title:  g.Title,
		})
	}
	items = append(items,
		MenuItem{Choice: ChoiceLeaderboard, Title: "Leaderboard"},
		MenuItem{Choice: ChoiceLogout, Title: "Change Player"},
		MenuItem{Choice: ChoiceQuit, Title: "Quit"},
	)

	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		username:  username,
		bests:     bests,
		keyMapper: NewKeyMapper(),
	}
}

// Focus moves the cursor to the game with the given ID, if listed.
func (m MenuModel) Focus(gameID string) MenuModel {
	for i, item := range m.items {
		if item.Choice == ChoicePlay && item.GameID == gameID {
			m.cursor = i
			break
		}
	}
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		selected := m.items[m.cursor]
		if selected.Choice == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &selected

	case MenuActionScoreboard:
		m.selected = &MenuItem{Choice: ChoiceLeaderboard, Title: "Leaderboard"}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("S N A K E"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Player: %s", accentStyle.Render(m.username)))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		line := item.Title
		if i == m.cursor {
			cursor = "> "
			line = accentStyle.Render(line)
		}
		if item.Choice == ChoicePlay {
			if best, ok := m.bests[item.GameID]; ok && best > 0 {
				line += mutedStyle.Render(fmt.Sprintf("  best %d", best))
			}
		}
		b.WriteString(cursor + line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("up/down: navigate  enter: select  tab: scores  q: quit"))

	return center(m.width, m.height, boxStyle.Render(b.String()))
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// SelectedMode returns the snake mode of a selected play item.
func (m MenuModel) SelectedMode() (snake.Mode, bool) {
	if m.selected == nil || m.selected.Choice != ChoicePlay {
		return snake.ModeWalls, false
	}
	return snake.ModeForID(m.selected.GameID)
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}
