package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-snake/internal/leaderboard"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the mode sidebar
	sidebarWidth       = 22 // Width of mode sidebar
	scoreboardPageSize = 20 // Rows fetched per page
	scoreboardTimeout  = 3 * time.Second
)

// LeaderboardSource is the part of the leaderboard service the scoreboard
// reads from.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Page, error)
	Stats(ctx context.Context) (leaderboard.Summary, error)
}

// scoreboardTab is one mode filter.
type scoreboardTab struct {
	Title string
	Mode  string // Empty means all modes
}

var scoreboardTabs = []scoreboardTab{
	{"All Modes", ""},
	{"Walls", leaderboard.ModeWalls},
	{"Walls-Through", leaderboard.ModeWrap},
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Sort     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextMode, k.NextPage, k.PrevPage, k.Sort, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextMode, k.PrevMode},
		{k.NextPage, k.PrevPage, k.Sort},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextMode: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next mode"),
		),
		PrevMode: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev mode"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown", "n"),
			key.WithHelp("n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup", "p"),
			key.WithHelp("p", "prev page"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "score/date"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the leaderboard screen.
type ScoreboardModel struct {
	source    LeaderboardSource
	username  string // Rows of this player are marked
	tabCursor int
	sort      string
	offset    int
	page      leaderboard.Page
	summary   *leaderboard.Summary
	err       string
	modeCol   bool // Whether the table has room for the mode column
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a new scoreboard model. source may be nil, in
// which case the board explains that no storage is configured.
func NewScoreboardModel(source LeaderboardSource, username string, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false
	h.Width = width

	m := ScoreboardModel{
		source:   source,
		username: username,
		sort:     "score",
		keys:     DefaultScoreboardKeyMap(),
		help:     h,
		width:    width,
		height:   height,
	}

	m.table = m.createTable()
	m.loadSummary()
	m.loadScores()
	return m
}

func (m *ScoreboardModel) showSidebar() bool {
	return m.width >= minWidthForSidebar
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: 16},
		{Title: "Score", Width: 8},
		{Title: "Mode", Width: 14},
		{Title: "Date", Width: 12},
	}

	// Calculate available width for table
	tableWidth := m.width - 6 // Margins and border
	if m.showSidebar() {
		tableWidth -= sidebarWidth + 4 // Sidebar + border + gap
	}

	// Drop the mode column first, then shrink the player column
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	m.modeCol = true
	if used > tableWidth {
		columns = append(columns[:3], columns[4])
		used -= 16
		m.modeCol = false
	}
	if used > tableWidth {
		columns[1].Width = max(8, columns[1].Width-(used-tableWidth))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, help, and margins
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadScores fetches the current page for the selected mode.
func (m *ScoreboardModel) loadScores() {
	if m.source == nil {
		m.page = leaderboard.Page{}
		m.err = "Scores are not available without a database."
		m.updateTableRows()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scoreboardTimeout)
	defer cancel()

	page, err := m.source.Leaderboard(ctx, leaderboard.Query{
		Limit:  scoreboardPageSize,
		Offset: m.offset,
		Mode:   scoreboardTabs[m.tabCursor].Mode,
		Sort:   m.sort,
	})
	if err != nil {
		m.page = leaderboard.Page{}
		m.err = leaderboard.AsError(err).Message
	} else {
		m.page = page
		m.err = ""
	}
	m.updateTableRows()
}

// loadSummary fetches the totals shown in the sidebar.
func (m *ScoreboardModel) loadSummary() {
	if m.source == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), scoreboardTimeout)
	defer cancel()

	if sum, err := m.source.Stats(ctx); err == nil {
		m.summary = &sum
	}
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.page.Entries))
	for i, e := range m.page.Entries {
		rank := "-"
		if e.Rank > 0 {
			rank = fmt.Sprintf("#%d", e.Rank)
		}
		player := e.Username
		if player == m.username {
			player = "* " + player
		}
		row := table.Row{rank, player, fmt.Sprintf("%d", e.Score)}
		if m.modeCol {
			row = append(row, e.Mode)
		}
		row = append(row, e.Date.Local().Format("Jan 02 15:04"))
		rows[i] = row
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.NextMode):
			m.tabCursor = (m.tabCursor + 1) % len(scoreboardTabs)
			m.offset = 0
			m.loadScores()
			return m, nil

		case key.Matches(msg, m.keys.PrevMode):
			m.tabCursor--
			if m.tabCursor < 0 {
				m.tabCursor = len(scoreboardTabs) - 1
			}
			m.offset = 0
			m.loadScores()
			return m, nil

		case key.Matches(msg, m.keys.NextPage):
			if m.page.HasMore {
				m.offset += scoreboardPageSize
				m.loadScores()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevPage):
			if m.offset > 0 {
				m.offset = max(0, m.offset-scoreboardPageSize)
				m.loadScores()
			}
			return m, nil

		case key.Matches(msg, m.keys.Sort):
			if m.sort == "score" {
				m.sort = "date"
			} else {
				m.sort = "score"
			}
			m.offset = 0
			m.loadScores()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("LEADERBOARD - %s", scoreboardTabs[m.tabCursor].Title)
	if m.sort == "date" {
		title += " (recent)"
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, accentStyle.Render(title)))
	b.WriteString("\n\n")

	if m.showSidebar() {
		// Wide layout: sidebar + table
		b.WriteString(m.renderWideLayout())
	} else {
		// Narrow layout: mode tabs + table
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.pageInfo()))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m ScoreboardModel) pageInfo() string {
	if m.page.Total == 0 {
		return ""
	}
	last := m.offset + len(m.page.Entries)
	return fmt.Sprintf("%d-%d of %d", m.offset+1, last, m.page.Total)
}

// renderWideLayout renders the scoreboard with sidebar for mode selection.
func (m ScoreboardModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Modes\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, tab := range scoreboardTabs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.tabCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + tab.Title))
		sidebar.WriteString("\n")
	}

	if m.summary != nil {
		sidebar.WriteString("\n")
		sidebar.WriteString(fmt.Sprintf("Players  %d\n", m.summary.TotalPlayers))
		sidebar.WriteString(fmt.Sprintf("Games    %d\n", m.summary.TotalScores))
		sidebar.WriteString(fmt.Sprintf("Top      %d\n", m.summary.TopScore))
		sidebar.WriteString(fmt.Sprintf("Average  %.2f", m.summary.AverageScore))
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		"  ",
		tableStyle.Render(m.renderTableContent()),
	)
}

// renderNarrowLayout renders the scoreboard with mode tabs above the table.
func (m ScoreboardModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(scoreboardTabs))
	for i, tab := range scoreboardTabs {
		if i == m.tabCursor {
			tabs[i] = activeTabStyle.Render(tab.Title)
		} else {
			tabs[i] = tabStyle.Render(" " + tab.Title + " ")
		}
	}

	tabLine := strings.Join(tabs, " ")
	if lipgloss.Width(tabLine) > m.width-4 {
		// Just show current mode with arrows
		tabLine = fmt.Sprintf("< %s >", scoreboardTabs[m.tabCursor].Title)
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tabLine))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tableStyle.Render(m.renderTableContent())))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.err != "" {
		return emptyStyle.Render(m.err)
	}
	if len(m.page.Entries) == 0 {
		return emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
	}

	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard as a standalone program.
func RunScoreboard(source LeaderboardSource, width, height int) error {
	model := NewScoreboardModel(source, "", width, height)
	model.keys.Back.SetHelp("esc/b", "quit")

	p := tea.NewProgram(
		standaloneScoreboard{model},
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

// standaloneScoreboard quits the program when the board is closed.
type standaloneScoreboard struct {
	ScoreboardModel
}

func (s standaloneScoreboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.ScoreboardModel.Update(msg)
	s.ScoreboardModel = next.(ScoreboardModel)
	if s.IsGoingBack() {
		return s, tea.Quit
	}
	return s, cmd
}
