package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/registry"
	"github.com/vovakirdan/tui-snake/internal/session"
)

// Observer is notified about session activity. The metrics layer
// implements it.
type Observer interface {
	SessionOpened()
	SessionClosed()
	RoundFinished(mode string, score int)
}

type nopObserver struct{}

func (nopObserver) SessionOpened()            {}
func (nopObserver) SessionClosed()            {}
func (nopObserver) RoundFinished(string, int) {}

// Deps are the services shared by every session.
type Deps struct {
	Leaderboard *leaderboard.Service  // nil runs without scores
	Reporter    *leaderboard.Reporter // nil skips submissions
	Observer    Observer
	Logger      *log.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	return d
}

// SessionModel manages the full player flow:
// login -> menu -> game -> game over -> leaderboard.
// It is the top-level model for both local and SSH sessions.
type SessionModel struct {
	deps     Deps
	sess     *session.Context
	config   core.RuntimeConfig
	round    int
	prevBest int

	login     LoginModel
	menu      MenuModel
	gameModel *GameModel
	gameOver  GameOverModel
	board     ScoreboardModel
	quitting  bool
}

// NewSessionModel creates a session. A valid username skips the login
// screen.
func NewSessionModel(deps Deps, cfg core.RuntimeConfig, username string) SessionModel {
	deps = deps.withDefaults()
	m := SessionModel{
		deps:   deps,
		sess:   session.New(username),
		config: cfg,
	}

	if m.sess.Screen == session.ScreenLogin {
		m.login = NewLoginModel(m.sess, cfg.ScreenW, cfg.ScreenH)
	} else {
		m.menu = m.newMenu()
	}
	deps.Logger.Debug("session created", "session", m.sess.ID, "user", m.sess.Username)
	return m
}

// WithMode preselects the mode highlighted in the menu.
func (m SessionModel) WithMode(mode snake.Mode) SessionModel {
	m.sess.SetMode(mode)
	if m.sess.Screen == session.ScreenMenu {
		m.menu = m.newMenu()
	}
	return m
}

// Context returns the session state.
func (m SessionModel) Context() *session.Context {
	return m.sess
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.sess.Screen == session.ScreenLogin {
		return m.login.Init()
	}
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height

	case SubmitResultMsg:
		if msg.Round == m.round {
			m.sess.Submitted(msg.Result)
		}
		return m, nil

	case TickMsg:
		if m.sess.Screen != session.ScreenGame {
			return m, nil
		}
	}

	switch m.sess.Screen {
	case session.ScreenLogin:
		return m.updateLogin(msg)
	case session.ScreenMenu:
		return m.updateMenu(msg)
	case session.ScreenGame:
		return m.updateGame(msg)
	case session.ScreenGameOver:
		return m.updateGameOver(msg)
	case session.ScreenLeaderboard:
		return m.updateBoard(msg)
	}
	return m, nil
}

// updateLogin handles updates on the login screen.
func (m SessionModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.login.Update(msg)
	if login, ok := next.(LoginModel); ok {
		m.login = login
	}

	if m.login.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.login.Done() && m.sess.Goto(session.ScreenMenu) {
		m.deps.Logger.Info("player logged in", "session", m.sess.ID, "user", m.sess.Username)
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}
	return m, cmd
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	switch selected.Choice {
	case ChoicePlay:
		mode, ok := m.menu.SelectedMode()
		if !ok {
			m.menu = m.newMenu()
			return m, nil
		}
		m.sess.SetMode(mode)
		return m.startGame()

	case ChoiceLeaderboard:
		return m.openBoard()

	case ChoiceLogout:
		m.deps.Logger.Info("player logged out", "session", m.sess.ID, "user", m.sess.Username)
		m.sess.Goto(session.ScreenLogin)
		m.login = NewLoginModel(m.sess, m.config.ScreenW, m.config.ScreenH)
		return m, m.login.Init()
	}
	return m, cmd
}

// startGame creates a fresh game for the selected mode.
func (m SessionModel) startGame() (tea.Model, tea.Cmd) {
	game, err := registry.Create(snake.GameID(m.sess.Mode))
	if err != nil {
		// Shouldn't happen since modes map to registered games
		m.deps.Logger.Error("cannot create game", "mode", m.sess.Mode, "err", err)
		return m, nil
	}
	if !m.sess.Goto(session.ScreenGame) {
		return m, nil
	}

	m.prevBest = m.best(m.sess.Mode.String())
	cfg := m.config
	if cfg.Seed != 0 {
		// Rounds differ from each other but the session replays from the same seed.
		cfg.Seed += int64(m.round)
	}
	gameModel := NewGameModel(game, cfg, m.sess.Username, m.prevBest)
	m.gameModel = &gameModel
	return m, m.gameModel.Init()
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.gameModel.Update(msg)
	if gameModel, ok := next.(GameModel); ok {
		m.gameModel = &gameModel
	}

	if m.gameModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.gameModel.BackToMenu() {
		m.gameModel = nil
		m.sess.Goto(session.ScreenMenu)
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}

	if ended, score := m.gameModel.Ended(); ended {
		return m.finishRound(score)
	}
	return m, cmd
}

// finishRound records the score and submits it in the background.
func (m SessionModel) finishRound(score int) (tea.Model, tea.Cmd) {
	m.gameModel = nil
	if !m.sess.Finish(score) {
		return m, nil
	}
	m.round++

	mode := m.sess.Mode.String()
	m.deps.Observer.RoundFinished(mode, score)
	m.deps.Logger.Info("round finished", "session", m.sess.ID, "user", m.sess.Username, "mode", mode, "score", score)
	m.gameOver = NewGameOverModel(m.sess, m.prevBest, m.config.ScreenW, m.config.ScreenH)

	return m, submitCmd(m.deps.Reporter, m.round, m.sess.Username, mode, score)
}

// submitCmd reports a score off the UI loop.
func submitCmd(r *leaderboard.Reporter, round int, username, mode string, score int) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return SubmitResultMsg{
				Round:  round,
				Result: leaderboard.Result{Skipped: true},
			}
		}
		return SubmitResultMsg{
			Round:  round,
			Result: r.Report(context.Background(), username, mode, score),
		}
	}
}

// updateGameOver handles updates on the game over screen.
func (m SessionModel) updateGameOver(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.gameOver.Update(msg)
	if over, ok := next.(GameOverModel); ok {
		m.gameOver = over
	}

	if m.gameOver.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	choice, ok := m.gameOver.Chosen()
	if !ok {
		return m, cmd
	}
	switch choice {
	case ChoicePlay:
		return m.startGame()
	case ChoiceLeaderboard:
		return m.openBoard()
	default:
		m.sess.Goto(session.ScreenMenu)
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}
}

// openBoard switches to the leaderboard.
func (m SessionModel) openBoard() (tea.Model, tea.Cmd) {
	if !m.sess.Goto(session.ScreenLeaderboard) {
		return m, nil
	}
	var source LeaderboardSource
	if m.deps.Leaderboard != nil {
		source = m.deps.Leaderboard
	}
	m.board = NewScoreboardModel(source, m.sess.Username, m.config.ScreenW, m.config.ScreenH)
	return m, m.board.Init()
}

// updateBoard handles updates on the leaderboard.
func (m SessionModel) updateBoard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.board.Update(msg)
	if board, ok := next.(ScoreboardModel); ok {
		m.board = board
	}

	if m.board.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.board.IsGoingBack() {
		m.sess.Goto(session.ScreenMenu)
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}
	return m, cmd
}

// newMenu builds the menu with the current high scores.
func (m SessionModel) newMenu() MenuModel {
	bests := make(map[string]int)
	for _, g := range registry.List() {
		if mode, ok := snake.ModeForID(g.ID); ok {
			bests[g.ID] = m.best(mode.String())
		}
	}
	return NewMenuModel(m.sess.Username, bests, m.config.ScreenW, m.config.ScreenH).
		Focus(snake.GameID(m.sess.Mode))
}

// best returns the stored high score for a mode, 0 when unknown.
func (m SessionModel) best(mode string) int {
	if m.deps.Leaderboard == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), scoreboardTimeout)
	defer cancel()

	best, err := m.deps.Leaderboard.Best(ctx, mode)
	if err != nil {
		m.deps.Logger.Warn("cannot load high score", "mode", mode, "err", err)
		return 0
	}
	return best
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.sess.Screen {
	case session.ScreenLogin:
		return m.login.View()
	case session.ScreenGame:
		if m.gameModel != nil {
			return m.gameModel.View()
		}
	case session.ScreenGameOver:
		return m.gameOver.View()
	case session.ScreenLeaderboard:
		return m.board.View()
	}
	return m.menu.View()
}

// RunSession runs the full flow in the local terminal, with mode
// highlighted in the menu.
func RunSession(deps Deps, cfg core.RuntimeConfig, username string, mode snake.Mode) error {
	deps = deps.withDefaults()
	deps.Observer.SessionOpened()
	defer deps.Observer.SessionClosed()

	p := tea.NewProgram(
		NewSessionModel(deps, cfg, username).WithMode(mode),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}

// RunGame runs a single game without login or scores.
func RunGame(game registry.Game, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		standaloneGame{NewGameModel(game, cfg, "", 0)},
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

// standaloneGame quits the program when the player leaves the board.
type standaloneGame struct {
	GameModel
}

func (s standaloneGame) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.GameModel.Update(msg)
	s.GameModel = next.(GameModel)
	if s.BackToMenu() {
		return s, tea.Quit
	}
	return s, cmd
}
