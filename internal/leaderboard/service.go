// Package leaderboard validates, stores and ranks finished rounds.
// It is the score collaborator of the snake engine: the engine reports a
// final score, and everything that can go wrong afterwards lives here.
package leaderboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-snake/internal/storage"
)

// Page size limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Sort orders.
const (
	SortScore = storage.SortScore
	SortDate  = storage.SortDate
)

// DuplicateWindow is how long an identical submission is rejected.
const DuplicateWindow = time.Minute

// Repository is the persistence the service needs. *storage.Store implements it.
type Repository interface {
	AddScore(ctx context.Context, username string, score int, mode string) (storage.ScoreEntry, error)
	Leaderboard(ctx context.Context, opts storage.ListOptions) ([]storage.ScoreEntry, int, error)
	UserScores(ctx context.Context, username string, opts storage.ListOptions) ([]storage.ScoreEntry, int, error)
	HasRecentDuplicate(ctx context.Context, username string, score int, mode string, since time.Time) (bool, error)
	HighScore(ctx context.Context, mode string) (int, error)
	Stats(ctx context.Context) (storage.Stats, error)
	Ping(ctx context.Context) error
}

// Submission is a finished round to record.
type Submission struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Mode     string `json:"mode"`
}

// Entry is a stored score as presented to clients.
type Entry struct {
	ID       int64     `json:"id"`
	Rank     int       `json:"rank,omitempty"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
	Date     time.Time `json:"date"`
}

// Query selects a page of entries. Zero values mean defaults.
type Query struct {
	Limit  int
	Offset int
	Mode   string
	Sort   string
}

// Page is one page of a listing.
type Page struct {
	Entries []Entry `json:"data"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	HasMore bool    `json:"has_more"`
}

// ModeSummary aggregates one mode.
type ModeSummary struct {
	Games    int     `json:"games"`
	TopScore int     `json:"top_score"`
	Average  float64 `json:"average_score"`
}

// Summary aggregates the whole leaderboard.
type Summary struct {
	TotalPlayers int                    `json:"total_players"`
	TotalScores  int                    `json:"total_scores"`
	AverageScore float64                `json:"average_score"`
	TopScore     int                    `json:"top_score"`
	ByMode       map[string]ModeSummary `json:"by_mode"`
}

// EventKind tells listeners what happened to a submission.
type EventKind string

const (
	EventAccepted EventKind = "score_submitted"
	EventRejected EventKind = "score_rejected"
)

// Event is delivered to subscribers after every submission attempt.
type Event struct {
	Kind  EventKind `json:"type"`
	Entry Entry     `json:"entry"`
	Code  Code      `json:"code,omitempty"`
}

// Service implements the leaderboard rules on top of a Repository.
type Service struct {
	repo   Repository
	logger *log.Logger
	now    func() time.Time

	mu        sync.RWMutex
	listeners []func(Event)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for duplicate detection.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a leaderboard service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every submission event. Listeners run
// synchronously on the submitting goroutine and must not block.
func (s *Service) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// Submit validates and stores a finished round.
func (s *Service) Submit(ctx context.Context, sub Submission) (Entry, error) {
	entry, err := s.submit(ctx, sub)
	if err != nil {
		code := CodeOf(err)
		s.logger.Warn("score rejected", "username", sub.Username, "score", sub.Score, "mode", sub.Mode, "code", code, "err", err)
		s.publish(Event{
			Kind:  EventRejected,
			Entry: Entry{Username: sub.Username, Score: sub.Score, Mode: sub.Mode},
			Code:  code,
		})
		return Entry{}, err
	}

	s.logger.Info("score submitted", "id", entry.ID, "username", entry.Username, "score", entry.Score, "mode", entry.Mode)
	s.publish(Event{Kind: EventAccepted, Entry: entry})
	return entry, nil
}

func (s *Service) submit(ctx context.Context, sub Submission) (Entry, error) {
	username := SanitizeUsername(sub.Username)
	if err := ValidateUsername(username); err != nil {
		return Entry{}, err
	}
	if err := ValidateScore(sub.Score); err != nil {
		return Entry{}, err
	}
	if err := ValidateMode(sub.Mode); err != nil {
		return Entry{}, err
	}

	dup, err := s.repo.HasRecentDuplicate(ctx, username, sub.Score, sub.Mode, s.now().Add(-DuplicateWindow))
	if err != nil {
		return Entry{}, databaseError("check duplicate", err)
	}
	if dup {
		return Entry{}, newError(CodeDuplicate, http.StatusConflict,
			"Same score submitted recently. Please wait before submitting again.")
	}

	stored, err := s.repo.AddScore(ctx, username, sub.Score, sub.Mode)
	if err != nil {
		return Entry{}, databaseError("add score", err)
	}
	return toEntry(stored, 0), nil
}

// Leaderboard returns one page of the global ranking.
func (s *Service) Leaderboard(ctx context.Context, q Query) (Page, error) {
	q, err := normalize(q)
	if err != nil {
		return Page{}, err
	}

	rows, total, err := s.repo.Leaderboard(ctx, listOptions(q))
	if err != nil {
		return Page{}, databaseError("leaderboard", err)
	}
	return newPage(rows, total, q), nil
}

// UserScores returns one page of a single player's scores, best first.
func (s *Service) UserScores(ctx context.Context, username string, q Query) (Page, error) {
	q, err := normalize(q)
	if err != nil {
		return Page{}, err
	}
	name := SanitizeUsername(username)
	if name == "" {
		return Page{}, NotFound(fmt.Sprintf("No scores found for user: %s", username))
	}

	rows, total, err := s.repo.UserScores(ctx, name, listOptions(q))
	if err != nil {
		return Page{}, databaseError("user scores", err)
	}
	if total == 0 {
		return Page{}, NotFound(fmt.Sprintf("No scores found for user: %s", name))
	}
	return newPage(rows, total, q), nil
}

// Stats returns aggregate statistics.
func (s *Service) Stats(ctx context.Context) (Summary, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return Summary{}, databaseError("stats", err)
	}

	sum := Summary{
		TotalPlayers: st.TotalPlayers,
		TotalScores:  st.TotalGames,
		AverageScore: round2(st.Average),
		TopScore:     st.TopScore,
		ByMode:       make(map[string]ModeSummary, len(st.ByMode)),
	}
	for mode, ms := range st.ByMode {
		sum.ByMode[mode] = ModeSummary{
			Games:    ms.Games,
			TopScore: ms.TopScore,
			Average:  round2(ms.Average),
		}
	}
	return sum, nil
}

// Best returns the stored high score for a mode, or across all modes when
// mode is empty.
func (s *Service) Best(ctx context.Context, mode string) (int, error) {
	best, err := s.repo.HighScore(ctx, mode)
	if err != nil {
		return 0, databaseError("high score", err)
	}
	return best, nil
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return databaseError("ping", err)
	}
	return nil
}

// normalize applies defaults and rejects unknown filters.
func normalize(q Query) (Query, error) {
	if q.Limit < 1 || q.Limit > MaxLimit {
		q.Limit = DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	switch q.Sort {
	case "":
		q.Sort = SortScore
	case SortScore, SortDate:
	default:
		return q, ValidationError(fmt.Sprintf("Unknown sort %q", q.Sort), map[string]any{
			"field":   "sort",
			"allowed": []string{SortScore, SortDate},
		})
	}
	if q.Mode != "" {
		if err := ValidateMode(q.Mode); err != nil {
			return q, err
		}
	}
	return q, nil
}

func listOptions(q Query) storage.ListOptions {
	return storage.ListOptions{
		Mode:   q.Mode,
		Sort:   q.Sort,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}

func newPage(rows []storage.ScoreEntry, total int, q Query) Page {
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		rank := 0
		if q.Sort == SortScore {
			rank = q.Offset + i + 1
		}
		entries[i] = toEntry(r, rank)
	}
	return Page{
		Entries: entries,
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
		HasMore: q.Offset+q.Limit < total,
	}
}

func toEntry(r storage.ScoreEntry, rank int) Entry {
	return Entry{
		ID:       r.ID,
		Rank:     rank,
		Username: r.Username,
		Score:    r.Score,
		Mode:     r.Mode,
		Date:     r.CreatedAt,
	}
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
