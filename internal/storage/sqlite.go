// Package storage provides SQLite-based persistence for players and scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeLayout is how timestamps are stored. It sorts lexically in time order.
const timeLayout = "2006-01-02 15:04:05.000"

// Sort orders supported by list queries.
const (
	SortScore = "score"
	SortDate  = "date"
)

// Store manages the SQLite database connection for score persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// ScoreEntry represents a single stored score.
type ScoreEntry struct {
	ID        int64
	Username  string
	Score     int
	Mode      string
	CreatedAt time.Time
}

// ListOptions filters and pages score listings. Empty Mode means every mode.
type ListOptions struct {
	Mode   string
	Sort   string
	Limit  int
	Offset int
}

// ModeStats aggregates the scores of one mode.
type ModeStats struct {
	Games    int
	TopScore int
	Average  float64
}

// Stats aggregates the whole leaderboard.
type Stats struct {
	TotalGames   int
	TotalPlayers int
	TopScore     int
	Average      float64
	ByMode       map[string]ModeStats
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
// The special path ":memory:" opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		// Expand ~ to home directory
		if dbPath != "" && dbPath[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}

		// Create parent directories
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	// Open database
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			score INTEGER NOT NULL CHECK (score >= 0),
			mode TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(mode, score DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_created ON scores(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("storage: ping failed: %w", err)
	}
	return nil
}

// AddScore records a score, creating the user on first sight.
func (s *Store) AddScore(ctx context.Context, username string, score int, mode string) (ScoreEntry, error) {
	now := s.now().UTC()
	stamp := now.Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, created_at) VALUES (?, ?) ON CONFLICT(username) DO NOTHING",
		username, stamp,
	); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot upsert user: %w", err)
	}

	var userID int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&userID); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot find user: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO scores (user_id, score, mode, created_at) VALUES (?, ?, ?, ?)",
		userID, score, mode, stamp,
	)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot commit score: %w", err)
	}

	created, _ := time.Parse(timeLayout, stamp)
	return ScoreEntry{
		ID:        id,
		Username:  username,
		Score:     score,
		Mode:      mode,
		CreatedAt: created,
	}, nil
}

// Leaderboard returns one page of scores across all players and the total
// number of matching rows.
func (s *Store) Leaderboard(ctx context.Context, opts ListOptions) ([]ScoreEntry, int, error) {
	return s.list(ctx, "", opts)
}

// UserScores returns one page of a single player's scores.
func (s *Store) UserScores(ctx context.Context, username string, opts ListOptions) ([]ScoreEntry, int, error) {
	return s.list(ctx, username, opts)
}

func (s *Store) list(ctx context.Context, username string, opts ListOptions) ([]ScoreEntry, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	where := "WHERE u.is_active = 1"
	var args []any
	if opts.Mode != "" {
		where += " AND s.mode = ?"
		args = append(args, opts.Mode)
	}
	if username != "" {
		where += " AND u.username = ?"
		args = append(args, username)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM scores s JOIN users u ON u.id = s.user_id "+where,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("storage: cannot count scores: %w", err)
	}

	order := "ORDER BY s.score DESC, s.created_at ASC, s.id ASC"
	if opts.Sort == SortDate {
		order = "ORDER BY s.created_at DESC, s.id DESC"
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, u.username, s.score, s.mode, s.created_at
		 FROM scores s
		 JOIN users u ON u.id = s.user_id
		 `+where+" "+order+" LIMIT ? OFFSET ?",
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Username, &e.Score, &e.Mode, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, total, nil
}

// HasRecentDuplicate reports whether the same user stored the same score in
// the same mode at or after since.
func (s *Store) HasRecentDuplicate(ctx context.Context, username string, score int, mode string, since time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM scores s
		 JOIN users u ON u.id = s.user_id
		 WHERE u.username = ? AND s.score = ? AND s.mode = ? AND s.created_at >= ?`,
		username, score, mode, since.UTC().Format(timeLayout),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot check duplicates: %w", err)
	}
	return n > 0, nil
}

// Stats aggregates every stored score.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByMode: make(map[string]ModeStats)}

	var top sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id), MAX(score), AVG(score) FROM scores`,
	).Scan(&st.TotalGames, &st.TotalPlayers, &top, &avg)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	st.TopScore = int(top.Int64)
	st.Average = avg.Float64

	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, COUNT(*), MAX(score), AVG(score) FROM scores GROUP BY mode`,
	)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query mode stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mode string
		var ms ModeStats
		if err := rows.Scan(&mode, &ms.Games, &ms.TopScore, &ms.Average); err != nil {
			return st, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		st.ByMode[mode] = ms
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return st, nil
}

// HighScore returns the highest score for the given mode, or across all
// modes when mode is empty. Returns 0 if no scores exist.
func (s *Store) HighScore(ctx context.Context, mode string) (int, error) {
	var score sql.NullInt64
	query := "SELECT MAX(score) FROM scores"
	var args []any
	if mode != "" {
		query += " WHERE mode = ?"
		args = append(args, mode)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given mode, or every score when
// mode is empty. Users are kept.
func (s *Store) ClearScores(ctx context.Context, mode string) error {
	query := "DELETE FROM scores"
	var args []any
	if mode != "" {
		query += " WHERE mode = ?"
		args = append(args, mode)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string values from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
