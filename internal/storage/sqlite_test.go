package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTest opens a file-backed store with a controllable clock.
func openTest(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.AddScore(ctx, "ALICE", 40, "walls"); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore(ctx, "walls")
	if err != nil || high != 40 {
		t.Errorf("HighScore() = %d, %v; want 40", high, err)
	}
}

func TestStoreMemory(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer store.Close()

	if _, err := store.AddScore(context.Background(), "BOB", 10, "walls"); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
}

func TestStoreAddScore(t *testing.T) {
	store, clock := openTest(t)
	ctx := context.Background()

	entry, err := store.AddScore(ctx, "ALICE", 120, "walls")
	if err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	if entry.ID == 0 || entry.Username != "ALICE" || entry.Score != 120 || entry.Mode != "walls" {
		t.Errorf("entry = %+v", entry)
	}
	if !entry.CreatedAt.Equal(*clock) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, *clock)
	}

	// Same user again reuses the row in users.
	if _, err := store.AddScore(ctx, "ALICE", 30, "walls-through"); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.TotalPlayers != 1 || st.TotalGames != 2 {
		t.Errorf("players=%d games=%d, want 1 and 2", st.TotalPlayers, st.TotalGames)
	}
}

func seed(t *testing.T, store *Store, clock *time.Time) {
	t.Helper()
	rows := []struct {
		user  string
		score int
		mode  string
	}{
		{"ALICE", 100, "walls"},
		{"BOB", 50, "walls"},
		{"CAROL", 200, "walls"},
		{"ALICE", 300, "walls-through"},
		{"BOB", 100, "walls"},
	}
	for _, r := range rows {
		*clock = clock.Add(time.Second)
		if _, err := store.AddScore(context.Background(), r.user, r.score, r.mode); err != nil {
			t.Fatalf("AddScore(%+v) failed: %v", r, err)
		}
	}
}

func TestStoreLeaderboard(t *testing.T) {
	store, clock := openTest(t)
	seed(t, store, clock)
	ctx := context.Background()

	tests := []struct {
		name      string
		opts      ListOptions
		wantTotal int
		want      []string // username:score
	}{
		{"all by score", ListOptions{Limit: 10}, 5, []string{"ALICE:300", "CAROL:200", "ALICE:100", "BOB:100", "BOB:50"}},
		{"walls only", ListOptions{Mode: "walls", Limit: 10}, 4, []string{"CAROL:200", "ALICE:100", "BOB:100", "BOB:50"}},
		{"paged", ListOptions{Limit: 2, Offset: 1}, 5, []string{"CAROL:200", "ALICE:100"}},
		{"by date", ListOptions{Sort: SortDate, Limit: 2}, 5, []string{"BOB:100", "ALICE:300"}},
		{"past the end", ListOptions{Limit: 10, Offset: 10}, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, total, err := store.Leaderboard(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Leaderboard() failed: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, e := range entries {
				if got := fmt.Sprintf("%s:%d", e.Username, e.Score); got != tt.want[i] {
					t.Errorf("entry %d = %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestStoreUserScores(t *testing.T) {
	store, clock := openTest(t)
	seed(t, store, clock)
	ctx := context.Background()

	entries, total, err := store.UserScores(ctx, "BOB", ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("UserScores() failed: %v", err)
	}
	if total != 2 || len(entries) != 2 {
		t.Fatalf("total=%d len=%d, want 2", total, len(entries))
	}
	if entries[0].Score != 100 || entries[1].Score != 50 {
		t.Errorf("scores = %d, %d; want 100, 50", entries[0].Score, entries[1].Score)
	}

	entries, total, err = store.UserScores(ctx, "NOBODY", ListOptions{})
	if err != nil || total != 0 || len(entries) != 0 {
		t.Errorf("unknown user: %v entries, total %d, err %v", entries, total, err)
	}
}

func TestStoreHasRecentDuplicate(t *testing.T) {
	store, clock := openTest(t)
	ctx := context.Background()

	if _, err := store.AddScore(ctx, "ALICE", 100, "walls"); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	stored := *clock

	tests := []struct {
		name  string
		score int
		mode  string
		since time.Time
		want  bool
	}{
		{"same within window", 100, "walls", stored.Add(-time.Minute), true},
		{"different score", 90, "walls", stored.Add(-time.Minute), false},
		{"different mode", 100, "walls-through", stored.Add(-time.Minute), false},
		{"outside window", 100, "walls", stored.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.HasRecentDuplicate(ctx, "ALICE", tt.score, tt.mode, tt.since)
			if err != nil {
				t.Fatalf("HasRecentDuplicate() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasRecentDuplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreStats(t *testing.T) {
	store, clock := openTest(t)
	ctx := context.Background()

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() on empty db failed: %v", err)
	}
	if st.TotalGames != 0 || st.TopScore != 0 || len(st.ByMode) != 0 {
		t.Errorf("empty stats = %+v", st)
	}

	seed(t, store, clock)
	st, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.TotalGames != 5 || st.TotalPlayers != 3 || st.TopScore != 300 {
		t.Errorf("stats = %+v", st)
	}
	if st.Average != 150 {
		t.Errorf("average = %v, want 150", st.Average)
	}
	walls := st.ByMode["walls"]
	if walls.Games != 4 || walls.TopScore != 200 || walls.Average != 112.5 {
		t.Errorf("walls stats = %+v", walls)
	}
}

func TestStoreHighScoreAndClear(t *testing.T) {
	store, clock := openTest(t)
	seed(t, store, clock)
	ctx := context.Background()

	for mode, want := range map[string]int{"walls": 200, "walls-through": 300, "": 300, "nope": 0} {
		got, err := store.HighScore(ctx, mode)
		if err != nil || got != want {
			t.Errorf("HighScore(%q) = %d, %v; want %d", mode, got, err, want)
		}
	}

	if err := store.ClearScores(ctx, "walls"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	if got, _ := store.HighScore(ctx, "walls"); got != 0 {
		t.Errorf("walls high score after clear = %d", got)
	}
	if got, _ := store.HighScore(ctx, "walls-through"); got != 300 {
		t.Errorf("walls-through cleared too: %d", got)
	}

	if err := store.ClearScores(ctx, ""); err != nil {
		t.Fatalf("ClearScores(all) failed: %v", err)
	}
	if got, _ := store.HighScore(ctx, ""); got != 0 {
		t.Errorf("high score after full clear = %d", got)
	}
}
