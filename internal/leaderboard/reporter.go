package leaderboard

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Submitter is the part of Service a Reporter needs.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (Entry, error)
}

// Result is the outcome of reporting one finished round.
type Result struct {
	Submission Submission
	Entry      Entry
	Err        error
	Skipped    bool // No username, nothing was sent
}

// Reporter turns game-over notifications into submissions. Failures are
// logged and returned in the Result; they never flow back into the game.
type Reporter struct {
	svc     Submitter
	logger  *log.Logger
	timeout time.Duration
}

// NewReporter creates a reporter. A nil logger discards output and a
// non-positive timeout means 5 seconds.
func NewReporter(svc Submitter, logger *log.Logger, timeout time.Duration) *Reporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Reporter{svc: svc, logger: logger, timeout: timeout}
}

// Report submits one finished round and waits for the outcome.
func (r *Reporter) Report(ctx context.Context, username, mode string, score int) Result {
	sub := Submission{Username: username, Score: score, Mode: mode}
	if username == "" || r.svc == nil {
		return Result{Submission: sub, Skipped: true}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	entry, err := r.svc.Submit(ctx, sub)
	if err != nil {
		r.logger.Error("failed to submit score", "username", username, "score", score, "mode", mode, "err", err)
	}
	return Result{Submission: sub, Entry: entry, Err: err}
}

// Hook returns a game-over listener that reports in the background, so the
// caller's loop is never blocked by storage. done, if not nil, receives the
// result on the reporting goroutine.
func (r *Reporter) Hook(ctx context.Context, username, mode string, done func(Result)) func(finalScore int) {
	return func(finalScore int) {
		go func() {
			res := r.Report(ctx, username, mode, finalScore)
			if done != nil {
				done(res)
			}
		}()
	}
}
