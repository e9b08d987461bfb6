package snake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

type snapshotLog struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (l *snapshotLog) add(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps = append(l.snaps, s)
}

func (l *snapshotLog) last() (Snapshot, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.snaps) == 0 {
		return Snapshot{}, 0
	}
	return l.snaps[len(l.snaps)-1], len(l.snaps)
}

func waitFor(t *testing.T, log *snapshotLog, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s, n := log.last(); n > 0 && cond(s) {
			return s
		}
		time.Sleep(2 * time.Millisecond)
	}
	s, _ := log.last()
	t.Fatalf("condition not reached, last snapshot %+v", s)
	return Snapshot{}
}

func TestDriverRunsUntilGameOver(t *testing.T) {
	e := NewEngine(ModeWalls, DefaultSettings(), 5)
	overs := make(chan int, 1)
	e.OnGameOver(func(score int) { overs <- score })

	log := &snapshotLog{}
	d := NewDriver(e, WithSnapshots(log.add), WithTimeScale(50))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	if !d.Send(StartCommand()) {
		t.Fatal("Send(start) rejected")
	}
	waitFor(t, log, func(s Snapshot) bool { return s.Running })

	// Heading up from the middle of a walled board always ends the round.
	d.Send(TurnCommand(core.DirUp))

	select {
	case <-overs:
	case <-time.After(5 * time.Second):
		t.Fatal("round did not end")
	}
	waitFor(t, log, func(s Snapshot) bool { return !s.Running && len(s.Snake) > 0 })

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestDriverPause(t *testing.T) {
	e := NewEngine(ModeWrap, DefaultSettings(), 5)
	log := &snapshotLog{}
	d := NewDriver(e, WithSnapshots(log.add), WithTimeScale(50))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx) //nolint:errcheck

	d.Send(StartCommand())
	d.Send(PauseCommand())
	paused := waitFor(t, log, func(s Snapshot) bool { return s.Paused })

	time.Sleep(50 * time.Millisecond)
	if s, _ := log.last(); !s.Paused || s.Ticks != paused.Ticks {
		t.Fatalf("state advanced while paused: %+v", s)
	}

	d.Send(PauseCommand())
	waitFor(t, log, func(s Snapshot) bool { return !s.Paused && s.Ticks > paused.Ticks })
}

func TestDriverSendQueueFull(t *testing.T) {
	d := NewDriver(NewEngine(ModeWalls, DefaultSettings(), 1))
	sent := 0
	for range 100 {
		if d.Send(PauseCommand()) {
			sent++
		}
	}
	if sent != cap(d.commands) {
		t.Errorf("accepted %d commands without a running driver, want %d", sent, cap(d.commands))
	}
}

func TestDriverStartWaitsForRoom(t *testing.T) {
	e := NewEngine(ModeWalls, DefaultSettings(), 1)
	log := &snapshotLog{}
	d := NewDriver(e, WithSnapshots(log.add), WithTimeScale(50))

	// Fill the queue before the driver runs; a plain Send of Start is dropped.
	for d.Send(PauseCommand()) {
	}
	if d.Send(StartCommand()) {
		t.Fatal("Send accepted a command on a full queue")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	short, stop := context.WithTimeout(ctx, 20*time.Millisecond)
	err := d.SendContext(short, StartCommand())
	stop()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("SendContext on a stalled queue = %v, want deadline exceeded", err)
	}

	sent := make(chan error, 1)
	go func() { sent <- d.SendContext(ctx, StartCommand()) }()
	go d.Run(ctx) //nolint:errcheck

	select {
	case err := <-sent:
		if err != nil {
			t.Fatalf("SendContext = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("start was never queued")
	}
	waitFor(t, log, func(s Snapshot) bool { return s.Running && s.Ticks > 0 })
}

func TestDriverPeriod(t *testing.T) {
	e := NewEngine(ModeWalls, DefaultSettings(), 1)

	tests := []struct {
		scale float64
		want  time.Duration
	}{
		{1, 150 * time.Millisecond},
		{2, 75 * time.Millisecond},
		{0, 150 * time.Millisecond}, // ignored
		{1e6, time.Millisecond},
	}

	for _, tt := range tests {
		d := NewDriver(e, WithTimeScale(tt.scale))
		if got := d.period(); got != tt.want {
			t.Errorf("scale %v: period = %v, want %v", tt.scale, got, tt.want)
		}
	}
}
