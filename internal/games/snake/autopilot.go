package snake

import "github.com/vovakirdan/tui-snake/internal/core"

// Autopilot picks a direction greedily: never a move that dies on the next
// tick, otherwise the one that gets closest to the food, preferring cells
// with more free neighbours. It is used by the headless autoplay command and
// as a smoke player in tests.
type Autopilot struct{}

var turnOrder = [...]core.Direction{core.DirUp, core.DirRight, core.DirDown, core.DirLeft}

// Next returns the direction to send for the given state.
// ok is false when every candidate move is fatal.
func (Autopilot) Next(s Snapshot) (dir core.Direction, ok bool) {
	head, has := s.Head()
	if !has || !s.Running {
		return s.Direction, false
	}

	best := s.Direction
	bestDist, bestFree := -1, -1
	for _, d := range turnOrder {
		if d == s.Direction.Opposite() {
			continue
		}
		next, alive := step(s, head, d)
		if !alive {
			continue
		}
		dist := distance(next, s.Food, s.GridSize, s.Mode)
		free := freeNeighbours(s, next)
		if bestDist < 0 || dist < bestDist || (dist == bestDist && free > bestFree) {
			best, bestDist, bestFree = d, dist, free
		}
	}
	return best, bestDist >= 0
}

// step mirrors Engine.Tick collision rules for a single candidate move.
func step(s Snapshot, head core.Point, d core.Direction) (core.Point, bool) {
	next := head.Add(d.Delta())
	if s.Mode == ModeWalls {
		if !next.In(s.GridSize) {
			return next, false
		}
	} else {
		next = next.Wrap(s.GridSize)
	}
	for _, seg := range s.Snake[:len(s.Snake)-1] {
		if seg == next {
			return next, false
		}
	}
	return next, true
}

func freeNeighbours(s Snapshot, p core.Point) int {
	n := 0
	for _, d := range turnOrder {
		q := p.Add(d.Delta())
		if s.Mode == ModeWrap {
			q = q.Wrap(s.GridSize)
		} else if !q.In(s.GridSize) {
			continue
		}
		occupied := false
		for _, seg := range s.Snake {
			if seg == q {
				occupied = true
				break
			}
		}
		if !occupied {
			n++
		}
	}
	return n
}

// distance is the Manhattan distance, measured around the torus in wrap mode.
func distance(a, b core.Point, size int, mode Mode) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if mode == ModeWrap {
		dx = min(dx, size-dx)
		dy = min(dy, size-dy)
	}
	return dx + dy
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
