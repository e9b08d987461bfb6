package snake

import "github.com/vovakirdan/tui-snake/internal/core"

// placeFood samples grid cells uniformly and rejects occupied ones.
// A completely filled board keeps the old food position instead of spinning.
func (e *Engine) placeFood() {
	size := e.settings.GridSize
	if len(e.snake) >= size*size {
		return
	}

	for {
		p := core.Point{X: e.rng.Intn(size), Y: e.rng.Intn(size)}
		if !e.hits(p, e.snake) {
			e.food = p
			return
		}
	}
}

// Occupied reports whether any snake segment covers p.
func (e *Engine) Occupied(p core.Point) bool {
	return e.hits(p, e.snake)
}
