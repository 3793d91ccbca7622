package score

import (
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
)

type Store interface {
	Init(path string) error
	Deinit()

	// Save the state of this performance
	Save(chart *game.Chart, inputs []game.Input, result Snapshot) error

	// Load up previous state for the chart
	Load(chart *game.Chart) ([]History, error)
}

type History struct {
	Sum      string
	PlayedAt time.Time
	Inputs   []game.Input
	Result   Snapshot
}

// Best returns the history with the highest accuracy.
func Best(histories []History) (History, bool) {
	if len(histories) == 0 {
		return History{}, false
	}
	best := histories[0]
	for _, h := range histories[1:] {
		if h.Result.Accuracy() > best.Result.Accuracy() {
			best = h
		}
	}
	return best, true
}
