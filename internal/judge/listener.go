package judge

import (
	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
)

// Listener receives judgement and status events from an Engine. Calls
// are made synchronously from the goroutine driving the engine and the
// snapshot is a copy.
type Listener interface {
	// Flash is a visual effect at a column, coloured by j.Tier.Tag().
	Flash(column int, j game.Judgement)
	// Status is called whenever the totals change.
	Status(s score.Snapshot)
}

// Listeners fans events out in order.
type Listeners []Listener

func (ls Listeners) Flash(column int, j game.Judgement) {
	for _, l := range ls {
		l.Flash(column, j)
	}
}

func (ls Listeners) Status(s score.Snapshot) {
	for _, l := range ls {
		l.Status(s)
	}
}

type nopListener struct{}

func (nopListener) Flash(int, game.Judgement) {}
func (nopListener) Status(score.Snapshot)     {}
