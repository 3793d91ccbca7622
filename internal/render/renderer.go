package render

import (
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
)

// Field is the judge state a frame is drawn from.
type Field interface {
	Notes() []*game.Note
	Columns() int
	Holding(c int) (time.Duration, bool)
	Down(c int) bool
}

type Renderer interface {
	Init() error
	Deinit() error
	Resize()
	SetChart(chart *game.Chart, length time.Duration)
	Frame(field Field, now time.Duration)
	Results(s score.Snapshot, best *score.Snapshot)

	// Judge events
	Flash(column int, j game.Judgement)
	Status(s score.Snapshot)
}
