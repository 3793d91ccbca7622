package judge

import (
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
	"github.com/sirupsen/logrus"
)

// Replay plays recorded inputs over notes with a fresh engine and sweeps
// past the final note, returning the result the run would have had.
func Replay(logger *logrus.Logger, notes []game.Note, columns int, inputs []game.Input) (score.Snapshot, error) {
	e := New(logger, nil)
	if err := e.Seed(notes, columns); err != nil {
		return score.Snapshot{}, err
	}
	var end time.Duration
	for _, in := range inputs {
		if in.Release {
			e.KeyUp(in.Index, in.HitTime)
		} else {
			e.KeyDown(in.Index, in.HitTime)
		}
		if in.HitTime > end {
			end = in.HitTime
		}
	}
	for _, n := range notes {
		if n.TimeEnd > end {
			end = n.TimeEnd
		}
	}
	e.Tick(end + time.Second)
	return e.Snapshot(), nil
}
