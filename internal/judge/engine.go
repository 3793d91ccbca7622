// Package judge matches key presses against the notes of a chart and
// keeps the score for a run.
package judge

import (
	"errors"
	"fmt"
	"io"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidColumns = errors.New("invalid column count")
	ErrNoteColumn     = errors.New("note column out of range")
)

// Result describes what an input did. Inputs that hit nothing, or that
// arrive out of order, come back with Matched false.
type Result struct {
	Matched   bool
	Judgement game.Judgement
	Note      *game.Note
	Offset    time.Duration // Input time minus the target time, positive is late
}

// Engine owns the note queues and score of one run. It is not safe for
// concurrent use; the owner serialises ticks and inputs.
type Engine struct {
	logger    *logrus.Logger
	listener  Listener
	holdGrace time.Duration

	notes   []*game.Note
	columns []*queue
	state   score.State
	inputs  []game.Input
}

// New returns an engine with no notes. Either argument may be nil.
func New(logger *logrus.Logger, listener Listener) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if listener == nil {
		listener = nopListener{}
	}
	return &Engine{
		logger:    logger,
		listener:  listener,
		holdGrace: GraceFor(0),
	}
}

// GraceFor is the hold grace needed when releases reach the engine up to
// delay after the time they carry. A release inside the widest hold end
// window is then always judged before the sweep gives up on the hold.
func GraceFor(delay time.Duration) time.Duration {
	return delay + game.HoldEndJudgements[len(game.HoldEndJudgements)-2].Window
}

// SetHoldGrace sets how long past its end a hold may stay down before
// it is given up as a miss. It defaults to GraceFor(0); inputs that only
// learn of releases late need longer.
func (e *Engine) SetHoldGrace(d time.Duration) {
	e.holdGrace = d
}

// Seed resets the engine for a new run over notes, which must already
// be in time order within each column.
func (e *Engine) Seed(notes []game.Note, columns int) error {
	if columns <= 0 {
		e.logger.WithField("columns", columns).Error("Rejected seed")
		return fmt.Errorf("%w: %d", ErrInvalidColumns, columns)
	}
	for i, n := range notes {
		if n.Index < 0 || n.Index >= columns {
			e.logger.WithFields(logrus.Fields{
				"note":    i,
				"column":  n.Index,
				"columns": columns,
			}).Error("Rejected seed")
			return fmt.Errorf("%w: note %d in column %d of %d", ErrNoteColumn, i, n.Index, columns)
		}
	}

	e.notes = make([]*game.Note, len(notes))
	e.columns = make([]*queue, columns)
	for c := range e.columns {
		e.columns[c] = &queue{}
	}
	for i := range notes {
		n := notes[i]
		n.Reset()
		e.notes[i] = &n
		q := e.columns[n.Index]
		q.notes = append(q.notes, &n)
	}
	e.state.Reset(len(notes))
	e.inputs = nil

	e.logger.WithFields(logrus.Fields{
		"notes":   len(notes),
		"columns": columns,
	}).Info("Run seeded")
	e.listener.Status(e.state.Snapshot())
	return nil
}

func (e *Engine) column(c int) *queue {
	if c < 0 || c >= len(e.columns) {
		return nil
	}
	return e.columns[c]
}

// KeyDown judges a press in column c at match time at against the head
// of that column. Repeats while the key is down are ignored.
func (e *Engine) KeyDown(c int, at time.Duration) Result {
	q := e.column(c)
	if q == nil || q.down {
		return Result{}
	}
	q.down = true
	e.inputs = append(e.inputs, game.Input{Index: c, HitTime: at})

	e.Tick(at)

	n := q.head()
	if n == nil || at < n.Time-game.MissWindow() {
		return Result{}
	}
	offset := at - n.Time
	j := game.JudgeTap(offset)
	q.advance()
	n.HitTime = at
	n.Judged = true
	if n.Hold {
		q.startHold(n)
	}
	e.state.Tap(j)
	e.report(c, j, offset)
	return Result{Matched: true, Judgement: j, Note: n, Offset: offset}
}

// KeyUp releases column c, judging the end of a hold in progress.
func (e *Engine) KeyUp(c int, at time.Duration) Result {
	q := e.column(c)
	if q == nil || !q.down {
		return Result{}
	}
	q.down = false
	e.inputs = append(e.inputs, game.Input{Index: c, HitTime: at, Release: true})

	e.Tick(at)

	if q.holding == nil {
		return Result{}
	}
	offset := at - q.holdEnd
	j := game.JudgeHoldEnd(offset)
	n := q.endHold()
	n.ReleaseTime = at
	e.state.HoldEnd(j)
	e.report(c, j, offset)
	return Result{Matched: true, Judgement: j, Note: n, Offset: offset}
}

// Tick misses every note whose window closed before at, and gives up on
// holds still down well past their end.
func (e *Engine) Tick(at time.Duration) {
	window := game.MissWindow()
	miss := game.TapJudgements[len(game.TapJudgements)-1]
	holdMiss := game.HoldEndJudgements[len(game.HoldEndJudgements)-1]

	for c, q := range e.columns {
		for n := q.head(); n != nil && n.Time+window < at; n = q.head() {
			q.advance()
			n.MissTime = at
			n.Judged = true
			e.state.Tap(miss)
			e.report(c, miss, at-n.Time)
		}
		if q.holding != nil && at > q.holdEnd+e.holdGrace {
			offset := at - q.holdEnd
			n := q.endHold()
			n.MissTime = at
			e.state.HoldEnd(holdMiss)
			e.report(c, holdMiss, offset)
		}
	}
}

func (e *Engine) report(c int, j game.Judgement, offset time.Duration) {
	if e.logger.IsLevelEnabled(logrus.DebugLevel) {
		e.logger.WithFields(logrus.Fields{
			"column":    c,
			"judgement": j.Tier,
			"offset":    offset,
		}).Debug("Judged")
	}
	e.listener.Flash(c, j)
	e.listener.Status(e.state.Snapshot())
}

// Finished reports whether every note and hold has been judged.
func (e *Engine) Finished() bool {
	for _, q := range e.columns {
		if !q.done() {
			return false
		}
	}
	return true
}

func (e *Engine) Snapshot() score.Snapshot {
	return e.state.Snapshot()
}

// Columns is the column count of the current run.
func (e *Engine) Columns() int {
	return len(e.columns)
}

// Notes are the run's notes in the order they were seeded. The judge
// writes their state fields; callers only read them.
func (e *Engine) Notes() []*game.Note {
	return e.notes
}

// Pointer is the index of the first unjudged note in column c.
func (e *Engine) Pointer(c int) int {
	if q := e.column(c); q != nil {
		return q.pointer
	}
	return 0
}

// Holding returns the end time of the hold in progress in column c.
func (e *Engine) Holding(c int) (time.Duration, bool) {
	if q := e.column(c); q != nil && q.holding != nil {
		return q.holdEnd, true
	}
	return 0, false
}

// Down reports whether column c's key is held.
func (e *Engine) Down(c int) bool {
	q := e.column(c)
	return q != nil && q.down
}

// Inputs are the key transitions accepted this run.
func (e *Engine) Inputs() []game.Input {
	return append([]game.Input(nil), e.inputs...)
}
