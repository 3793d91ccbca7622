package judge

import (
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
)

// queue is one column's notes in time order. Everything before pointer
// has been judged.
type queue struct {
	notes   []*game.Note
	pointer int

	// holding is the hold whose start was judged and whose end was not,
	// holdEnd is its release time.
	holding *game.Note
	holdEnd time.Duration

	down bool
}

func (q *queue) head() *game.Note {
	if q.pointer >= len(q.notes) {
		return nil
	}
	return q.notes[q.pointer]
}

func (q *queue) advance() *game.Note {
	n := q.notes[q.pointer]
	q.pointer++
	return n
}

func (q *queue) startHold(n *game.Note) {
	q.holding = n
	q.holdEnd = n.TimeEnd
}

func (q *queue) endHold() *game.Note {
	n := q.holding
	q.holding = nil
	q.holdEnd = 0
	return n
}

func (q *queue) done() bool {
	return q.pointer == len(q.notes) && q.holding == nil
}
