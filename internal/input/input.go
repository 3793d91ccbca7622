// Package input turns keyboard activity into timestamped press and
// release events.
package input

import "time"

type Event struct {
	Rune     rune
	Escape   bool
	Pressed  bool
	Released bool
	Time     time.Time
}

// Source delivers key events until closed.
type Source interface {
	Events() <-chan Event
	Close() error
}
