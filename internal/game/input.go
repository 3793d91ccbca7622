package game

import "time"

// Input is a single key transition in a column.
type Input struct {
	Index   int
	HitTime time.Duration
	Release bool `json:",omitempty"`
}
