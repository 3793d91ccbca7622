package game

import (
	"time"
)

type Measure struct {
	Denom int           // The beat length, as a denominator, 4 = 1/4 beat
	Time  time.Duration // The time the line crosses the bar
}

type BPM struct {
	StartingBeat float64
	Value        float64
}
