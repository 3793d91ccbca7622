// Package clock turns wall clock samples into match time, the
// elapsed time since the nominal start of the audio.
package clock

import (
	"context"
	"time"
)

// DefaultLeadIn is how long before the audio start a run begins.
const DefaultLeadIn = 3 * time.Second

type TimeBase struct {
	now       func() time.Time
	start     time.Time
	corrected bool
}

// New returns a time base reading from now, or time.Now when nil.
func New(now func() time.Time) *TimeBase {
	if now == nil {
		now = time.Now
	}
	tb := &TimeBase{now: now}
	tb.Seed(0)
	return tb
}

// Seed starts a new run so that Now begins at -leadIn.
func (tb *TimeBase) Seed(leadIn time.Duration) {
	tb.start = tb.now().Add(leadIn)
	tb.corrected = false
}

// Now is the current match time.
func (tb *TimeBase) Now() time.Duration {
	return tb.now().Sub(tb.start)
}

// At is the match time of a wall clock instant, such as an input
// event's timestamp.
func (tb *TimeBase) At(t time.Time) time.Duration {
	return t.Sub(tb.start)
}

// Start is the wall clock instant of match time 0.
func (tb *TimeBase) Start() time.Time {
	return tb.start
}

// Correct rebases the start so Now reads trueOffset at this instant.
// Only the first call after Seed has an effect.
func (tb *TimeBase) Correct(trueOffset time.Duration) bool {
	if tb.corrected {
		return false
	}
	tb.start = tb.now().Add(-trueOffset)
	tb.corrected = true
	return true
}

// Corrected reports whether Correct has been applied this run.
func (tb *TimeBase) Corrected() bool {
	return tb.corrected
}

// Loop calls fn with the match time every period until fn returns false
// or ctx is done.
func (tb *TimeBase) Loop(ctx context.Context, period time.Duration, fn func(now time.Duration) bool) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		if !fn(tb.Now()) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
