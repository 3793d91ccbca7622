package game

import (
	"sort"
	"time"
)

type Note struct {
	Index   int           // The chart column
	Denom   int           // The beat length, as a denominator, 4 = 1/4 beat
	Hold    bool          // Judged on press and again on release
	Time    time.Duration // The time the note should be hit
	TimeEnd time.Duration // The time the note should be released, equal to Time for taps

	// This is state, written by the judge for rendering only
	HitTime     time.Duration // When the note was hit
	MissTime    time.Duration // When the note was given up on
	ReleaseTime time.Duration // When a hold was let go
	Judged      bool
}

// Tap returns a non-hold note in column index at t.
func Tap(index int, t time.Duration) Note {
	return Note{Index: index, Denom: 1, Time: t, TimeEnd: t}
}

// HoldNote returns a hold note in column index from t to end.
func HoldNote(index int, t, end time.Duration) Note {
	return Note{Index: index, Denom: 1, Hold: true, Time: t, TimeEnd: end}
}

// Reset clears the judgement state so the note can be played again.
func (n *Note) Reset() {
	n.HitTime, n.MissTime, n.ReleaseTime = 0, 0, 0
	n.Judged = false
}

// SortNotes orders notes by time, keeping the relative order of notes
// that share a time.
func SortNotes(notes []*Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Time < notes[j].Time
	})
}
