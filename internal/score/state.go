package score

import "git.lost.host/meutraa/cadence/internal/game"

// Snapshot is a copy of the running totals that readers may keep.
type Snapshot struct {
	NoteCount      int `json:"note_count"`
	Perfect        int `json:"perfect"`
	Great          int `json:"great"`
	Good           int `json:"good"`
	Miss           int `json:"miss"`
	HoldEndPerfect int `json:"hold_end_perfect"`
	HoldEndGreat   int `json:"hold_end_great"`
	HoldEndMiss    int `json:"hold_end_miss"`
	Combo          int `json:"combo"`
	MaxCombo       int `json:"max_combo"`
	TotalScore     int `json:"total_score"`
	Score          int `json:"score"`
}

// Accuracy is the earned share of the achievable score so far, 1 before
// anything has been judged.
func (s Snapshot) Accuracy() float64 {
	if s.TotalScore == 0 {
		return 1
	}
	return float64(s.Score) / float64(s.TotalScore)
}

// Judged is how many tap judgements have been made.
func (s Snapshot) Judged() int {
	return s.Perfect + s.Great + s.Good + s.Miss
}

// Count returns the counter for a tier.
func (s Snapshot) Count(t game.Tier) int {
	switch t {
	case game.Perfect:
		return s.Perfect
	case game.Great:
		return s.Great
	case game.Good:
		return s.Good
	case game.Miss:
		return s.Miss
	case game.HoldPerfect:
		return s.HoldEndPerfect
	case game.HoldGreat:
		return s.HoldEndGreat
	case game.HoldMiss:
		return s.HoldEndMiss
	}
	return 0
}

// State accumulates judgements for one run. It is owned by the judge.
type State struct {
	s Snapshot
}

// Reset zeroes everything for a run of noteCount notes.
func (st *State) Reset(noteCount int) {
	st.s = Snapshot{NoteCount: noteCount}
}

// Tap records the judgement of a note's press, or its passive miss.
func (st *State) Tap(j game.Judgement) {
	st.s.TotalScore += game.NoteValue
	st.s.Score += j.Score
	switch j.Tier {
	case game.Perfect:
		st.s.Perfect++
	case game.Great:
		st.s.Great++
	case game.Good:
		st.s.Good++
	default:
		st.s.Miss++
		st.s.Combo = 0
		return
	}
	st.s.Combo++
	if st.s.Combo > st.s.MaxCombo {
		st.s.MaxCombo = st.s.Combo
	}
}

// HoldEnd records the judgement of a hold's release. Only a miss
// touches the combo.
func (st *State) HoldEnd(j game.Judgement) {
	st.s.TotalScore += game.NoteValue
	st.s.Score += j.Score
	switch j.Tier {
	case game.HoldPerfect:
		st.s.HoldEndPerfect++
	case game.HoldGreat:
		st.s.HoldEndGreat++
	default:
		st.s.HoldEndMiss++
		st.s.Combo = 0
	}
}

func (st *State) Snapshot() Snapshot {
	return st.s
}
