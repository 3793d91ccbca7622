package game

import "time"

type Tier int

const (
	Perfect Tier = iota
	Great
	Good
	Miss
	HoldPerfect
	HoldGreat
	HoldMiss
)

func (t Tier) String() string {
	switch t {
	case Perfect:
		return "Perfect"
	case Great:
		return "Great"
	case Good:
		return "Good"
	case Miss:
		return "Miss"
	case HoldPerfect:
		return "Hold Perfect"
	case HoldGreat:
		return "Hold Great"
	case HoldMiss:
		return "Hold Miss"
	}
	return "Unknown"
}

// Tag is the colour tag a presenter uses for the tier.
func (t Tier) Tag() string {
	switch t {
	case Perfect, HoldPerfect:
		return "perfect"
	case Great, HoldGreat:
		return "great"
	case Good:
		return "good"
	}
	return "miss"
}

// IsMiss reports whether the tier breaks combo.
func (t Tier) IsMiss() bool {
	return t == Miss || t == HoldMiss
}

type Judgement struct {
	Tier   Tier
	Window time.Duration // Inclusive upper bound of the distance, 0 for misses
	Score  int
}

// NoteValue is what every note adds to the achievable total.
const NoteValue = 500

var (
	// TapJudgements are ordered tightest first, the final entry is the miss.
	TapJudgements = []Judgement{
		{Tier: Perfect, Window: 50 * time.Millisecond, Score: 500},
		{Tier: Great, Window: 100 * time.Millisecond, Score: 400},
		{Tier: Good, Window: 149 * time.Millisecond, Score: 250},
		{Tier: Miss},
	}

	HoldEndJudgements = []Judgement{
		{Tier: HoldPerfect, Window: 80 * time.Millisecond, Score: 500},
		{Tier: HoldGreat, Window: 150 * time.Millisecond, Score: 400},
		{Tier: HoldMiss},
	}
)

// MissWindow is how far past a note's time it can still be hit.
func MissWindow() time.Duration {
	return TapJudgements[len(TapJudgements)-2].Window
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

func classify(table []Judgement, distance time.Duration) Judgement {
	d := abs(distance)
	for _, j := range table[:len(table)-1] {
		if d <= j.Window {
			return j
		}
	}
	return table[len(table)-1]
}

// JudgeTap classifies the distance between a press and a note.
func JudgeTap(distance time.Duration) Judgement {
	return classify(TapJudgements, distance)
}

// JudgeHoldEnd classifies the distance between a release and a hold's end.
func JudgeHoldEnd(distance time.Duration) Judgement {
	return classify(HoldEndJudgements, distance)
}
