package score

import (
	"testing"

	"git.lost.host/meutraa/cadence/internal/game"
)

func judgement(t game.Tier) game.Judgement {
	for _, j := range append(append([]game.Judgement{}, game.TapJudgements...), game.HoldEndJudgements...) {
		if j.Tier == t {
			return j
		}
	}
	panic("unknown tier")
}

func TestStateCombo(t *testing.T) {
	var st State
	st.Reset(5)
	st.Tap(judgement(game.Perfect))
	st.Tap(judgement(game.Great))
	st.Tap(judgement(game.Good))
	s := st.Snapshot()
	if s.Combo != 3 || s.MaxCombo != 3 {
		t.Fatalf("combo %v max %v", s.Combo, s.MaxCombo)
	}
	if s.Score != 500+400+250 || s.TotalScore != 1500 {
		t.Fatalf("score %v/%v", s.Score, s.TotalScore)
	}

	st.HoldEnd(judgement(game.HoldPerfect))
	if s := st.Snapshot(); s.Combo != 3 || s.HoldEndPerfect != 1 {
		t.Fatalf("hold end perfect changed combo: %+v", s)
	}

	st.Tap(judgement(game.Miss))
	s = st.Snapshot()
	if s.Combo != 0 || s.MaxCombo != 3 || s.Miss != 1 {
		t.Fatalf("after miss: %+v", s)
	}

	st.Tap(judgement(game.Perfect))
	st.HoldEnd(judgement(game.HoldMiss))
	s = st.Snapshot()
	if s.Combo != 0 || s.HoldEndMiss != 1 || s.TotalScore != 3500 {
		t.Fatalf("after hold miss: %+v", s)
	}
}

func TestAccuracy(t *testing.T) {
	var st State
	st.Reset(2)
	if a := st.Snapshot().Accuracy(); a != 1 {
		t.Fatalf("empty accuracy %v", a)
	}
	st.Tap(judgement(game.Miss))
	if a := st.Snapshot().Accuracy(); a != 0 {
		t.Fatalf("miss accuracy %v", a)
	}
	st.Tap(judgement(game.Perfect))
	if a := st.Snapshot().Accuracy(); a != 0.5 {
		t.Fatalf("half accuracy %v", a)
	}
}

func TestRank(t *testing.T) {
	tests := map[float64]string{
		1:     "SS",
		0.999: "SS",
		0.998: "S",
		0.95:  "A",
		0.9:   "B",
		0.85:  "C",
		0.7:   "D",
		0.5:   "E",
		0.49:  "F",
		0:     "F",
	}
	for acc, name := range tests {
		if r := RankFor(acc); r.Name != name {
			t.Errorf("RankFor(%v) = %v, want %v", acc, r.Name, name)
		}
	}
}
