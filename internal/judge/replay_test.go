package judge

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
	"github.com/sirupsen/logrus"
)

func TestReplayMatchesLiveRun(t *testing.T) {
	notes := []game.Note{
		game.Tap(0, 1000*ms),
		game.HoldNote(1, 1200*ms, 2000*ms),
		game.Tap(2, 1500*ms),
		game.Tap(0, 2500*ms),
	}
	e, _ := seeded(t, 3, notes...)
	for now := -3000 * ms; now < 1000*ms; now += 40 * ms {
		e.Tick(now)
	}
	e.KeyDown(0, 1010*ms)
	e.KeyDown(0, 1011*ms)
	e.KeyUp(0, 1050*ms)
	e.KeyDown(1, 1180*ms)
	e.KeyDown(2, 1640*ms)
	e.KeyUp(2, 1650*ms)
	e.KeyUp(1, 2130*ms)
	e.Tick(4000 * ms)
	live := e.Snapshot()

	replayed, err := Replay(nil, notes, 3, e.Inputs())
	if err != nil {
		t.Fatal(err)
	}
	if replayed != live {
		t.Fatalf("replay %+v, live %+v", replayed, live)
	}
	if live.Perfect != 2 || live.Good != 1 || live.Miss != 1 || live.HoldEndGreat != 1 {
		t.Fatalf("live %+v", live)
	}
}

func TestReplayRejectsBadChart(t *testing.T) {
	if _, err := Replay(nil, []game.Note{game.Tap(2, 0)}, 2, nil); err == nil {
		t.Fatal("bad chart replayed")
	}
}

func TestReplayOfStoredInputs(t *testing.T) {
	notes := []game.Note{game.Tap(0, 100*ms), game.Tap(0, 300*ms)}
	e, _ := seeded(t, 1, notes...)
	// A quick double tap where the release and the next press share a time
	e.KeyDown(0, 100*ms)
	e.KeyUp(0, 300*ms)
	e.KeyDown(0, 300*ms)
	e.KeyUp(0, 300*ms)
	e.Tick(time.Second)
	live := e.Snapshot()
	if live.Perfect != 2 {
		t.Fatalf("live %+v", live)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := score.NewSQLiteStore(logger)
	if err := store.Init(filepath.Join(t.TempDir(), "scores.db")); err != nil {
		t.Fatal(err)
	}
	defer store.Deinit()
	chart := &game.Chart{Difficulty: game.Difficulty{Name: "Taps", Section: "1000\n1000"}}
	if err := store.Save(chart, e.Inputs(), live); err != nil {
		t.Fatal(err)
	}
	histories, err := store.Load(chart)
	if err != nil || len(histories) != 1 {
		t.Fatalf("load %v %v", histories, err)
	}

	replayed, err := Replay(nil, notes, 1, histories[0].Inputs)
	if err != nil {
		t.Fatal(err)
	}
	if replayed != live {
		t.Fatalf("stored replay %+v, live %+v", replayed, live)
	}
}
