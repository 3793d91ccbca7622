package parser

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/testdata"
)

const ms = time.Millisecond

type expectedNote struct {
	index     int
	hold      bool
	time, end time.Duration
}

func checkNotes(t *testing.T, notes []*game.Note, expected []expectedNote) {
	t.Helper()
	if len(notes) != len(expected) {
		t.Fatalf("got %v notes, want %v", len(notes), len(expected))
	}
	for i, e := range expected {
		n := notes[i]
		if n.Index != e.index || n.Hold != e.hold || n.Time != e.time || n.TimeEnd != e.end {
			t.Errorf("note %d: got %+v, want %+v", i, *n, e)
		}
	}
}

func TestSMParse(t *testing.T) {
	charts, err := (&SMParser{}).parse(testdata.SM)
	if err != nil {
		t.Fatal(err)
	}
	if len(charts) != 1 {
		t.Fatalf("got %v charts", len(charts))
	}
	c := charts[0]
	if c.Difficulty.Name != "Hard" || c.Difficulty.Msd != "5" || c.Columns() != 4 || c.Difficulty.Audio != "song.ogg" {
		t.Fatalf("difficulty %+v", c.Difficulty)
	}
	checkNotes(t, c.Notes, []expectedNote{
		{0, false, 500 * ms, 500 * ms},
		{1, false, 1000 * ms, 1000 * ms},
		{2, false, 1500 * ms, 1500 * ms},
		{3, false, 2000 * ms, 2000 * ms},
		{0, true, 2500 * ms, 3500 * ms},
		{3, false, 4000 * ms, 4000 * ms},
	})
	if c.NoteCount != 6 || c.HoldCount != 1 || c.MineCount != 1 {
		t.Fatalf("counts %v %v %v", c.NoteCount, c.HoldCount, c.MineCount)
	}
	if c.NoteCounts[0] != 6 {
		t.Fatalf("single note rows %v", c.NoteCounts)
	}
	if len(c.Measures) != 8 || c.Measures[0].Denom != 1 || c.Measures[0].Time != 500*ms {
		t.Fatalf("measures %v", len(c.Measures))
	}
}

func TestSMParseRejectsMissingBPM(t *testing.T) {
	if _, err := (&SMParser{}).parse("#OFFSET:0;\n#NOTES:\n"); err == nil {
		t.Fatal("parsed a chart without BPMS")
	}
}

var osuNotes = []expectedNote{
	{0, false, 1000 * ms, 1000 * ms},
	{1, false, 1250 * ms, 1250 * ms},
	{2, true, 1500 * ms, 2000 * ms},
	{3, false, 1750 * ms, 1750 * ms},
}

func TestOsuParse(t *testing.T) {
	file := filepath.Join(t.TempDir(), "map.osu")
	if err := os.WriteFile(file, []byte(testdata.Osu), 0644); err != nil {
		t.Fatal(err)
	}
	charts, err := (&OsuParser{}).Parse(file)
	if err != nil {
		t.Fatal(err)
	}
	c := charts[0]
	if c.Difficulty.Name != "Hard (cadence)" || c.Columns() != 4 || c.Difficulty.Audio != "audio.mp3" {
		t.Fatalf("difficulty %+v", c.Difficulty)
	}
	checkNotes(t, c.Notes, osuNotes)
	denoms := []int{1, 2, 1, 2}
	for i, n := range c.Notes {
		if n.Denom != denoms[i] {
			t.Errorf("note %d denom %v, want %v", i, n.Denom, denoms[i])
		}
	}
	if len(c.Measures) != 5 || c.Measures[4].Denom != 1 || c.Measures[1].Denom != 4 {
		t.Fatalf("measures %v", len(c.Measures))
	}
}

func TestOsuArchive(t *testing.T) {
	file := filepath.Join(t.TempDir(), "set.osz")
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"hard.osu":     testdata.Osu,
		"standard.osu": testdata.OsuStandard,
		"audio.mp3":    "not really audio",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p, err := ForFile(file)
	if err != nil {
		t.Fatal(err)
	}
	charts, err := p.Parse(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(charts) != 1 {
		t.Fatalf("got %v charts", len(charts))
	}
	checkNotes(t, charts[0].Notes, osuNotes)
}

func TestJSONParse(t *testing.T) {
	charts, err := (&JSONParser{}).parse([]byte(testdata.JSON))
	if err != nil {
		t.Fatal(err)
	}
	c := charts[0]
	if c.Difficulty.Name != "Normal" || c.Columns() != 4 || c.Difficulty.Audio != "song.ogg" {
		t.Fatalf("difficulty %+v", c.Difficulty)
	}
	checkNotes(t, c.Notes, []expectedNote{
		{0, true, 1000 * ms, 2000 * ms},
		{3, false, 1000 * ms, 1000 * ms},
		{1, false, 1500 * ms, 1500 * ms},
	})
}

func TestJSONParseErrors(t *testing.T) {
	tests := map[string]string{
		"invalid":      `{"columns": 4,`,
		"no columns":   `{"notes": []}`,
		"no notes":     `{"columns": 4}`,
		"reversed":     `{"columns": 1, "notes": [{"column": 0, "time": 10, "hold": true, "endTime": 5}]}`,
		"bad in array": `{"charts": [{"columns": 4, "notes": []}, {"columns": 0, "notes": []}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (&JSONParser{}).parse([]byte(doc)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestForFile(t *testing.T) {
	for file, ok := range map[string]bool{
		"a.sm": true, "a.OSU": true, "a.osz": true, "a.json": true,
		"a.ogg": false, "a": false,
	} {
		if IsChart(file) != ok {
			t.Errorf("IsChart(%q) = %v", file, !ok)
		}
	}
}
