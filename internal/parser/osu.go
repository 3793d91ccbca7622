package parser

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
)

const (
	maniaMode        = 3
	maxManiaKeyCount = 18
	holdType         = 1 << 7
	playfieldWidth   = 512

	// Snapping tolerance when guessing a note's beat division
	snapThreshold = 3.0
)

// Beat divisions the osu! editor snaps to
var snappings = []int{1, 2, 3, 4, 6, 8, 12, 16}

// OsuParser reads osu!mania beatmaps, either a single .osu file or every
// mania difficulty inside an .osz archive.
type OsuParser struct{}

type timingPoint struct {
	Time       float64
	BeatLength float64
	Meter      int
}

func (p *OsuParser) Parse(file string) ([]*game.Chart, error) {
	if strings.EqualFold(filepath.Ext(file), ".osz") {
		return p.parseArchive(file)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("unable to open beatmap: %w", err)
	}
	defer f.Close()
	chart, err := p.parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return []*game.Chart{chart}, nil
}

func (p *OsuParser) parseArchive(file string) ([]*game.Chart, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("unable to open beatmap archive: %w", err)
	}
	defer zr.Close()

	charts := []*game.Chart{}
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".osu") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("unable to open %s in archive: %w", f.Name, err)
		}
		chart, err := p.parse(rc)
		rc.Close()
		if errors.Is(err, errNotMania) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		charts = append(charts, chart)
	}
	if len(charts) == 0 {
		return nil, fmt.Errorf("no mania difficulties in %s", file)
	}
	return charts, nil
}

var errNotMania = errors.New("not an osu!mania beatmap")

func (p *OsuParser) parse(r io.Reader) (*game.Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var (
		section  string
		mode     int
		keys     float64
		version  string
		creator  string
		audio    string
		timing   []timingPoint
		notes    []*game.Note
		lineNo   int
		rawNotes strings.Builder
	)

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		switch section {
		case "General", "Metadata", "Difficulty":
			k, v, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			switch strings.TrimSpace(k) {
			case "Mode":
				mode, _ = strconv.Atoi(v)
			case "AudioFilename":
				audio = v
			case "Version":
				version = v
			case "Creator":
				creator = v
			case "CircleSize":
				keys, _ = strconv.ParseFloat(v, 64)
			}
		case "TimingPoints":
			fs := strings.Split(line, ",")
			if len(fs) < 2 {
				continue
			}
			t, err1 := strconv.ParseFloat(fs[0], 64)
			bl, err2 := strconv.ParseFloat(fs[1], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: bad timing point %q", lineNo, line)
			}
			// Negative beat lengths are inherited points and only change scroll speed
			if bl <= 0 {
				continue
			}
			tp := timingPoint{Time: t, BeatLength: bl, Meter: 4}
			if len(fs) > 2 {
				if m, err := strconv.Atoi(fs[2]); err == nil && m > 0 {
					tp.Meter = m
				}
			}
			timing = append(timing, tp)
		case "HitObjects":
			if mode != maniaMode {
				return nil, errNotMania
			}
			nk := int(math.Round(keys))
			if nk < 1 || nk > maxManiaKeyCount {
				return nil, fmt.Errorf("unsupported key count %v", keys)
			}
			n, err := parseHitObject(line, nk)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			n.Denom = snapDenom(timing, n.Time)
			notes = append(notes, n)
			rawNotes.WriteString(line)
			rawNotes.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if mode != maniaMode {
		return nil, errNotMania
	}

	name := version
	if creator != "" {
		name = fmt.Sprintf("%s (%s)", version, creator)
	}
	chart := &game.Chart{
		Notes:    notes,
		Measures: measures(timing, notes),
		Difficulty: game.Difficulty{
			Name:    name,
			Msd:     strconv.FormatFloat(keys, 'f', -1, 64) + "K",
			Section: rawNotes.String(),
			NKeys:   uint8(math.Round(keys)),
			Audio:   audio,
		},
	}
	chart.Finish()
	return chart, nil
}

// x,y,time,type,hitSound,endTime:hitSample for holds
// x,y,time,type,hitSound,hitSample otherwise
func parseHitObject(line string, keys int) (*game.Note, error) {
	fs := strings.Split(line, ",")
	if len(fs) < 5 {
		return nil, fmt.Errorf("bad hit object %q", line)
	}
	x, err := strconv.ParseFloat(fs[0], 64)
	if err != nil {
		return nil, fmt.Errorf("bad x in %q: %w", line, err)
	}
	t, err := strconv.Atoi(fs[2])
	if err != nil {
		return nil, fmt.Errorf("bad time in %q: %w", line, err)
	}
	typ, err := strconv.Atoi(fs[3])
	if err != nil {
		return nil, fmt.Errorf("bad type in %q: %w", line, err)
	}

	column := int(math.Floor(x * float64(keys) / playfieldWidth))
	if column < 0 {
		column = 0
	} else if column >= keys {
		column = keys - 1
	}

	start := time.Duration(t) * time.Millisecond
	n := &game.Note{Index: column, Time: start, TimeEnd: start}
	if typ&holdType != 0 {
		if len(fs) < 6 {
			return nil, fmt.Errorf("hold without end time %q", line)
		}
		end, _, _ := strings.Cut(fs[5], ":")
		e, err := strconv.Atoi(end)
		if err != nil {
			return nil, fmt.Errorf("bad hold end in %q: %w", line, err)
		}
		n.Hold = true
		n.TimeEnd = time.Duration(e) * time.Millisecond
		if n.TimeEnd < n.Time {
			n.TimeEnd = n.Time
		}
	}
	return n, nil
}

func activeTiming(timing []timingPoint, t time.Duration) (timingPoint, bool) {
	ms := float64(t) / float64(time.Millisecond)
	var tp timingPoint
	found := false
	for _, p := range timing {
		if p.Time > ms && found {
			break
		}
		tp, found = p, true
	}
	return tp, found
}

// snapDenom finds the coarsest beat division the time sits on.
func snapDenom(timing []timingPoint, t time.Duration) int {
	tp, ok := activeTiming(timing, t)
	if !ok {
		return -1
	}
	beats := (float64(t)/float64(time.Millisecond) - tp.Time) / tp.BeatLength
	for _, d := range snappings {
		scaled := beats * float64(d)
		if math.Abs(scaled-math.Round(scaled))*tp.BeatLength/float64(d) < snapThreshold {
			return d
		}
	}
	return -1
}

// measures emits beat and bar lines from the first timing point to the
// last note.
func measures(timing []timingPoint, notes []*game.Note) []*game.Measure {
	if len(timing) == 0 || len(notes) == 0 {
		return nil
	}
	var last time.Duration
	for _, n := range notes {
		if n.TimeEnd > last {
			last = n.TimeEnd
		}
	}
	lastMs := float64(last) / float64(time.Millisecond)

	ms := []*game.Measure{}
	for i, tp := range timing {
		end := lastMs + 1
		if i+1 < len(timing) {
			end = timing[i+1].Time
		}
		for beat := 0; ; beat++ {
			at := tp.Time + float64(beat)*tp.BeatLength
			if at >= end {
				break
			}
			denom := 4
			if beat%tp.Meter == 0 {
				denom = 1
			}
			ms = append(ms, &game.Measure{
				Denom: denom,
				Time:  time.Duration(at * float64(time.Millisecond)),
			})
		}
	}
	return ms
}
