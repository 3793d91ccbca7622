package parser

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
)

// SMParser reads StepMania .sm files.
type SMParser struct{}

func (p *SMParser) getSecondsPerNote(rates []game.BPM, currentBeat float64, bpn float64) (float64, float64) {
	sel := float64(0.0)
	for _, bpm := range rates {
		if currentBeat >= bpm.StartingBeat {
			sel = bpm.Value
		} else {
			break
		}
	}
	secondsPerBeat := 60.0 / sel
	return sel, bpn * secondsPerBeat
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

func isHead(ch byte) bool {
	return ch == '2' || ch == '4'
}

func isNote(ch byte) bool {
	return ch == '1' || isHead(ch)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (p *SMParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}
	return p.parse(string(data))
}

func (p *SMParser) parse(data string) ([]*game.Chart, error) {
	str := strings.ReplaceAll(data, "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]
	difficulties := []game.Difficulty{}
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 7)
		if len(lines) < 7 {
			continue
		}
		chartType := strings.TrimSpace(lines[1])
		chartType = strings.TrimSuffix(chartType, ":")
		nKeys, ok := game.NKeyMap[chartType]
		if !ok {
			continue
		}
		difficulties = append(difficulties, game.Difficulty{
			Name:    strings.TrimSuffix(strings.TrimSpace(lines[3]), ":"),
			Msd:     strings.TrimSuffix(strings.TrimSpace(lines[4]), ":"),
			Section: lines[6],
			NKeys:   nKeys,
		})
	}

	offset := 0.0
	music := ""
	bpms := []game.BPM{}

	for _, mdl := range strings.Split(meta, "\n#") {
		mdl = strings.TrimPrefix(strings.TrimSpace(mdl), "#")
		if strings.HasPrefix(mdl, "OFFSET:") {
			mdl = strings.TrimPrefix(mdl, "OFFSET:")
			mdl = strings.TrimSuffix(mdl, ";")
			offs, err := strconv.ParseFloat(mdl, 64)
			if nil != err {
				return nil, fmt.Errorf("bad OFFSET %q: %w", mdl, err)
			}
			offset = -offs
		} else if strings.HasPrefix(mdl, "MUSIC:") {
			music = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(mdl, "MUSIC:"), ";"))
		} else if strings.HasPrefix(mdl, "BPMS:") {
			mdl = strings.TrimPrefix(mdl, "BPMS:")
			mdl = strings.ReplaceAll(mdl, "\n", "")
			bbs := strings.Split(strings.TrimSuffix(mdl, ";"), ",")
			for _, bpm := range bbs {
				as := strings.Split(bpm, "=")
				if len(as) != 2 {
					return nil, fmt.Errorf("bad BPMS entry %q", bpm)
				}
				sb, err := strconv.ParseFloat(strings.TrimSpace(as[0]), 64)
				if nil != err {
					return nil, fmt.Errorf("bad BPMS beat %q: %w", as[0], err)
				}
				bbbs, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
				if nil != err {
					return nil, fmt.Errorf("bad BPMS value %q: %w", as[1], err)
				}
				bpms = append(bpms, game.BPM{
					StartingBeat: sb,
					Value:        bbbs,
				})
			}
		}
	}
	if len(bpms) == 0 {
		return nil, fmt.Errorf("chart has no BPMS")
	}

	charts := []*game.Chart{}
	for _, difficulty := range difficulties {
		difficulty.Audio = music

		// Start time of first note
		secs := offset
		var currentBeat float64 = 0.0

		notes := []*game.Note{}
		mineCount := 0
		noteCounts := make([]int64, difficulty.NKeys)

		blocks := strings.Split(difficulty.Section, "\n,")
		measureTimes := []*game.Measure{}

		for _, block := range blocks {
			measureTimes = append(measureTimes, &game.Measure{
				Denom: 1,
				Time:  seconds(secs),
			})

			lines := []string{}
			bls := strings.Split(block, "\n")
			for _, l := range bls {
				if strings.HasPrefix(l, " ") || strings.HasPrefix(l, "//") || strings.Contains(l, "-") {
					continue
				}
				l = strings.TrimSuffix(strings.TrimSpace(l), ";")
				if len(l) >= int(difficulty.NKeys) {
					lines = append(lines, l)
				}
			}
			if len(lines) == 0 {
				continue
			}

			// Beat count is 4 per block
			lineCount := int64(len(lines))
			beatsPerNote := 4.0 / float64(lineCount) // 1/4, 1/8, 1/16, 1/24 etc

			// for each note line in a block
			for i, line := range lines {
				chs := []byte(line)
				r := big.NewRat(int64(i*4), lineCount)
				denom := r.Denom().Int64()
				if denom == 1 && i != 0 {
					measureTimes = append(measureTimes, &game.Measure{
						Denom: 4,
						Time:  seconds(secs),
					})
				}
				if denom == 2 || denom == 4 {
					measureTimes = append(measureTimes, &game.Measure{
						Denom: 8,
						Time:  seconds(secs),
					})
				}
				_, secondsPerNote := p.getSecondsPerNote(bpms, currentBeat, beatsPerNote)

				hitCount := 0
				for i, c := range chs[:difficulty.NKeys] {
					switch {
					case isNote(c):
						hitCount++
						t := seconds(secs)
						notes = append(notes, &game.Note{
							Index:   i,
							Denom:   int(denom),
							Hold:    isHead(c),
							Time:    t,
							TimeEnd: t,
						})
					case c == 'M':
						mineCount++
					case c == '3':
						// This is a release note of a previous head
						// Find the last head in this column and
						// add this as the endtime to it
						for j := len(notes) - 1; j >= 0; j-- {
							note := notes[j]
							if note.Index != i {
								continue
							}
							if note.Hold {
								note.TimeEnd = seconds(secs)
							}
							break
						}
					}
				}

				if hitCount > 0 {
					noteCounts[hitCount-1] += 1
				}

				secs += secondsPerNote
				currentBeat += beatsPerNote
			}
		}

		noteCountsAsStrings := make([]string, difficulty.NKeys)
		for i, count := range noteCounts {
			noteCountsAsStrings[i] = strconv.FormatInt(count, 10)
		}

		chart := &game.Chart{
			Notes:               notes,
			Measures:            measureTimes,
			NoteCounts:          noteCounts,
			NoteCountsAsStrings: noteCountsAsStrings,
			MineCount:           int64(mineCount),
			Difficulty:          difficulty,
		}
		chart.Finish()
		charts = append(charts, chart)
	}

	return charts, nil
}
