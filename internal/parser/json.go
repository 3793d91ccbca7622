package parser

import (
	"fmt"
	"os"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"github.com/tidwall/gjson"
)

// JSONParser reads an already normalized note list:
//
//	{"name": "Hard", "columns": 4, "audio": "song.ogg",
//	 "notes": [{"column": 0, "time": 1000, "hold": true, "endTime": 2000}]}
//
// Times are milliseconds. A file may instead hold an array of such
// charts under "charts".
type JSONParser struct{}

func (p *JSONParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}
	return p.parse(data)
}

func (p *JSONParser) parse(data []byte) ([]*game.Chart, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("chart is not valid json")
	}
	root := gjson.ParseBytes(data)

	var docs []gjson.Result
	if cs := root.Get("charts"); cs.IsArray() {
		docs = cs.Array()
	} else {
		docs = []gjson.Result{root}
	}

	charts := make([]*game.Chart, 0, len(docs))
	for i, doc := range docs {
		chart, err := parseJSONChart(doc)
		if err != nil {
			return nil, fmt.Errorf("chart %d: %w", i, err)
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

func parseJSONChart(doc gjson.Result) (*game.Chart, error) {
	columns := doc.Get("columns").Int()
	if columns <= 0 || columns > 255 {
		return nil, fmt.Errorf("bad column count %d", columns)
	}
	ns := doc.Get("notes")
	if !ns.IsArray() {
		return nil, fmt.Errorf("missing notes array")
	}

	notes := make([]*game.Note, 0, int(doc.Get("notes.#").Int()))
	var err error
	ns.ForEach(func(_, v gjson.Result) bool {
		t := time.Duration(v.Get("time").Int()) * time.Millisecond
		n := &game.Note{
			Index:   int(v.Get("column").Int()),
			Denom:   -1,
			Hold:    v.Get("hold").Bool(),
			Time:    t,
			TimeEnd: t,
		}
		if d := v.Get("denom"); d.Exists() {
			n.Denom = int(d.Int())
		}
		if end := v.Get("endTime"); n.Hold && end.Exists() {
			n.TimeEnd = time.Duration(end.Int()) * time.Millisecond
		}
		if n.TimeEnd < n.Time {
			err = fmt.Errorf("note %d ends before it starts", len(notes))
			return false
		}
		notes = append(notes, n)
		return true
	})
	if err != nil {
		return nil, err
	}

	name := doc.Get("name").String()
	if name == "" {
		name = fmt.Sprintf("%dK", columns)
	}
	chart := &game.Chart{
		Notes: notes,
		Difficulty: game.Difficulty{
			Name:    name,
			Msd:     doc.Get("level").String(),
			Section: doc.Get("notes").Raw,
			NKeys:   uint8(columns),
			Audio:   doc.Get("audio").String(),
		},
	}
	chart.Finish()
	return chart, nil
}
