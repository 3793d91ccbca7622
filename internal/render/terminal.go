package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
	"git.lost.host/meutraa/cadence/internal/theme"
	"golang.org/x/term"
)

const (
	flashFrames     = 24
	judgementFrames = 120
)

type TerminalRenderer struct {
	out   io.Writer
	fd    int
	theme theme.Theme

	ScrollSpeed float64 // Rows per second
	BarRow      int     // Rows between the hit bar and the bottom
	Spacing     int     // Columns between keys

	buffer       strings.Builder
	restoreState *term.State
	rows, cols   int

	chart  *game.Chart
	length time.Duration
	status score.Snapshot

	start, end  int // Window of notes that may be on screen
	decorations []*decoration
	judgement   *decoration
}

type decoration struct {
	column  int
	content string
	frames  int // remaining frames until removed
}

func NewTerminalRenderer(th theme.Theme) *TerminalRenderer {
	return &TerminalRenderer{
		out:         os.Stdout,
		fd:          int(os.Stdout.Fd()),
		theme:       th,
		ScrollSpeed: 40,
		BarRow:      4,
		Spacing:     6,
		rows:        24,
		cols:        80,
	}
}

func (r *TerminalRenderer) Init() error {
	state, err := term.MakeRaw(r.fd)
	if nil != err {
		return fmt.Errorf("unable to enter raw mode: %w", err)
	}
	r.restoreState = state
	r.Resize()

	fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *TerminalRenderer) Deinit() error {
	fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if r.restoreState == nil {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

// Resize reads the terminal size, keeping the last known size when the
// output is not a terminal.
func (r *TerminalRenderer) Resize() {
	if cols, rows, err := term.GetSize(r.fd); nil == err {
		r.cols, r.rows = cols, rows
	}
}

func (r *TerminalRenderer) SetChart(chart *game.Chart, length time.Duration) {
	r.chart = chart
	r.length = length
	r.start, r.end = 0, 0
	r.decorations = nil
	r.judgement = nil
	r.status = score.Snapshot{NoteCount: int(chart.NoteCount)}
}

func (r *TerminalRenderer) hitRow() int {
	return r.rows - r.BarRow
}

func (r *TerminalRenderer) columnX(c, columns int) int {
	mc := r.cols >> 1
	return mc + r.Spacing*(2*c-(columns-1))
}

// rowsFromBar converts a distance in time to a distance in rows.
func (r *TerminalRenderer) rowsFromBar(d time.Duration) int {
	return int(math.Round(d.Seconds() * r.ScrollSpeed))
}

func (r *TerminalRenderer) inField(row int) bool {
	return row > 2 && row <= r.rows
}

func (r *TerminalRenderer) Flash(column int, j game.Judgement) {
	r.decorations = append(r.decorations, &decoration{
		column:  column,
		content: r.theme.RenderFlash(j.Tier),
		frames:  flashFrames,
	})
	r.judgement = &decoration{
		content: r.theme.RenderJudgement(j.Tier),
		frames:  judgementFrames,
	}
}

func (r *TerminalRenderer) Status(s score.Snapshot) {
	r.status = s
}

// StatusLine is the live summary shown above the playfield.
func StatusLine(s score.Snapshot) string {
	return fmt.Sprintf("Score %7d   Combo %4d   Accuracy %6.2f%%", s.Score, s.Combo, 100*s.Accuracy())
}

func (r *TerminalRenderer) Frame(field Field, now time.Duration) {
	for row := 1; row <= r.rows; row++ {
		r.clearRow(row)
	}
	columns := field.Columns()
	hit := r.hitRow()

	r.renderProgress(now)
	r.Fill(2, 2, StatusLine(r.status))
	r.renderSide()

	if r.chart != nil {
		width := r.Spacing*2*(columns-1) + 1
		left := r.columnX(0, columns)
		for _, m := range r.chart.Measures {
			if m.Denom != 1 {
				continue
			}
			row := hit - r.rowsFromBar(m.Time-now)
			if row > 2 && row < hit {
				r.Fill(row, left, r.theme.RenderMeasure(width))
			}
		}
	}

	for c := 0; c < columns; c++ {
		r.Fill(hit, r.columnX(c, columns), r.theme.RenderHitField(c, field.Down(c)))
	}

	r.renderNotes(field, now)

	nd := r.decorations[:0]
	for _, d := range r.decorations {
		if d.frames <= 0 {
			continue
		}
		r.Fill(hit, r.columnX(d.column, columns), d.content)
		d.frames--
		nd = append(nd, d)
	}
	r.decorations = nd
	if r.judgement != nil && r.judgement.frames > 0 {
		r.Fill(hit-(hit>>2), r.columnX(0, columns), r.judgement.content)
		r.judgement.frames--
	}

	r.flush()
}

func (r *TerminalRenderer) renderNotes(field Field, now time.Duration) {
	notes := field.Notes()
	columns := field.Columns()
	hit := r.hitRow()
	if r.end > len(notes) {
		r.start, r.end = 0, 0
	}

	// Slide the end forward while notes come into view
	for r.end < len(notes) && hit-r.rowsFromBar(notes[r.end].Time-now) > 2 {
		r.end++
	}

	startOffset := 0
	passed := true
	for _, note := range notes[r.start:r.end] {
		x := r.columnX(note.Index, columns)
		head := hit - r.rowsFromBar(note.Time-now)
		tail := hit - r.rowsFromBar(note.TimeEnd-now)
		held := r.held(field, note)

		// Notes below the screen that the judge is done with drop out
		if passed && note.Judged && !held && tail > r.rows {
			startOffset++
			continue
		}
		passed = false

		wasHit := note.Judged && note.MissTime == 0
		if note.Hold && (!wasHit || held) {
			if held {
				head = r.hitRow()
			}
			body := r.theme.RenderHold(note.Index, note.Denom, held)
			for row := tail; row < head; row++ {
				if r.inField(row) {
					r.Fill(row, x, body)
				}
			}
		}

		if wasHit || !r.inField(head) {
			continue
		}
		if note.MissTime != 0 {
			r.Fill(head, x, r.theme.RenderMissedNote(note.Index))
		} else {
			r.Fill(head, x, r.theme.RenderNote(note.Index, note.Denom))
		}
	}
	r.start += startOffset
}

// held reports whether note is the hold in progress in its column.
func (r *TerminalRenderer) held(field Field, note *game.Note) bool {
	if !note.Hold || !note.Judged || note.MissTime != 0 || note.ReleaseTime != 0 {
		return false
	}
	end, ok := field.Holding(note.Index)
	return ok && end == note.TimeEnd
}

func (r *TerminalRenderer) renderProgress(now time.Duration) {
	if r.length <= 0 || now <= 0 {
		return
	}
	w := int(float64(r.cols) * float64(now) / float64(r.length))
	if w > r.cols {
		w = r.cols
	}
	r.Fill(1, 1, strings.Repeat("▁", w))
}

func (r *TerminalRenderer) renderSide() {
	if r.chart == nil {
		return
	}
	col := r.columnX(0, r.chart.Columns()) - 30
	if col < 2 {
		col = 2
	}
	r.Fill(4, col, fmt.Sprintf("%s %s", r.chart.Difficulty.Name, r.chart.Difficulty.Msd))
	r.Fill(5, col, fmt.Sprintf("      Notes: %6v", r.chart.NoteCount))
	r.Fill(6, col, fmt.Sprintf("      Holds: %6v", r.chart.HoldCount))
	r.Fill(7, col, fmt.Sprintf("  Max Combo: %6v", r.status.MaxCombo))
	if len(r.chart.NoteCountsAsStrings) > 0 {
		r.Fill(8, col, "     Chords: "+strings.Join(r.chart.NoteCountsAsStrings, "/"))
	}
	for i, tier := range []game.Tier{game.Perfect, game.Great, game.Good, game.Miss, game.HoldPerfect, game.HoldGreat, game.HoldMiss} {
		r.Fill(9+i, col, fmt.Sprintf("%6v  %s", r.status.Count(tier), r.theme.RenderJudgement(tier)))
	}
}

func (r *TerminalRenderer) Results(s score.Snapshot, best *score.Snapshot) {
	for row := 1; row <= r.rows; row++ {
		r.clearRow(row)
	}
	col := r.cols/2 - 16
	if col < 1 {
		col = 1
	}
	row := r.rows/2 - 8
	if row < 1 {
		row = 1
	}
	lines := []string{
		fmt.Sprintf("Rank %s", s.Rank().Name),
		"",
		fmt.Sprintf("   Accuracy  %6.2f%%", 100*s.Accuracy()),
		fmt.Sprintf("      Score  %7d / %d", s.Score, s.TotalScore),
		fmt.Sprintf("  Max Combo  %7d", s.MaxCombo),
		"",
	}
	for _, tier := range []game.Tier{game.Perfect, game.Great, game.Good, game.Miss, game.HoldPerfect, game.HoldGreat, game.HoldMiss} {
		lines = append(lines, fmt.Sprintf("%7d  %s", s.Count(tier), r.theme.RenderJudgement(tier)))
	}
	if best != nil {
		lines = append(lines, "", fmt.Sprintf("   Previous best %6.2f%% (%s)", 100*best.Accuracy(), best.Rank().Name))
	}
	lines = append(lines, "", "Press any key")
	for i, l := range lines {
		r.Fill(row+i, col, l)
	}
	r.flush()
}

func (r *TerminalRenderer) clearRow(row int) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";1H\033[2K")
}

func (r *TerminalRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *TerminalRenderer) flush() {
	io.WriteString(r.out, r.buffer.String())
	r.buffer.Reset()
}
