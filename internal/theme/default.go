package theme

import (
	"strings"

	"git.lost.host/meutraa/cadence/internal/game"
	"github.com/fatih/color"
)

type DefaultTheme struct{}

type rgb struct {
	R, G, B int
}

const (
	noteSym   = "⬤"
	missSym   = "◯"
	holdSym   = "┃"
	barSym    = "─"
	barDown   = "━"
	flashSym  = "✦"
	measureCh = "┈"
)

var (
	noteColors = map[int]rgb{
		1:  {236, 30, 0},    // 1/4 red
		2:  {0, 118, 236},   // 1/8 blue
		3:  {106, 0, 236},   // 1/12 purple
		4:  {236, 195, 0},   // 1/16 yellow
		5:  {106, 106, 106}, // 1/20 grey???
		6:  {236, 0, 106},   // 1/24 pink
		8:  {236, 128, 0},   // 1/32 orange
		12: {173, 236, 236}, // 1/48 light blue
		16: {0, 236, 128},   // 1/64 green
		24: {106, 106, 106}, // 1/96 grey
		32: {106, 106, 106}, // 1/128 grey
		48: {110, 147, 89},  // 1/192 olive
		64: {106, 106, 106}, // 1/256 grey
		-1: {255, 255, 255}, // other white
	}

	tagColors = map[string]*color.Color{
		"perfect": color.New(color.FgHiCyan, color.Bold),
		"great":   color.New(color.FgHiGreen, color.Bold),
		"good":    color.New(color.FgYellow),
		"miss":    color.New(color.FgRed, color.Bold),
	}

	dim = color.New(color.FgHiBlack)
)

func getNoteColor(d int) *color.Color {
	col, ok := noteColors[d]
	if !ok {
		col = noteColors[-1]
	}
	return color.RGB(col.R, col.G, col.B)
}

func (t *DefaultTheme) RenderNote(column int, denom int) string {
	return getNoteColor(denom).Sprint(noteSym)
}

func (t *DefaultTheme) RenderMissedNote(column int) string {
	return dim.Sprint(missSym)
}

func (t *DefaultTheme) RenderHold(column int, denom int, holding bool) string {
	if holding {
		return tagColors["perfect"].Sprint(holdSym)
	}
	return getNoteColor(denom).Sprint(holdSym)
}

func (t *DefaultTheme) RenderHitField(column int, down bool) string {
	if down {
		return barDown
	}
	return dim.Sprint(barSym)
}

func (t *DefaultTheme) RenderFlash(tier game.Tier) string {
	return tagColors[tier.Tag()].Sprint(flashSym)
}

func (t *DefaultTheme) RenderJudgement(tier game.Tier) string {
	return tagColors[tier.Tag()].Sprint(tier.String())
}

func (t *DefaultTheme) RenderMeasure(width int) string {
	if width <= 0 {
		return ""
	}
	return dim.Sprint(strings.Repeat(measureCh, width))
}
