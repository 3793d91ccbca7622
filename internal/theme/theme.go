package theme

import "git.lost.host/meutraa/cadence/internal/game"

type Theme interface {
	RenderNote(column int, denom int) string
	RenderMissedNote(column int) string
	RenderHold(column int, denom int, holding bool) string
	RenderHitField(column int, down bool) string
	RenderFlash(tier game.Tier) string
	RenderJudgement(tier game.Tier) string
	RenderMeasure(width int) string
}
