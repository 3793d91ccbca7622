package score

import (
	"sort"

	"git.lost.host/meutraa/cadence/internal/game"
)

// interleave restores one column's transitions. Recorded inputs alternate
// press and release within a column, so the nth release follows the nth
// press even when both share a time.
func interleave(c InputsCompact) []game.Input {
	ins := make([]game.Input, 0, len(c.Times)+len(c.Releases))
	for i, t := range c.Times {
		ins = append(ins, game.Input{Index: c.Index, HitTime: t})
		if i < len(c.Releases) {
			ins = append(ins, game.Input{Index: c.Index, HitTime: c.Releases[i], Release: true})
		}
	}
	for _, t := range c.Releases[min(len(c.Times), len(c.Releases)):] {
		ins = append(ins, game.Input{Index: c.Index, HitTime: t, Release: true})
	}
	return ins
}

// sortInputs orders by time only, keeping each column's sequence.
func sortInputs(ins []game.Input) {
	sort.SliceStable(ins, func(i, j int) bool {
		return ins[i].HitTime < ins[j].HitTime
	})
}
