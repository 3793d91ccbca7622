package score

import (
	"reflect"
	"testing"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
)

var compactTests = []struct {
	inputs  []game.Input
	compact []InputsCompact
}{
	{[]game.Input{}, []InputsCompact{}},
	{
		[]game.Input{{Index: 0, HitTime: 100}, {Index: 3, HitTime: 200}},
		[]InputsCompact{
			{Index: 0, Times: []time.Duration{100}},
			{Index: 1, Times: []time.Duration{}},
			{Index: 2, Times: []time.Duration{}},
			{Index: 3, Times: []time.Duration{200}},
		},
	},
	{
		[]game.Input{{Index: 1, HitTime: 1}, {Index: 1, HitTime: 2}},
		[]InputsCompact{
			{Index: 0, Times: []time.Duration{}},
			{Index: 1, Times: []time.Duration{1, 2}},
		},
	},
	{
		[]game.Input{{Index: 0, HitTime: 10}, {Index: 0, HitTime: 90, Release: true}},
		[]InputsCompact{
			{Index: 0, Times: []time.Duration{10}, Releases: []time.Duration{90}},
		},
	},
	{
		// A release and the next press at the same instant keep their order
		[]game.Input{
			{Index: 0, HitTime: 100},
			{Index: 0, HitTime: 300, Release: true},
			{Index: 0, HitTime: 300},
			{Index: 0, HitTime: 300, Release: true},
		},
		[]InputsCompact{
			{Index: 0, Times: []time.Duration{100, 300}, Releases: []time.Duration{300, 300}},
		},
	},
}

func TestCompactInputs(t *testing.T) {
	for _, test := range compactTests {
		out := compactInputs(test.inputs)
		if !reflect.DeepEqual(out, test.compact) {
			t.Log("out     ", out)
			t.Log("expected", test.compact)
			t.Fail()
		}
	}
}

func TestUncompactInputs(t *testing.T) {
	for _, test := range compactTests {
		out := uncompactInputs(test.compact)
		if !reflect.DeepEqual(out, test.inputs) {
			t.Log("in      ", test.compact)
			t.Log("out     ", out)
			t.Log("expected", test.inputs)
			t.Fail()
		}
	}
}

func TestUncompactInterleavesColumns(t *testing.T) {
	out := uncompactInputs([]InputsCompact{
		{Index: 0, Times: []time.Duration{300}},
		{Index: 1, Times: []time.Duration{100}, Releases: []time.Duration{300}},
	})
	expected := []game.Input{
		{Index: 1, HitTime: 100},
		{Index: 0, HitTime: 300},
		{Index: 1, HitTime: 300, Release: true},
	}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("out %v, expected %v", out, expected)
	}
}
