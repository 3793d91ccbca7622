package input

import (
	"syscall"
	"testing"
	"time"
)

func TestRepeatFilter(t *testing.T) {
	start := time.Unix(100, 0)
	at := func(ms int) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }
	f := newRepeatFilter(500 * time.Millisecond)

	if evs := f.press('d', at(0)); len(evs) != 1 || !evs[0].Pressed {
		t.Fatalf("first press %v", evs)
	}
	// Auto-repeat after the initial delay is swallowed
	for ms := 400; ms <= 1000; ms += 33 {
		if evs := f.press('d', at(ms)); evs != nil {
			t.Fatalf("repeat at %v produced %v", ms, evs)
		}
	}
	if evs := f.expire(at(1200)); len(evs) != 0 {
		t.Fatalf("released while repeating %v", evs)
	}
	evs := f.expire(at(1500))
	if len(evs) != 1 || !evs[0].Released || !evs[0].Time.Equal(at(994)) {
		t.Fatalf("release %v", evs)
	}

	// Two quick taps are two presses
	f.press('f', at(2000))
	evs = f.press('f', at(2120))
	if len(evs) != 2 || !evs[0].Released || !evs[1].Pressed || !evs[1].Time.Equal(at(2120)) {
		t.Fatalf("second tap %v", evs)
	}
}

func TestRepeatFilterLearnsRepeatDelay(t *testing.T) {
	start := time.Unix(100, 0)
	at := func(ms int) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }
	f := newRepeatFilter(500 * time.Millisecond)

	// Until a held key has been seen, a slow second press looks like a repeat
	f.press('j', at(0))
	if evs := f.press('j', at(300)); evs != nil {
		t.Fatalf("unlearned second press %v", evs)
	}
	f.expire(at(1000))

	// Hold a key so the system delay of 400ms is seen
	f.press('d', at(2000))
	for ms := 2400; ms <= 2600; ms += 33 {
		if evs := f.press('d', at(ms)); evs != nil {
			t.Fatalf("repeat at %v produced %v", ms, evs)
		}
	}
	if f.firstRepeat != 400*time.Millisecond {
		t.Fatalf("learned %v", f.firstRepeat)
	}
	f.expire(at(3500))

	// Now a second press away from the repeat delay is a fresh press
	f.press('f', at(4000))
	evs := f.press('f', at(4300))
	if len(evs) != 2 || !evs[0].Released || !evs[0].Time.Equal(at(4000)) || !evs[1].Pressed || !evs[1].Time.Equal(at(4300)) {
		t.Fatalf("second press %v", evs)
	}
	// and a key held for the repeat delay still repeats
	f.press('k', at(5000))
	if evs := f.press('k', at(5410)); evs != nil {
		t.Fatalf("repeat taken for a press %v", evs)
	}
}

func TestRepeatFilterDelay(t *testing.T) {
	f := newRepeatFilter(550 * time.Millisecond)
	if d := f.delay(); d != 550*time.Millisecond+137500*time.Microsecond {
		t.Fatalf("delay %v", d)
	}
	// A tiny timeout still gets a usable check period
	if f := newRepeatFilter(time.Nanosecond); f.period != time.Millisecond {
		t.Fatalf("period %v", f.period)
	}
}

func TestSendStopsWhenClosed(t *testing.T) {
	k := &Keyboard{events: make(chan Event, 1), done: make(chan struct{})}
	if !k.send(Event{Rune: 'd', Pressed: true}) {
		t.Fatal("send into an empty buffer failed")
	}
	close(k.done)
	// The buffer is full and nobody reads, so only done can end this
	if k.send(Event{Rune: 'd', Released: true}) {
		t.Fatal("send succeeded after close")
	}
}

func TestDecode(t *testing.T) {
	tv := syscall.Timeval{Sec: 10, Usec: 250}
	e, ok := decode(keyEvent{Time: tv, Type: evKey, Code: 32, Value: keyValDn})
	if !ok || e.Rune != 'd' || !e.Pressed || !e.Time.Equal(time.Unix(10, 250000)) {
		t.Fatalf("press %+v %v", e, ok)
	}
	if e, ok := decode(keyEvent{Type: evKey, Code: 1, Value: keyValUp}); !ok || !e.Escape || !e.Released {
		t.Fatalf("escape %+v %v", e, ok)
	}
	if _, ok := decode(keyEvent{Type: evKey, Code: 32, Value: 2}); ok {
		t.Fatal("auto-repeat decoded")
	}
	if _, ok := decode(keyEvent{Type: 0x04, Code: 4, Value: 1}); ok {
		t.Fatal("non-key event decoded")
	}
	if _, ok := decode(keyEvent{Type: evKey, Code: 200, Value: 1}); ok {
		t.Fatal("unbound key decoded")
	}
}
