package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/sirupsen/logrus"
)

// Key repeat never starts sooner than this after a press, so anything
// arriving earlier is a fresh press.
const repeatDelay = 250 * time.Millisecond

// The first repeat of a held key arrives after the system's repeat delay
// give or take this much. Once that delay has been seen, a second press
// in the same column arriving at any other time is a fresh press. Before
// then, a press repeatDelay or more after the last is taken for a repeat.
const repeatJitter = 40 * time.Millisecond

type keyState struct {
	first, last time.Time
	repeating   bool
	firstGap    time.Duration // Gap to the first repeat, not yet confirmed
}

// repeatFilter turns a terminal's stream of presses and auto-repeats
// into presses and releases. A key counts as released once repeats stop
// for releaseAfter, at the time of its last repeat.
type repeatFilter struct {
	releaseAfter time.Duration
	period       time.Duration // How often expire is called
	firstRepeat  time.Duration // Learned system repeat delay, 0 until seen
	down         map[rune]*keyState
}

func newRepeatFilter(releaseAfter time.Duration) *repeatFilter {
	period := releaseAfter / 4
	if period < time.Millisecond {
		period = time.Millisecond
	}
	return &repeatFilter{releaseAfter: releaseAfter, period: period, down: map[rune]*keyState{}}
}

// delay is the longest a release is reported after the time it carries.
func (f *repeatFilter) delay() time.Duration {
	return f.releaseAfter + f.period
}

func (f *repeatFilter) isRepeat(ks *keyState, now time.Time) bool {
	if ks.repeating {
		return true
	}
	gap := now.Sub(ks.first)
	if gap < repeatDelay {
		return false
	}
	if f.firstRepeat == 0 {
		return true
	}
	return gap >= f.firstRepeat-repeatJitter && gap <= f.firstRepeat+repeatJitter
}

func (f *repeatFilter) press(r rune, now time.Time) []Event {
	ks, ok := f.down[r]
	switch {
	case !ok:
		f.down[r] = &keyState{first: now, last: now}
		return []Event{{Rune: r, Pressed: true, Time: now}}
	case !f.isRepeat(ks, now):
		f.down[r] = &keyState{first: now, last: now}
		return []Event{
			{Rune: r, Released: true, Time: ks.last},
			{Rune: r, Pressed: true, Time: now},
		}
	case !ks.repeating:
		ks.repeating = true
		ks.firstGap = now.Sub(ks.first)
	case ks.firstGap != 0 && now.Sub(ks.last) < repeatDelay:
		// Quick repeats follow, so the first one was a repeat too
		f.firstRepeat = ks.firstGap
		ks.firstGap = 0
	}
	ks.last = now
	return nil
}

func (f *repeatFilter) expire(now time.Time) []Event {
	var evs []Event
	for r, ks := range f.down {
		if now.Sub(ks.last) > f.releaseAfter {
			delete(f.down, r)
			evs = append(evs, Event{Rune: r, Released: true, Time: ks.last})
		}
	}
	return evs
}

// Keyboard reads keys from the terminal.
type Keyboard struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
	filter *repeatFilter
}

func OpenKeyboard(logger *logrus.Logger, releaseAfter time.Duration) (*Keyboard, error) {
	if releaseAfter <= 0 {
		return nil, fmt.Errorf("release timeout must be positive, got %v", releaseAfter)
	}
	keys, err := keyboard.GetKeys(128)
	if err != nil {
		return nil, err
	}
	k := &Keyboard{
		events: make(chan Event, 128),
		done:   make(chan struct{}),
		filter: newRepeatFilter(releaseAfter),
	}

	go func() {
		defer close(k.events)
		ticker := time.NewTicker(k.filter.period)
		defer ticker.Stop()
		for {
			select {
			case <-k.done:
				return
			case now := <-ticker.C:
				if !k.send(k.filter.expire(now)...) {
					return
				}
			case key, ok := <-keys:
				if !ok {
					return
				}
				now := time.Now()
				if key.Err != nil {
					logger.WithError(key.Err).Warn("Keyboard read failed")
					continue
				}
				var evs []Event
				switch {
				case key.Key == keyboard.KeyEsc || key.Key == keyboard.KeyCtrlC:
					evs = []Event{{Escape: true, Pressed: true, Time: now}}
				case key.Key == keyboard.KeySpace:
					evs = k.filter.press(' ', now)
				case key.Rune != 0:
					evs = k.filter.press(key.Rune, now)
				}
				if !k.send(evs...) {
					return
				}
			}
		}
	}()
	return k, nil
}

// send delivers events unless the keyboard is closed first.
func (k *Keyboard) send(evs ...Event) bool {
	for _, e := range evs {
		select {
		case k.events <- e:
		case <-k.done:
			return false
		}
	}
	return true
}

// ReleaseDelay is the longest a release event can trail the time it
// carries.
func (k *Keyboard) ReleaseDelay() time.Duration {
	return k.filter.delay()
}

func (k *Keyboard) Events() <-chan Event {
	return k.events
}

func (k *Keyboard) Close() error {
	var err error
	k.once.Do(func() {
		close(k.done)
		err = keyboard.Close()
	})
	return err
}
