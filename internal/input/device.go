package input

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// From linux/input-event-codes.h
const (
	evKey    = 0x01
	keyEsc   = 1
	keyValUp = 0
	keyValDn = 1
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Scan codes of the keys that can be bound to columns
var codeRunes = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5', 7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't', 21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g', 35: 'h', 36: 'j', 37: 'k', 38: 'l', 39: ';', 40: '\'',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b', 49: 'n', 50: 'm', 51: ',', 52: '.', 53: '/',
	57: ' ',
}

func decode(ev keyEvent) (Event, bool) {
	if ev.Type != evKey || (ev.Value != keyValUp && ev.Value != keyValDn) {
		return Event{}, false
	}
	e := Event{
		Pressed:  ev.Value == keyValDn,
		Released: ev.Value == keyValUp,
		Time:     time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*1000),
	}
	if ev.Code == keyEsc {
		e.Escape = true
		return e, true
	}
	r, ok := codeRunes[ev.Code]
	if !ok {
		return Event{}, false
	}
	e.Rune = r
	return e, true
}

// Device reads a Linux evdev keyboard, which reports real releases and
// kernel timestamps. Auto-repeat events are dropped.
type Device struct {
	file   *os.File
	events chan Event
	once   sync.Once
}

func OpenDevice(logger *logrus.Logger, path string) (*Device, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input device: %w", err)
	}
	d := &Device{file: file, events: make(chan Event, 128)}
	go func() {
		defer close(d.events)
		var ev keyEvent
		for {
			if err := binary.Read(file, binary.LittleEndian, &ev); nil != err {
				logger.WithError(err).WithField("device", path).Info("Stopped reading keyboard input")
				return
			}
			if e, ok := decode(ev); ok {
				d.events <- e
			}
		}
	}()
	logger.WithField("device", path).Info("Reading keyboard device")
	return d, nil
}

func (d *Device) Events() <-chan Event {
	return d.events
}

func (d *Device) Close() error {
	var err error
	d.once.Do(func() { err = d.file.Close() })
	return err
}
