package audio

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestOpenWav(t *testing.T) {
	file := filepath.Join(t.TempDir(), "song.wav")
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(44100), format); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p, err := Open(quiet(), file)
	if err != nil {
		t.Fatal(err)
	}
	defer p.streamer.Close()
	if p.Length() != time.Second {
		t.Fatalf("length %v", p.Length())
	}
}

func TestOpenRejects(t *testing.T) {
	file := filepath.Join(t.TempDir(), "song.flac")
	os.WriteFile(file, []byte("fLaC"), 0644)
	if _, err := Open(quiet(), file); err == nil {
		t.Fatal("opened an unsupported format")
	}
	if _, err := Open(quiet(), filepath.Join(t.TempDir(), "missing.ogg")); err == nil {
		t.Fatal("opened a missing file")
	}
	for file, ok := range map[string]bool{"a.MP3": true, "a.ogg": true, "a.wav": true, "a.sm": false} {
		if IsAudio(file) != ok {
			t.Errorf("IsAudio(%q) = %v", file, !ok)
		}
	}
}
