// Package audio decodes and plays the song a chart is timed to.
package audio

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
)

type Player struct {
	logger   *logrus.Logger
	name     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	closer   io.Closer
}

// IsAudio reports whether a file can be opened by Open.
func IsAudio(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp3", ".ogg", ".wav":
		return true
	}
	return false
}

// Open decodes an mp3, ogg or wav file.
func Open(logger *logrus.Logger, file string) (*Player, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("unable to open audio: %w", err)
	}
	p, err := decode(logger, file, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// OpenArchive decodes the audio file name stored in a zip archive.
func OpenArchive(logger *logrus.Logger, archive, name string) (*Player, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive: %w", err)
	}
	for _, f := range zr.File {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("unable to open %s in archive: %w", name, err)
		}
		p, err := decode(logger, name, rc)
		if err != nil {
			rc.Close()
			zr.Close()
			return nil, err
		}
		p.closer = zr
		return p, nil
	}
	zr.Close()
	return nil, fmt.Errorf("%s not found in %s", name, archive)
}

func decode(logger *logrus.Logger, name string, rc io.ReadCloser) (*Player, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(rc)
	case ".ogg":
		streamer, format, err = vorbis.Decode(rc)
	case ".wav":
		streamer, format, err = wav.Decode(rc)
	default:
		return nil, fmt.Errorf("unsupported audio format %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", name, err)
	}
	logger.WithFields(logrus.Fields{
		"file":        name,
		"sample_rate": format.SampleRate,
		"channels":    format.NumChannels,
	}).Info("Audio opened")
	return &Player{logger: logger, name: name, streamer: streamer, format: format}, nil
}

// Length is the duration of the song.
func (p *Player) Length() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// Play starts the song. onStart runs on the speaker's goroutine with the
// instant the first samples were handed to the device, and onEnd once
// the song has been played out.
func (p *Player) Play(onStart func(time.Time), onEnd func()) error {
	if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(time.Second/60)); err != nil {
		return fmt.Errorf("unable to open speaker: %w", err)
	}
	speaker.Play(beep.Seq(
		beep.Callback(func() { onStart(time.Now()) }),
		p.streamer,
		beep.Callback(onEnd),
	))
	p.logger.WithField("file", p.name).Info("Playback started")
	return nil
}

func (p *Player) Close() {
	speaker.Clear()
	p.streamer.Close()
	if p.closer != nil {
		p.closer.Close()
	}
}
