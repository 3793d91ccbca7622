package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/cadence/internal/audio"
	"git.lost.host/meutraa/cadence/internal/clock"
	"git.lost.host/meutraa/cadence/internal/config"
	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/input"
	"git.lost.host/meutraa/cadence/internal/judge"
	"git.lost.host/meutraa/cadence/internal/parser"
	"git.lost.host/meutraa/cadence/internal/render"
	"git.lost.host/meutraa/cadence/internal/score"
	"git.lost.host/meutraa/cadence/internal/spectate"
	"github.com/sirupsen/logrus"
)

var errAborted = errors.New("aborted")

const (
	resizePeriod = 250 * time.Millisecond
	tailTime     = time.Second // Kept playing after the last note
)

type Program struct {
	cfg      *config.Config
	logger   *logrus.Logger
	renderer render.Renderer
	store    score.Store
	spectate *spectate.Server

	charts    []*game.Chart
	sources   map[*game.Chart]string // The file each chart was read from
	audioFile string                 // Any audio found beside the charts

	keys   *input.Keyboard
	device *input.Device

	chart  *game.Chart
	player *audio.Player
	best   *score.Snapshot
}

func (p *Program) Init() error {
	p.sources = map[*game.Chart]string{}
	if err := filepath.WalkDir(p.cfg.Directory, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case parser.IsChart(file):
			psr, _ := parser.ForFile(file)
			charts, err := psr.Parse(file)
			if nil != err {
				p.logger.WithError(err).WithField("file", file).Warn("Skipping chart")
				return nil
			}
			for _, c := range charts {
				p.sources[c] = file
			}
			p.charts = append(p.charts, charts...)
		case audio.IsAudio(file) && p.audioFile == "":
			p.audioFile = file
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}
	if len(p.charts) == 0 {
		return fmt.Errorf("no playable charts in %s", p.cfg.Directory)
	}
	p.logger.WithFields(logrus.Fields{
		"directory": p.cfg.Directory,
		"charts":    len(p.charts),
	}).Info("Charts loaded")

	if err := p.store.Init(p.cfg.Database); nil != err {
		return err
	}

	var err error
	if p.keys, err = input.OpenKeyboard(p.logger, p.cfg.ReleaseAfter); nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	if p.cfg.Device != "" {
		if p.device, err = input.OpenDevice(p.logger, p.cfg.Device); nil != err {
			return err
		}
	}
	return nil
}

func (p *Program) Deinit() {
	if p.player != nil {
		p.player.Close()
	}
	if p.device != nil {
		p.device.Close()
	}
	if p.keys != nil {
		if err := p.keys.Close(); nil != err {
			p.logger.WithError(err).Warn("Unable to close keyboard")
		}
	}
	p.store.Deinit()
}

// Select picks the chart to play, asking when none was given.
func (p *Program) Select() error {
	index := p.cfg.Difficulty
	if index < 0 {
		// The keyboard has the terminal in raw mode
		for i, c := range p.charts {
			fmt.Printf("%2v) %3v  %5v  %vK  %v\r\n", i, c.Difficulty.Msd, c.NoteCount, c.Columns(), c.Difficulty.Name)
		}
		for ev := range p.keys.Events() {
			if ev.Escape {
				return errAborted
			}
			if ev.Pressed && ev.Rune >= '0' && ev.Rune <= '9' {
				index = int(ev.Rune - '0')
				break
			}
		}
	}
	if index < 0 || index >= len(p.charts) {
		return fmt.Errorf("no chart %d, %d available", index, len(p.charts))
	}
	p.chart = p.charts[index]
	p.logger.WithFields(logrus.Fields{
		"name":  p.chart.Difficulty.Name,
		"notes": p.chart.NoteCount,
		"holds": p.chart.HoldCount,
		"keys":  p.chart.Columns(),
	}).Info("Chart selected")

	return p.openAudio()
}

func (p *Program) openAudio() error {
	src := p.sources[p.chart]
	name := p.chart.Difficulty.Audio
	var err error
	switch {
	case name != "" && strings.EqualFold(filepath.Ext(src), ".osz"):
		p.player, err = audio.OpenArchive(p.logger, src, name)
		return err
	case name != "":
		if p.player, err = audio.Open(p.logger, filepath.Join(filepath.Dir(src), name)); nil == err {
			return nil
		}
		p.logger.WithError(err).Warn("Named audio unusable")
	}
	if p.audioFile == "" {
		return errors.New("unable to find audio for the chart")
	}
	p.player, err = audio.Open(p.logger, p.audioFile)
	return err
}

// loadBest finds the best earlier result on this chart, replaying its
// inputs to check the stored totals.
func (p *Program) loadBest() {
	histories, err := p.store.Load(p.chart)
	if nil != err {
		p.logger.WithError(err).Warn("Unable to load score history")
		return
	}
	h, ok := score.Best(histories)
	if !ok {
		return
	}
	replayed, err := judge.Replay(p.logger, p.chart.Flat(), p.chart.Columns(), h.Inputs)
	if nil == err && replayed != h.Result {
		p.logger.WithFields(logrus.Fields{
			"played_at": h.PlayedAt,
			"stored":    h.Result.Score,
			"replayed":  replayed.Score,
		}).Warn("Stored result differs from its replay")
	}
	p.best = &h.Result
}

func (p *Program) Play(ctx context.Context) error {
	p.loadBest()

	listeners := judge.Listeners{p.renderer}
	if p.spectate != nil {
		listeners = append(listeners, p.spectate)
	}
	engine := judge.New(p.logger, listeners)
	if p.device == nil {
		// Terminal releases are only noticed once key repeat stops, then
		// wait for the next frame to be drained and ticked
		engine.SetHoldGrace(judge.GraceFor(p.keys.ReleaseDelay() + p.cfg.FramePeriod + p.cfg.TickPeriod))
	}
	if err := engine.Seed(p.chart.Flat(), p.chart.Columns()); nil != err {
		return err
	}

	p.renderer.SetChart(p.chart, p.player.Length())
	if err := p.renderer.Init(); nil != err {
		return err
	}
	defer p.renderer.Deinit()

	tb := clock.New(nil)
	tb.Seed(p.cfg.LeadIn)

	started := make(chan time.Time, 1)
	timer := time.AfterFunc(p.cfg.LeadIn, func() {
		if err := p.player.Play(
			func(t time.Time) { started <- t },
			func() { p.logger.Info("Playback finished") },
		); nil != err {
			p.logger.WithError(err).Error("Unable to play audio")
		}
	})
	defer timer.Stop()

	var end time.Duration
	for _, n := range p.chart.Notes {
		if n.TimeEnd > end {
			end = n.TimeEnd
		}
	}

	nextTick := -p.cfg.LeadIn
	lastResize := time.Now()
	finished := false
	err := tb.Loop(ctx, p.cfg.FramePeriod, func(now time.Duration) bool {
		if !tb.Corrected() {
			select {
			case t := <-started:
				tb.Correct(time.Since(t) - p.cfg.Latency + p.cfg.Offset)
				now = tb.Now()
				p.logger.WithField("start", tb.Start()).Debug("Clock corrected to audio")
			default:
			}
		}

		if !p.drain(engine, tb) {
			return false
		}
		if now >= nextTick {
			engine.Tick(now)
			nextTick = now + p.cfg.TickPeriod
		}
		if time.Since(lastResize) > resizePeriod {
			p.renderer.Resize()
			lastResize = time.Now()
		}
		p.renderer.Frame(engine, now)

		if engine.Finished() && now > end+tailTime {
			finished = true
			return false
		}
		return true
	})
	if nil != err {
		return err
	}

	result := engine.Snapshot()
	fields := logrus.Fields{
		"score":     result.Score,
		"total":     result.TotalScore,
		"accuracy":  result.Accuracy(),
		"max_combo": result.MaxCombo,
		"finished":  finished,
	}
	if !finished {
		p.logger.WithFields(fields).Info("Run abandoned")
		return errAborted
	}
	p.logger.WithFields(fields).Info("Run finished")
	if err := p.store.Save(p.chart, engine.Inputs(), result); nil != err {
		p.logger.WithError(err).Error("Unable to save score")
	}

	p.renderer.Results(result, p.best)
	p.waitForKey(ctx, time.Now().Add(500*time.Millisecond))
	return nil
}

// drain feeds pending key events to the engine, false when the player
// asked to quit.
func (p *Program) drain(engine *judge.Engine, tb *clock.TimeBase) bool {
	var deviceEvents <-chan input.Event
	if p.device != nil {
		deviceEvents = p.device.Events()
	}
	for {
		select {
		case ev, ok := <-p.keys.Events():
			if !ok {
				return false
			}
			if ev.Escape {
				return false
			}
			if p.device == nil {
				p.apply(engine, tb, ev)
			}
		case ev, ok := <-deviceEvents:
			if !ok {
				deviceEvents = nil
				continue
			}
			p.apply(engine, tb, ev)
		default:
			return true
		}
	}
}

func (p *Program) apply(engine *judge.Engine, tb *clock.TimeBase, ev input.Event) {
	c := p.cfg.KeyColumn(ev.Rune, engine.Columns())
	if c < 0 {
		return
	}
	at := tb.At(ev.Time)
	switch {
	case ev.Pressed:
		engine.KeyDown(c, at)
	case ev.Released:
		engine.KeyUp(c, at)
	}
}

// waitForKey returns on the first press after since.
func (p *Program) waitForKey(ctx context.Context, since time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.keys.Events():
			if !ok {
				return
			}
			if (ev.Pressed || ev.Escape) && ev.Time.After(since) {
				return
			}
		}
	}
}
