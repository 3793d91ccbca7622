package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.lost.host/meutraa/cadence/internal/config"
	"git.lost.host/meutraa/cadence/internal/logging"
	"git.lost.host/meutraa/cadence/internal/render"
	"git.lost.host/meutraa/cadence/internal/score"
	"git.lost.host/meutraa/cadence/internal/spectate"
	"git.lost.host/meutraa/cadence/internal/theme"
)

func main() {
	if err := run(); nil != err && !errors.Is(err, errAborted) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	logger, logFile, err := logging.New(cfg.LogDir, cfg.LogLevel)
	if nil != err {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := render.NewTerminalRenderer(&theme.DefaultTheme{})
	r.ScrollSpeed = cfg.ScrollSpeed
	r.BarRow = int(cfg.BarRow)
	r.Spacing = int(cfg.Spacing)

	p := &Program{
		cfg:      cfg,
		logger:   logger,
		renderer: r,
		store:    score.NewSQLiteStore(logger),
	}
	if cfg.Spectate != "" {
		p.spectate = spectate.NewServer(logger, cfg.Spectate)
		if err := p.spectate.Start(ctx); nil != err {
			return err
		}
		defer p.spectate.Stop(context.Background())
	}

	defer p.Deinit()
	if err := p.Init(); nil != err {
		logger.WithError(err).Error("Unable to start")
		return err
	}

	if err := p.Select(); nil != err {
		return err
	}

	err = p.Play(ctx)
	if nil != err && !errors.Is(err, errAborted) && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("Run failed")
	}

	if err := cfg.Settings.Save(); nil != err {
		logger.WithError(err).Warn("Unable to save settings")
	}
	return err
}
