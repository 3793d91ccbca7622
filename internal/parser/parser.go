package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/cadence/internal/game"
)

type Parser interface {
	Parse(file string) ([]*game.Chart, error)
}

// ForFile picks a parser by the chart file's extension.
func ForFile(file string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".sm":
		return &SMParser{}, nil
	case ".osu", ".osz":
		return &OsuParser{}, nil
	case ".json":
		return &JSONParser{}, nil
	}
	return nil, fmt.Errorf("no parser for chart %s", file)
}

// IsChart reports whether a parser exists for file.
func IsChart(file string) bool {
	_, err := ForFile(file)
	return err == nil
}
