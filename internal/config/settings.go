package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Settings persist between runs.
type Settings struct {
	v *viper.Viper

	Offset      time.Duration
	ScrollSpeed float64
	keys        map[int]string
}

var defaultKeys = map[int]string{
	4: "dfjk",
	5: "dfgjk",
	6: "sdfjkl",
	7: "sdf jkl",
	8: "asdfjkl;",
}

// LoadSettings reads file, falling back to defaults for anything unset.
// A missing file is not an error.
func LoadSettings(file string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	v.SetDefault("offset", "0ms")
	v.SetDefault("scroll-speed", 40.0)
	for n, k := range defaultKeys {
		v.SetDefault("keys."+strconv.Itoa(n), k)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to read settings %s: %w", file, err)
		}
	}

	s := &Settings{
		v:           v,
		Offset:      v.GetDuration("offset"),
		ScrollSpeed: v.GetFloat64("scroll-speed"),
		keys:        map[int]string{},
	}
	for n, k := range v.GetStringMapString("keys") {
		nk, err := strconv.Atoi(n)
		if err != nil || nk <= 0 {
			return nil, fmt.Errorf("bad key count %q in settings", n)
		}
		s.keys[nk] = k
	}
	return s, nil
}

// Keys returns the key for each column of an nKeys chart. Charts with
// no binding get the home row from the left.
func (s *Settings) Keys(nKeys int) []rune {
	if k, ok := s.keys[nKeys]; ok && len([]rune(k)) >= nKeys {
		return []rune(k)[:nKeys]
	}
	row := []rune("asdfghjkl;'")
	if nKeys > len(row) {
		nKeys = len(row)
	}
	return row[:nKeys]
}

// SetKeys binds keys to the columns of a len(keys) chart.
func (s *Settings) SetKeys(keys string) {
	n := len([]rune(keys))
	s.keys[n] = keys
	s.v.Set("keys."+strconv.Itoa(n), keys)
}

// Save writes the settings back to their file.
func (s *Settings) Save() error {
	s.v.Set("offset", s.Offset.String())
	s.v.Set("scroll-speed", s.ScrollSpeed)
	file := s.v.ConfigFileUsed()
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("unable to create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("unable to write settings %s: %w", file, err)
	}
	return nil
}
