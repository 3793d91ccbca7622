package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

type Config struct {
	Directory    string
	Difficulty   int
	Offset       time.Duration
	LeadIn       time.Duration
	Latency      time.Duration
	TickPeriod   time.Duration
	FramePeriod  time.Duration
	ScrollSpeed  float64 // Rows per second
	BarRow       uint
	Spacing      uint
	Device       string
	ReleaseAfter time.Duration
	Database     string
	LogDir       string
	LogLevel     string
	Spectate     string
	SettingsFile string

	Settings *Settings
}

func defaultSettingsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cadence.yaml"
	}
	return filepath.Join(dir, "cadence", "settings.yaml")
}

// Parse reads the command line, then the settings file it names. Flags
// given on the command line win over saved settings.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	app := kingpin.New("cadence", "Terminal rhythm game")
	app.Version(Version)

	app.Arg("directory", "Song/chart directory").Required().ExistingDirVar(&c.Directory)
	app.Flag("difficulty", "Chart index to play, -1 to choose").Default("-1").Short('D').IntVar(&c.Difficulty)
	offset := app.Flag("offset", "Global offset").Short('o').Duration()
	app.Flag("lead-in", "Time before the audio starts").Default("3s").Short('d').DurationVar(&c.LeadIn)
	app.Flag("latency", "Audio output latency").Default("0ms").DurationVar(&c.Latency)
	app.Flag("tick", "Judgement sweep period").Default("40ms").DurationVar(&c.TickPeriod)
	app.Flag("frame-period", "Render frame period").Default("4ms").Short('p').DurationVar(&c.FramePeriod)
	speed := app.Flag("scroll-speed", "Rows scrolled per second").Short('s').Float64()
	app.Flag("bar-row", "Rows from the bottom to render the hit bar").Default("4").UintVar(&c.BarRow)
	app.Flag("spacing", "Columns between keys").Default("6").Short('S').UintVar(&c.Spacing)
	app.Flag("device", "Read key presses and releases from this evdev device").StringVar(&c.Device)
	app.Flag("release-after", "Assume a terminal key was released after this long without repeats").Default("550ms").DurationVar(&c.ReleaseAfter)
	app.Flag("db", "Score database").Default("./scores.db").StringVar(&c.Database)
	app.Flag("log-dir", "Directory for log files").Default("./logs").StringVar(&c.LogDir)
	app.Flag("log-level", "Log level (debug, info, warn, error)").Default("info").StringVar(&c.LogLevel)
	app.Flag("spectate", "Serve a live websocket feed on this address").StringVar(&c.Spectate)
	app.Flag("settings", "Settings file").Default(defaultSettingsFile()).StringVar(&c.SettingsFile)

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	settings, err := LoadSettings(c.SettingsFile)
	if err != nil {
		return nil, err
	}
	c.Settings = settings

	c.Offset = settings.Offset
	if *offset != 0 {
		c.Offset = *offset
		settings.Offset = *offset
	}
	c.ScrollSpeed = settings.ScrollSpeed
	if *speed != 0 {
		c.ScrollSpeed = *speed
		settings.ScrollSpeed = *speed
	}

	if c.TickPeriod <= 0 || c.FramePeriod <= 0 {
		return nil, fmt.Errorf("tick and frame periods must be positive")
	}
	if c.ReleaseAfter <= 0 {
		return nil, fmt.Errorf("release-after must be positive")
	}
	if c.ScrollSpeed <= 0 {
		return nil, fmt.Errorf("scroll speed must be positive")
	}
	return c, nil
}

// KeyColumn maps a key to a column of an nKeys chart, -1 if unbound.
func (c *Config) KeyColumn(r rune, nKeys int) int {
	for i, k := range c.Settings.Keys(nKeys) {
		if r == k {
			return i
		}
	}
	return -1
}
