package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	c, err := Parse([]string{dir, "--settings", settings})
	if err != nil {
		t.Fatal(err)
	}
	if c.Directory != dir || c.Difficulty != -1 {
		t.Fatalf("config %+v", c)
	}
	if c.LeadIn != 3*time.Second || c.TickPeriod != 40*time.Millisecond || c.Offset != 0 {
		t.Fatalf("durations %v %v %v", c.LeadIn, c.TickPeriod, c.Offset)
	}
	if c.ScrollSpeed != 40 {
		t.Fatalf("scroll speed %v", c.ScrollSpeed)
	}
	for r, col := range map[rune]int{'d': 0, 'f': 1, 'j': 2, 'k': 3, 'x': -1} {
		if got := c.KeyColumn(r, 4); got != col {
			t.Errorf("KeyColumn(%q) = %v, want %v", r, got, col)
		}
	}
}

func TestParseRejectsMissingDirectory(t *testing.T) {
	if _, err := Parse([]string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("parsed a missing directory")
	}
}

func TestParseRejectsBadDurations(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	for _, flag := range []string{"--release-after=0s", "--release-after=-10ms", "--tick=0s", "--frame-period=-1ms"} {
		if _, err := Parse([]string{dir, "--settings", settings, flag}); err == nil {
			t.Errorf("parsed %s", flag)
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "settings.yaml")

	c, err := Parse([]string{dir, "--settings", file, "--offset=-25ms", "-s", "55"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Offset != -25*time.Millisecond || c.ScrollSpeed != 55 {
		t.Fatalf("flags ignored: %v %v", c.Offset, c.ScrollSpeed)
	}
	c.Settings.SetKeys("qwop")
	if err := c.Settings.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatal(err)
	}

	c, err = Parse([]string{dir, "--settings", file})
	if err != nil {
		t.Fatal(err)
	}
	if c.Offset != -25*time.Millisecond || c.ScrollSpeed != 55 {
		t.Fatalf("settings not loaded: %v %v", c.Offset, c.ScrollSpeed)
	}
	if got := string(c.Settings.Keys(4)); got != "qwop" {
		t.Fatalf("keys %q", got)
	}
}

func TestKeysFallBack(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(s.Keys(3)); got != "asd" {
		t.Fatalf("keys %q", got)
	}
	if got := len(s.Keys(18)); got != 11 {
		t.Fatalf("%v keys for 18 columns", got)
	}
}
