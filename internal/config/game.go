package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.lost.host/meutraa/moon4k/internal/stats"
	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// LaneBinds names one key per lane, left to right.
type LaneBinds struct {
	Left  string `toml:"left"`
	Down  string `toml:"down"`
	Up    string `toml:"up"`
	Right string `toml:"right"`
}

func (b LaneBinds) Lanes() []string {
	return []string{b.Left, b.Down, b.Up, b.Right}
}

type Binds struct {
	Main LaneBinds `toml:"main"`
	Alt  LaneBinds `toml:"alt"`
}

// GameConfig holds the options that persist between runs.
type GameConfig struct {
	Downscroll   bool               `toml:"downscroll"`
	GhostTapping bool               `toml:"ghost_tapping"`
	Noteskin     string             `toml:"noteskin"`
	ScrollSpeed  float64            `toml:"scroll_speed"`
	SongOffset   float64            `toml:"song_offset"`
	Binds        Binds              `toml:"binds"`
	Health       stats.HealthConfig `toml:"health"`
}

func Default() GameConfig {
	return GameConfig{
		Noteskin:    "default",
		ScrollSpeed: 1,
		Binds: Binds{
			Main: LaneBinds{Left: "Left", Down: "Down", Up: "Up", Right: "Right"},
			Alt:  LaneBinds{Left: "A", Down: "S", Up: "W", Right: "D"},
		},
		Health: stats.DefaultHealth(),
	}
}

func (c *GameConfig) Validate() error {
	if c.Noteskin == "" {
		return errors.New("noteskin must be set")
	}
	if c.ScrollSpeed <= 0 {
		return fmt.Errorf("scroll_speed must be positive, got %v", c.ScrollSpeed)
	}
	for _, b := range c.Binds.Main.Lanes() {
		if b == "" {
			return errors.New("every lane needs a main bind")
		}
	}
	h := c.Health
	if h.Start <= 0 || h.Start > 1 {
		return fmt.Errorf("health start must be in (0, 1], got %v", h.Start)
	}
	if h.Gain < 0 || h.Loss < 0 || h.Drain < 0 {
		return errors.New("health gain, loss and drain cannot be negative")
	}
	return nil
}

// Load reads the game options at path. A missing file gives the defaults.
func Load(path string) (GameConfig, error) {
	cfg := Default()
	file, err := os.Open(path)
	if nil != err {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("no game config, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(&cfg); nil != err {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); nil != err {
		return Default(), fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the game options to path while holding a lock beside it.
func Save(path string, cfg GameConfig) error {
	if err := cfg.Validate(); nil != err {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if nil != err {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); nil != err {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if nil != err {
		return fmt.Errorf("acquire config lock: %w", err)
	}
	if !ok {
		return errors.New("config is being written by another instance")
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); nil != err {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); nil != err {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Apply sets every option given on the command line, reporting whether
// anything changed.
func (c *GameConfig) Apply(o *Options) bool {
	before := *c
	if nil != o.Downscroll {
		c.Downscroll = *o.Downscroll
	}
	if nil != o.GhostTapping {
		c.GhostTapping = *o.GhostTapping
	}
	if nil != o.Noteskin {
		c.Noteskin = *o.Noteskin
	}
	if nil != o.ScrollSpeed {
		c.ScrollSpeed = *o.ScrollSpeed
	}
	if nil != o.SongOffset {
		c.SongOffset = *o.SongOffset
	}
	return before != *c
}

// String renders the options as they are stored.
func (c GameConfig) String() string {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); nil != err {
		return err.Error()
	}
	return buf.String()
}
