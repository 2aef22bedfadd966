package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/corearena/internal/engine/sandbox"
	"github.com/san-kum/corearena/internal/player"
	"github.com/san-kum/corearena/internal/render"
)

const (
	DefaultUPS      = 60
	DefaultMaxSpeed = 64
	DefaultSpeed    = 1
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	UPS        int            `yaml:"ups"`
	MaxSpeed   int            `yaml:"max_speed"`
	Speed      int            `yaml:"speed"`
	ShowValues bool           `yaml:"show_values"`
	Geometry   string         `yaml:"geometry,omitempty"`
	Players    []PlayerConfig `yaml:"players,omitempty"`

	// dir is the directory relative sources are resolved against.
	dir string
}

// PlayerConfig describes one contender. Exactly one of Source and Builtin
// is set; with neither the registry picks a built-in.
type PlayerConfig struct {
	ID      int32  `yaml:"id"`
	Color   string `yaml:"color,omitempty"`
	Source  string `yaml:"source,omitempty"`
	Builtin string `yaml:"builtin,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		UPS:        DefaultUPS,
		MaxSpeed:   DefaultMaxSpeed,
		Speed:      DefaultSpeed,
		ShowValues: true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MaxPlayers is the largest roster one arena hosts.
const MaxPlayers = sandbox.MaxPlayers

func (c *Config) Validate() error { return c.ValidateRoster(MaxPlayers) }

// ValidateRoster is Validate with a different roster limit. A limit of zero
// accepts any roster size, for rosters that are only ever played in pairs.
func (c *Config) ValidateRoster(limit int) error {
	if c.UPS <= 0 {
		return fmt.Errorf("%w: ups must be positive, got %d", ErrInvalidConfig, c.UPS)
	}
	if c.MaxSpeed <= 0 {
		return fmt.Errorf("%w: max_speed must be positive, got %d", ErrInvalidConfig, c.MaxSpeed)
	}
	if c.Speed <= 0 || c.Speed > c.MaxSpeed || c.Speed&(c.Speed-1) != 0 {
		return fmt.Errorf("%w: speed must be a power of two up to %d, got %d", ErrInvalidConfig, c.MaxSpeed, c.Speed)
	}
	if _, err := c.ResolveGeometry(render.TerminalGeometry); err != nil {
		return err
	}

	if limit > 0 && len(c.Players) > limit {
		return fmt.Errorf("%w: %d players, limit is %d", ErrInvalidConfig, len(c.Players), limit)
	}

	seen := make(map[int32]bool, len(c.Players))
	for i, p := range c.Players {
		if p.ID == 0 {
			return fmt.Errorf("%w: player %d: id 0 is reserved", ErrInvalidConfig, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate player id %d", ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = true
		if p.Source != "" && p.Builtin != "" {
			return fmt.Errorf("%w: player %d has both source and builtin", ErrInvalidConfig, p.ID)
		}
		if p.Color != "" {
			if _, err := player.ParseRGB(p.Color); err != nil {
				return fmt.Errorf("%w: player %d: %v", ErrInvalidConfig, p.ID, err)
			}
		}
	}
	return nil
}

// ResolveGeometry maps the geometry name to a layout. An empty name keeps
// fallback.
func (c *Config) ResolveGeometry(fallback render.Geometry) (render.Geometry, error) {
	switch c.Geometry {
	case "":
		return fallback, nil
	case "terminal":
		return render.TerminalGeometry, nil
	case "pixel":
		return render.PixelGeometry, nil
	default:
		return render.Geometry{}, fmt.Errorf("%w: unknown geometry %q", ErrInvalidConfig, c.Geometry)
	}
}

// LoadSource returns the champion source of p. Relative paths are resolved
// against the directory of the loaded config file.
func (c *Config) LoadSource(p PlayerConfig) (string, error) {
	switch {
	case p.Source != "":
		path := p.Source
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case p.Builtin != "":
		return player.Builtin(p.Builtin)
	default:
		return "", nil
	}
}

// AddSources appends a player per champion file, with fresh ids.
func (c *Config) AddSources(paths ...string) {
	next := int32(1)
	for _, p := range c.Players {
		next = max(next, p.ID+1)
	}
	for _, path := range paths {
		c.Players = append(c.Players, PlayerConfig{ID: next, Source: path})
		next++
	}
}
