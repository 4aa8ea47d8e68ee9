// Package zone provides the per-zone world state: entity collections,
// spawn-table population, per-tick update fan-out, and spatial queries.
package zone

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lorencia/mmoserver/internal/game/geo"
)

// SpawnPoint is an anchor-point YAML shape.
type SpawnPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec3 converts the YAML shape to a world vector.
func (p SpawnPoint) Vec3() geo.Vec3 {
	return geo.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// SpawnConfig is one immutable spawn-table entry: count monsters of the named
// template placed within radius of the anchor. Read only at zone construction.
type SpawnConfig struct {
	Template string     `yaml:"template"`
	Anchor   SpawnPoint `yaml:"anchor"`
	Radius   float64    `yaml:"radius"`
	Count    int        `yaml:"count"`
}

// Config defines one zone loaded from YAML.
type Config struct {
	Name   string        `yaml:"name"`
	Size   int           `yaml:"size"`
	Spawns []SpawnConfig `yaml:"spawns"`
}

// Validate checks the zone config invariants.
//
// Postcondition: Returns nil iff the name is non-empty, the size is positive,
// and every spawn entry names a template with Count >= 1 and Radius >= 0.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("zone config: name must not be empty")
	}
	if c.Size <= 0 {
		return fmt.Errorf("zone %q: size must be > 0, got %d", c.Name, c.Size)
	}
	for i, s := range c.Spawns {
		if s.Template == "" {
			return fmt.Errorf("zone %q: spawn[%d] must name a template", c.Name, i)
		}
		if s.Count < 1 {
			return fmt.Errorf("zone %q: spawn[%d] count must be >= 1, got %d", c.Name, i, s.Count)
		}
		if s.Radius < 0 {
			return fmt.Errorf("zone %q: spawn[%d] radius must be >= 0, got %v", c.Name, i, s.Radius)
		}
	}
	return nil
}

// LoadConfigFromBytes parses and validates a single zone config from YAML.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing zone YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigs reads all *.yaml files in dir and returns the parsed zone
// configs.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all configs, or an error on the first parse or
// validate failure.
func LoadConfigs(dir string) ([]*Config, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading maps dir %q: %w", dir, err)
	}

	var configs []*Config
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		cfg, err := LoadConfigFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
