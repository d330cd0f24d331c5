// Package config loads the simulation runtime's TOML configuration document
// (spec section 6.1) with environment-variable overrides for operational
// knobs, mirroring the teacher's env/secret-fallback loading helpers.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Mode is a gameplay profile gating component writes.
type Mode string

const (
	ModeColony     Mode = "colony"
	ModeRoguelike  Mode = "roguelike"
	ModeEditor     Mode = "editor"
	ModeSimulation Mode = "simulation"
	ModeSingle     Mode = "single"
	ModeMulti      Mode = "multi"
)

// KnownModes enumerates every mode the config's allowed_modes may name.
var KnownModes = map[Mode]bool{
	ModeColony:     true,
	ModeRoguelike:  true,
	ModeEditor:     true,
	ModeSimulation: true,
	ModeSingle:     true,
	ModeMulti:      true,
}

// PluginsConfig holds native plugin discovery configuration.
type PluginsConfig struct {
	Native []string `toml:"native"`
}

// JobsConfig holds job-system tuning knobs.
type JobsConfig struct {
	DefinitionsDir string  `toml:"definitions_dir"`
	AgingRate      float64 `toml:"aging_rate"`
	PriorityCap    float64 `toml:"priority_cap"`
}

// WorldgenConfig holds worldgen registry configuration.
type WorldgenConfig struct {
	DefaultSeed int64 `toml:"default_seed"`
}

// SnapshotConfig holds the optional postgres snapshot backend configuration.
type SnapshotConfig struct {
	PostgresDSN string `toml:"postgres_dsn"`
}

// Config is the root configuration document described by spec section 6.1.
type Config struct {
	Title        string         `toml:"title"`
	Version      string         `toml:"version"`
	AllowedModes []Mode         `toml:"allowed_modes"`
	Plugins      PluginsConfig  `toml:"plugins"`
	Jobs         JobsConfig     `toml:"jobs"`
	Worldgen     WorldgenConfig `toml:"worldgen"`
	Snapshot     SnapshotConfig `toml:"snapshot"`
}

// Default returns a Config with the defaults spelled out in SPEC_FULL.md's
// aging-rate open-question resolution.
func Default() *Config {
	return &Config{
		Title:        "simcore",
		Version:      "0.1.0",
		AllowedModes: []Mode{ModeColony, ModeRoguelike, ModeEditor, ModeSimulation},
		Jobs: JobsConfig{
			DefinitionsDir: "jobs",
			AgingRate:      1.0,
			PriorityCap:    100.0,
		},
	}
}

// Load reads and parses a TOML configuration file, filling in defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	cfg.Jobs = JobsConfig{}
	cfg.AllowedModes = nil

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if len(cfg.AllowedModes) == 0 {
		cfg.AllowedModes = d.AllowedModes
	}
	if cfg.Jobs.DefinitionsDir == "" {
		cfg.Jobs.DefinitionsDir = d.Jobs.DefinitionsDir
	}
	if cfg.Jobs.AgingRate == 0 {
		cfg.Jobs.AgingRate = d.Jobs.AgingRate
	}
	if cfg.Jobs.PriorityCap == 0 {
		cfg.Jobs.PriorityCap = d.Jobs.PriorityCap
	}
	if cfg.Title == "" {
		cfg.Title = d.Title
	}
	if cfg.Version == "" {
		cfg.Version = d.Version
	}
}

// Validate checks structural invariants of the config document.
func (c *Config) Validate() error {
	for _, m := range c.AllowedModes {
		if !KnownModes[m] {
			return fmt.Errorf("config: unknown mode %q in allowed_modes", m)
		}
	}
	return nil
}

// HasMode reports whether the given mode is in the configured allow-list.
func (c *Config) HasMode(m Mode) bool {
	for _, am := range c.AllowedModes {
		if am == m {
			return true
		}
	}
	return false
}

// Env retrieves an environment variable with an optional default, trimming
// surrounding whitespace. This is the simulation-core equivalent of the
// teacher's config.GetEnv — there is no Marble/TEE secret store here, so the
// secret-lookup branch of the teacher's EnvOrSecret has no analogue.
func Env(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// EnvBool retrieves a boolean environment variable with a default. Accepts
// "true", "1", "yes", "y" (case-insensitive) as true.
func EnvBool(key string, defaultValue bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if val == "" {
		return defaultValue
	}
	switch val {
	case "true", "1", "yes", "y":
		return true
	case "false", "0", "no", "n":
		return false
	default:
		return defaultValue
	}
}

// EnvFloat retrieves a float64 environment variable with a default.
func EnvFloat(key string, defaultValue float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
