package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"manasim/internal/mana"
	"manasim/internal/sim"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "manasim.toml"

// Config represents the application configuration.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Output     OutputConfig     `toml:"output"`
	Storage    StorageConfig    `toml:"storage"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// SimulationConfig contains the Monte Carlo run settings.
type SimulationConfig struct {
	Simulations  int    `toml:"simulations"`   // Games per run
	Turns        int    `toml:"turns"`         // Turns per game
	Seed         int64  `toml:"seed"`          // 0 picks a seed from the clock
	Workers      int    `toml:"workers"`       // 0 uses every CPU
	TraceSamples int    `toml:"trace_samples"` // Games kept as full traces
	MultiColor   string `toml:"multicolor"`    // "generic" or "first"
}

// OutputConfig contains the result file paths. Empty paths are skipped.
type OutputConfig struct {
	JSONPath   string `toml:"json_path"`
	CSVPath    string `toml:"csv_path"`
	ReportPath string `toml:"report_path"`
	ChartPath  string `toml:"chart_path"`
	PrettyJSON bool   `toml:"pretty_json"`
}

// StorageConfig contains run history settings.
type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	MaxSimulations  int    `toml:"max_simulations"` // Upper bound per request
	MaxTurns        int    `toml:"max_turns"`
	MaxTraceSamples int    `toml:"max_trace_samples"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Simulations:  50_000,
			Turns:        12,
			TraceSamples: 5,
			MultiColor:   string(mana.PolicyGeneric),
		},
		Output: OutputConfig{
			PrettyJSON: true,
		},
		Storage: StorageConfig{
			Enabled: false,
			DBPath:  "manasim.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxSimulations:  100_000,
			MaxTurns:        30,
			MaxTraceSamples: 20,
		},
	}
}

// Load reads the configuration at path. A missing file yields the defaults;
// values present in the file override them.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Simulation.Simulations < 1 {
		return fmt.Errorf("simulations must be at least 1: %d", c.Simulation.Simulations)
	}
	if c.Simulation.Turns < 1 {
		return fmt.Errorf("turns must be at least 1: %d", c.Simulation.Turns)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.Simulation.Workers)
	}
	if c.Simulation.TraceSamples < 0 || c.Simulation.TraceSamples > sim.MaxTraceSamples {
		return fmt.Errorf("trace samples must be between 0 and %d: %d", sim.MaxTraceSamples, c.Simulation.TraceSamples)
	}
	if _, err := mana.ParsePolicy(c.Simulation.MultiColor); err != nil {
		return err
	}
	if c.Storage.Enabled && c.Storage.DBPath == "" {
		return errors.New("storage enabled without a db_path")
	}
	if c.Server.MaxSimulations < 1 || c.Server.MaxTurns < 1 {
		return fmt.Errorf("server limits must be positive: simulations=%d turns=%d", c.Server.MaxSimulations, c.Server.MaxTurns)
	}
	if c.Server.MaxTraceSamples < 0 || c.Server.MaxTraceSamples > sim.MaxTraceSamples {
		return fmt.Errorf("server max_trace_samples must be between 0 and %d: %d", sim.MaxTraceSamples, c.Server.MaxTraceSamples)
	}
	return nil
}

// MultiColorPolicy returns the parsed multi-symbol production policy.
func (c *Config) MultiColorPolicy() mana.Policy {
	p, err := mana.ParsePolicy(c.Simulation.MultiColor)
	if err != nil {
		return mana.PolicyGeneric
	}
	return p
}
