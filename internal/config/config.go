package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Bench struct {
		WarmupRuns      int `yaml:"warmupRuns"`
		MeasurementRuns int `yaml:"measurementRuns"`
	} `yaml:"bench"`
	Movie struct {
		SkipBadFrames bool `yaml:"skipBadFrames"`
	} `yaml:"movie"`
	Metrics struct {
		ListenAddress string `yaml:"listenAddress"`
	} `yaml:"metrics"`
}

// DefaultConfig returns the configuration used when no config file is given.
// The run counts match the harness defaults: 20 discarded warm-up runs
// followed by 50 measured runs.
func DefaultConfig() *Config {
	var cfg Config
	cfg.Logger.Verbosity = "info"
	cfg.Bench.WarmupRuns = 20
	cfg.Bench.MeasurementRuns = 50
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config file at path, falling back to defaults if
// the file does not exist. Any other read or parse error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Bench.WarmupRuns < 0 {
		return fmt.Errorf("bench.warmupRuns must not be negative, got %d", c.Bench.WarmupRuns)
	}
	if c.Bench.MeasurementRuns <= 0 {
		return fmt.Errorf("bench.measurementRuns must be positive, got %d", c.Bench.MeasurementRuns)
	}
	return nil
}
