// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cqkv/recstore/validate"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"

	defaultBackend  = BackendFile
	defaultPath     = "records.dat"
	defaultLogLevel = "info"
)

// Config holds the application configuration.
type Config struct {
	Storage struct {
		Backend    string `yaml:"backend"` // memory or file
		Path       string `yaml:"path"`    // backing file of the file backend
		SyncWrites bool   `yaml:"sync_writes"`
	} `yaml:"storage"`

	Log struct {
		Level string `yaml:"level"` // debug, info, warn, error
	} `yaml:"log"`

	// Instrument wraps the store with timing logs and metrics
	Instrument bool `yaml:"instrument"`

	Validation *validate.Rules `yaml:"validation"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads path; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	cfg := &Config{Validation: validate.DefaultRules()}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err = cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultBackend
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Validation == nil {
		cfg.Validation = validate.DefaultRules()
	}
}

func (cfg *Config) validate() error {
	switch cfg.Storage.Backend {
	case BackendMemory, BackendFile:
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	return nil
}
