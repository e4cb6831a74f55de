// Package config loads the codecgen project file, a YAML document listing
// the schemas to compile.
//
//	logging:
//	  level: info
//	  format: console
//	targets:
//	  - input: sample.schema
//	    output: sample_gen.go
//	    class: sample.Serializer
//	    make: true
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/codecgen/internal/resolve"
)

// Config is the root configuration structure.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Targets []Target      `yaml:"targets"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "auto", "console" or "json"
}

// Target is one schema to compile.
type Target struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"` // empty writes to stdout
	Class  string `yaml:"class"`
	Access string `yaml:"access"`
	Make   bool   `yaml:"make"`
}

// Load reads configuration from a YAML file. Relative target paths are
// resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes configuration from data, resolving relative paths against
// dir.
func Parse(data []byte, dir string) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg, dir)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies CODECGEN_* environment variables. They always
// win over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CODECGEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CODECGEN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config, dir string) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Input != "" && !filepath.IsAbs(t.Input) {
			t.Input = filepath.Join(dir, t.Input)
		}
		if t.Output != "" && !filepath.IsAbs(t.Output) {
			t.Output = filepath.Join(dir, t.Output)
		}
	}
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch cfg.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", cfg.Logging.Format)
	}
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("no targets configured")
	}
	outputs := make(map[string]int, len(cfg.Targets))
	for i, t := range cfg.Targets {
		if t.Input == "" {
			return fmt.Errorf("targets[%d].input is required", i)
		}
		if _, _, err := resolve.SplitClass(t.Class); err != nil {
			return fmt.Errorf("targets[%d].class: %w", i, err)
		}
		if _, err := resolve.ParseAccess(t.Access); err != nil {
			return fmt.Errorf("targets[%d].access: %w", i, err)
		}
		if t.Output == "" {
			continue
		}
		if j, dup := outputs[t.Output]; dup {
			return fmt.Errorf("targets[%d] and targets[%d] both write %s", j, i, t.Output)
		}
		outputs[t.Output] = i
	}
	return nil
}
