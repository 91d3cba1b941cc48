// Package config loads scan settings from an optional YAML file.
// Command-line flags override file values; REORG_DB overrides the database
// path over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lrem/reorg/internal/domain"
)

// DefaultDBPath is used when neither config nor flags name a database.
const DefaultDBPath = "reorg.db"

// Duration wraps time.Duration so YAML values like "60s" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds every knob of a scan run.
type Config struct {
	DB            string   `yaml:"db"`
	Workers       int      `yaml:"workers"`
	Ignore        []string `yaml:"ignore"`
	QueueSize     int      `yaml:"queue_size"`
	SinkQueueSize int      `yaml:"sink_queue_size"`
	IdleTimeout   Duration `yaml:"idle_timeout"`
	FlushInterval Duration `yaml:"flush_interval"`
	Fingerprint   string   `yaml:"fingerprint"`
	MetricsAddr   string   `yaml:"metrics_addr"`
	LogLevel      string   `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:            DefaultDBPath,
		Ignore:        domain.DefaultIgnore,
		SinkQueueSize: 1000,
		IdleTimeout:   Duration(60 * time.Second),
		FlushInterval: Duration(time.Second),
		Fingerprint:   "md5",
		LogLevel:      "info",
	}
}

// DefaultPath returns the conventional config location under
// XDG_CONFIG_HOME, falling back to ~/.config.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "reorg", "config.yaml")
}

// Load reads the config at path on top of the defaults. A missing file is
// not an error when explicit is false (the conventional location simply may
// not exist yet).
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := os.Getenv("REORG_DB"); env != "" {
		cfg.DB = env
	}
}
