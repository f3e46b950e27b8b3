package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".lensboard"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
	// envPrefix namespaces environment overrides, e.g. LENSBOARD_PORT.
	envPrefix = "LENSBOARD"
)

// ConfigPath returns the path to the config file. LENSBOARD_CONFIG points at
// an explicit file; LENSBOARD_HOME relocates the config directory.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("LENSBOARD_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

func resolveHomeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv("LENSBOARD_HOME")); h != "" {
		if strings.HasPrefix(h, "~") {
			base, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(base, h[1:]), nil
		}
		return h, nil
	}
	return os.UserHomeDir()
}

// Load reads the config file if present, overlays environment variables, and
// fills remaining zero values with defaults. A missing file is not an error;
// a malformed one is.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Each section is processed against the shared prefix; the envconfig
	// tags carry section-distinct names (HOST, INGEST_TOPIC, SLACK_TOKEN).
	for _, section := range []any{
		&cfg.Paths, &cfg.Gateway, &cfg.Feed, &cfg.Monitor, &cfg.Ingest, &cfg.Notify.Slack,
	} {
		if err := envconfig.Process(envPrefix, section); err != nil {
			return nil, fmt.Errorf("apply env overrides: %w", err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults backfills zero values so partial files and env overlays stay
// usable.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Paths.DataDir == "" {
		if home, err := resolveHomeDir(); err == nil {
			cfg.Paths.DataDir = filepath.Join(home, ConfigDir)
		}
	}
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = def.Gateway.Host
	}
	if cfg.Gateway.Port <= 0 {
		cfg.Gateway.Port = def.Gateway.Port
	}
	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = def.Feed.PageSize
	}
	if cfg.Feed.ShowMore <= 0 {
		cfg.Feed.ShowMore = def.Feed.ShowMore
	}
	if cfg.Monitor.TickInterval <= 0 {
		cfg.Monitor.TickInterval = def.Monitor.TickInterval
	}
	if cfg.Monitor.StartupDelay < 0 {
		cfg.Monitor.StartupDelay = def.Monitor.StartupDelay
	}
	if cfg.Ingest.Brokers == "" {
		cfg.Ingest.Brokers = def.Ingest.Brokers
	}
	if cfg.Ingest.Topic == "" {
		cfg.Ingest.Topic = def.Ingest.Topic
	}
	if cfg.Ingest.ConsumerGroup == "" {
		cfg.Ingest.ConsumerGroup = def.Ingest.ConsumerGroup
	}
}

// DBPath returns the SQLite database location under the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.Paths.DataDir, "lensboard.db")
}
