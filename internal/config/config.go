// Package config holds runtime settings, assembled from defaults, an
// optional JSON file, and environment variables, in that order of
// precedence.
package config

import (
	"time"

	"github.com/linkvault/linkvault/internal/remote"
)

// Config holds runtime settings for the linkvault CLI and sync engine.
// Secrets (SupabaseKey, Passphrase) are taken from the environment only and
// never from the config file.
type Config struct {
	SupabaseURL   string
	SupabaseKey   string
	StorageBucket string

	DatabaseDSN string

	ProbeURL      string
	ProbeInterval time.Duration

	AutoSyncInterval time.Duration
	DeleteMode       remote.DeleteMode

	Passphrase string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorageBucket = "bookmark-images"
	c.DatabaseDSN = "linkvault.db"
	c.ProbeURL = "https://clients3.google.com/generate_204"
	c.ProbeInterval = 10 * time.Second
	c.AutoSyncInterval = 5 * time.Minute
	c.DeleteMode = remote.SoftDelete
}

// Load constructs a Config: defaults, then the JSON file at path (if any),
// then environment variables. Later sources take precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}
