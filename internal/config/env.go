package config

import (
	"os"
	"time"

	"github.com/linkvault/linkvault/internal/remote"
)

// parseEnv overlays cfg with environment variables. Secrets only exist here.
func parseEnv(cfg *Config) {
	if v := os.Getenv("LINKVAULT_SUPABASE_URL"); v != "" {
		cfg.SupabaseURL = v
	}
	if v := os.Getenv("LINKVAULT_SUPABASE_KEY"); v != "" {
		cfg.SupabaseKey = v
	}
	if v := os.Getenv("LINKVAULT_STORAGE_BUCKET"); v != "" {
		cfg.StorageBucket = v
	}
	if v := os.Getenv("LINKVAULT_DB"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("LINKVAULT_PROBE_URL"); v != "" {
		cfg.ProbeURL = v
	}
	if v := os.Getenv("LINKVAULT_AUTO_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AutoSyncInterval = d
		}
	}
	if v := os.Getenv("LINKVAULT_DELETE_MODE"); v != "" {
		cfg.DeleteMode = remote.DeleteMode(v)
	}
	if v := os.Getenv("LINKVAULT_PASSPHRASE"); v != "" {
		cfg.Passphrase = v
	}
}
