package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/linkvault/linkvault/internal/remote"
	"github.com/linkvault/linkvault/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. timex.Duration
// lets intervals be written either as strings like "5m" or as integer
// nanoseconds.
type jsonConfig struct {
	SupabaseURL      string         `json:"supabase_url"`
	StorageBucket    string         `json:"storage_bucket"`
	DatabaseDSN      string         `json:"database_dsn"`
	ProbeURL         string         `json:"probe_url"`
	ProbeInterval    timex.Duration `json:"probe_interval"`
	AutoSyncInterval timex.Duration `json:"auto_sync_interval"`
	DeleteMode       string         `json:"delete_mode"`
}

// parseJSON overlays cfg with values from the JSON file at path. An empty
// path means no file is loaded.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if jc.SupabaseURL != "" {
		cfg.SupabaseURL = jc.SupabaseURL
	}
	if jc.StorageBucket != "" {
		cfg.StorageBucket = jc.StorageBucket
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.ProbeURL != "" {
		cfg.ProbeURL = jc.ProbeURL
	}
	if jc.ProbeInterval > 0 {
		cfg.ProbeInterval = jc.ProbeInterval.Std()
	}
	if jc.AutoSyncInterval > 0 {
		cfg.AutoSyncInterval = jc.AutoSyncInterval.Std()
	}
	if jc.DeleteMode != "" {
		cfg.DeleteMode = remote.DeleteMode(jc.DeleteMode)
	}
	return nil
}
