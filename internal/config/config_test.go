package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linkvault/linkvault/internal/remote"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "bookmark-images", cfg.StorageBucket)
	require.Equal(t, "linkvault.db", cfg.DatabaseDSN)
	require.Equal(t, 5*time.Minute, cfg.AutoSyncInterval)
	require.Equal(t, remote.SoftDelete, cfg.DeleteMode)
}

func TestLoad_JSONFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"supabase_url": "https://proj.supabase.co",
		"database_dsn": "custom.db",
		"auto_sync_interval": "10m",
		"delete_mode": "hard"
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://proj.supabase.co", cfg.SupabaseURL)
	require.Equal(t, "custom.db", cfg.DatabaseDSN)
	require.Equal(t, 10*time.Minute, cfg.AutoSyncInterval)
	require.Equal(t, remote.HardDelete, cfg.DeleteMode)
	// Untouched keys keep their defaults.
	require.Equal(t, "bookmark-images", cfg.StorageBucket)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database_dsn": "from-file.db"}`), 0o600))

	t.Setenv("LINKVAULT_DB", "from-env.db")
	t.Setenv("LINKVAULT_SUPABASE_KEY", "anon-key")
	t.Setenv("LINKVAULT_PASSPHRASE", "secret")
	t.Setenv("LINKVAULT_AUTO_SYNC_INTERVAL", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env.db", cfg.DatabaseDSN)
	require.Equal(t, "anon-key", cfg.SupabaseKey)
	require.Equal(t, "secret", cfg.Passphrase)
	require.Equal(t, 90*time.Second, cfg.AutoSyncInterval)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
