// Package cli wires the sync engine behind a small command-line surface.
// The mutation commands (add, rm) drive the engine's single-record
// operations the same way the bookmark manager's UI layer does:
// fire-and-forget, best-effort, never blocking the local mutation.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"github.com/linkvault/linkvault/internal/auth"
	"github.com/linkvault/linkvault/internal/config"
	"github.com/linkvault/linkvault/internal/cryptox"
	"github.com/linkvault/linkvault/internal/localstore"
	"github.com/linkvault/linkvault/internal/logging"
	"github.com/linkvault/linkvault/internal/media"
	"github.com/linkvault/linkvault/internal/netx"
	"github.com/linkvault/linkvault/internal/remote"
	"github.com/linkvault/linkvault/internal/syncx"
)

// App bundles the constructed services for the command handlers.
type App struct {
	Cfg     *config.Config
	Log     logging.Logger
	Store   *localstore.Store
	Session *auth.Manager
	Orch    *syncx.Orchestrator
}

// newApp builds the full service graph from configuration and kicks off the
// asynchronous session restore. Commands must await the restore before
// touching the session or the engine.
func newApp(ctx context.Context, cfgPath, dbOverride string, verbose bool) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbOverride != "" {
		cfg.DatabaseDSN = dbOverride
	}

	log := logging.NewDefault(verbose)

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("LINKVAULT_SUPABASE_URL and LINKVAULT_SUPABASE_KEY must be set")
	}
	if cfg.Passphrase == "" {
		return nil, errors.New("LINKVAULT_PASSPHRASE must be set")
	}

	store, err := localstore.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	sb, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, &supabase.ClientOptions{})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	conn := netx.NewHTTPMonitor(cfg.ProbeURL, cfg.ProbeInterval)
	session := auth.NewManager(auth.NewSupabaseProvider(sb), store, conn, log)
	go func() {
		if err := session.Restore(ctx); err != nil {
			log.Warn(ctx, "session restore failed", "error", err)
		}
	}()

	salt, err := store.EncryptionSalt(ctx, func() []byte { return cryptox.GenerateSalt(32) })
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	enc, err := cryptox.NewAESGCM(cryptox.DeriveKey([]byte(cfg.Passphrase), salt))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	deviceID, err := store.DeviceID(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	orch := syncx.New(
		store,
		remote.NewSupabaseStore(sb),
		session,
		enc,
		media.NewSupabaseAdapter(sb, cfg.StorageBucket, log),
		conn,
		log,
		syncx.Options{
			DeviceID:         deviceID,
			DeleteMode:       cfg.DeleteMode,
			AutoSyncInterval: cfg.AutoSyncInterval,
		},
	)

	return &App{Cfg: cfg, Log: log, Store: store, Session: session, Orch: orch}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
