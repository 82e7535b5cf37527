package syncx

import "errors"

// Sync error taxonomy. Pass-level failures wrap one of these sentinels plus
// the underlying cause; match with errors.Is.
var (
	// ErrNotConfigured means the orchestrator has no local store handle.
	ErrNotConfigured = errors.New("local store not configured")

	// ErrNotAuthenticated means no valid session is available.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrOffline means the connectivity gate failed.
	ErrOffline = errors.New("offline")

	// ErrDownloadFailed wraps a failure in the download phase.
	ErrDownloadFailed = errors.New("download failed")

	// ErrSyncFailed wraps a generic pass failure (upload phase).
	ErrSyncFailed = errors.New("sync failed")

	// ErrConflict is reserved; no code path raises it yet.
	ErrConflict = errors.New("conflict")

	// errBusy signals that a full pass is already running. Never returned
	// to callers: a concurrent FullSync is a no-op.
	errBusy = errors.New("sync already in progress")
)
