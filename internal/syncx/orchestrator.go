// Package syncx implements the synchronization engine: full bidirectional
// passes between the local store and the remote multi-device store,
// single-record sync and delete, and a periodic auto-sync timer.
package syncx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linkvault/linkvault/internal/cryptox"
	"github.com/linkvault/linkvault/internal/logging"
	"github.com/linkvault/linkvault/internal/media"
	"github.com/linkvault/linkvault/internal/models"
	"github.com/linkvault/linkvault/internal/netx"
	"github.com/linkvault/linkvault/internal/remote"
	syncpkg "sync"
)

// State is the orchestrator's published sync state.
type State string

const (
	StateIdle        State = "idle"
	StateSyncing     State = "syncing"
	StateDownloading State = "downloading"
	StateUploading   State = "uploading"
	StateOffline     State = "offline"
	StateError       State = "error"
)

// DefaultAutoSyncInterval is the auto-sync timer period when none is
// configured.
const DefaultAutoSyncInterval = 5 * time.Minute

// imageUploadConcurrency bounds how many of a single record's images are
// uploaded in parallel. Records themselves are processed sequentially.
const imageUploadConcurrency = 4

// EventType classifies pass lifecycle events.
type EventType string

const (
	EventPassStarted   EventType = "pass_started"
	EventPassCompleted EventType = "pass_completed"
	EventPassFailed    EventType = "pass_failed"
)

// Event is a pass lifecycle notification.
type Event struct {
	Type EventType
	Err  error
	At   time.Time
}

// Status is a snapshot of the orchestrator's published signals.
type Status struct {
	State        State
	LastSyncedAt time.Time
	LastErr      error
}

// Session is the slice of the auth manager the engine needs.
type Session interface {
	CurrentUserID() (string, bool)
	IsAuthenticated() bool
	EnsureValidSession(ctx context.Context) error
}

// LocalStore is the narrow local-store contract the engine drives. SaveAll
// must persist all mutations atomically; SetLastSyncedAt records a
// successful pass.
type LocalStore interface {
	AllBookmarks(ctx context.Context) ([]models.Bookmark, error)
	AllCategories(ctx context.Context) ([]models.Category, error)
	SaveAll(ctx context.Context, cats []models.Category, bms []models.Bookmark) error
	SetLastSyncedAt(ctx context.Context, t time.Time) error
}

// Options configures an Orchestrator.
type Options struct {
	// DeviceID tags uploaded records as last_modified_device.
	DeviceID string
	// DeleteMode selects soft or hard remote deletion. Defaults to soft.
	DeleteMode remote.DeleteMode
	// AutoSyncInterval is the auto-sync period. Defaults to
	// DefaultAutoSyncInterval.
	AutoSyncInterval time.Duration
}

// Orchestrator drives sync passes. A full pass downloads remote state into
// the local store, then uploads local state to the remote store; the two
// phases never run concurrently and a second full pass requested while one
// is in flight is a no-op. Single-record operations are not serialized
// against full passes; every remote write is an idempotent upsert keyed by
// (user_id, local_id), which makes that race harmless.
type Orchestrator struct {
	local   LocalStore
	remote  remote.Store
	session Session
	enc     cryptox.Encryptor
	media   media.Adapter
	conn    netx.Monitor
	log     logging.Logger
	opts    Options

	mu           syncpkg.Mutex
	state        State
	lastErr      error
	lastSyncedAt time.Time
	autoStop     chan struct{}

	events chan Event
}

// New wires an Orchestrator. All collaborators are injected; the engine
// holds no global state.
func New(local LocalStore, store remote.Store, session Session, enc cryptox.Encryptor,
	adapter media.Adapter, conn netx.Monitor, log logging.Logger, opts Options) *Orchestrator {

	if opts.DeleteMode == "" {
		opts.DeleteMode = remote.SoftDelete
	}
	if opts.AutoSyncInterval <= 0 {
		opts.AutoSyncInterval = DefaultAutoSyncInterval
	}
	return &Orchestrator{
		local:   local,
		remote:  store,
		session: session,
		enc:     enc,
		media:   adapter,
		conn:    conn,
		log:     log,
		opts:    opts,
		state:   StateIdle,
		events:  make(chan Event, 16),
	}
}

// Events returns the pass lifecycle event channel. Sends are non-blocking;
// a slow consumer loses events, never stalls a pass.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Status returns the published sync signals.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{State: o.state, LastSyncedAt: o.lastSyncedAt, LastErr: o.lastErr}
}

// FullSync runs one full pass: Download (remote to local), then Upload
// (local to remote). A pass already in flight makes this call a no-op. Gate
// failures and phase failures are returned as typed errors and also recorded
// in Status; they never panic or crash the caller.
func (o *Orchestrator) FullSync(ctx context.Context) error {
	if err := o.begin(ctx); err != nil {
		if errors.Is(err, errBusy) {
			o.log.Debug(ctx, "full sync skipped, pass already running")
			return nil
		}
		return err
	}

	userID, ok := o.session.CurrentUserID()
	if !ok {
		err := ErrNotAuthenticated
		o.fail(ctx, StateError, err)
		return err
	}
	if err := o.session.EnsureValidSession(ctx); err != nil {
		err = fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		o.fail(ctx, StateError, err)
		return err
	}

	o.setState(StateDownloading)
	if err := o.download(ctx, userID); err != nil {
		err = fmt.Errorf("%w: %w", ErrDownloadFailed, err)
		o.fail(ctx, StateError, err)
		return err
	}

	o.setState(StateUploading)
	if err := o.upload(ctx, userID); err != nil {
		err = fmt.Errorf("%w: %w", ErrSyncFailed, err)
		o.fail(ctx, StateError, err)
		return err
	}

	o.complete(ctx)
	return nil
}

// begin is the canSync gate: configured local store, authenticated session,
// connectivity, and no pass already in flight. On success the state moves to
// syncing and a pass-started event is emitted.
func (o *Orchestrator) begin(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateSyncing, StateDownloading, StateUploading:
		return errBusy
	}
	if o.local == nil {
		return ErrNotConfigured
	}
	if !o.session.IsAuthenticated() {
		o.state = StateError
		o.lastErr = ErrNotAuthenticated
		return ErrNotAuthenticated
	}
	if !o.conn.IsConnected() {
		o.state = StateOffline
		o.lastErr = ErrOffline
		return ErrOffline
	}

	o.state = StateSyncing
	o.lastErr = nil
	o.emit(Event{Type: EventPassStarted, At: time.Now()})
	o.log.Info(ctx, "full sync started")
	return nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) fail(ctx context.Context, s State, err error) {
	o.mu.Lock()
	o.state = s
	o.lastErr = err
	o.mu.Unlock()

	o.emit(Event{Type: EventPassFailed, Err: err, At: time.Now()})
	o.log.Error(ctx, "full sync failed", "error", err)
}

func (o *Orchestrator) complete(ctx context.Context) {
	now := time.Now()
	o.mu.Lock()
	o.state = StateIdle
	o.lastErr = nil
	o.lastSyncedAt = now
	o.mu.Unlock()

	if err := o.local.SetLastSyncedAt(ctx, now); err != nil {
		o.log.Warn(ctx, "failed to persist last sync time", "error", err)
	}
	o.emit(Event{Type: EventPassCompleted, At: now})
	o.log.Info(ctx, "full sync completed")
}

func (o *Orchestrator) emit(e Event) {
	select {
	case o.events <- e:
	default:
	}
}

// download reconciles remote state into the local store. Remote categories
// unknown locally are materialized with their remote-declared UUID; remote
// bookmarks overwrite the mutable fields of their local counterparts or are
// materialized when absent. All local mutations are persisted atomically at
// the end of the phase.
func (o *Orchestrator) download(ctx context.Context, userID string) error {
	remCats, err := o.remote.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	remBms, err := o.remote.ListBookmarks(ctx, userID)
	if err != nil {
		return err
	}

	localCats, err := o.local.AllCategories(ctx)
	if err != nil {
		return err
	}
	localBms, err := o.local.AllBookmarks(ctx)
	if err != nil {
		return err
	}

	knownCats := make(map[string]bool, len(localCats))
	for _, c := range localCats {
		knownCats[c.ID] = true
	}

	recon := NewIdentifierReconciler(remCats)

	var newCats []models.Category
	for _, rc := range remCats {
		localID := rc.LocalID
		if localID == "" {
			localID = rc.ID
		}
		if knownCats[localID] {
			continue
		}
		newCats = append(newCats, models.Category{
			ID:        localID,
			Name:      cryptox.DecryptIfNeeded(o.enc, rc.Name, rc.IsEncrypted),
			Icon:      rc.Icon,
			Color:     rc.Color,
			Order:     rc.Order,
			CreatedAt: rc.CreatedAt,
			UpdatedAt: rc.UpdatedAt,
		})
		knownCats[localID] = true
	}

	byID := make(map[string]models.Bookmark, len(localBms))
	for _, b := range localBms {
		byID[b.ID] = b
	}

	var changed []models.Bookmark
	for _, rb := range remBms {
		localID := rb.LocalID
		if localID == "" {
			localID = rb.ID
		}

		var catRef string
		if rb.CategoryID != nil {
			if lid, ok := recon.LocalID(*rb.CategoryID); ok && knownCats[lid] {
				catRef = lid
			}
		}

		b, exists := byID[localID]
		if exists {
			// Overwrite mutable fields from the decrypted remote values.
			// The category reference changes only when the remote id maps
			// to a known local category.
			b.Title = cryptox.DecryptIfNeeded(o.enc, rb.Title, rb.IsEncrypted)
			b.URL = o.decryptOptional(rb.URL, rb.IsEncrypted)
			b.Note = cryptox.DecryptIfNeeded(o.enc, rb.Note, rb.IsEncrypted)
			b.Tags = o.decryptTags(rb.Tags, rb.IsEncrypted)
			b.IsRead = rb.IsRead
			b.IsFavorite = rb.IsFavorite
			b.ImageURLs = rb.ImageURLs
			if catRef != "" {
				b.CategoryID = catRef
			}
		} else {
			b = models.Bookmark{
				ID:         localID,
				Title:      cryptox.DecryptIfNeeded(o.enc, rb.Title, rb.IsEncrypted),
				URL:        o.decryptOptional(rb.URL, rb.IsEncrypted),
				Note:       cryptox.DecryptIfNeeded(o.enc, rb.Note, rb.IsEncrypted),
				Source:     models.Source(rb.Source),
				IsRead:     rb.IsRead,
				IsFavorite: rb.IsFavorite,
				CategoryID: catRef,
				Tags:       o.decryptTags(rb.Tags, rb.IsEncrypted),
				ImageURLs:  rb.ImageURLs,
				CreatedAt:  rb.CreatedAt,
				UpdatedAt:  rb.UpdatedAt,
			}
		}

		if len(rb.ImageURLs) > 0 && len(b.Images) == 0 {
			if img, ok := o.media.Download(ctx, rb.ImageURLs[0]); ok {
				b.Images = [][]byte{img}
			} else {
				o.log.Warn(ctx, "skipping image download", "bookmark", localID, "path", rb.ImageURLs[0])
			}
		}

		changed = append(changed, b)
	}

	return o.local.SaveAll(ctx, newCats, changed)
}

// upload pushes local state to the remote store: categories first, feeding
// each upsert's server-assigned id into the reconciler, then bookmarks with
// their category references translated into remote identifiers.
func (o *Orchestrator) upload(ctx context.Context, userID string) error {
	remCats, err := o.remote.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	recon := NewIdentifierReconciler(remCats)

	cats, err := o.local.AllCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		rec := remote.BuildCategoryRecord(c, userID, o.opts.DeviceID, o.enc)
		stored, err := o.remote.UpsertCategory(ctx, rec)
		if err != nil {
			return err
		}
		if stored.ID != "" {
			recon.Add(c.ID, stored.ID)
		}
	}

	bms, err := o.local.AllBookmarks(ctx)
	if err != nil {
		return err
	}
	for _, b := range bms {
		urls := b.ImageURLs
		if len(b.Images) > 0 {
			urls = o.uploadImages(ctx, b)
		}

		var catID *string
		if b.CategoryID != "" {
			if rid, ok := recon.RemoteID(b.CategoryID); ok {
				catID = &rid
			}
		}

		rec := remote.BuildBookmarkRecord(b, userID, o.opts.DeviceID, catID, urls, o.enc)
		if _, err := o.remote.UpsertBookmark(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// uploadImages pushes a record's local images concurrently and joins before
// returning. A failed upload is logged and skipped; it aborts neither the
// record nor the pass. When every upload fails, the previously known remote
// paths are kept.
func (o *Orchestrator) uploadImages(ctx context.Context, b models.Bookmark) []string {
	paths := make([]string, len(b.Images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageUploadConcurrency)
	for i, img := range b.Images {
		g.Go(func() error {
			p, err := o.media.Upload(gctx, img, b.ID, i)
			if err != nil {
				o.log.Warn(gctx, "skipping image upload", "bookmark", b.ID, "index", i, "error", err)
				return nil
			}
			paths[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return b.ImageURLs
	}
	return out
}

func (o *Orchestrator) decryptOptional(v *string, encrypted bool) string {
	if v == nil {
		return ""
	}
	return cryptox.DecryptIfNeeded(o.enc, *v, encrypted)
}

func (o *Orchestrator) decryptTags(tags []string, encrypted bool) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = cryptox.DecryptIfNeeded(o.enc, t, encrypted)
	}
	return out
}

// requireUser validates the session for a single-record operation. Unlike
// full passes, failures propagate to the caller, which treats remote sync as
// best-effort for a local mutation that already succeeded.
func (o *Orchestrator) requireUser(ctx context.Context) (string, error) {
	userID, ok := o.session.CurrentUserID()
	if !ok {
		return "", ErrNotAuthenticated
	}
	if !o.conn.IsConnected() {
		return "", ErrOffline
	}
	if err := o.session.EnsureValidSession(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return userID, nil
}

// SyncBookmark immediately propagates a single local mutation as one native
// upsert keyed by (user_id, local_id).
func (o *Orchestrator) SyncBookmark(ctx context.Context, b models.Bookmark) error {
	userID, err := o.requireUser(ctx)
	if err != nil {
		return err
	}

	var catID *string
	if b.CategoryID != "" {
		remCats, err := o.remote.ListCategories(ctx, userID)
		if err != nil {
			return err
		}
		if rid, ok := NewIdentifierReconciler(remCats).RemoteID(b.CategoryID); ok {
			catID = &rid
		}
	}

	urls := b.ImageURLs
	if len(b.Images) > 0 {
		urls = o.uploadImages(ctx, b)
	}

	rec := remote.BuildBookmarkRecord(b, userID, o.opts.DeviceID, catID, urls, o.enc)
	_, err = o.remote.UpsertBookmark(ctx, rec)
	return err
}

// SyncCategory immediately propagates a single local mutation as one native
// upsert keyed by (user_id, local_id).
func (o *Orchestrator) SyncCategory(ctx context.Context, c models.Category) error {
	userID, err := o.requireUser(ctx)
	if err != nil {
		return err
	}
	rec := remote.BuildCategoryRecord(c, userID, o.opts.DeviceID, o.enc)
	_, err = o.remote.UpsertCategory(ctx, rec)
	return err
}

// DeleteBookmark removes the matching remote record using the configured
// delete mode.
func (o *Orchestrator) DeleteBookmark(ctx context.Context, localID string) error {
	userID, err := o.requireUser(ctx)
	if err != nil {
		return err
	}
	return o.remote.DeleteBookmark(ctx, userID, localID, o.opts.DeleteMode)
}

// DeleteCategory removes the matching remote record using the configured
// delete mode.
func (o *Orchestrator) DeleteCategory(ctx context.Context, localID string) error {
	userID, err := o.requireUser(ctx)
	if err != nil {
		return err
	}
	return o.remote.DeleteCategory(ctx, userID, localID, o.opts.DeleteMode)
}

// StartAutoSync launches the periodic full-pass timer. It is a no-op when
// the timer is already running. There is no backoff; a failed pass waits for
// the next tick.
func (o *Orchestrator) StartAutoSync(ctx context.Context) {
	o.mu.Lock()
	if o.autoStop != nil {
		o.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	o.autoStop = stop
	o.mu.Unlock()

	interval := o.opts.AutoSyncInterval
	o.log.Info(ctx, "auto-sync started", "interval", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				if err := o.FullSync(ctx); err != nil {
					o.log.Warn(ctx, "auto-sync pass failed", "error", err)
				}
			}
		}
	}()
}

// StopAutoSync stops the periodic timer. Safe to call when not running.
func (o *Orchestrator) StopAutoSync() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.autoStop != nil {
		close(o.autoStop)
		o.autoStop = nil
	}
}
