package syncx

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linkvault/linkvault/internal/cryptox"
	"github.com/linkvault/linkvault/internal/localstore"
	"github.com/linkvault/linkvault/internal/logging"
	"github.com/linkvault/linkvault/internal/models"
	"github.com/linkvault/linkvault/internal/netx"
	"github.com/linkvault/linkvault/internal/remote"
)

// fakeRemote is an in-memory remote.Store with upsert semantics keyed by
// (user_id, local_id), the same conflict key the real backend enforces.
type fakeRemote struct {
	mu         sync.Mutex
	bookmarks  map[string]remote.BookmarkRecord
	categories map[string]remote.CategoryRecord
	nextID     int
	calls      int

	// listGate, when set, blocks ListCategories until released. Used to
	// hold a pass open while a second one is attempted.
	listGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		bookmarks:  make(map[string]remote.BookmarkRecord),
		categories: make(map[string]remote.CategoryRecord),
	}
}

func key(userID, localID string) string { return userID + "|" + localID }

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRemote) ListBookmarks(ctx context.Context, userID string) ([]remote.BookmarkRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []remote.BookmarkRecord
	for _, r := range f.bookmarks {
		if r.UserID == userID && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemote) ListCategories(ctx context.Context, userID string) ([]remote.CategoryRecord, error) {
	f.mu.Lock()
	gate := f.listGate
	f.calls++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remote.CategoryRecord
	for _, r := range f.categories {
		if r.UserID == userID && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemote) UpsertBookmark(ctx context.Context, rec remote.BookmarkRecord) (remote.BookmarkRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := key(rec.UserID, rec.LocalID)
	if existing, ok := f.bookmarks[k]; ok {
		rec.ID = existing.ID
	} else {
		f.nextID++
		rec.ID = fmt.Sprintf("rbm-%d", f.nextID)
	}
	f.bookmarks[k] = rec
	return rec, nil
}

func (f *fakeRemote) UpsertCategory(ctx context.Context, rec remote.CategoryRecord) (remote.CategoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := key(rec.UserID, rec.LocalID)
	if existing, ok := f.categories[k]; ok {
		rec.ID = existing.ID
	} else {
		f.nextID++
		rec.ID = fmt.Sprintf("rcat-%d", f.nextID)
	}
	f.categories[k] = rec
	return rec, nil
}

func (f *fakeRemote) DeleteBookmark(ctx context.Context, userID, localID string, mode remote.DeleteMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := key(userID, localID)
	if mode == remote.HardDelete {
		delete(f.bookmarks, k)
		return nil
	}
	if r, ok := f.bookmarks[k]; ok {
		now := time.Now()
		r.DeletedAt = &now
		f.bookmarks[k] = r
	}
	return nil
}

func (f *fakeRemote) DeleteCategory(ctx context.Context, userID, localID string, mode remote.DeleteMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := key(userID, localID)
	if mode == remote.HardDelete {
		delete(f.categories, k)
		return nil
	}
	if r, ok := f.categories[k]; ok {
		now := time.Now()
		r.DeletedAt = &now
		f.categories[k] = r
	}
	return nil
}

// fakeMedia stores uploads in memory, addressed by path.
type fakeMedia struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeMedia() *fakeMedia { return &fakeMedia{blobs: make(map[string][]byte)} }

func (m *fakeMedia) Upload(ctx context.Context, image []byte, ownerID string, index int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("%s/%d.jpg", ownerID, index)
	m.blobs[path] = image
	return path, nil
}

func (m *fakeMedia) Download(ctx context.Context, remotePath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[remotePath]
	return b, ok
}

type fakeSession struct {
	userID string
	authed bool
}

func (s *fakeSession) CurrentUserID() (string, bool)              { return s.userID, s.authed }
func (s *fakeSession) IsAuthenticated() bool                      { return s.authed }
func (s *fakeSession) EnsureValidSession(context.Context) error   { return nil }

func testEncryptor(t *testing.T) cryptox.Encryptor {
	t.Helper()
	enc, err := cryptox.NewAESGCM(cryptox.DeriveKey([]byte("pass"), []byte("0123456789abcdef")))
	require.NoError(t, err)
	return enc
}

func openStore(t *testing.T, name string) *localstore.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	store, err := localstore.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestOrchestrator(t *testing.T, store *localstore.Store, rem remote.Store, media *fakeMedia, connected bool) *Orchestrator {
	t.Helper()
	return New(store, rem, &fakeSession{userID: "user-1", authed: true}, testEncryptor(t),
		media, netx.Static(connected), logging.NopLogger{}, Options{DeviceID: "device-test"})
}

func TestFullSync_RoundTripAcrossDevices(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	med := newFakeMedia()

	// Device A: one category and one bookmark referencing it.
	storeA := openStore(t, "roundtrip_a")
	cat := models.NewCategory("Reading")
	cat.Icon = "book"
	cat.Color = "#112233"
	require.NoError(t, storeA.PutCategory(ctx, cat))

	bm := models.NewBookmark("A")
	bm.URL = "https://x"
	bm.Note = "note"
	bm.Tags = []string{"t1", "t2"}
	bm.IsFavorite = true
	bm.CategoryID = cat.ID
	bm.Images = [][]byte{{0xca, 0xfe}}
	require.NoError(t, storeA.PutBookmark(ctx, bm))

	orchA := newTestOrchestrator(t, storeA, rem, med, true)
	require.NoError(t, orchA.FullSync(ctx))

	// Remote row carries the local UUID, ciphertext content, and a resolved
	// category reference even though the category was first synced in the
	// same pass.
	rec, ok := rem.bookmarks[key("user-1", bm.ID)]
	require.True(t, ok)
	require.True(t, rec.IsEncrypted)
	require.NotEqual(t, "A", rec.Title)
	require.NotNil(t, rec.CategoryID)
	require.Equal(t, []string{bm.ID + "/0.jpg"}, rec.ImageURLs)

	// Device B: empty store, same account.
	storeB := openStore(t, "roundtrip_b")
	orchB := newTestOrchestrator(t, storeB, rem, med, true)
	require.NoError(t, orchB.FullSync(ctx))

	cats, err := storeB.AllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, cat.ID, cats[0].ID)
	require.Equal(t, "Reading", cats[0].Name)
	require.Equal(t, "book", cats[0].Icon)
	require.Equal(t, "#112233", cats[0].Color)

	bms, err := storeB.AllBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, bms, 1)
	got := bms[0]
	require.Equal(t, bm.ID, got.ID)
	require.Equal(t, "A", got.Title)
	require.Equal(t, "https://x", got.URL)
	require.Equal(t, "note", got.Note)
	require.Equal(t, []string{"t1", "t2"}, got.Tags)
	require.True(t, got.IsFavorite)
	require.Equal(t, cat.ID, got.CategoryID)
	require.Equal(t, [][]byte{{0xca, 0xfe}}, got.Images)
}

func TestFullSync_UploadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "idempotent")

	require.NoError(t, store.PutBookmark(ctx, models.NewBookmark("one")))
	require.NoError(t, store.PutCategory(ctx, models.NewCategory("cat")))

	orch := newTestOrchestrator(t, store, rem, newFakeMedia(), true)
	require.NoError(t, orch.FullSync(ctx))
	require.NoError(t, orch.FullSync(ctx))

	require.Len(t, rem.bookmarks, 1)
	require.Len(t, rem.categories, 1)
}

func TestFullSync_NeverReassignsLocalUUID(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "uuid_stable")

	bm := models.NewBookmark("stable")
	require.NoError(t, store.PutBookmark(ctx, bm))

	orch := newTestOrchestrator(t, store, rem, newFakeMedia(), true)
	require.NoError(t, orch.FullSync(ctx))
	require.NoError(t, orch.SyncBookmark(ctx, *bm))
	require.NoError(t, orch.FullSync(ctx))

	bms, err := store.AllBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, bms, 1)
	require.Equal(t, bm.ID, bms[0].ID)
}

func TestFullSync_DownloadOverwritesLocalFields(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "overwrite")
	enc := testEncryptor(t)

	bm := models.NewBookmark("local title")
	require.NoError(t, store.PutBookmark(ctx, bm))

	// Remote already holds a row for the same UUID with different content.
	title, err := enc.Encrypt("remote title")
	require.NoError(t, err)
	note, err := enc.Encrypt("remote note")
	require.NoError(t, err)
	rem.bookmarks[key("user-1", bm.ID)] = remote.BookmarkRecord{
		ID:          "rbm-9",
		UserID:      "user-1",
		LocalID:     bm.ID,
		Title:       title,
		Note:        note,
		IsRead:      true,
		IsEncrypted: true,
		CreatedAt:   bm.CreatedAt,
	}

	orch := newTestOrchestrator(t, store, rem, newFakeMedia(), true)
	require.NoError(t, orch.FullSync(ctx))

	got, err := store.GetBookmark(ctx, bm.ID)
	require.NoError(t, err)
	require.Equal(t, "remote title", got.Title)
	require.Equal(t, "remote note", got.Note)
	require.True(t, got.IsRead)
}

func TestFullSync_OfflineShortCircuits(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "offline")

	orch := newTestOrchestrator(t, store, rem, newFakeMedia(), false)
	err := orch.FullSync(ctx)
	require.ErrorIs(t, err, ErrOffline)
	require.Equal(t, StateOffline, orch.Status().State)
	require.Zero(t, rem.count())
}

func TestFullSync_NotAuthenticated(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "unauthed")

	orch := New(store, rem, &fakeSession{}, testEncryptor(t), newFakeMedia(),
		netx.Static(true), logging.NopLogger{}, Options{})
	err := orch.FullSync(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Zero(t, rem.count())
}

func TestFullSync_ConcurrentPassIsNoop(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "concurrent")

	gate := make(chan struct{})
	rem.listGate = gate

	orch := newTestOrchestrator(t, store, rem, newFakeMedia(), true)

	done := make(chan error, 1)
	go func() { done <- orch.FullSync(ctx) }()

	// Wait for the first pass to reach the gated remote call.
	require.Eventually(t, func() bool { return rem.count() >= 1 }, time.Second, time.Millisecond)
	callsBefore := rem.count()

	// A second invocation while syncing is a no-op.
	require.NoError(t, orch.FullSync(ctx))
	require.Equal(t, callsBefore, rem.count())

	rem.mu.Lock()
	rem.listGate = nil
	rem.mu.Unlock()
	close(gate)
	require.NoError(t, <-done)
	require.Equal(t, StateIdle, orch.Status().State)
}

func TestDeleteBookmark_SoftDeleteHidesRecord(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	store := openStore(t, "softdelete")

	bm := models.NewBookmark("doomed")
	require.NoError(t, store.PutBookmark(ctx, bm))

	orch := newTestOrchestrator(t, store, rem, newFakeMedia(), true)
	require.NoError(t, orch.FullSync(ctx))
	require.NoError(t, store.DeleteBookmark(ctx, bm.ID))
	require.NoError(t, orch.DeleteBookmark(ctx, bm.ID))

	rec := rem.bookmarks[key("user-1", bm.ID)]
	require.NotNil(t, rec.DeletedAt)

	// A later download must not resurrect the record.
	require.NoError(t, orch.FullSync(ctx))
	bms, err := store.AllBookmarks(ctx)
	require.NoError(t, err)
	require.Empty(t, bms)
}

func TestFullSync_EmitsLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, "events")

	orch := newTestOrchestrator(t, store, newFakeRemote(), newFakeMedia(), true)
	require.NoError(t, orch.FullSync(ctx))

	var types []EventType
	for len(orch.Events()) > 0 {
		types = append(types, (<-orch.Events()).Type)
	}
	require.Equal(t, []EventType{EventPassStarted, EventPassCompleted}, types)
}
