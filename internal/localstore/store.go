// Package localstore owns the device-local database. It is the single
// writer: every mutation goes through the store's mutex, which makes the
// sync engine's single-writer assumption explicit rather than implied.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/linkvault/linkvault/internal/auth"
	"github.com/linkvault/linkvault/internal/dbx"
	"github.com/linkvault/linkvault/internal/localstore/migrations"
	"github.com/linkvault/linkvault/internal/models"
	"github.com/linkvault/linkvault/internal/repositories/bookmarks"
	"github.com/linkvault/linkvault/internal/repositories/categories"
	"github.com/linkvault/linkvault/internal/repositories/metadata"
)

const (
	keyDeviceID     = "device_id"
	keyAuthSession  = "auth_session"
	keySalt         = "encryption_salt"
	keyLastSyncedAt = "last_synced_at"
)

// Store wraps the local sqlite database behind the narrow interfaces the
// sync engine and CLI consume.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the local database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}
	// modernc sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AllBookmarks lists every local bookmark.
func (s *Store) AllBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	return bookmarks.NewSQLiteRepository(s.db).GetAll(ctx)
}

// AllCategories lists every local category.
func (s *Store) AllCategories(ctx context.Context) ([]models.Category, error) {
	return categories.NewSQLiteRepository(s.db).GetAll(ctx)
}

// SaveAll persists a download pass's mutations in one transaction:
// categories first so bookmark references resolve, then bookmarks.
func (s *Store) SaveAll(ctx context.Context, cats []models.Category, bms []models.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		catRepo := categories.NewSQLiteRepository(tx)
		for i := range cats {
			if err := catRepo.CreateOrUpdate(ctx, &cats[i]); err != nil {
				return err
			}
		}
		bmRepo := bookmarks.NewSQLiteRepository(tx)
		for i := range bms {
			if err := bmRepo.CreateOrUpdate(ctx, &bms[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutBookmark upserts a single bookmark.
func (s *Store) PutBookmark(ctx context.Context, b *models.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bookmarks.NewSQLiteRepository(s.db).CreateOrUpdate(ctx, b)
}

// GetBookmark returns a single bookmark, or sql.ErrNoRows.
func (s *Store) GetBookmark(ctx context.Context, id string) (*models.Bookmark, error) {
	return bookmarks.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// DeleteBookmark removes a bookmark and its images.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bookmarks.NewSQLiteRepository(s.db).DeleteByID(ctx, id)
}

// PutCategory upserts a single category.
func (s *Store) PutCategory(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return categories.NewSQLiteRepository(s.db).CreateOrUpdate(ctx, c)
}

// DeleteCategory removes a category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return categories.NewSQLiteRepository(s.db).DeleteByID(ctx, id)
}

// DeviceID returns the stable device identifier, generating and persisting
// one on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := metadata.NewSQLiteRepository(s.db)
	v, err := repo.Get(ctx, keyDeviceID)
	if err == nil {
		return string(v), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	id := uuid.NewString()
	if err := repo.Set(ctx, keyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// EncryptionSalt returns the persisted key-derivation salt, generating one
// on first use.
func (s *Store) EncryptionSalt(ctx context.Context, generate func() []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := metadata.NewSQLiteRepository(s.db)
	v, err := repo.Get(ctx, keySalt)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	salt := generate()
	if err := repo.Set(ctx, keySalt, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// LoadSession implements auth.SessionStore.
func (s *Store) LoadSession(ctx context.Context) (*auth.Session, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, keyAuthSession)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var sess auth.Session
	if err := json.Unmarshal(v, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	return &sess, nil
}

// SaveSession implements auth.SessionStore.
func (s *Store) SaveSession(ctx context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return metadata.NewSQLiteRepository(s.db).Set(ctx, keyAuthSession, v)
}

// ClearSession implements auth.SessionStore.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, keyAuthSession)
}

// LastSyncedAt returns the timestamp of the last successful full pass, or
// the zero time when none is recorded.
func (s *Store) LastSyncedAt(ctx context.Context) (time.Time, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, keyLastSyncedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last sync time: %w", err)
	}
	return t, nil
}

// SetLastSyncedAt records a successful full pass.
func (s *Store) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metadata.NewSQLiteRepository(s.db).Set(ctx, keyLastSyncedAt,
		[]byte(t.UTC().Format(time.RFC3339Nano)))
}
