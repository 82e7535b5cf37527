package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
)

const (
	bookmarksTable  = "bookmarks"
	categoriesTable = "categories"

	// conflictKey is the idempotency key for all upserts.
	conflictKey = "user_id,local_id"
)

// SupabaseStore implements Store against the shared postgrest backend.
// Each request carries its own atomicity; no multi-record transactions are
// used.
type SupabaseStore struct {
	client *supabase.Client
}

// NewSupabaseStore binds a Store to an already-authenticated supabase client.
func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) ListBookmarks(ctx context.Context, userID string) ([]BookmarkRecord, error) {
	var rows []BookmarkRecord
	_, err := s.client.From(bookmarksTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Is("deleted_at", "null").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return rows, nil
}

func (s *SupabaseStore) ListCategories(ctx context.Context, userID string) ([]CategoryRecord, error) {
	var rows []CategoryRecord
	_, err := s.client.From(categoriesTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Is("deleted_at", "null").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return rows, nil
}

func (s *SupabaseStore) UpsertBookmark(ctx context.Context, rec BookmarkRecord) (BookmarkRecord, error) {
	var rows []BookmarkRecord
	_, err := s.client.From(bookmarksTable).
		Upsert(rec, conflictKey, "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return BookmarkRecord{}, fmt.Errorf("failed to upsert bookmark %s: %w", rec.LocalID, err)
	}
	if len(rows) > 0 {
		return rows[0], nil
	}
	return rec, nil
}

func (s *SupabaseStore) UpsertCategory(ctx context.Context, rec CategoryRecord) (CategoryRecord, error) {
	var rows []CategoryRecord
	_, err := s.client.From(categoriesTable).
		Upsert(rec, conflictKey, "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return CategoryRecord{}, fmt.Errorf("failed to upsert category %s: %w", rec.LocalID, err)
	}
	if len(rows) > 0 {
		return rows[0], nil
	}
	return rec, nil
}

func (s *SupabaseStore) DeleteBookmark(ctx context.Context, userID, localID string, mode DeleteMode) error {
	return s.delete(ctx, bookmarksTable, userID, localID, mode)
}

func (s *SupabaseStore) DeleteCategory(ctx context.Context, userID, localID string, mode DeleteMode) error {
	return s.delete(ctx, categoriesTable, userID, localID, mode)
}

func (s *SupabaseStore) delete(ctx context.Context, table, userID, localID string, mode DeleteMode) error {
	var err error
	switch mode {
	case HardDelete:
		_, _, err = s.client.From(table).
			Delete("", "").
			Eq("user_id", userID).
			Eq("local_id", localID).
			Execute()
	default:
		payload := map[string]any{"deleted_at": Timestamp(time.Now())}
		_, _, err = s.client.From(table).
			Update(payload, "", "").
			Eq("user_id", userID).
			Eq("local_id", localID).
			Execute()
	}
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}
