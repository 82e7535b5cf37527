package remote

import "context"

// DeleteMode selects how delete operations remove remote records. The remote
// schema carries a deleted_at column, so soft deletion is the default; hard
// deletion physically removes the row.
type DeleteMode string

const (
	SoftDelete DeleteMode = "soft"
	HardDelete DeleteMode = "hard"
)

// Store is the narrow remote-store contract the sync engine drives. Listings
// return only non-deleted records for the given user; upserts are idempotent
// on the (user_id, local_id) conflict key and return the stored row so the
// caller learns the server-assigned id.
type Store interface {
	ListBookmarks(ctx context.Context, userID string) ([]BookmarkRecord, error)
	ListCategories(ctx context.Context, userID string) ([]CategoryRecord, error)
	UpsertBookmark(ctx context.Context, rec BookmarkRecord) (BookmarkRecord, error)
	UpsertCategory(ctx context.Context, rec CategoryRecord) (CategoryRecord, error)
	DeleteBookmark(ctx context.Context, userID, localID string, mode DeleteMode) error
	DeleteCategory(ctx context.Context, userID, localID string, mode DeleteMode) error
}
