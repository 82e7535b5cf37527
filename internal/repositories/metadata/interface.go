// Package metadata stores small key/value items in the local database:
// device id, the persisted auth session, the encryption salt, and the last
// successful sync timestamp.
package metadata

import "context"

// Repository is a key/value store over the metadata table. Get returns
// sql.ErrNoRows (wrapped) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
