// Package media moves bookmark images between the device and the shared
// storage backend, out of band from the record sync itself.
package media

import "context"

// Adapter uploads a local image for a given owning record and index,
// returning a remote-addressable path, and downloads a remote path back into
// memory. Download reports failure through its second return value instead
// of an error, so a missing or unreachable image never aborts a record.
type Adapter interface {
	Upload(ctx context.Context, image []byte, ownerID string, index int) (string, error)
	Download(ctx context.Context, remotePath string) ([]byte, bool)
}
