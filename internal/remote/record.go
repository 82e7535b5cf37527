// Package remote defines the wire records stored in the multi-device shared
// backend, the narrow store interface the sync engine drives, and the payload
// builders that form the encryption boundary between local plaintext and
// remote ciphertext.
package remote

import "time"

// BookmarkRecord is a server-side bookmark row. ID is assigned by the remote
// store; LocalID carries the originating device's local UUID. For a given
// user, (user_id, local_id) is unique among non-deleted rows and is the
// conflict key for every upsert.
type BookmarkRecord struct {
	ID                 string     `json:"id,omitempty"`
	UserID             string     `json:"user_id"`
	LocalID            string     `json:"local_id"`
	Title              string     `json:"title"`
	URL                *string    `json:"url"`
	Note               string     `json:"note"`
	Source             string     `json:"source"`
	IsRead             bool       `json:"is_read"`
	IsFavorite         bool       `json:"is_favorite"`
	CategoryID         *string    `json:"category_id"`
	Tags               []string   `json:"tags"`
	ImageURLs          []string   `json:"image_urls"`
	IsEncrypted        bool       `json:"is_encrypted"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
	SyncVersion        int64      `json:"sync_version"`
	LastModifiedDevice string     `json:"last_modified_device"`
}

// CategoryRecord is a server-side category row, keyed like BookmarkRecord.
type CategoryRecord struct {
	ID                 string     `json:"id,omitempty"`
	UserID             string     `json:"user_id"`
	LocalID            string     `json:"local_id"`
	Name               string     `json:"name"`
	Icon               string     `json:"icon"`
	Color              string     `json:"color"`
	Order              int        `json:"order"`
	IsEncrypted        bool       `json:"is_encrypted"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
	SyncVersion        int64      `json:"sync_version"`
	LastModifiedDevice string     `json:"last_modified_device"`
}
