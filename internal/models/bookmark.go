// Package models defines the local bookmark-manager entities. The sync
// engine reads them, writes back the fields it manages, and materializes new
// ones when a remote-only record is first seen on a device. It never
// reassigns an entity's ID.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Source tags where a bookmark came from.
type Source string

const (
	SourceManual Source = "manual"
	SourceWeb    Source = "web"
	SourceShare  Source = "share"
	SourceImport Source = "import"
)

// Bookmark is a locally stored bookmark. ID is assigned once at creation and
// is the join key (local_id) to the record's remote counterpart.
type Bookmark struct {
	ID         string
	Title      string
	URL        string // empty means absent
	Note       string
	Source     Source
	IsRead     bool
	IsFavorite bool
	CategoryID string // local category UUID, empty means none
	Tags       []string
	Images     [][]byte // locally stored image bytes, ordered
	ImageURLs  []string // remote-addressable image paths
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// NewBookmark creates a bookmark with a fresh UUID and creation timestamp.
func NewBookmark(title string) *Bookmark {
	return &Bookmark{
		ID:        uuid.NewString(),
		Title:     title,
		Source:    SourceManual,
		CreatedAt: time.Now().UTC(),
	}
}

// ModifiedAt returns the last-modified timestamp, defaulting to the creation
// timestamp when the bookmark was never edited.
func (b *Bookmark) ModifiedAt() time.Time {
	if b.UpdatedAt != nil {
		return *b.UpdatedAt
	}
	return b.CreatedAt
}

// Touch records a modification at the current time.
func (b *Bookmark) Touch() {
	now := time.Now().UTC()
	b.UpdatedAt = &now
}
