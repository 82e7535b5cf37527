// Package bookmarks persists local bookmarks, including their locally stored
// image bytes.
package bookmarks

import (
	"context"

	"github.com/linkvault/linkvault/internal/models"
)

// Repository is the local bookmark store. CreateOrUpdate upserts by the
// bookmark's permanent UUID without ever reassigning it; image bytes are
// replaced wholesale on update.
type Repository interface {
	GetAll(ctx context.Context) ([]models.Bookmark, error)
	GetByID(ctx context.Context, id string) (*models.Bookmark, error)
	CreateOrUpdate(ctx context.Context, b *models.Bookmark) error
	DeleteByID(ctx context.Context, id string) error
}
