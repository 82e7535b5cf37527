// Package categories persists local bookmark categories.
package categories

import (
	"context"

	"github.com/linkvault/linkvault/internal/models"
)

// Repository is the local category store. CreateOrUpdate upserts by the
// category's permanent UUID without ever reassigning it.
type Repository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	CreateOrUpdate(ctx context.Context, c *models.Category) error
	DeleteByID(ctx context.Context, id string) error
}
