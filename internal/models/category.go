package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups bookmarks. Bookmarks reference it by its local UUID; the
// remote counterpart is addressed by a server-assigned id instead.
type Category struct {
	ID        string
	Name      string
	Icon      string
	Color     string
	Order     int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewCategory creates a category with a fresh UUID and creation timestamp.
func NewCategory(name string) *Category {
	return &Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// ModifiedAt returns the last-modified timestamp, defaulting to the creation
// timestamp.
func (c *Category) ModifiedAt() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}
