package categories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/linkvault/linkvault/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		);`)
	require.NoError(t, err)
	return db
}

func TestCreateOrUpdate_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(testDB(t))

	c := &models.Category{
		ID:        "c1",
		Name:      "Reading",
		Icon:      "book",
		Color:     "#aabbcc",
		Order:     2,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.CreateOrUpdate(ctx, c))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Reading", got.Name)
	require.Equal(t, "book", got.Icon)
	require.Equal(t, "#aabbcc", got.Color)
	require.Equal(t, 2, got.Order)
	require.Nil(t, got.UpdatedAt)
}

func TestCreateOrUpdate_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(testDB(t))

	c := &models.Category{ID: "c1", Name: "old", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateOrUpdate(ctx, c))

	c.Name = "new"
	now := time.Now().UTC()
	c.UpdatedAt = &now
	require.NoError(t, repo.CreateOrUpdate(ctx, c))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "new", got.Name)
	require.NotNil(t, got.UpdatedAt)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGetAll_OrdersBySortOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(testDB(t))

	now := time.Now().UTC()
	require.NoError(t, repo.CreateOrUpdate(ctx, &models.Category{ID: "c1", Name: "second", Order: 2, CreatedAt: now}))
	require.NoError(t, repo.CreateOrUpdate(ctx, &models.Category{ID: "c2", Name: "first", Order: 1, CreatedAt: now}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "first", all[0].Name)
	require.Equal(t, "second", all[1].Name)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(testDB(t))

	require.NoError(t, repo.CreateOrUpdate(ctx, &models.Category{ID: "c1", Name: "x", CreatedAt: time.Now().UTC()}))
	require.NoError(t, repo.DeleteByID(ctx, "c1"))
	require.Error(t, repo.DeleteByID(ctx, "c1"))
}
