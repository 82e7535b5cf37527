package bookmarks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkvault/linkvault/internal/dbx"
	"github.com/linkvault/linkvault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx). Tags and remote image paths are stored as JSON text; image bytes
// live in the bookmark_images child table, ordered by idx.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, b *models.Bookmark) error {
	tags, err := json.Marshal(b.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	imageURLs, err := json.Marshal(b.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to encode image urls: %w", err)
	}

	query := `insert into bookmarks
			(id, title, url, note, source, is_read, is_favorite, category_id, tags, image_urls, created_at, updated_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		on conflict(id) do update set
			title = excluded.title,
			url = excluded.url,
			note = excluded.note,
			source = excluded.source,
			is_read = excluded.is_read,
			is_favorite = excluded.is_favorite,
			category_id = excluded.category_id,
			tags = excluded.tags,
			image_urls = excluded.image_urls,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.Title, nullableString(b.URL), b.Note, string(b.Source),
		b.IsRead, b.IsFavorite, nullableString(b.CategoryID),
		string(tags), string(imageURLs), b.CreatedAt, nullableTime(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert bookmark: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `delete from bookmark_images where bookmark_id = ?`, b.ID); err != nil {
		return fmt.Errorf("failed to clear bookmark images: %w", err)
	}
	for i, img := range b.Images {
		_, err := r.db.ExecContext(ctx,
			`insert into bookmark_images (bookmark_id, idx, data) values (?, ?, ?)`,
			b.ID, i, img)
		if err != nil {
			return fmt.Errorf("failed to insert bookmark image: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Bookmark, error) {
	query := `select id, title, url, note, source, is_read, is_favorite, category_id, tags, image_urls, created_at, updated_at
		from bookmarks order by created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks: %w", err)
	}
	defer rows.Close()

	var result []models.Bookmark
	index := make(map[string]int)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		index[b.ID] = len(result)
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachImages(ctx, result, index); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Bookmark, error) {
	query := `select id, title, url, note, source, is_read, is_favorite, category_id, tags, image_urls, created_at, updated_at
		from bookmarks where id = ?`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmark: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	b, err := scanBookmark(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	one := []models.Bookmark{*b}
	if err := r.attachImages(ctx, one, map[string]int{b.ID: 0}); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from bookmark_images where bookmark_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete bookmark images: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `delete from bookmarks where id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

// attachImages loads image bytes for the given bookmarks in one query.
func (r *SQLiteRepository) attachImages(ctx context.Context, bms []models.Bookmark, index map[string]int) error {
	if len(bms) == 0 {
		return nil
	}
	rows, err := r.db.QueryContext(ctx,
		`select bookmark_id, data from bookmark_images order by bookmark_id, idx`)
	if err != nil {
		return fmt.Errorf("failed to select bookmark images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("failed to scan bookmark image: %w", err)
		}
		if i, ok := index[id]; ok {
			bms[i].Images = append(bms[i].Images, data)
		}
	}
	return rows.Err()
}

func scanBookmark(rows *sql.Rows) (*models.Bookmark, error) {
	b := &models.Bookmark{}
	var url, categoryID sql.NullString
	var tags, imageURLs string
	var source string
	var updatedAt sql.NullTime

	err := rows.Scan(&b.ID, &b.Title, &url, &b.Note, &source, &b.IsRead, &b.IsFavorite,
		&categoryID, &tags, &imageURLs, &b.CreatedAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmark: %w", err)
	}

	b.Source = models.Source(source)
	b.URL = url.String
	b.CategoryID = categoryID.String
	if updatedAt.Valid {
		t := updatedAt.Time
		b.UpdatedAt = &t
	}
	if err := json.Unmarshal([]byte(tags), &b.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(imageURLs), &b.ImageURLs); err != nil {
		return nil, fmt.Errorf("failed to decode image urls: %w", err)
	}
	return b, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
