package remote

import (
	"time"

	"github.com/linkvault/linkvault/internal/cryptox"
	"github.com/linkvault/linkvault/internal/models"
)

// uploadSyncVersion is written on every upload payload. Nothing reads it
// yet; a newer-wins merge would compare it.
const uploadSyncVersion = 1

// BuildBookmarkRecord builds the upload payload for a bookmark. Identity,
// source tag, flags, and timestamps are sent as plaintext; title, url, note,
// and each tag string are encrypted individually and the record is marked
// is_encrypted. If encryption fails for any field the whole payload falls
// back to empty content fields with is_encrypted false, so a later decrypt
// attempt is skipped rather than producing garbage.
//
// categoryID is the remote identifier of the bookmark's category, already
// resolved by the caller, or nil when the category has not been synced yet.
func BuildBookmarkRecord(b models.Bookmark, userID, deviceID string, categoryID *string, imageURLs []string, enc cryptox.Encryptor) BookmarkRecord {
	rec := BookmarkRecord{
		UserID:             userID,
		LocalID:            b.ID,
		Source:             string(b.Source),
		IsRead:             b.IsRead,
		IsFavorite:         b.IsFavorite,
		CategoryID:         categoryID,
		ImageURLs:          imageURLs,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		SyncVersion:        uploadSyncVersion,
		LastModifiedDevice: deviceID,
	}

	title, err := enc.Encrypt(b.Title)
	if err != nil {
		return plaintextFallback(rec)
	}
	note, err := enc.Encrypt(b.Note)
	if err != nil {
		return plaintextFallback(rec)
	}
	var url *string
	if b.URL != "" {
		u, err := enc.Encrypt(b.URL)
		if err != nil {
			return plaintextFallback(rec)
		}
		url = &u
	}
	tags := make([]string, 0, len(b.Tags))
	for _, t := range b.Tags {
		ct, err := enc.Encrypt(t)
		if err != nil {
			return plaintextFallback(rec)
		}
		tags = append(tags, ct)
	}

	rec.Title = title
	rec.Note = note
	rec.URL = url
	rec.Tags = tags
	rec.IsEncrypted = true
	return rec
}

// plaintextFallback strips content fields and marks the record unencrypted.
func plaintextFallback(rec BookmarkRecord) BookmarkRecord {
	rec.Title = ""
	rec.URL = nil
	rec.Note = ""
	rec.Tags = nil
	rec.IsEncrypted = false
	return rec
}

// BuildCategoryRecord builds the upload payload for a category. Only the
// name is content; everything else is plaintext metadata.
func BuildCategoryRecord(c models.Category, userID, deviceID string, enc cryptox.Encryptor) CategoryRecord {
	rec := CategoryRecord{
		UserID:             userID,
		LocalID:            c.ID,
		Icon:               c.Icon,
		Color:              c.Color,
		Order:              c.Order,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		SyncVersion:        uploadSyncVersion,
		LastModifiedDevice: deviceID,
	}

	name, err := enc.Encrypt(c.Name)
	if err != nil {
		rec.Name = ""
		rec.IsEncrypted = false
		return rec
	}

	rec.Name = name
	rec.IsEncrypted = true
	return rec
}

// Timestamp formats t the way the remote store's text filters expect.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
