package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/linkvault/linkvault/internal/logging"
)

// SupabaseAdapter stores images in a supabase storage bucket, addressed as
// <ownerID>/<index>.jpg.
type SupabaseAdapter struct {
	storage *storage_go.Client
	bucket  string
	log     logging.Logger
}

// NewSupabaseAdapter binds the adapter to the client's storage API.
func NewSupabaseAdapter(client *supabase.Client, bucket string, log logging.Logger) *SupabaseAdapter {
	return &SupabaseAdapter{storage: client.Storage, bucket: bucket, log: log}
}

func (a *SupabaseAdapter) Upload(ctx context.Context, image []byte, ownerID string, index int) (string, error) {
	path := fmt.Sprintf("%s/%d.jpg", ownerID, index)
	contentType := "image/jpeg"
	upsert := true

	_, err := a.storage.UploadFile(a.bucket, path, bytes.NewReader(image), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", path, err)
	}
	return path, nil
}

func (a *SupabaseAdapter) Download(ctx context.Context, remotePath string) ([]byte, bool) {
	data, err := a.storage.DownloadFile(a.bucket, remotePath)
	if err != nil {
		a.log.Warn(ctx, "image download failed", "path", remotePath, "error", err)
		return nil, false
	}
	return data, true
}
