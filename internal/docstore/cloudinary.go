// Package docstore stores guest identity documents. Uploaded files are
// referenced by URL from the booking record; originals never touch disk.
package docstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/logger"
)

type DocumentStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(url, folder string) (*CloudinaryStore, error) {
	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{client: client, folder: folder}, nil
}

const uploadAttempts = 3

// Upload pushes a document and returns its URL, retrying transient failures
// with linearly growing backoff.
func (s *CloudinaryStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:   s.folder,
		PublicID: fmt.Sprintf("%s-%s", uuid.NewString(), name),
	}

	var lastErr error
	for i := 0; i < uploadAttempts; i++ {
		resp, err := s.client.Upload.Upload(ctx, r, params)
		if err == nil && resp.Error.Message == "" {
			return resp.SecureURL, nil
		}
		if err == nil {
			err = fmt.Errorf("cloudinary: %s", resp.Error.Message)
		}
		lastErr = err
		logger.Log.WithField("document", name).Warnf("upload attempt %d failed: %v", i+1, err)

		if seeker, ok := r.(io.Seeker); ok {
			if _, serr := seeker.Seek(0, io.SeekStart); serr != nil {
				return "", fmt.Errorf("upload document: %w", err)
			}
		} else {
			// Reader already consumed, retrying would send an empty body.
			return "", fmt.Errorf("upload document: %w", err)
		}

		if i < uploadAttempts-1 {
			select {
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("upload document after %d attempts: %w", uploadAttempts, lastErr)
}

var _ DocumentStore = (*CloudinaryStore)(nil)
