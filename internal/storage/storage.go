package storage

import (
	"context"
	"io"

	"github.com/yoockh/videoinsight/internal/models"
)

// Store persists uploaded media on the local filesystem and resolves
// previously stored assets by their generated name.
type Store interface {
	// Save validates and writes one upload, returning its asset descriptor.
	Save(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (*models.MediaAsset, error)
	// Resolve maps a generated name to the absolute on-disk path.
	Resolve(localID string) (string, error)
	// ReadFile loads the full stored payload (inline protocol).
	ReadFile(localID string) ([]byte, error)
	// Open streams the stored payload (remote-upload protocol).
	Open(localID string) (io.ReadCloser, int64, error)
	// Dir is the uploads root, exposed for static serving.
	Dir() string
}
