package repository

import (
	"context"
	"io"
)

// FileStorage stores uploaded photos and returns their public URL.
type FileStorage interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}
