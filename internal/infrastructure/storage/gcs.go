// Package storage provides repository.FileStorage backends for photos.
package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	Client *gcs.Client
	Bucket string
}

var _ repository.FileStorage = (*GCS)(nil)

func NewGCS(client *gcs.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

func (s *GCS) configured() error {
	if s.Client == nil || s.Bucket == "" {
		return errs.New(errs.NotSupported, "storage.GCS", "gcs not configured")
	}
	return nil
}

func (s *GCS) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if err := s.configured(); err != nil {
		return "", err
	}
	return helpers.UploadObject(ctx, s.Client, s.Bucket, path, contentType, r)
}

// Delete ignores objects that are already gone.
func (s *GCS) Delete(ctx context.Context, path string) error {
	if err := s.configured(); err != nil {
		return err
	}
	err := s.Client.Bucket(s.Bucket).Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCS) PublicURL(path string) string {
	return helpers.PublicURL(s.Bucket, path)
}
