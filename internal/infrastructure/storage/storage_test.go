package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

func TestMemoryUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("http://localhost:8080/files")

	url, err := m.Upload(ctx, "u1/medicamentos/1.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/u1/medicamentos/1.jpg", url)

	obj, ok := m.Get("u1/medicamentos/1.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, "jpeg", string(obj.Data))

	require.NoError(t, m.Delete(ctx, "u1/medicamentos/1.jpg"))
	_, ok = m.Get("u1/medicamentos/1.jpg")
	assert.False(t, ok)
}

func TestGCSNotConfigured(t *testing.T) {
	s := NewGCS(nil, "")
	_, err := s.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, errs.ErrNotSupported)
	assert.Equal(t, "https://storage.googleapis.com/bucket/a.jpg", NewGCS(nil, "bucket").PublicURL("a.jpg"))
}
