package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

// Object is a stored upload.
type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps uploads in process memory; used by the memory backend and tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	BaseURL string
}

var _ repository.FileStorage = (*Memory)(nil)

func NewMemory(baseURL string) *Memory {
	return &Memory{objects: make(map[string]Object), BaseURL: baseURL}
}

func (m *Memory) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[path] = Object{ContentType: contentType, Data: buf.Bytes()}
	m.mu.Unlock()
	return m.PublicURL(path), nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	delete(m.objects, path)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PublicURL(path string) string {
	return m.BaseURL + "/" + path
}

// Get returns a stored object.
func (m *Memory) Get(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[path]
	return o, ok
}
