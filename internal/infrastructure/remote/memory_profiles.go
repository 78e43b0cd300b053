package remote

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
)

// MemoryProfileStore is a ProfileStore kept in process memory.
type MemoryProfileStore struct {
	mu   sync.Mutex
	rows map[string]Profile
}

var _ ProfileStore = (*MemoryProfileStore)(nil)

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{rows: make(map[string]Profile)}
}

func (s *MemoryProfileStore) SelectByID(ctx context.Context, id string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.rows[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryProfileStore) Insert(ctx context.Context, p Profile) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[p.ID]; ok {
		return nil, &identity.ProviderError{
			Message: `duplicate key value violates unique constraint "usuarios_pkey"`,
			Code:    identity.CodeUniqueViolation,
			Status:  http.StatusConflict,
		}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.rows[p.ID] = p
	return &p, nil
}

func (s *MemoryProfileStore) Update(ctx context.Context, id string, u ProfileUpdate) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.Latitude != nil {
		lat := *u.Latitude
		p.Latitude = &lat
	}
	if u.Longitude != nil {
		lng := *u.Longitude
		p.Longitude = &lng
	}
	p.UpdatedAt = time.Now().UTC()
	s.rows[id] = p
	return &p, nil
}
