package identity

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MemoryAccountStore is an AccountStore kept in process memory.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

var _ AccountStore = (*MemoryAccountStore)(nil)

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]Account)}
}

func (s *MemoryAccountStore) emailTaken(email, exceptID string) bool {
	for id, a := range s.accounts {
		if id != exceptID && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (s *MemoryAccountStore) Create(ctx context.Context, a Account) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok || s.emailTaken(a.Email, "") {
		return nil, newProviderError(http.StatusConflict, CodeUniqueViolation, "duplicate key value violates unique constraint")
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.accounts[a.ID] = a
	return &a, nil
}

func (s *MemoryAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			c := a
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryAccountStore) FindByID(ctx context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *MemoryAccountStore) Update(ctx context.Context, a Account) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok {
		return nil, newProviderError(http.StatusNotFound, CodeUserNotFound, "User not found")
	}
	if s.emailTaken(a.Email, a.ID) {
		return nil, newProviderError(http.StatusConflict, CodeUniqueViolation, "duplicate key value violates unique constraint")
	}
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.accounts[a.ID] = a
	return &a, nil
}
