// Package memory implements in-memory repositories for development and tests.
//
// A Store is an explicitly constructed instance shared by whoever holds it;
// there is no package-level singleton. All state is guarded by one mutex,
// concurrent writers follow last-write-wins.
package memory

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
)

type userRecord struct {
	user *entity.User
	hash string
}

type medicamentoRecord struct {
	m   entity.Medicamento
	seq int64
}

// Store holds users and medicamentos for every owner.
type Store struct {
	mu sync.Mutex

	users        []*userRecord
	medicamentos []medicamentoRecord

	userIDCounter int64
	seqCounter    int64

	// currentUserID is used when the context carries no session holder.
	currentUserID string

	now      func() time.Time
	hashCost int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHashCost sets the bcrypt cost used for stored credentials.
func WithHashCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset drops every user, medicamento and session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	s.medicamentos = nil
	s.userIDCounter = 0
	s.seqCounter = 0
	s.currentUserID = ""
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Medicamentos returns a repository scoped to userID.
func (s *Store) Medicamentos(userID string) *MedicamentoRepository {
	return &MedicamentoRepository{store: s, userID: userID}
}
