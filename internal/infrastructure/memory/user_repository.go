package memory

import (
	"context"
	"strconv"
	"strings"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/domain/valueobject"
	"github.com/oksasatya/medication-reminder/internal/session"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

// UserRepository implements repository.UserRepository on a Store.
type UserRepository struct {
	store *Store
}

var _ repository.UserRepository = (*UserRepository)(nil)

// --- lookups (caller holds the lock) ---

func (s *Store) userIndexByID(id string) int {
	for i, r := range s.users {
		if r.user.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) userIndexByEmail(email string) int {
	email = strings.ToLower(strings.TrimSpace(email))
	for i, r := range s.users {
		if r.user.Email.Value() == email {
			return i
		}
	}
	return -1
}

func (s *Store) nextUserID() string {
	s.userIDCounter++
	return strconv.FormatInt(s.userIDCounter, 10)
}

func (s *Store) startSession(ctx context.Context, userID string) {
	if h := session.FromContext(ctx); h != nil {
		h.Set(&session.Session{UserID: userID})
		return
	}
	s.currentUserID = userID
}

func (s *Store) sessionUserID(ctx context.Context) string {
	if h := session.FromContext(ctx); h != nil {
		if cur := h.Get(); cur != nil {
			return cur.UserID
		}
		return ""
	}
	return s.currentUserID
}

// --- repository.UserRepository ---

// Save inserts a user without credentials. An empty ID gets the next sequential id.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndexByEmail(u.Email.Value()) >= 0 {
		return errs.New(errs.Conflict, "memory.Save", "user with this email already exists")
	}
	if u.ID == "" {
		u.ID = s.nextUserID()
	} else if s.userIndexByID(u.ID) >= 0 {
		return errs.New(errs.Conflict, "memory.Save", "user id already exists")
	}
	now := s.now().UTC()
	stored := u.Clone()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.users = append(s.users, &userRecord{user: stored})
	return nil
}

// FindByEmail retrieves a user by normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.userIndexByEmail(email); i >= 0 {
		return s.users[i].user.Clone(), nil
	}
	return nil, nil
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.userIndexByID(id); i >= 0 {
		return s.users[i].user.Clone(), nil
	}
	return nil, nil
}

// Update replaces the stored user with the same ID, keeping its credential.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndexByID(u.ID)
	if i < 0 {
		return errs.New(errs.NotFound, "memory.Update", "user not found")
	}
	if j := s.userIndexByEmail(u.Email.Value()); j >= 0 && j != i {
		return errs.New(errs.Conflict, "memory.Update", "user with this email already exists")
	}
	stored := u.Clone()
	stored.CreatedAt = s.users[i].user.CreatedAt
	stored.UpdatedAt = s.now().UTC()
	s.users[i].user = stored
	return nil
}

// Delete removes a user and ends its session.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndexByID(id)
	if i < 0 {
		return errs.New(errs.NotFound, "memory.Delete", "user not found")
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	if s.sessionUserID(ctx) == id {
		s.endSession(ctx)
	}
	return nil
}

// LoginUser checks the credential hash and starts a session.
func (r *UserRepository) LoginUser(ctx context.Context, in repository.Credentials) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndexByEmail(in.Email.Value())
	if i < 0 || !helpers.CompareHashAndPassword(s.users[i].hash, in.Password.Value()) {
		return nil, errs.New(errs.AuthenticationFailed, "memory.LoginUser", "invalid login credentials")
	}
	u := s.users[i].user
	s.startSession(ctx, u.ID)
	return u.Clone(), nil
}

// SignUpUser creates a user with a sequential id and starts a session.
func (r *UserRepository) SignUpUser(ctx context.Context, in repository.SignUpInput) (*entity.User, error) {
	hash, err := helpers.HashPasswordCost(in.Password.Value(), r.store.hashCost)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "memory.SignUpUser", "hash password", err)
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndexByEmail(in.Email.Value()) >= 0 {
		return nil, errs.New(errs.Conflict, "memory.SignUpUser", "user already registered")
	}
	now := s.now().UTC()
	u := entity.NewUser(s.nextUserID(), in.Name, in.Email, entity.WithTimestamps(now, now))
	s.users = append(s.users, &userRecord{user: u, hash: hash})
	s.startSession(ctx, u.ID)
	return u.Clone(), nil
}

func (s *Store) endSession(ctx context.Context) {
	if h := session.FromContext(ctx); h != nil {
		h.Clear()
		return
	}
	s.currentUserID = ""
}

// SignOut ends the active session; calling it without one is a no-op.
func (r *UserRepository) SignOut(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endSession(ctx)
	return nil
}

// GetCurrentUser returns the session user, or nil when anonymous.
func (r *UserRepository) GetCurrentUser(ctx context.Context) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.sessionUserID(ctx)
	if id == "" {
		return nil, nil
	}
	if i := s.userIndexByID(id); i >= 0 {
		return s.users[i].user.Clone(), nil
	}
	return nil, nil
}

// UpdateUser applies the non-nil fields of in.
func (r *UserRepository) UpdateUser(ctx context.Context, id string, in repository.UpdateUserInput) (*entity.User, error) {
	const op = "memory.UpdateUser"

	var (
		name  *valueobject.Name
		email *valueobject.Email
		hash  string
	)
	if in.Name != nil {
		n, err := valueobject.NewName(*in.Name)
		if err != nil {
			return nil, err
		}
		name = &n
	}
	if in.Email != nil {
		e, err := valueobject.NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		email = &e
	}
	if in.Password != nil {
		p, err := valueobject.NewPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		if hash, err = helpers.HashPasswordCost(p.Value(), r.store.hashCost); err != nil {
			return nil, errs.Wrap(errs.Internal, op, "hash password", err)
		}
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndexByID(id)
	if i < 0 {
		return nil, errs.New(errs.NotFound, op, "user not found")
	}
	rec := s.users[i]
	u := rec.user.Clone()
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		if j := s.userIndexByEmail(email.Value()); j >= 0 && j != i {
			return nil, errs.New(errs.Conflict, op, "user with this email already exists")
		}
		u.Email = *email
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if in.Latitude != nil {
		lat := *in.Latitude
		u.Latitude = &lat
	}
	if in.Longitude != nil {
		lng := *in.Longitude
		u.Longitude = &lng
	}
	if hash != "" {
		rec.hash = hash
	}
	u.UpdatedAt = s.now().UTC()
	rec.user = u
	return u.Clone(), nil
}
