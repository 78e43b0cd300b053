package state

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

const (
	MsgEmailAlreadyRegistered = "Este email ja esta cadastrado."
	MsgRegistrationFailed     = "Ocorreu um erro durante o cadastro."

	defaultLocationSyncTimeout = 10 * time.Second
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errs.New(errs.Unauthenticated, "state", "no authenticated user")

// Coordinates is an optional device position reported at login.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// RegisterResult mirrors what a sign-up form needs to render.
type RegisterResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthState is the Anonymous/Authenticated state machine of one client.
type AuthState struct {
	mu   sync.Mutex
	user *UserView

	uc                  usecase.UserUseCases
	logger              *logrus.Logger
	locationSyncTimeout time.Duration
	syncWG              sync.WaitGroup
}

type AuthOption func(*AuthState)

func WithAuthLogger(l *logrus.Logger) AuthOption {
	return func(s *AuthState) { s.logger = l }
}

func WithLocationSyncTimeout(d time.Duration) AuthOption {
	return func(s *AuthState) {
		if d > 0 {
			s.locationSyncTimeout = d
		}
	}
}

// WithCurrentUser starts the state as Authenticated.
func WithCurrentUser(v *UserView) AuthOption {
	return func(s *AuthState) { s.user = v.clone() }
}

func NewAuthState(uc usecase.UserUseCases, opts ...AuthOption) *AuthState {
	s := &AuthState{uc: uc, locationSyncTimeout: defaultLocationSyncTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a copy of the signed-in user, or nil.
func (s *AuthState) Current() *UserView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.clone()
}

func (s *AuthState) IsAuthenticated() bool { return s.Current() != nil }

func (s *AuthState) setUser(v *UserView) {
	s.mu.Lock()
	s.user = v
	s.mu.Unlock()
}

// Login returns false with a nil error when the credentials are wrong.
// With coords set, a location sync is started in the background.
func (s *AuthState) Login(ctx context.Context, email, password string, coords *Coordinates) (bool, error) {
	u, err := s.uc.Login.Execute(ctx, email, password)
	if err != nil {
		s.warn(err, "login failed")
		return false, err
	}
	if u == nil {
		return false, nil
	}
	s.setUser(NewUserView(u))
	if coords != nil {
		s.SyncLocation(ctx, u.ID, coords.Latitude, coords.Longitude)
	}
	return true, nil
}

// Register creates the account. It does not change the local state; the
// caller logs in afterwards.
func (s *AuthState) Register(ctx context.Context, name, email, password string) RegisterResult {
	if _, err := s.uc.Register.Execute(ctx, name, email, password); err != nil {
		s.warn(err, "register failed")
		return RegisterResult{Error: RegistrationMessage(err)}
	}
	return RegisterResult{Success: true}
}

// Logout always leaves the state Anonymous, even when sign-out fails.
func (s *AuthState) Logout(ctx context.Context) error {
	defer s.setUser(nil)
	return s.uc.Logout.Execute(ctx)
}

// UpdateProfile returns false without calling the repository when anonymous.
func (s *AuthState) UpdateProfile(ctx context.Context, in repository.UpdateUserInput) (bool, error) {
	cur := s.Current()
	if cur == nil {
		return false, nil
	}
	u, err := s.uc.Update.Execute(ctx, cur.ID, in)
	if err != nil {
		s.warn(err, "update profile failed")
		return false, err
	}
	s.setUser(NewUserView(u))
	return true, nil
}

// Refresh re-reads the session user from the repository.
func (s *AuthState) Refresh(ctx context.Context) (*UserView, error) {
	u, err := s.uc.GetCurrentUser.Execute(ctx)
	if err != nil {
		return nil, err
	}
	v := NewUserView(u)
	s.setUser(v)
	return v.clone(), nil
}

// SyncLocation stores the rounded position for userID without blocking the
// caller. The returned channel yields the outcome once and is then closed.
func (s *AuthState) SyncLocation(ctx context.Context, userID string, lat, lng float64) <-chan error {
	done := make(chan error, 1)
	lat, lng = RoundCoordinate(lat), RoundCoordinate(lng)

	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		defer close(done)

		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.locationSyncTimeout)
		defer cancel()

		u, err := s.uc.Update.Execute(syncCtx, userID, repository.UpdateUserInput{Latitude: &lat, Longitude: &lng})
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).WithField("user_id", userID).Warn("location sync failed")
			}
			done <- err
			return
		}
		s.mu.Lock()
		if s.user != nil && s.user.ID == userID {
			s.user = NewUserView(u)
		}
		s.mu.Unlock()
		done <- nil
	}()
	return done
}

// Wait blocks until every pending location sync finished.
func (s *AuthState) Wait() { s.syncWG.Wait() }

func (s *AuthState) warn(err error, msg string) {
	if s.logger != nil {
		s.logger.WithError(err).Warn(msg)
	}
}

// RoundCoordinate keeps 7 decimal places.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}

// RegistrationMessage turns a sign-up error into the message shown to the user.
func RegistrationMessage(err error) string {
	if err == nil {
		return ""
	}
	if errs.Is(err, errs.Conflict) {
		return MsgEmailAlreadyRegistered
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"already registered", "user already registered", "already exists", "ja existe", "usuario ja cadastrado"} {
		if strings.Contains(msg, needle) {
			return MsgEmailAlreadyRegistered
		}
	}
	var e *errs.Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err.Error() == "" {
		return MsgRegistrationFailed
	}
	return err.Error()
}
