package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/session"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

// Session is the token pair handed to clients.
type Session = session.Session

const minPasswordLength = 6

// Service implements sign-in, sign-up and session handling over an AccountStore.
// The caller's session lives in the session.Holder carried by the context.
type Service struct {
	Accounts AccountStore
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Logger   *logrus.Logger
	HashCost int
}

func NewService(accounts AccountStore, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *Service {
	return &Service{Accounts: accounts, JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func errInvalidCredentials() *ProviderError {
	return newProviderError(http.StatusBadRequest, CodeInvalidCredentials, "Invalid login credentials")
}

func errAlreadyRegistered() *ProviderError {
	return newProviderError(http.StatusConflict, CodeUniqueViolation, "User already registered")
}

func errSessionMissing() *ProviderError {
	return newProviderError(http.StatusUnauthorized, CodeSessionNotFound, "Auth session missing")
}

func isUniqueViolation(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUniqueViolation
}

// SignInWithPassword checks the credentials and starts a new session.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	acc, err := s.Accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if acc == nil || !helpers.CompareHashAndPassword(acc.PasswordHash, password) {
		return nil, errInvalidCredentials()
	}
	sess, err := s.issueSession(ctx, acc)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: acc.authUser(), Session: sess}, nil
}

// SignUp creates an account with the given metadata and starts a session.
func (s *Service) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthResult, error) {
	email = normalizeEmail(email)
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, newProviderError(http.StatusUnprocessableEntity, CodeValidation, "Password should be at least 6 characters")
	}
	existing, err := s.Accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyRegistered()
	}
	hash, err := helpers.HashPasswordCost(password, s.HashCost)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	acc, err := s.Accounts.Create(ctx, Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Metadata: meta})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errAlreadyRegistered()
		}
		return nil, err
	}
	sess, err := s.issueSession(ctx, acc)
	if err != nil {
		// the account exists; the caller may still sign in later
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", acc.ID).Warn("issue session after sign up failed")
		}
		return &AuthResult{User: acc.authUser()}, nil
	}
	return &AuthResult{User: acc.authUser(), Session: sess}, nil
}

// SignOut revokes the current session. Without one it does nothing.
func (s *Service) SignOut(ctx context.Context) error {
	h := session.FromContext(ctx)
	if h == nil {
		return nil
	}
	cur := h.Get()
	if cur == nil {
		return nil
	}
	h.Clear()
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, sessionKey(cur.UserID)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", cur.UserID).Warn("redis del session failed")
		}
	}
	return nil
}

// GetUser returns the account behind the current session.
func (s *Service) GetUser(ctx context.Context) (*AuthUser, error) {
	acc, err := s.currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	return acc.authUser(), nil
}

// UpdateUser changes the current account's email, password or metadata.
// Metadata keys set to nil are removed.
func (s *Service) UpdateUser(ctx context.Context, attrs UserAttributes) (*AuthUser, error) {
	acc, err := s.currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	next := *acc
	if attrs.Email != nil {
		email := normalizeEmail(*attrs.Email)
		if email != acc.Email {
			other, err := s.Accounts.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != acc.ID {
				return nil, newProviderError(http.StatusConflict, CodeUniqueViolation, "A user with this email address has already been registered")
			}
		}
		next.Email = email
	}
	if attrs.Password != nil {
		if utf8.RuneCountInString(*attrs.Password) < minPasswordLength {
			return nil, newProviderError(http.StatusUnprocessableEntity, CodeValidation, "Password should be at least 6 characters")
		}
		hash, err := helpers.HashPasswordCost(*attrs.Password, s.HashCost)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}
	if len(attrs.Data) > 0 {
		meta := make(map[string]any, len(acc.Metadata)+len(attrs.Data))
		for k, v := range acc.Metadata {
			meta[k] = v
		}
		for k, v := range attrs.Data {
			if v == nil {
				delete(meta, k)
				continue
			}
			meta[k] = v
		}
		next.Metadata = meta
	}
	updated, err := s.Accounts.Update(ctx, next)
	if err != nil {
		return nil, err
	}
	return updated.authUser(), nil
}

// Session returns the caller's session, or nil.
func (s *Service) Session(ctx context.Context) *Session {
	if h := session.FromContext(ctx); h != nil {
		return h.Get()
	}
	return nil
}

// SetSession validates sess and makes it the caller's session.
func (s *Service) SetSession(ctx context.Context, sess *Session) error {
	h := session.FromContext(ctx)
	if h == nil {
		return newProviderError(http.StatusInternalServerError, CodeSessionNotFound, "no session holder in context")
	}
	if sess == nil {
		h.Clear()
		return nil
	}
	if _, err := s.verify(ctx, sess); err != nil {
		return err
	}
	h.Set(sess)
	return nil
}

// Verify checks an access token and returns the session it belongs to.
// Middleware uses it to rebuild the caller's session from a cookie.
func (s *Service) Verify(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, errSessionMissing()
	}
	sess := &Session{
		ID:          claims.SessionID,
		UserID:      claims.UserID,
		AccessToken: accessToken,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	if _, err := s.verify(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) verify(ctx context.Context, sess *Session) (*Account, error) {
	claims, err := s.JWT.ParseAccessToken(sess.AccessToken)
	if err != nil || claims.UserID != sess.UserID {
		return nil, errSessionMissing()
	}
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, sessionKey(claims.UserID), "sid").Result()
		switch {
		case errors.Is(rErr, redis.Nil):
			return nil, errSessionMissing()
		case rErr != nil:
			if s.Logger != nil {
				s.Logger.WithError(rErr).WithField("user_id", claims.UserID).Warn("redis session lookup failed")
			}
		case sid != claims.SessionID:
			return nil, errSessionMissing()
		}
	}
	acc, err := s.Accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, newProviderError(http.StatusNotFound, CodeUserNotFound, "User not found")
	}
	return acc, nil
}

func (s *Service) currentAccount(ctx context.Context) (*Account, error) {
	cur := s.Session(ctx)
	if cur == nil {
		return nil, errSessionMissing()
	}
	return s.verify(ctx, cur)
}

// issueSession generates tokens, records the session in Redis and stores
// it in the caller's holder.
func (s *Service) issueSession(ctx context.Context, acc *Account) (*Session, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(acc.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", acc.ID).Error("generate access token failed")
		}
		return nil, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(acc.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", acc.ID).Error("generate refresh token failed")
		}
		return nil, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    acc.ID,
			"email":      acc.Email,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(acc.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.JWT.RefreshTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("user_id", acc.ID).Warn("redis set session failed")
		}
	}

	sess := &Session{
		ID:               sid,
		UserID:           acc.ID,
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        aexp,
		RefreshExpiresAt: rexp,
	}
	if h := session.FromContext(ctx); h != nil {
		h.Set(sess)
	}
	return sess, nil
}

// Refresh exchanges a refresh token for a new pair within the same session id.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, errSessionMissing()
	}
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, sessionKey(claims.UserID), "sid").Result()
		if errors.Is(rErr, redis.Nil) || (rErr == nil && sid != claims.SessionID) {
			return nil, errSessionMissing()
		}
	}
	access, aexp, err := s.JWT.GenerateAccessToken(claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:           claims.SessionID,
		UserID:       claims.UserID,
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    aexp,
	}
	if claims.ExpiresAt != nil {
		sess.RefreshExpiresAt = claims.ExpiresAt.Time
	}
	if h := session.FromContext(ctx); h != nil {
		h.Set(sess)
	}
	return sess, nil
}
