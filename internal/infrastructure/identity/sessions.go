package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

// Sessions is what the HTTP layer needs to hand out and check tokens,
// whichever user backend is wired.
type Sessions interface {
	// Verify rebuilds a session from an access token.
	Verify(ctx context.Context, accessToken string) (*Session, error)
	// Issue completes a session started by a sign-in with a token pair.
	Issue(ctx context.Context, s *Session) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Revoke(ctx context.Context, s *Session) error
}

var (
	_ Sessions = (*Service)(nil)
	_ Sessions = (*TokenSessions)(nil)
)

// Issue returns s unchanged: Service sessions carry tokens from the start.
func (s *Service) Issue(_ context.Context, sess *Session) (*Session, error) {
	if sess == nil || sess.AccessToken == "" {
		return nil, errSessionMissing()
	}
	return sess, nil
}

// Revoke is a no-op; SignOut already dropped the Redis record.
func (s *Service) Revoke(context.Context, *Session) error { return nil }

// TokenSessions issues JWT pairs for backends that only track a user id,
// such as the in-memory store. Live session ids are kept in Redis when
// configured, in process otherwise.
type TokenSessions struct {
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger

	mu   sync.Mutex
	live map[string]string // sid -> user id
}

func NewTokenSessions(jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *TokenSessions {
	return &TokenSessions{JWT: jwt, Redis: rdb, Logger: logger, live: map[string]string{}}
}

type liveSession struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func liveKey(sid string) string { return "auth:session:" + sid }

func (t *TokenSessions) remember(ctx context.Context, sid, userID string) {
	if t.Redis != nil {
		err := helpers.RedisSetJSON(ctx, t.Redis, liveKey(sid), liveSession{UserID: userID, CreatedAt: time.Now().UTC()}, t.JWT.RefreshTTL)
		if err == nil {
			return
		}
		if t.Logger != nil {
			t.Logger.WithError(err).WithField("user_id", userID).Warn("redis set session failed, keeping it in process")
		}
	}
	t.mu.Lock()
	t.live[sid] = userID
	t.mu.Unlock()
}

func (t *TokenSessions) owner(ctx context.Context, sid string) (string, bool) {
	if t.Redis != nil {
		var ls liveSession
		ok, err := helpers.RedisGetJSON(ctx, t.Redis, liveKey(sid), &ls)
		if err == nil && ok {
			return ls.UserID, true
		}
		if err != nil && t.Logger != nil {
			t.Logger.WithError(err).Warn("redis session lookup failed")
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	uid, ok := t.live[sid]
	return uid, ok
}

func (t *TokenSessions) forget(ctx context.Context, sid string) error {
	t.mu.Lock()
	delete(t.live, sid)
	t.mu.Unlock()
	if t.Redis != nil {
		if err := helpers.RedisDel(ctx, t.Redis, liveKey(sid)); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	return nil
}

func (t *TokenSessions) Issue(ctx context.Context, s *Session) (*Session, error) {
	if s == nil || s.UserID == "" {
		return nil, errSessionMissing()
	}
	if s.AccessToken != "" {
		return s, nil
	}
	sid := uuid.NewString()
	access, aexp, err := t.JWT.GenerateAccessToken(s.UserID, sid)
	if err != nil {
		return nil, err
	}
	refresh, rexp, err := t.JWT.GenerateRefreshToken(s.UserID, sid)
	if err != nil {
		return nil, err
	}
	t.remember(ctx, sid, s.UserID)
	return &Session{
		ID:               sid,
		UserID:           s.UserID,
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        aexp,
		RefreshExpiresAt: rexp,
	}, nil
}

func (t *TokenSessions) Verify(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := t.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, errSessionMissing()
	}
	uid, ok := t.owner(ctx, claims.SessionID)
	if !ok || uid != claims.UserID {
		return nil, errSessionMissing()
	}
	sess := &Session{ID: claims.SessionID, UserID: claims.UserID, AccessToken: accessToken}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

func (t *TokenSessions) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := t.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, errSessionMissing()
	}
	if uid, ok := t.owner(ctx, claims.SessionID); !ok || uid != claims.UserID {
		return nil, errSessionMissing()
	}
	access, aexp, err := t.JWT.GenerateAccessToken(claims.UserID, claims.SessionID)
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
	return sess, nil
}

// Revoke forgets the session id so its tokens stop verifying.
func (t *TokenSessions) Revoke(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return nil
	}
	return t.forget(ctx, s.ID)
}
