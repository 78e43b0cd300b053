// Package identity is the account and session service behind the remote
// user repository. It hashes passwords with bcrypt, issues JWT session
// pairs and tracks live sessions in Redis.
package identity

import (
	"context"
	"fmt"
	"time"
)

// Error codes reported in ProviderError.Code.
const (
	CodeUniqueViolation    = "23505"
	CodeInvalidCredentials = "invalid_credentials"
	CodeSessionNotFound    = "session_not_found"
	CodeUserNotFound       = "user_not_found"
	CodeValidation         = "validation_failed"
)

// ProviderError is the single error shape of the identity and profile stores.
type ProviderError struct {
	Message string
	Code    string
	Status  int
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func newProviderError(status int, code, msg string) *ProviderError {
	return &ProviderError{Message: msg, Code: code, Status: status}
}

// AuthUser is the identity record as seen by clients.
type AuthUser struct {
	ID        string
	Email     string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MetadataString returns a non-empty string metadata entry.
func (u *AuthUser) MetadataString(key string) string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	s, _ := u.Metadata[key].(string)
	return s
}

// MetadataFloat returns a numeric metadata entry.
func (u *AuthUser) MetadataFloat(key string) (float64, bool) {
	if u == nil || u.Metadata == nil {
		return 0, false
	}
	switch v := u.Metadata[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// AuthResult is returned by sign-in and sign-up. Session is nil when the
// account was created but no session could be issued.
type AuthResult struct {
	User    *AuthUser
	Session *Session
}

// UserAttributes is a partial identity update. Data is merged into the
// existing metadata key by key.
type UserAttributes struct {
	Email    *string
	Password *string
	Data     map[string]any
}

// Account is the persisted identity row.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) authUser() *AuthUser {
	meta := make(map[string]any, len(a.Metadata))
	for k, v := range a.Metadata {
		meta[k] = v
	}
	return &AuthUser{ID: a.ID, Email: a.Email, Metadata: meta, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

// AccountStore persists accounts. Lookups return (nil, nil) when absent;
// Create and Update fail with a ProviderError coded CodeUniqueViolation on
// a duplicate email.
type AccountStore interface {
	Create(ctx context.Context, a Account) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Update(ctx context.Context, a Account) (*Account, error)
}
