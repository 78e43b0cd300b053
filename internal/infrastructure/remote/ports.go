// Package remote implements repository.UserRepository on top of an
// identity provider plus a profile table. Only the signed-in user is
// visible through it.
package remote

import (
	"context"
	"time"

	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
)

// IdentityProvider is the account/session service the adapter talks to.
// Failures are reported as *identity.ProviderError.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.AuthResult, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*identity.AuthResult, error)
	SignOut(ctx context.Context) error
	GetUser(ctx context.Context) (*identity.AuthUser, error)
	UpdateUser(ctx context.Context, attrs identity.UserAttributes) (*identity.AuthUser, error)
	Session(ctx context.Context) *identity.Session
	SetSession(ctx context.Context, s *identity.Session) error
}

// Profile is a row of the public profile table keyed by the identity id.
type Profile struct {
	ID        string
	Name      string
	AvatarURL string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate changes only the non-nil fields.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
	Latitude  *float64
	Longitude *float64
}

func (u ProfileUpdate) isEmpty() bool {
	return u.Name == nil && u.AvatarURL == nil && u.Latitude == nil && u.Longitude == nil
}

// ProfileStore reads and writes profiles. SelectByID and Update return
// (nil, nil) when no row matches; Insert fails with a ProviderError coded
// identity.CodeUniqueViolation when the row exists.
type ProfileStore interface {
	SelectByID(ctx context.Context, id string) (*Profile, error)
	Insert(ctx context.Context, p Profile) (*Profile, error)
	Update(ctx context.Context, id string, u ProfileUpdate) (*Profile, error)
}
