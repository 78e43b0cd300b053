package repository

import (
	"context"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/valueobject"
)

// Credentials are the validated inputs of LoginUser.
type Credentials struct {
	Email    valueobject.Email
	Password valueobject.Password
}

// SignUpInput are the validated inputs of SignUpUser.
type SignUpInput struct {
	Name     valueobject.Name
	Email    valueobject.Email
	Password valueobject.Password
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	Password  *string
	AvatarURL *string
	Latitude  *float64
	Longitude *float64
}

// IsEmpty reports whether no field is set.
func (in UpdateUserInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil &&
		in.AvatarURL == nil && in.Latitude == nil && in.Longitude == nil
}

// UserRepository defines the persistence and session contract for users.
// Lookups return (nil, nil) when the user is absent.
type UserRepository interface {
	Save(ctx context.Context, u *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error

	// LoginUser fails with errs.AuthenticationFailed on bad credentials.
	LoginUser(ctx context.Context, in Credentials) (*entity.User, error)
	// SignUpUser fails with errs.Conflict when the email is taken.
	SignUpUser(ctx context.Context, in SignUpInput) (*entity.User, error)
	SignOut(ctx context.Context) error
	GetCurrentUser(ctx context.Context) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error)
}
