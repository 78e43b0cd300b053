// Package usecase holds the application operations. Each use case owns one
// repository and exposes a single Execute method.
package usecase

import (
	"context"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/domain/valueobject"
)

// LoginUser authenticates by email and password.
type LoginUser struct {
	repo repository.UserRepository
}

func NewLoginUser(repo repository.UserRepository) *LoginUser {
	return &LoginUser{repo: repo}
}

// Execute returns (nil, nil) when the credentials are wrong. Malformed
// input fails before the repository is reached.
func (uc *LoginUser) Execute(ctx context.Context, email, password string) (*entity.User, error) {
	e, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := valueobject.NewPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := uc.repo.LoginUser(ctx, repository.Credentials{Email: e, Password: p})
	if err != nil {
		if errs.Is(err, errs.AuthenticationFailed) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// RegisterUser creates an account and signs it in.
type RegisterUser struct {
	repo repository.UserRepository
}

func NewRegisterUser(repo repository.UserRepository) *RegisterUser {
	return &RegisterUser{repo: repo}
}

func (uc *RegisterUser) Execute(ctx context.Context, name, email, password string) (*entity.User, error) {
	n, err := valueobject.NewName(name)
	if err != nil {
		return nil, err
	}
	e, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := valueobject.NewPassword(password)
	if err != nil {
		return nil, err
	}
	return uc.repo.SignUpUser(ctx, repository.SignUpInput{Name: n, Email: e, Password: p})
}

// LogoutUser ends the current session.
type LogoutUser struct {
	repo repository.UserRepository
}

func NewLogoutUser(repo repository.UserRepository) *LogoutUser {
	return &LogoutUser{repo: repo}
}

func (uc *LogoutUser) Execute(ctx context.Context) error {
	return uc.repo.SignOut(ctx)
}

// UpdateUser applies a partial profile update.
type UpdateUser struct {
	repo repository.UserRepository
}

func NewUpdateUser(repo repository.UserRepository) *UpdateUser {
	return &UpdateUser{repo: repo}
}

func (uc *UpdateUser) Execute(ctx context.Context, userID string, in repository.UpdateUserInput) (*entity.User, error) {
	return uc.repo.UpdateUser(ctx, userID, in)
}

// DeleteUser removes an account. Backends without the privilege fail with errs.NotSupported.
type DeleteUser struct {
	repo repository.UserRepository
}

func NewDeleteUser(repo repository.UserRepository) *DeleteUser {
	return &DeleteUser{repo: repo}
}

func (uc *DeleteUser) Execute(ctx context.Context, userID string) error {
	return uc.repo.Delete(ctx, userID)
}

// FindUser looks a user up by id.
type FindUser struct {
	repo repository.UserRepository
}

func NewFindUser(repo repository.UserRepository) *FindUser {
	return &FindUser{repo: repo}
}

func (uc *FindUser) Execute(ctx context.Context, userID string) (*entity.User, error) {
	return uc.repo.FindByID(ctx, userID)
}

// GetCurrentUser resolves the session user, nil when anonymous.
type GetCurrentUser struct {
	repo repository.UserRepository
}

func NewGetCurrentUser(repo repository.UserRepository) *GetCurrentUser {
	return &GetCurrentUser{repo: repo}
}

func (uc *GetCurrentUser) Execute(ctx context.Context) (*entity.User, error) {
	return uc.repo.GetCurrentUser(ctx)
}
