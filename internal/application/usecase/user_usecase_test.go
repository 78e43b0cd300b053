package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/memory"
)

func newUsers() repository.UserRepository {
	return memory.New(memory.WithHashCost(bcrypt.MinCost)).Users()
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	repo := newUsers()

	u, err := NewRegisterUser(repo).Execute(ctx, "Ana", "ana@x.com", "123456")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ana@x.com", u.Email.Value())

	got, err := NewLoginUser(repo).Execute(ctx, "  ANA@X.COM ", "123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}

func TestLoginWrongPasswordReturnsNil(t *testing.T) {
	ctx := context.Background()
	repo := newUsers()
	_, err := NewRegisterUser(repo).Execute(ctx, "Ana", "ana@x.com", "123456")
	require.NoError(t, err)

	got, err := NewLoginUser(repo).Execute(ctx, "ana@x.com", "654321")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// A five-character wrong password never reaches the credential check: it
// fails the length rule first. Wrong passwords of valid length yield nil.
func TestLoginShortWrongPasswordIsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newUsers()
	_, err := NewRegisterUser(repo).Execute(ctx, "Ana", "ana@x.com", "123456")
	require.NoError(t, err)

	got, err := NewLoginUser(repo).Execute(ctx, "ana@x.com", "wrong")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, errs.ErrInvalidPassword)

	got, err = NewLoginUser(repo).Execute(ctx, "ana@x.com", "wrong-password")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoginValidationSkipsRepository(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"invalid email", "not-an-email", "123456", errs.ErrInvalidEmail},
		{"short password", "ana@x.com", "12345", errs.ErrInvalidPassword},
		{"email checked first", "bad", "1", errs.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepo)
			u, err := NewLoginUser(repo).Execute(context.Background(), tt.email, tt.password)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "LoginUser", mock.Anything, mock.Anything)
		})
	}
}

func TestLoginPropagatesOtherErrors(t *testing.T) {
	repo := new(mockUserRepo)
	boom := errors.New("network down")
	repo.On("LoginUser", mock.Anything, mock.Anything).Return(nil, boom)

	u, err := NewLoginUser(repo).Execute(context.Background(), "ana@x.com", "123456")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, boom)
	repo.AssertExpectations(t)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name, userName, email, password string
		want                            error
	}{
		{"blank name", "   ", "ana@x.com", "123456", errs.ErrInvalidName},
		{"bad email", "Ana", "ana@", "123456", errs.ErrInvalidEmail},
		{"short password", "Ana", "ana@x.com", "123", errs.ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepo)
			_, err := NewRegisterUser(repo).Execute(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "SignUpUser", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newUsers()
	_, err := NewRegisterUser(repo).Execute(ctx, "Ana", "ana@x.com", "123456")
	require.NoError(t, err)

	_, err = NewRegisterUser(repo).Execute(ctx, "Ana 2", "ana@x.com", "abcdef")
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestLogoutAndCurrentUser(t *testing.T) {
	ctx := context.Background()
	repo := newUsers()
	u, err := NewRegisterUser(repo).Execute(ctx, "Ana", "ana@x.com", "123456")
	require.NoError(t, err)

	cur, err := NewGetCurrentUser(repo).Execute(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, NewLogoutUser(repo).Execute(ctx))
	cur, err = NewGetCurrentUser(repo).Execute(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestUpdateFindDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := newUsers()
	u, err := NewRegisterUser(repo).Execute(ctx, "Ana", "ana@x.com", "123456")
	require.NoError(t, err)

	avatar := "https://files.test/a.jpg"
	updated, err := NewUpdateUser(repo).Execute(ctx, u.ID, repository.UpdateUserInput{AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, avatar, updated.AvatarURL)

	found, err := NewFindUser(repo).Execute(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, avatar, found.AvatarURL)

	require.NoError(t, NewDeleteUser(repo).Execute(ctx, u.ID))
	found, err = NewFindUser(repo).Execute(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDeleteUserNotSupportedPropagates(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("Delete", mock.Anything, "1").Return(errs.New(errs.NotSupported, "remote.Delete", "not supported"))

	err := NewDeleteUser(repo).Execute(context.Background(), "1")
	assert.ErrorIs(t, err, errs.ErrNotSupported)
}
