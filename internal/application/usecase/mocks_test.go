package usecase

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) user(args mock.Arguments) (*entity.User, error) {
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Save(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *mockUserRepo) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) LoginUser(ctx context.Context, in repository.Credentials) (*entity.User, error) {
	return m.user(m.Called(ctx, in))
}

func (m *mockUserRepo) SignUpUser(ctx context.Context, in repository.SignUpInput) (*entity.User, error) {
	return m.user(m.Called(ctx, in))
}

func (m *mockUserRepo) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUserRepo) GetCurrentUser(ctx context.Context) (*entity.User, error) {
	return m.user(m.Called(ctx))
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, id string, in repository.UpdateUserInput) (*entity.User, error) {
	return m.user(m.Called(ctx, id, in))
}

type fakeStorage struct {
	paths []string
	types []string
	data  [][]byte
	err   error
}

func (f *fakeStorage) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.paths = append(f.paths, path)
	f.types = append(f.types, contentType)
	f.data = append(f.data, b)
	return f.PublicURL(path), nil
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error { return nil }

func (f *fakeStorage) PublicURL(path string) string { return "https://files.test/" + path }
