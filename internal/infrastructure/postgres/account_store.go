package postgres

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
)

// AccountStore persists identity accounts in auth_users.
type AccountStore struct {
	db DBTX
}

var _ identity.AccountStore = (*AccountStore)(nil)

func NewAccountStore(db DBTX) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id::text, email, password_hash, metadata, created_at, updated_at`

func scanAccount(row pgx.Row) (*identity.Account, error) {
	var a identity.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Metadata, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	return &a, nil
}

func accountError(err error) error {
	if isUniqueViolation(err) {
		return &identity.ProviderError{Message: "User already registered", Code: identity.CodeUniqueViolation, Status: http.StatusConflict}
	}
	return err
}

func (s *AccountStore) Create(ctx context.Context, a identity.Account) (*identity.Account, error) {
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	out, err := scanAccount(s.db.QueryRow(ctx, `
		INSERT INTO auth_users (id, email, password_hash, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		a.ID, a.Email, a.PasswordHash, a.Metadata))
	if err != nil {
		return nil, accountError(err)
	}
	return out, nil
}

func (s *AccountStore) find(ctx context.Context, where string, arg any) (*identity.Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM auth_users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	return s.find(ctx, `email = $1`, email)
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*identity.Account, error) {
	return s.find(ctx, `id::text = $1`, id)
}

func (s *AccountStore) Update(ctx context.Context, a identity.Account) (*identity.Account, error) {
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	out, err := scanAccount(s.db.QueryRow(ctx, `
		UPDATE auth_users SET
			email = $2,
			password_hash = $3,
			metadata = $4,
			updated_at = now()
		WHERE id::text = $1
		RETURNING `+accountColumns,
		a.ID, a.Email, a.PasswordHash, a.Metadata))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &identity.ProviderError{Message: "User not found", Code: identity.CodeUserNotFound, Status: http.StatusNotFound}
		}
		return nil, accountError(err)
	}
	return out, nil
}
