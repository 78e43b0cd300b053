package postgres

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/remote"
)

// ProfileStore keeps the public profile rows in the usuarios table.
type ProfileStore struct {
	db DBTX
}

var _ remote.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore(db DBTX) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `id, name, avatar_url, latitude, longitude, created_at, updated_at`

func scanProfile(row pgx.Row) (*remote.Profile, error) {
	var (
		p      remote.Profile
		avatar *string
	)
	if err := row.Scan(&p.ID, &p.Name, &avatar, &p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if avatar != nil {
		p.AvatarURL = *avatar
	}
	return &p, nil
}

func profileError(err error) error {
	var pe *identity.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	if isUniqueViolation(err) {
		return &identity.ProviderError{Message: err.Error(), Code: identity.CodeUniqueViolation, Status: http.StatusConflict}
	}
	return &identity.ProviderError{Message: err.Error(), Status: http.StatusInternalServerError}
}

func (s *ProfileStore) SelectByID(ctx context.Context, id string) (*remote.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, profileError(err)
	}
	return p, nil
}

func (s *ProfileStore) Insert(ctx context.Context, p remote.Profile) (*remote.Profile, error) {
	out, err := scanProfile(s.db.QueryRow(ctx, `
		INSERT INTO usuarios (id, name, avatar_url, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns,
		p.ID, p.Name, nullable(p.AvatarURL), p.Latitude, p.Longitude))
	if err != nil {
		return nil, profileError(err)
	}
	return out, nil
}

func (s *ProfileStore) Update(ctx context.Context, id string, u remote.ProfileUpdate) (*remote.Profile, error) {
	out, err := scanProfile(s.db.QueryRow(ctx, `
		UPDATE usuarios SET
			name = COALESCE($2, name),
			avatar_url = COALESCE($3, avatar_url),
			latitude = COALESCE($4, latitude),
			longitude = COALESCE($5, longitude),
			updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		id, u.Name, u.AvatarURL, u.Latitude, u.Longitude))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, profileError(err)
	}
	return out, nil
}
