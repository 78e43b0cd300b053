package remote

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/domain/valueobject"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
)

const (
	metaName      = "name"
	metaAvatarURL = "avatar_url"
	metaLatitude  = "latitude"
	metaLongitude = "longitude"

	fallbackName = "User"
)

type UserRepository struct {
	Identity IdentityProvider
	Profiles ProfileStore
	Logger   *logrus.Logger
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(idp IdentityProvider, profiles ProfileStore, logger *logrus.Logger) *UserRepository {
	return &UserRepository{Identity: idp, Profiles: profiles, Logger: logger}
}

func providerError(err error) *identity.ProviderError {
	var pe *identity.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

func isConflict(err error) bool {
	if pe := providerError(err); pe != nil {
		if pe.Code == identity.CodeUniqueViolation || pe.Status == http.StatusConflict {
			return true
		}
		return errs.ClassifyMessage(pe.Message) == errs.Conflict
	}
	return err != nil && errs.ClassifyMessage(err.Error()) == errs.Conflict
}

func isInvalidCredentials(err error) bool {
	if pe := providerError(err); pe != nil {
		if pe.Code == identity.CodeInvalidCredentials {
			return true
		}
		return errs.ClassifyMessage(pe.Message) == errs.AuthenticationFailed
	}
	return err != nil && errs.ClassifyMessage(err.Error()) == errs.AuthenticationFailed
}

func isMissingSession(err error) bool {
	pe := providerError(err)
	return pe != nil && (pe.Code == identity.CodeSessionNotFound || pe.Status == http.StatusUnauthorized)
}

func providerMessage(err error) string {
	if pe := providerError(err); pe != nil {
		return pe.Message
	}
	return err.Error()
}

func (r *UserRepository) warn(err error, userID, msg string) {
	if r.Logger != nil {
		r.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
	}
}

// Save is not available: accounts are created through SignUpUser.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	return errs.New(errs.NotSupported, "remote.Save", "use SignUpUser to create accounts")
}

// Update is not available: profile changes go through UpdateUser.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	return errs.New(errs.NotSupported, "remote.Update", "use UpdateUser to change the profile")
}

// Delete needs administrative privileges the client does not have.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return errs.New(errs.NotSupported, "remote.Delete", "account deletion requires administrative privileges")
}

// currentAuthUser returns nil without error when nobody is signed in.
func (r *UserRepository) currentAuthUser(ctx context.Context, op string) (*identity.AuthUser, error) {
	if r.Identity.Session(ctx) == nil {
		return nil, nil
	}
	au, err := r.Identity.GetUser(ctx)
	if err != nil {
		if isMissingSession(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.Internal, op, "falha ao obter usuario atual: "+providerMessage(err), err)
	}
	return au, nil
}

// FindByEmail only resolves the signed-in user.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	au, err := r.currentAuthUser(ctx, "remote.FindByEmail")
	if err != nil || au == nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(au.Email), strings.TrimSpace(email)) {
		return nil, nil
	}
	return r.mapUser(ctx, au, "")
}

// FindByID only resolves the signed-in user.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	au, err := r.currentAuthUser(ctx, "remote.FindByID")
	if err != nil || au == nil {
		return nil, err
	}
	if au.ID != id {
		return nil, nil
	}
	return r.mapUser(ctx, au, "")
}

func (r *UserRepository) LoginUser(ctx context.Context, in repository.Credentials) (*entity.User, error) {
	const op = "remote.LoginUser"
	res, err := r.Identity.SignInWithPassword(ctx, in.Email.Value(), in.Password.Value())
	if err != nil {
		if isInvalidCredentials(err) {
			return nil, errs.Wrap(errs.AuthenticationFailed, op, "invalid login credentials", err)
		}
		return nil, errs.Wrap(errs.Internal, op, "falha ao autenticar usuario: "+providerMessage(err), err)
	}
	if res == nil || res.User == nil {
		return nil, errs.New(errs.Internal, op, "falha ao autenticar usuario: resposta sem usuario")
	}
	return r.mapUser(ctx, res.User, "")
}

func (r *UserRepository) SignUpUser(ctx context.Context, in repository.SignUpInput) (*entity.User, error) {
	const op = "remote.SignUpUser"
	name := in.Name.Value()
	res, err := r.Identity.SignUp(ctx, in.Email.Value(), in.Password.Value(), map[string]any{metaName: name})
	if err != nil {
		if isConflict(err) {
			return nil, errs.Wrap(errs.Conflict, op, "user already registered", err)
		}
		return nil, errs.Wrap(errs.Internal, op, "falha ao cadastrar usuario: "+providerMessage(err), err)
	}
	if res == nil || res.User == nil {
		return nil, errs.New(errs.Internal, op, "falha ao cadastrar usuario: resposta sem usuario")
	}
	au := res.User

	if r.Identity.Session(ctx) == nil {
		if res.Session != nil {
			if err := r.Identity.SetSession(ctx, res.Session); err != nil {
				r.warn(err, au.ID, "apply sign up session failed")
			}
		}
		if r.Identity.Session(ctx) == nil {
			if _, err := r.Identity.SignInWithPassword(ctx, in.Email.Value(), in.Password.Value()); err != nil {
				r.warn(err, au.ID, "sign in after sign up failed")
			}
		}
	}

	if r.Identity.Session(ctx) != nil {
		if _, err := r.upsertProfile(ctx, Profile{ID: au.ID, Name: name}); err != nil {
			r.warn(err, au.ID, "profile upsert after sign up failed")
		}
	} else {
		r.warn(errors.New("no session"), au.ID, "profile sync deferred to next login")
	}
	return r.mapUser(ctx, au, name)
}

// SignOut succeeds when there is no session.
func (r *UserRepository) SignOut(ctx context.Context) error {
	if err := r.Identity.SignOut(ctx); err != nil && !isMissingSession(err) {
		return errs.Wrap(errs.Internal, "remote.SignOut", "falha ao encerrar sessao: "+providerMessage(err), err)
	}
	return nil
}

func (r *UserRepository) GetCurrentUser(ctx context.Context) (*entity.User, error) {
	au, err := r.currentAuthUser(ctx, "remote.GetCurrentUser")
	if err != nil || au == nil {
		return nil, err
	}
	return r.mapUser(ctx, au, "")
}

// UpdateUser changes the signed-in user. Identity attributes go to the
// provider; name and avatar are mirrored into the profile row.
func (r *UserRepository) UpdateUser(ctx context.Context, id string, in repository.UpdateUserInput) (*entity.User, error) {
	const op = "remote.UpdateUser"

	au, err := r.currentAuthUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if au == nil {
		return nil, errs.New(errs.Unauthenticated, op, "no active session")
	}
	if au.ID != id {
		return nil, errs.New(errs.NotFound, op, "user not found")
	}

	var (
		attrs identity.UserAttributes
		prof  ProfileUpdate
		data  = map[string]any{}
	)
	if in.Name != nil {
		n, err := valueobject.NewName(*in.Name)
		if err != nil {
			return nil, err
		}
		name := n.Value()
		data[metaName] = name
		prof.Name = &name
	}
	if in.Email != nil {
		e, err := valueobject.NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		email := e.Value()
		attrs.Email = &email
	}
	if in.Password != nil {
		p, err := valueobject.NewPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		pw := p.Value()
		attrs.Password = &pw
	}
	if in.AvatarURL != nil {
		avatar := *in.AvatarURL
		data[metaAvatarURL] = avatar
		prof.AvatarURL = &avatar
	}
	if in.Latitude != nil {
		data[metaLatitude] = *in.Latitude
		prof.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		data[metaLongitude] = *in.Longitude
		prof.Longitude = in.Longitude
	}
	if len(data) > 0 {
		attrs.Data = data
	}

	if attrs.Email != nil || attrs.Password != nil || attrs.Data != nil {
		updated, err := r.Identity.UpdateUser(ctx, attrs)
		if err != nil {
			if isConflict(err) {
				return nil, errs.Wrap(errs.Conflict, op, "email already registered", err)
			}
			return nil, errs.Wrap(errs.Internal, op, "falha ao atualizar usuario: "+providerMessage(err), err)
		}
		au = updated
	}

	if !prof.isEmpty() {
		p, err := r.Profiles.Update(ctx, au.ID, prof)
		if err == nil && p == nil {
			p, err = r.upsertProfile(ctx, profileFrom(au, prof))
		}
		if err != nil {
			return nil, errs.Wrap(errs.Internal, op, "falha ao atualizar perfil: "+providerMessage(err), err)
		}
	}
	return r.mapUser(ctx, au, "")
}

func profileFrom(au *identity.AuthUser, u ProfileUpdate) Profile {
	p := Profile{ID: au.ID, Name: au.MetadataString(metaName), AvatarURL: au.MetadataString(metaAvatarURL)}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	p.Latitude, p.Longitude = u.Latitude, u.Longitude
	return p
}

// upsertProfile inserts p, falls back to an update on conflict and
// re-selects when the update matched nothing.
func (r *UserRepository) upsertProfile(ctx context.Context, p Profile) (*Profile, error) {
	created, err := r.Profiles.Insert(ctx, p)
	if err == nil {
		return created, nil
	}
	if !isConflict(err) {
		return nil, err
	}
	upd := ProfileUpdate{Latitude: p.Latitude, Longitude: p.Longitude}
	if p.Name != "" {
		upd.Name = &p.Name
	}
	if p.AvatarURL != "" {
		upd.AvatarURL = &p.AvatarURL
	}
	if upd.isEmpty() {
		return r.Profiles.SelectByID(ctx, p.ID)
	}
	updated, err := r.Profiles.Update(ctx, p.ID, upd)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return r.Profiles.SelectByID(ctx, p.ID)
	}
	return updated, nil
}

// mapUser builds the domain user. Profile problems are logged and never
// fail the identity operation.
func (r *UserRepository) mapUser(ctx context.Context, au *identity.AuthUser, suppliedName string) (*entity.User, error) {
	email, err := valueobject.NewEmail(au.Email)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "remote.mapUser", "identity returned an invalid email", err)
	}

	profile, err := r.Profiles.SelectByID(ctx, au.ID)
	if err != nil {
		r.warn(err, au.ID, "select profile failed")
		profile = nil
	} else if profile == nil {
		resolved := resolveName(nil, au, suppliedName, email)
		p, uErr := r.upsertProfile(ctx, Profile{ID: au.ID, Name: resolved.Value(), AvatarURL: au.MetadataString(metaAvatarURL)})
		if uErr != nil {
			r.warn(uErr, au.ID, "profile sync failed")
		} else {
			profile = p
		}
	}

	name := resolveName(profile, au, suppliedName, email)
	opts := []entity.UserOption{entity.WithTimestamps(au.CreatedAt, au.UpdatedAt)}

	avatar := au.MetadataString(metaAvatarURL)
	if profile != nil && profile.AvatarURL != "" {
		avatar = profile.AvatarURL
	}
	if avatar != "" {
		opts = append(opts, entity.WithAvatarURL(avatar))
	}

	var lat, lng *float64
	if profile != nil {
		lat, lng = profile.Latitude, profile.Longitude
	}
	if lat == nil {
		if v, ok := au.MetadataFloat(metaLatitude); ok {
			lat = &v
		}
	}
	if lng == nil {
		if v, ok := au.MetadataFloat(metaLongitude); ok {
			lng = &v
		}
	}
	opts = append(opts, entity.WithLocation(lat, lng))

	return entity.NewUser(au.ID, name, email, opts...), nil
}

// resolveName picks the first valid candidate: profile, metadata,
// supplied name, email local part, then "User".
func resolveName(p *Profile, au *identity.AuthUser, supplied string, email valueobject.Email) valueobject.Name {
	candidates := make([]string, 0, 4)
	if p != nil {
		candidates = append(candidates, p.Name)
	}
	candidates = append(candidates, au.MetadataString(metaName), supplied, email.LocalPart())
	for _, c := range candidates {
		if n, err := valueobject.NewName(c); err == nil {
			return n
		}
	}
	n, _ := valueobject.NewName(fallbackName)
	return n
}
