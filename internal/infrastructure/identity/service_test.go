package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/medication-reminder/internal/session"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

func newService() *Service {
	svc := NewService(NewMemoryAccountStore(), helpers.NewJWTManager("a", "r", time.Minute, time.Hour), nil, nil)
	svc.HashCost = bcrypt.MinCost
	return svc
}

func clientCtx() (context.Context, *session.Holder) {
	h := session.NewHolder(nil)
	return session.NewContext(context.Background(), h), h
}

func providerErr(t *testing.T, err error) *ProviderError {
	t.Helper()
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "expected *ProviderError, got %v", err)
	return pe
}

func TestSignUpStartsSession(t *testing.T) {
	svc := newService()
	ctx, h := clientCtx()

	res, err := svc.SignUp(ctx, " Ana@X.com ", "123456", map[string]any{"name": "Ana"})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "ana@x.com", res.User.Email)
	assert.Equal(t, "Ana", res.User.MetadataString("name"))
	require.NotNil(t, h.Get())
	assert.Equal(t, res.User.ID, h.Get().UserID)

	u, err := svc.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, u.ID)
}

func TestSignUpDuplicate(t *testing.T) {
	svc := newService()
	ctx, _ := clientCtx()
	_, err := svc.SignUp(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "ANA@x.com", "123456", nil)
	pe := providerErr(t, err)
	assert.Equal(t, CodeUniqueViolation, pe.Code)
	assert.Equal(t, http.StatusConflict, pe.Status)
	assert.Equal(t, "User already registered", pe.Message)
}

func TestSignInWithPassword(t *testing.T) {
	svc := newService()
	ctx, h := clientCtx()
	_, err := svc.SignUp(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx))
	assert.Nil(t, h.Get())

	_, err = svc.SignInWithPassword(ctx, "ana@x.com", "bad-password")
	pe := providerErr(t, err)
	assert.Equal(t, CodeInvalidCredentials, pe.Code)
	assert.Equal(t, http.StatusBadRequest, pe.Status)

	res, err := svc.SignInWithPassword(ctx, "ana@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, res.Session.AccessToken, h.Get().AccessToken)
}

func TestGetUserWithoutSession(t *testing.T) {
	svc := newService()
	ctx, _ := clientCtx()

	_, err := svc.GetUser(ctx)
	pe := providerErr(t, err)
	assert.Equal(t, CodeSessionNotFound, pe.Code)
	assert.Equal(t, http.StatusUnauthorized, pe.Status)

	assert.NoError(t, svc.SignOut(ctx))
	assert.NoError(t, svc.SignOut(context.Background()))
}

func TestUpdateUserMergesMetadata(t *testing.T) {
	svc := newService()
	ctx, _ := clientCtx()
	_, err := svc.SignUp(ctx, "ana@x.com", "123456", map[string]any{"name": "Ana", "avatar_url": "a.png"})
	require.NoError(t, err)

	email := "ana.souza@x.com"
	u, err := svc.UpdateUser(ctx, UserAttributes{Email: &email, Data: map[string]any{"latitude": 1.5, "avatar_url": nil}})
	require.NoError(t, err)
	assert.Equal(t, "ana.souza@x.com", u.Email)
	assert.Equal(t, "Ana", u.MetadataString("name"))
	assert.Empty(t, u.MetadataString("avatar_url"))
	lat, ok := u.MetadataFloat("latitude")
	assert.True(t, ok)
	assert.Equal(t, 1.5, lat)

	pw := "nova-senha"
	_, err = svc.UpdateUser(ctx, UserAttributes{Password: &pw})
	require.NoError(t, err)
	_, err = svc.SignInWithPassword(ctx, "ana.souza@x.com", "nova-senha")
	require.NoError(t, err)
}

func TestUpdateUserEmailTaken(t *testing.T) {
	svc := newService()
	other, _ := clientCtx()
	_, err := svc.SignUp(other, "bia@x.com", "123456", nil)
	require.NoError(t, err)

	ctx, _ := clientCtx()
	_, err = svc.SignUp(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)

	taken := "bia@x.com"
	_, err = svc.UpdateUser(ctx, UserAttributes{Email: &taken})
	assert.Equal(t, CodeUniqueViolation, providerErr(t, err).Code)
}

func TestVerifyAndSetSession(t *testing.T) {
	svc := newService()
	ctx, _ := clientCtx()
	res, err := svc.SignUp(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)

	sess, err := svc.Verify(context.Background(), res.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Equal(t, res.Session.ID, sess.ID)

	_, err = svc.Verify(context.Background(), "garbage")
	assert.Equal(t, CodeSessionNotFound, providerErr(t, err).Code)

	next, h := clientCtx()
	require.NoError(t, svc.SetSession(next, res.Session))
	assert.Equal(t, res.User.ID, h.Get().UserID)

	forged := *res.Session
	forged.UserID = "someone-else"
	assert.Error(t, svc.SetSession(next, &forged))

	assert.Error(t, svc.SetSession(context.Background(), res.Session))
}

func TestRefresh(t *testing.T) {
	svc := newService()
	ctx, h := clientCtx()
	res, err := svc.SignUp(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)

	sess, err := svc.Refresh(ctx, res.Session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sess.ID)
	assert.Equal(t, sess.AccessToken, h.Get().AccessToken)

	_, err = svc.Refresh(ctx, res.Session.AccessToken)
	assert.Error(t, err)
}

func TestShortPasswordRejected(t *testing.T) {
	svc := newService()
	ctx, _ := clientCtx()
	_, err := svc.SignUp(ctx, "ana@x.com", "123", nil)
	assert.Equal(t, CodeValidation, providerErr(t, err).Code)
}
