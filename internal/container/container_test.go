package container

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/memory"
	"github.com/oksasatya/medication-reminder/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Backend:          config.BackendMemory,
		JWTAccessSecret:  "a",
		JWTRefreshSecret: "r",
		AccessTTL:        time.Minute,
		RefreshTTL:       time.Hour,
		PublicBaseURL:    "http://files.local",
	}
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewMemoryWiresBackend(t *testing.T) {
	c := NewMemory(testConfig(), quiet(), WithStore(memory.New(memory.WithHashCost(4))))
	ctx := session.NewContext(context.Background(), session.NewHolder(nil))

	users, err := c.UserUseCases()
	require.NoError(t, err)
	u, err := users.Register.Execute(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	meds, err := c.MedicamentoUseCases(u.ID)
	require.NoError(t, err)
	require.NoError(t, meds.Adicionar.Execute(ctx, entity.Medicamento{ID: "m1", Nome: "Dipirona", Horario: "08:00"}))
	list, err := meds.Listar.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	sess, err := c.Sessions.Issue(ctx, session.FromContext(ctx).Get())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)

	out, err := c.UploadFile().Execute(ctx, usecase.UploadFileInput{UserID: u.ID, Body: bytes.NewBufferString("img")})
	require.NoError(t, err)
	assert.Contains(t, out.URL, "http://files.local/1/uploads/")

	assert.False(t, c.Notifier.Enabled())
	c.Close()
}

func TestEmptyContainerHasNoBackend(t *testing.T) {
	c := &Container{Config: testConfig()}
	_, err := c.UserRepository()
	assert.ErrorIs(t, err, errNoBackend)
	_, err = c.MedicamentoRepository("1")
	assert.ErrorIs(t, err, errNoBackend)
}

func TestNewRemoteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = config.BackendRemote
	c, err := New(context.Background(), cfg, quiet())
	require.NoError(t, err)
	defer c.Close()
	c.Identity.HashCost = 4
	require.NotNil(t, c.Profiles)
	assert.Nil(t, c.Pool)

	ctx := session.NewContext(context.Background(), session.NewHolder(nil))
	users, err := c.UserUseCases()
	require.NoError(t, err)
	u, err := users.Register.Execute(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name.Value())

	p, err := c.Profiles.SelectByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ana", p.Name)

	sess, err := c.Sessions.Issue(ctx, session.FromContext(ctx).Get())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)

	assert.ErrorIs(t, users.Delete.Execute(ctx, u.ID), errs.ErrNotSupported)

	meds, err := c.MedicamentoUseCases(u.ID)
	require.NoError(t, err)
	require.NoError(t, meds.Adicionar.Execute(ctx, entity.Medicamento{ID: "m1", Nome: "Dipirona"}))
	list, err := meds.Listar.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
