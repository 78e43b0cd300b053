package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/identity"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/remote"
)

// testPool is nil unless TEST_DATABASE_URL points at a disposable database.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		if err := RunMigrations(dsn, "../../../db/migrations", nil); err != nil {
			fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
			os.Exit(1)
		}
		pool, err := NewPool(context.Background(), dsn, PoolOptions{MaxConns: 4})
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
			os.Exit(1)
		}
		testPool = pool
	}
	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	for _, table := range []string{"medicamentos", "usuarios", "auth_users"} {
		_, err := testPool.Exec(context.Background(), fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err, "clear %s", table)
	}
	return testPool
}

func TestMedicamentoRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicamentoRepository(requireDB(t), "u1")

	m := entity.Medicamento{ID: "m1", Nome: "Dipirona", Dosagem: "500mg", Horario: "08:00", Frequencia: "8/8h", QuantidadeTotal: 20}
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UsuarioID)
	assert.Equal(t, 20.0, got.QuantidadeTotal)
	assert.Equal(t, entity.DefaultCor, got.Cor)

	got.QuantidadeConsumida = 2.5
	require.NoError(t, repo.Update(ctx, *got))
	got, err = repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.QuantidadeConsumida)

	require.NoError(t, repo.Delete(ctx, "m1"))
	assert.ErrorIs(t, repo.Delete(ctx, "m1"), errs.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, m), errs.ErrNotFound)
}

func TestMedicamentoRepository_ScopingAndCorruptCounters(t *testing.T) {
	ctx := context.Background()
	db := requireDB(t)
	a, b := NewMedicamentoRepository(db, "a"), NewMedicamentoRepository(db, "b")

	require.NoError(t, a.Save(ctx, entity.Medicamento{ID: "1", Nome: "first"}))
	require.NoError(t, a.Save(ctx, entity.Medicamento{ID: "2", Nome: "second"}))
	require.NoError(t, b.Save(ctx, entity.Medicamento{ID: "3", Nome: "other"}))
	assert.ErrorIs(t, a.Save(ctx, entity.Medicamento{ID: "3", Nome: "steal"}), errs.ErrConflict)

	list, err := a.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)

	_, err = db.Exec(ctx, `UPDATE medicamentos SET quantidade_total = 'NaN', quantidade_consumida = 'abc' WHERE id = '1'`)
	require.NoError(t, err)
	got, err := a.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.QuantidadeTotal)
	assert.Equal(t, 0.0, got.QuantidadeConsumida)

	empty, err := NewMedicamentoRepository(db, "c").FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProfileStore(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore(requireDB(t))

	_, err := store.Insert(ctx, remote.Profile{ID: "u1", Name: "Ana"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, remote.Profile{ID: "u1", Name: "Ana"})
	pe, ok := err.(*identity.ProviderError)
	require.True(t, ok)
	assert.Equal(t, identity.CodeUniqueViolation, pe.Code)

	lat := -23.5
	p, err := store.Update(ctx, "u1", remote.ProfileUpdate{Latitude: &lat})
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	require.NotNil(t, p.Latitude)
	assert.Equal(t, lat, *p.Latitude)

	missing, err := store.Update(ctx, "nobody", remote.ProfileUpdate{Latitude: &lat})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountStore(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(requireDB(t))

	a, err := store.Create(ctx, identity.Account{ID: "8c2f4f0e-8b5e-4a8f-9a43-1f1f0f6c2a11", Email: "ana@x.com", PasswordHash: "h", Metadata: map[string]any{"name": "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "Ana", a.Metadata["name"])

	_, err = store.Create(ctx, identity.Account{ID: "0b0e1c7a-3c1f-4f61-a5f4-7c2a6a8f9d22", Email: "ana@x.com", PasswordHash: "h"})
	pe, ok := err.(*identity.ProviderError)
	require.True(t, ok)
	assert.Equal(t, identity.CodeUniqueViolation, pe.Code)

	got, err := store.FindByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)

	got.Metadata["latitude"] = 1.5
	updated, err := store.Update(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, 1.5, updated.Metadata["latitude"])

	none, err := store.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, none)
}
