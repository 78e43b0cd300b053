package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/memory"
)

func newAuth(t *testing.T) (*AuthState, *memory.Store) {
	t.Helper()
	store := memory.New(memory.WithHashCost(bcrypt.MinCost))
	return NewAuthState(usecase.NewUserUseCases(store.Users()), WithLocationSyncTimeout(time.Second)), store
}

func TestRegisterThenLoginScenario(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	res := auth.Register(ctx, "Ana", "ana@x.com", "123456")
	require.True(t, res.Success)
	assert.Nil(t, auth.Current())

	ok, err := auth.Login(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)
	require.True(t, ok)
	cur := auth.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "Ana", cur.Name)
	assert.Equal(t, "ana@x.com", cur.Email)
}

func TestDuplicateRegistrationMessage(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	require.True(t, auth.Register(ctx, "Ana", "ana@x.com", "123456").Success)
	res := auth.Register(ctx, "Ana", "ana@x.com", "123456")
	assert.False(t, res.Success)
	assert.Equal(t, MsgEmailAlreadyRegistered, res.Error)
}

func TestRegistrationMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"typed conflict", errs.New(errs.Conflict, "op", "x"), MsgEmailAlreadyRegistered},
		{"legacy message", errors.New("User already registered"), MsgEmailAlreadyRegistered},
		{"already exists", errors.New("record already exists"), MsgEmailAlreadyRegistered},
		{"typed other", errs.New(errs.InvalidName, "valueobject.NewName", "invalid name"), "invalid name"},
		{"plain", errors.New("boom"), "boom"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrationMessage(tt.err))
		})
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	require.True(t, auth.Register(ctx, "Ana", "ana@x.com", "123456").Success)

	ok, err := auth.Login(ctx, "ana@x.com", "nope123", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, auth.IsAuthenticated())

	ok, err = auth.Login(ctx, "not-an-email", "123456", nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, errs.ErrInvalidEmail)
}

func TestLoginStartsLocationSync(t *testing.T) {
	ctx := context.Background()
	auth, store := newAuth(t)
	require.True(t, auth.Register(ctx, "Ana", "ana@x.com", "123456").Success)

	ok, err := auth.Login(ctx, "ana@x.com", "123456", &Coordinates{Latitude: -23.550519912345, Longitude: -46.633309887654})
	require.NoError(t, err)
	require.True(t, ok)
	auth.Wait()

	u, err := store.Users().FindByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	require.NotNil(t, u.Latitude)
	assert.Equal(t, -23.5505199, *u.Latitude)
	assert.Equal(t, -46.6333099, *u.Longitude)

	cur := auth.Current()
	require.NotNil(t, cur.Latitude)
	assert.Equal(t, -23.5505199, *cur.Latitude)
}

func TestSyncLocationReportsErrorWithoutFailing(t *testing.T) {
	auth, _ := newAuth(t)
	errCh := auth.SyncLocation(context.Background(), "404", 1, 2)

	err := <-errCh
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, open := <-errCh
	assert.False(t, open)
}

func TestLogoutAndUpdateProfile(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	ok, err := auth.UpdateProfile(ctx, repository.UpdateUserInput{})
	require.NoError(t, err)
	assert.False(t, ok)

	require.True(t, auth.Register(ctx, "Ana", "ana@x.com", "123456").Success)
	ok, err = auth.Login(ctx, "ana@x.com", "123456", nil)
	require.NoError(t, err)
	require.True(t, ok)

	name := "Ana Souza"
	ok, err = auth.UpdateProfile(ctx, repository.UpdateUserInput{Name: &name})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana Souza", auth.Current().Name)

	require.NoError(t, auth.Logout(ctx))
	assert.Nil(t, auth.Current())

	v, err := auth.Refresh(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRoundCoordinate(t *testing.T) {
	assert.Equal(t, 1.2345679, RoundCoordinate(1.23456789))
	assert.Equal(t, -0.0000001, RoundCoordinate(-0.00000012))
}

func newMedState(userID string, opts ...MedicamentoOption) *MedicamentoState {
	store := memory.New()
	return NewMedicamentoState(userID, usecase.NewMedicamentoUseCases(store.Medicamentos(userID)), opts...)
}

func TestMedicamentoStateRequiresUser(t *testing.T) {
	ctx := context.Background()
	s := NewMedicamentoState("", usecase.MedicamentoUseCases{})

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = s.Adicionar(ctx, entity.Medicamento{Nome: "x"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = s.Editar(ctx, entity.Medicamento{ID: "x"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = s.Excluir(ctx, "x")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	_, err = s.RegistrarDose(ctx, "x")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestMedicamentoStateLifecycle(t *testing.T) {
	ctx := context.Background()
	ids := []string{"a", "b"}
	s := newMedState("u1", WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	list, err := s.Adicionar(ctx, entity.Medicamento{Nome: "Dipirona", QuantidadeTotal: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "u1", list[0].UsuarioID)

	list, err = s.Adicionar(ctx, entity.Medicamento{Nome: "Paracetamol"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	edited := list[1]
	edited.Dosagem = "1g"
	list, err = s.Editar(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, "1g", list[1].Dosagem)

	list, err = s.Excluir(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, list, s.Snapshot())

	_, err = s.Excluir(ctx, "b")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newMedState("u1")
	_, err := s.Adicionar(ctx, entity.Medicamento{ID: "m1", Nome: "Dipirona"})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap[0].Nome = "changed"
	assert.Equal(t, "Dipirona", s.Snapshot()[0].Nome)
}

func TestRegistrarDoseCapsAndNotifies(t *testing.T) {
	ctx := context.Background()
	var low []entity.Medicamento
	s := newMedState("u1", WithLowSupply(1, func(_ context.Context, m entity.Medicamento) {
		low = append(low, m)
	}))
	_, err := s.Adicionar(ctx, entity.Medicamento{ID: "m1", Nome: "Dipirona", QuantidadeConsumida: 1, QuantidadeTotal: 3})
	require.NoError(t, err)

	list, err := s.RegistrarDose(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, list[0].QuantidadeConsumida)
	require.Len(t, low, 1)

	list, err = s.RegistrarDose(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, list[0].QuantidadeConsumida)

	list, err = s.RegistrarDose(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, list[0].QuantidadeConsumida)
	assert.Len(t, low, 3)

	_, err = s.RegistrarDose(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
