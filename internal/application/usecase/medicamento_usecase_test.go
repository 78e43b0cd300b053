package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/memory"
)

func TestMedicamentoLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Medicamentos("u1")

	require.NoError(t, NewAdicionarMedicamento(repo).Execute(ctx, entity.Medicamento{
		ID: "m1", Nome: "Dipirona", Dosagem: "500mg", Horario: "08:00", Frequencia: "8/8h", QuantidadeTotal: 20,
	}))

	list, err := NewListarMedicamentos(repo).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	m := list[0]
	m.QuantidadeConsumida = 5
	require.NoError(t, NewEditarMedicamento(repo).Execute(ctx, m))

	got, err := NewObterMedicamentoPorID(repo).Execute(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5.0, got.QuantidadeConsumida)

	require.NoError(t, NewExcluirMedicamento(repo).Execute(ctx, "m1"))
	list, err = NewListarMedicamentos(repo).Execute(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	assert.ErrorIs(t, NewExcluirMedicamento(repo).Execute(ctx, "m1"), errs.ErrNotFound)
	assert.ErrorIs(t, NewEditarMedicamento(repo).Execute(ctx, m), errs.ErrNotFound)
}

func TestAdicionarRejectsBlankID(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Medicamentos("u1")
	add := NewAdicionarMedicamento(repo)

	require.NoError(t, add.Execute(ctx, entity.Medicamento{ID: "a", Nome: "A"}))
	assert.ErrorIs(t, add.Execute(ctx, entity.Medicamento{Nome: "B"}), errs.ErrInvalidMedicamento)
	assert.ErrorIs(t, add.Execute(ctx, entity.Medicamento{ID: "  ", Nome: "C"}), errs.ErrInvalidMedicamento)

	list, err := NewListarMedicamentos(repo).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Nome)
}

func TestBuscarWithoutIndexIsEmpty(t *testing.T) {
	repo := memory.New().Medicamentos("u1")
	require.NoError(t, repo.Save(context.Background(), entity.Medicamento{ID: "m1", Nome: "Dipirona"}))

	got, err := NewBuscarMedicamentos(repo).Execute(context.Background(), "dipirona", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type searchingRepo struct {
	*memory.MedicamentoRepository
	query string
	size  int
}

func (r *searchingRepo) Search(ctx context.Context, query string, size int) ([]entity.Medicamento, error) {
	r.query, r.size = query, size
	return r.FindAll(ctx)
}

func TestBuscarDelegatesToSearcher(t *testing.T) {
	ctx := context.Background()
	repo := &searchingRepo{MedicamentoRepository: memory.New().Medicamentos("u1")}
	require.NoError(t, repo.Save(ctx, entity.Medicamento{ID: "m1", Nome: "Dipirona"}))

	got, err := NewBuscarMedicamentos(repo).Execute(ctx, "dip", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "dip", repo.query)
	assert.Equal(t, 20, repo.size)
}

func TestBuscarCapsSize(t *testing.T) {
	repo := &searchingRepo{MedicamentoRepository: memory.New().Medicamentos("u1")}

	_, err := NewBuscarMedicamentos(repo).Execute(context.Background(), "dip", 100)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.size)
}

func TestUploadFile(t *testing.T) {
	store := &fakeStorage{}
	uc := NewUploadFile(store)
	uc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	out, err := uc.Execute(context.Background(), UploadFileInput{
		UserID:      "u1",
		Folder:      "/medicamentos/",
		FileName:    "Foto.PNG",
		ContentType: "image/png",
		Body:        bytes.NewBufferString("img"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1/medicamentos/1700000000123.png", out.Path)
	assert.Equal(t, "https://files.test/u1/medicamentos/1700000000123.png", out.URL)
	assert.Equal(t, []string{"image/png"}, store.types)
	assert.Equal(t, "img", string(store.data[0]))
}

func TestUploadFileRequiresUserAndBody(t *testing.T) {
	uc := NewUploadFile(&fakeStorage{})

	_, err := uc.Execute(context.Background(), UploadFileInput{Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = uc.Execute(context.Background(), UploadFileInput{UserID: "u1"})
	assert.Error(t, err)
}

func TestUploadFileStorageError(t *testing.T) {
	boom := errors.New("bucket unavailable")
	uc := NewUploadFile(&fakeStorage{err: boom})

	_, err := uc.Execute(context.Background(), UploadFileInput{UserID: "u1", FileName: "a.jpg", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, boom)
}
