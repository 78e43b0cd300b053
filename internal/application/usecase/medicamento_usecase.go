package usecase

import (
	"context"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

type AdicionarMedicamento struct {
	repo repository.MedicamentoRepository
}

func NewAdicionarMedicamento(repo repository.MedicamentoRepository) *AdicionarMedicamento {
	return &AdicionarMedicamento{repo: repo}
}

func (uc *AdicionarMedicamento) Execute(ctx context.Context, m entity.Medicamento) error {
	return uc.repo.Save(ctx, m)
}

type EditarMedicamento struct {
	repo repository.MedicamentoRepository
}

func NewEditarMedicamento(repo repository.MedicamentoRepository) *EditarMedicamento {
	return &EditarMedicamento{repo: repo}
}

func (uc *EditarMedicamento) Execute(ctx context.Context, m entity.Medicamento) error {
	return uc.repo.Update(ctx, m)
}

type ExcluirMedicamento struct {
	repo repository.MedicamentoRepository
}

func NewExcluirMedicamento(repo repository.MedicamentoRepository) *ExcluirMedicamento {
	return &ExcluirMedicamento{repo: repo}
}

func (uc *ExcluirMedicamento) Execute(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

type ListarMedicamentos struct {
	repo repository.MedicamentoRepository
}

func NewListarMedicamentos(repo repository.MedicamentoRepository) *ListarMedicamentos {
	return &ListarMedicamentos{repo: repo}
}

// Execute never returns a nil slice on success.
func (uc *ListarMedicamentos) Execute(ctx context.Context) ([]entity.Medicamento, error) {
	list, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Medicamento{}
	}
	return list, nil
}

type ObterMedicamentoPorID struct {
	repo repository.MedicamentoRepository
}

func NewObterMedicamentoPorID(repo repository.MedicamentoRepository) *ObterMedicamentoPorID {
	return &ObterMedicamentoPorID{repo: repo}
}

func (uc *ObterMedicamentoPorID) Execute(ctx context.Context, id string) (*entity.Medicamento, error) {
	return uc.repo.FindByID(ctx, id)
}

// BuscarMedicamentos runs a full-text query when the repository is backed
// by a search index, and yields an empty result otherwise.
type BuscarMedicamentos struct {
	repo repository.MedicamentoRepository
}

func NewBuscarMedicamentos(repo repository.MedicamentoRepository) *BuscarMedicamentos {
	return &BuscarMedicamentos{repo: repo}
}

func (uc *BuscarMedicamentos) Execute(ctx context.Context, query string, size int) ([]entity.Medicamento, error) {
	s, ok := uc.repo.(repository.MedicamentoSearcher)
	if !ok {
		return []entity.Medicamento{}, nil
	}
	list, err := s.Search(ctx, query, repository.SearchSize(size))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Medicamento{}
	}
	return list, nil
}
