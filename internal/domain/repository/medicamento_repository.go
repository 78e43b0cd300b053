package repository

import (
	"context"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
)

// MedicamentoRepository is bound to a single owner when constructed; every
// method is scoped to that owner.
type MedicamentoRepository interface {
	Save(ctx context.Context, m entity.Medicamento) error
	FindByID(ctx context.Context, id string) (*entity.Medicamento, error)
	// FindAll returns the owner's records newest first, never nil.
	FindAll(ctx context.Context) ([]entity.Medicamento, error)
	// Update and Delete fail with errs.NotFound when the id is absent.
	Update(ctx context.Context, m entity.Medicamento) error
	Delete(ctx context.Context, id string) error
}

// Search result sizes.
const (
	DefaultSearchSize = 20
	MaxSearchSize     = 50
)

// SearchSize applies the default to non-positive sizes and caps the rest.
func SearchSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSearchSize
	case size > MaxSearchSize:
		return MaxSearchSize
	}
	return size
}

// MedicamentoSearcher is implemented by repositories backed by a search index.
// size is expected to be already passed through SearchSize.
type MedicamentoSearcher interface {
	Search(ctx context.Context, query string, size int) ([]entity.Medicamento, error)
}
