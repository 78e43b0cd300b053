package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

// A blank id is rejected before any statement runs, so no connection is needed.
func TestMedicamentoRepository_SaveRequiresID(t *testing.T) {
	repo := NewMedicamentoRepository(nil, "u1")

	assert.ErrorIs(t, repo.Save(context.Background(), entity.Medicamento{Nome: "A"}), errs.ErrInvalidMedicamento)
	assert.ErrorIs(t, repo.Save(context.Background(), entity.Medicamento{ID: " ", Nome: "B"}), errs.ErrInvalidMedicamento)
}
