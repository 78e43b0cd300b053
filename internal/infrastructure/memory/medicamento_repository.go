package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

// MedicamentoRepository is an owner-scoped view over the Store.
type MedicamentoRepository struct {
	store  *Store
	userID string
}

var _ repository.MedicamentoRepository = (*MedicamentoRepository)(nil)

func (s *Store) medicamentoIndex(id string) int {
	for i, r := range s.medicamentos {
		if r.m.ID == id {
			return i
		}
	}
	return -1
}

// Save inserts m for the owner, or replaces the owner's record with the same id.
func (r *MedicamentoRepository) Save(ctx context.Context, m entity.Medicamento) error {
	if strings.TrimSpace(m.ID) == "" {
		return errs.New(errs.InvalidMedicamento, "memory.SaveMedicamento", "medicamento id is required")
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	m = m.Normalize()
	m.UsuarioID = r.userID
	now := s.now().UTC()

	if i := s.medicamentoIndex(m.ID); i >= 0 {
		cur := s.medicamentos[i]
		if cur.m.UsuarioID != r.userID {
			return errs.New(errs.Conflict, "memory.SaveMedicamento", "medicamento id already in use")
		}
		m.CreatedAt = cur.m.CreatedAt
		m.UpdatedAt = now
		s.medicamentos[i].m = m
		return nil
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.seqCounter++
	s.medicamentos = append(s.medicamentos, medicamentoRecord{m: m, seq: s.seqCounter})
	return nil
}

// FindByID returns the owner's record, or nil.
func (r *MedicamentoRepository) FindByID(ctx context.Context, id string) (*entity.Medicamento, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.medicamentoIndex(id)
	if i < 0 || s.medicamentos[i].m.UsuarioID != r.userID {
		return nil, nil
	}
	m := s.medicamentos[i].m
	return &m, nil
}

// FindAll lists the owner's records newest first.
func (r *MedicamentoRepository) FindAll(ctx context.Context) ([]entity.Medicamento, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]medicamentoRecord, 0, len(s.medicamentos))
	for _, rec := range s.medicamentos {
		if rec.m.UsuarioID == r.userID {
			recs = append(recs, rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.m.CreatedAt.Equal(b.m.CreatedAt) {
			return a.m.CreatedAt.After(b.m.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]entity.Medicamento, len(recs))
	for i, rec := range recs {
		out[i] = rec.m
	}
	return out, nil
}

// Update replaces an existing record; NotFound when the owner has no such id.
func (r *MedicamentoRepository) Update(ctx context.Context, m entity.Medicamento) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.medicamentoIndex(m.ID)
	if i < 0 || s.medicamentos[i].m.UsuarioID != r.userID {
		return errs.New(errs.NotFound, "memory.UpdateMedicamento", "medicamento not found")
	}
	m = m.Normalize()
	m.UsuarioID = r.userID
	m.CreatedAt = s.medicamentos[i].m.CreatedAt
	m.UpdatedAt = s.now().UTC()
	s.medicamentos[i].m = m
	return nil
}

// Delete removes the owner's record; NotFound when absent.
func (r *MedicamentoRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.medicamentoIndex(id)
	if i < 0 || s.medicamentos[i].m.UsuarioID != r.userID {
		return errs.New(errs.NotFound, "memory.DeleteMedicamento", "medicamento not found")
	}
	s.medicamentos = append(s.medicamentos[:i], s.medicamentos[i+1:]...)
	return nil
}
