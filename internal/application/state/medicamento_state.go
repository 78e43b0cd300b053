package state

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

// LowSupplyFunc is invoked after a dose leaves a medicamento at or below
// the configured threshold.
type LowSupplyFunc func(ctx context.Context, m entity.Medicamento)

// MedicamentoState holds the signed-in user's list. Every mutation is
// followed by a full refetch that replaces the snapshot.
type MedicamentoState struct {
	mu    sync.Mutex
	items []entity.Medicamento

	userID      string
	uc          usecase.MedicamentoUseCases
	logger      *logrus.Logger
	newID       func() string
	threshold   float64
	onLowSupply LowSupplyFunc
}

type MedicamentoOption func(*MedicamentoState)

func WithMedicamentoLogger(l *logrus.Logger) MedicamentoOption {
	return func(s *MedicamentoState) { s.logger = l }
}

func WithIDGenerator(fn func() string) MedicamentoOption {
	return func(s *MedicamentoState) { s.newID = fn }
}

// WithLowSupply registers fn for doses that leave at most threshold units.
func WithLowSupply(threshold float64, fn LowSupplyFunc) MedicamentoOption {
	return func(s *MedicamentoState) {
		s.threshold = entity.CoerceQuantity(threshold)
		s.onLowSupply = fn
	}
}

// NewMedicamentoState binds the state to userID. An empty userID yields a
// state whose operations all fail with errs.Unauthenticated.
func NewMedicamentoState(userID string, uc usecase.MedicamentoUseCases, opts ...MedicamentoOption) *MedicamentoState {
	s := &MedicamentoState{userID: userID, uc: uc, newID: uuid.NewString, items: []entity.Medicamento{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MedicamentoState) requireUser(op string) error {
	if strings.TrimSpace(s.userID) == "" {
		return errs.New(errs.Unauthenticated, op, "no authenticated user")
	}
	return nil
}

// Snapshot returns a copy of the last loaded list.
func (s *MedicamentoState) Snapshot() []entity.Medicamento {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Medicamento, len(s.items))
	copy(out, s.items)
	return out
}

// Load fetches the list and replaces the snapshot.
func (s *MedicamentoState) Load(ctx context.Context) ([]entity.Medicamento, error) {
	if err := s.requireUser("state.Load"); err != nil {
		return nil, err
	}
	return s.refetch(ctx)
}

func (s *MedicamentoState) refetch(ctx context.Context) ([]entity.Medicamento, error) {
	list, err := s.uc.Listar.Execute(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("user_id", s.userID).Warn("refetch medicamentos failed")
		}
		return nil, err
	}
	s.mu.Lock()
	s.items = list
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// Adicionar saves m for the bound user, generating an id when m has none.
func (s *MedicamentoState) Adicionar(ctx context.Context, m entity.Medicamento) ([]entity.Medicamento, error) {
	if err := s.requireUser("state.Adicionar"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.ID) == "" {
		m.ID = s.newID()
	}
	m.UsuarioID = s.userID
	if err := s.uc.Adicionar.Execute(ctx, m); err != nil {
		return nil, err
	}
	return s.refetch(ctx)
}

func (s *MedicamentoState) Editar(ctx context.Context, m entity.Medicamento) ([]entity.Medicamento, error) {
	if err := s.requireUser("state.Editar"); err != nil {
		return nil, err
	}
	m.UsuarioID = s.userID
	if err := s.uc.Editar.Execute(ctx, m); err != nil {
		return nil, err
	}
	return s.refetch(ctx)
}

func (s *MedicamentoState) Excluir(ctx context.Context, id string) ([]entity.Medicamento, error) {
	if err := s.requireUser("state.Excluir"); err != nil {
		return nil, err
	}
	if err := s.uc.Excluir.Execute(ctx, id); err != nil {
		return nil, err
	}
	return s.refetch(ctx)
}

// RegistrarDose consumes one unit, capped at the total when one is set.
func (s *MedicamentoState) RegistrarDose(ctx context.Context, id string) ([]entity.Medicamento, error) {
	const op = "state.RegistrarDose"
	if err := s.requireUser(op); err != nil {
		return nil, err
	}
	m, err := s.uc.Obter.Execute(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.New(errs.NotFound, op, "medicamento not found")
	}
	next := m.QuantidadeConsumida + 1
	if m.QuantidadeTotal > 0 && next > m.QuantidadeTotal {
		next = m.QuantidadeTotal
	}
	m.QuantidadeConsumida = next
	if err := s.uc.Editar.Execute(ctx, *m); err != nil {
		return nil, err
	}
	list, err := s.refetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.onLowSupply != nil && m.QuantidadeTotal > 0 && m.Restante() <= s.threshold {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"medicamento_id": m.ID, "restante": m.Restante()}).Info("low supply")
		}
		s.onLowSupply(ctx, *m)
	}
	return list, nil
}
