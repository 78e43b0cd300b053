package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

const medicamentoColumns = `id, user_id, created_at, updated_at, nome, dosagem, horario, frequencia,
	quantidade_consumida, quantidade_total, doses_dia, cor, foto_uri`

// MedicamentoRepository stores one owner's medicamentos. Counters are kept
// as text and coerced back on read.
type MedicamentoRepository struct {
	db     DBTX
	userID string
	now    func() time.Time
}

var _ repository.MedicamentoRepository = (*MedicamentoRepository)(nil)

func NewMedicamentoRepository(db DBTX, userID string) *MedicamentoRepository {
	return &MedicamentoRepository{db: db, userID: userID, now: time.Now}
}

func failure(op, verb string, err error) error {
	return errs.Wrap(errs.Internal, "postgres."+op, "falha ao "+verb+" medicamento", err)
}

func scanMedicamento(row pgx.Row) (*entity.Medicamento, error) {
	var (
		m                 entity.Medicamento
		consumida, total  *string
		dosesDia, fotoURI *string
	)
	if err := row.Scan(&m.ID, &m.UsuarioID, &m.CreatedAt, &m.UpdatedAt, &m.Nome, &m.Dosagem,
		&m.Horario, &m.Frequencia, &consumida, &total, &dosesDia, &m.Cor, &fotoURI); err != nil {
		return nil, err
	}
	if consumida != nil {
		m.QuantidadeConsumida = entity.ParseQuantity(*consumida)
	}
	if total != nil {
		m.QuantidadeTotal = entity.ParseQuantity(*total)
	}
	if dosesDia != nil {
		m.DosesDia = *dosesDia
	}
	if fotoURI != nil {
		m.FotoURI = *fotoURI
	}
	n := m.Normalize()
	return &n, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Save upserts by id. A row with the same id owned by someone else is
// left untouched and reported as a conflict.
func (r *MedicamentoRepository) Save(ctx context.Context, m entity.Medicamento) error {
	if strings.TrimSpace(m.ID) == "" {
		return errs.New(errs.InvalidMedicamento, "postgres.Save", "medicamento id is required")
	}
	m = m.Normalize()
	now := r.now().UTC()
	created := m.CreatedAt
	if created.IsZero() {
		created = now
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO medicamentos (`+medicamentoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			nome = EXCLUDED.nome,
			dosagem = EXCLUDED.dosagem,
			horario = EXCLUDED.horario,
			frequencia = EXCLUDED.frequencia,
			quantidade_consumida = EXCLUDED.quantidade_consumida,
			quantidade_total = EXCLUDED.quantidade_total,
			doses_dia = EXCLUDED.doses_dia,
			cor = EXCLUDED.cor,
			foto_uri = EXCLUDED.foto_uri
		WHERE medicamentos.user_id = EXCLUDED.user_id
	`, m.ID, r.userID, created, now, m.Nome, m.Dosagem, m.Horario, m.Frequencia,
		entity.FormatQuantity(m.QuantidadeConsumida), entity.FormatQuantity(m.QuantidadeTotal),
		nullable(m.DosesDia), m.Cor, nullable(m.FotoURI))
	if err != nil {
		return failure("Save", "salvar", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.New(errs.Conflict, "postgres.Save", "medicamento id already in use")
	}
	return nil
}

func (r *MedicamentoRepository) FindByID(ctx context.Context, id string) (*entity.Medicamento, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+medicamentoColumns+`
		FROM medicamentos
		WHERE id = $1 AND user_id = $2
	`, id, r.userID)
	m, err := scanMedicamento(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, failure("FindByID", "buscar", err)
	}
	return m, nil
}

func (r *MedicamentoRepository) FindAll(ctx context.Context) ([]entity.Medicamento, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+medicamentoColumns+`
		FROM medicamentos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.userID)
	if err != nil {
		return nil, failure("FindAll", "listar", err)
	}
	defer rows.Close()

	out := make([]entity.Medicamento, 0)
	for rows.Next() {
		m, err := scanMedicamento(rows)
		if err != nil {
			return nil, failure("FindAll", "listar", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("FindAll", "listar", err)
	}
	return out, nil
}

func (r *MedicamentoRepository) Update(ctx context.Context, m entity.Medicamento) error {
	m = m.Normalize()
	tag, err := r.db.Exec(ctx, `
		UPDATE medicamentos SET
			updated_at = $3,
			nome = $4,
			dosagem = $5,
			horario = $6,
			frequencia = $7,
			quantidade_consumida = $8,
			quantidade_total = $9,
			doses_dia = $10,
			cor = $11,
			foto_uri = $12
		WHERE id = $1 AND user_id = $2
	`, m.ID, r.userID, r.now().UTC(), m.Nome, m.Dosagem, m.Horario, m.Frequencia,
		entity.FormatQuantity(m.QuantidadeConsumida), entity.FormatQuantity(m.QuantidadeTotal),
		nullable(m.DosesDia), m.Cor, nullable(m.FotoURI))
	if err != nil {
		return failure("Update", "atualizar", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.New(errs.NotFound, "postgres.Update", "medicamento not found")
	}
	return nil
}

func (r *MedicamentoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medicamentos WHERE id = $1 AND user_id = $2`, id, r.userID)
	if err != nil {
		return failure("Delete", "excluir", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.New(errs.NotFound, "postgres.Delete", "medicamento not found")
	}
	return nil
}
