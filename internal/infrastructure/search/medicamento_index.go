// Package search mirrors medicamentos into Elasticsearch and answers
// full-text queries over a single owner's records.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

const indexTimeout = 3 * time.Second

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "usuario_id": {"type": "keyword"},
      "nome":       {"type": "text"},
      "dosagem":    {"type": "text"},
      "frequencia": {"type": "text"},
      "horario":    {"type": "keyword"},
      "cor":        {"type": "keyword"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

type medicamentoDoc struct {
	ID         string `json:"id"`
	UsuarioID  string `json:"usuario_id"`
	Nome       string `json:"nome"`
	Dosagem    string `json:"dosagem"`
	Horario    string `json:"horario"`
	Frequencia string `json:"frequencia"`
	Cor        string `json:"cor"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// IndexedMedicamentoRepository decorates a MedicamentoRepository. Writes go
// to the wrapped repository first; the index is updated best-effort and
// its failures are only logged.
type IndexedMedicamentoRepository struct {
	repository.MedicamentoRepository

	ES     *elasticsearch.Client
	Index  string
	UserID string
	Logger *logrus.Logger
}

var (
	_ repository.MedicamentoRepository = (*IndexedMedicamentoRepository)(nil)
	_ repository.MedicamentoSearcher   = (*IndexedMedicamentoRepository)(nil)
)

func NewIndexedMedicamentoRepository(inner repository.MedicamentoRepository, es *elasticsearch.Client, index, userID string, logger *logrus.Logger) *IndexedMedicamentoRepository {
	return &IndexedMedicamentoRepository{MedicamentoRepository: inner, ES: es, Index: index, UserID: userID, Logger: logger}
}

func (r *IndexedMedicamentoRepository) enabled() bool {
	return r.ES != nil && r.Index != ""
}

func (r *IndexedMedicamentoRepository) Save(ctx context.Context, m entity.Medicamento) error {
	if err := r.MedicamentoRepository.Save(ctx, m); err != nil {
		return err
	}
	r.reindex(ctx, m.ID)
	return nil
}

func (r *IndexedMedicamentoRepository) Update(ctx context.Context, m entity.Medicamento) error {
	if err := r.MedicamentoRepository.Update(ctx, m); err != nil {
		return err
	}
	r.reindex(ctx, m.ID)
	return nil
}

func (r *IndexedMedicamentoRepository) Delete(ctx context.Context, id string) error {
	if err := r.MedicamentoRepository.Delete(ctx, id); err != nil {
		return err
	}
	if !r.enabled() {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	req := esapi.DeleteRequest{Index: r.Index, DocumentID: id, Refresh: "false"}
	res, err := req.Do(c, r.ES)
	if err != nil {
		r.warn(err, id, "es delete failed")
		return nil
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 && r.Logger != nil {
		r.Logger.WithField("status", res.Status()).WithField("medicamento_id", id).Warn("es delete response error")
	}
	return nil
}

// reindex reads back the stored record so the document carries the
// repository's timestamps and coerced values.
func (r *IndexedMedicamentoRepository) reindex(ctx context.Context, id string) {
	if !r.enabled() {
		return
	}
	m, err := r.MedicamentoRepository.FindByID(ctx, id)
	if err != nil || m == nil {
		r.warn(err, id, "es reindex lookup failed")
		return
	}
	doc := medicamentoDoc{
		ID:         m.ID,
		UsuarioID:  m.UsuarioID,
		Nome:       m.Nome,
		Dosagem:    m.Dosagem,
		Horario:    m.Horario,
		Frequencia: m.Frequencia,
		Cor:        m.Cor,
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: r.Index, DocumentID: m.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	res, err := req.Do(c, r.ES)
	if err != nil {
		r.warn(err, id, "es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && r.Logger != nil {
		r.Logger.WithField("status", res.Status()).WithField("medicamento_id", id).Warn("es index response error")
	}
}

// Search runs a multi_match over nome, dosagem and frequencia restricted to
// the bound owner. Hits are re-read from the wrapped repository so stale
// documents are dropped.
func (r *IndexedMedicamentoRepository) Search(ctx context.Context, q string, size int) ([]entity.Medicamento, error) {
	if !r.enabled() || strings.TrimSpace(q) == "" {
		return []entity.Medicamento{}, nil
	}
	size = repository.SearchSize(size)
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"nome^2", "dosagem", "frequencia"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"usuario_id": r.UserID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	res, err := r.ES.Search(r.ES.Search.WithContext(c), r.ES.Search.WithIndex(r.Index), r.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode es search: %w", err)
	}

	out := make([]entity.Medicamento, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		m, err := r.MedicamentoRepository.FindByID(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *IndexedMedicamentoRepository) warn(err error, id, msg string) {
	if r.Logger == nil {
		return
	}
	entry := r.Logger.WithField("medicamento_id", id)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
}

// EnsureIndex creates the index with its mapping when it does not exist.
func EnsureIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	if es == nil || index == "" {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	exists, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}
	res, err := es.Indices.Create(index, es.Indices.Create.WithContext(c), es.Indices.Create.WithBody(strings.NewReader(indexMapping)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
