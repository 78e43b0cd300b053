package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type medicamentoPayload struct {
	Nome    string   `json:"nome" validate:"required"`
	Horario string   `json:"horario" validate:"required,horario"`
	Cor     string   `json:"cor" validate:"omitempty,hexcor"`
	Total   *float64 `json:"quantidadeTotal" validate:"omitempty,quantidade"`
	Senha   string   `json:"senha" validate:"omitempty,pwd"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator()
	neg := -1.0

	err := v.Struct(medicamentoPayload{Horario: "24:00", Cor: "red", Total: &neg, Senha: "123"})
	details := ToDetails(err)

	assert.Equal(t, "is required", details["nome"])
	assert.Equal(t, "must be a time in HH:mm format", details["horario"])
	assert.Equal(t, "must be a color like #RRGGBB or #RRGGBBAA", details["cor"])
	assert.Equal(t, "must not be negative", details["quantidadeTotal"])
	assert.Equal(t, "min length 6", details["senha"])
}

func TestValidPayloadPasses(t *testing.T) {
	v := newValidator()
	total := 30.0
	assert.NoError(t, v.Struct(medicamentoPayload{Nome: "Dipirona", Horario: "08:30", Cor: "#ff0000ff", Total: &total}))
	assert.NoError(t, v.Struct(medicamentoPayload{Nome: "Dipirona", Horario: "23:59", Cor: "#00ff00"}))
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst struct {
		N int `json:"n"`
	}
	err := json.Unmarshal([]byte(`{"n":`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"n":"x"}`), &dst)
	assert.Equal(t, map[string]string{"n": "must be a int"}, ToDetails(err))

	assert.Nil(t, ToDetails(nil))
}
