package entity

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultCor is the display color assigned when none is stored.
const DefaultCor = "#ffffffff"

// Medicamento is a scheduled-medication record owned by one user.
// QuantidadeConsumida and QuantidadeTotal must go through CoerceQuantity
// before being persisted; every repository applies it on write and read.
type Medicamento struct {
	ID                  string
	UsuarioID           string
	Nome                string
	Dosagem             string
	Horario             string // first dose, "HH:mm"
	Frequencia          string
	QuantidadeConsumida float64
	QuantidadeTotal     float64
	DosesDia            string
	Cor                 string
	FotoURI             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Normalize applies the counter coercion and the color default.
func (m Medicamento) Normalize() Medicamento {
	m.QuantidadeConsumida = CoerceQuantity(m.QuantidadeConsumida)
	m.QuantidadeTotal = CoerceQuantity(m.QuantidadeTotal)
	if strings.TrimSpace(m.Cor) == "" {
		m.Cor = DefaultCor
	}
	return m
}

// Restante is the number of units left in the current supply.
func (m Medicamento) Restante() float64 {
	left := CoerceQuantity(m.QuantidadeTotal) - CoerceQuantity(m.QuantidadeConsumida)
	if left < 0 {
		return 0
	}
	return left
}

// CoerceQuantity maps NaN, infinities and negatives to 0.
func CoerceQuantity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseQuantity reads a counter stored as text. Missing or malformed
// values read back as 0.
func ParseQuantity(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return CoerceQuantity(v)
}

// FormatQuantity renders a counter for text storage.
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(CoerceQuantity(v), 'f', -1, 64)
}
