package templates

import (
	"time"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02/01/2006 15:04")
	}
}

func WithThreshold(v float64) Option { return func(d *EmailData) { d.Threshold = v } }

// NewBaseEmailData fills the fields shared by every template from cfg, then
// applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, opts...))
}

func NewLowSupplyData(cfg *config.Config, name, email string, m entity.Medicamento, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, LowSupply, name, email, opts...)
	d.Medicamento = m.Nome
	d.Dosagem = m.Dosagem
	d.Restante = m.Restante()
	d.Total = m.QuantidadeTotal
	return ToMap(d)
}
