// Package notify turns domain events into queued email jobs.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/internal/application/state"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/pkg/mailer"
	"github.com/oksasatya/medication-reminder/pkg/mailer/templates"
)

const publishTimeout = 3 * time.Second

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier publishes email jobs. Failures are logged and never surface to
// the caller. A Notifier without a publisher does nothing.
type Notifier struct {
	pub    Publisher
	cfg    *config.Config
	logger *logrus.Logger
	now    func() time.Time
}

func New(pub Publisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{pub: pub, cfg: cfg, logger: logger, now: time.Now}
}

// Enabled reports whether jobs are actually published.
func (n *Notifier) Enabled() bool {
	return n != nil && n.pub != nil && n.cfg != nil && n.cfg.MailSendEnabled
}

// Welcome queues the account-created email.
func (n *Notifier) Welcome(ctx context.Context, name, email string) {
	if !n.Enabled() || strings.TrimSpace(email) == "" {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       email,
		Template: templates.Welcome,
		Data:     templates.NewWelcomeData(n.cfg, name, email, templates.WithTime(n.now())),
	})
}

// LowSupply returns the hook MedicamentoState calls when a dose leaves the
// supply at or below the threshold.
func (n *Notifier) LowSupply(name, email string) state.LowSupplyFunc {
	return func(ctx context.Context, m entity.Medicamento) {
		if !n.Enabled() || strings.TrimSpace(email) == "" {
			return
		}
		n.publish(ctx, mailer.EmailJob{
			To:       email,
			Template: templates.LowSupply,
			Data: templates.NewLowSupplyData(n.cfg, name, email, m,
				templates.WithTime(n.now()),
				templates.WithThreshold(n.cfg.LowSupplyThreshold)),
		})
	}
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.pub.PublishJSON(c, job); err != nil && n.logger != nil {
		n.logger.WithFields(logrus.Fields{
			"template": job.Template,
			"to":       job.To,
			"error":    err.Error(),
		}).Warn("failed to enqueue email")
	}
}
