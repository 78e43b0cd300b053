package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/medication-reminder/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota
	Drop            // nack without requeue
	Requeue         // nack with requeue
)

var ErrNoRecipient = errors.New("email job has no recipient")

// Prepare decodes a queued job and renders its template, if any.
func Prepare(body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("decode job: %w", err)
	}
	job.To = strings.TrimSpace(job.To)
	if job.To == "" {
		if v, ok := job.Data["RecipientEmail"].(string); ok {
			job.To = strings.TrimSpace(v)
		}
	}
	if job.To == "" {
		return job, ErrNoRecipient
	}
	if job.Template == "" {
		return job, nil
	}
	s, t, h, err := templates.Render(job.Template, job.Data)
	if err != nil {
		return job, fmt.Errorf("render %s: %w", job.Template, err)
	}
	if strings.TrimSpace(job.Subject) == "" {
		job.Subject = strings.TrimSpace(s)
	}
	job.Text, job.HTML = t, h
	return job, nil
}

// Handle processes one queued message. Malformed or unrenderable jobs are
// dropped; delivery failures are requeued.
func Handle(ctx context.Context, s Sender, body []byte) (Outcome, error) {
	job, err := Prepare(body)
	if err != nil {
		return Drop, err
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
		return Requeue, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}
