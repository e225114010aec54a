// Package tasks defines the background task types processed by the
// worker binary.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background tasks.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Mailer delivers transactional email over SMTP. A zero-value Mailer
// logs instead of sending, which keeps local development working
// without an SMTP server.
type Mailer struct {
	Addr   string
	From   string
	Logger *slog.Logger
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (m *Mailer) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if m.Addr == "" {
		if m.Logger != nil {
			m.Logger.Info("email delivery skipped, no SMTP configured",
				slog.String("to", payload.To), slog.String("subject", payload.Subject))
		}
		return nil
	}
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + payload.To,
		"Subject: " + payload.Subject,
		"",
		payload.Body,
	}, "\r\n")
	if err := smtp.SendMail(m.Addr, nil, m.From, []string{payload.To}, []byte(msg)); err != nil {
		return fmt.Errorf("tasks: send email: %w", err)
	}
	return nil
}
