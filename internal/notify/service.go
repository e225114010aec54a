package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/jobs"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/users"
	"github.com/jobport/jobport/tasks"
)

// EmailEnqueuer queues transactional emails. Satisfied by the tasks
// client; nil disables email delivery.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload tasks.SendEmailPayload) (*asynq.TaskInfo, error)
}

// RecipientDirectory resolves notification recipients. Satisfied by the
// users repository.
type RecipientDirectory interface {
	FindByID(ctx context.Context, id int64) (users.User, error)
}

// Service creates and reads notifications.
type Service struct {
	repo      Repository
	emails    EmailEnqueuer
	directory RecipientDirectory
	logger    *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, emails EmailEnqueuer, directory RecipientDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, emails: emails, directory: directory, logger: logger}
}

// JobRejected notifies the posting recruiter that a listing was turned
// down. The in-app notification is the source of truth; the email is
// best effort.
func (s *Service) JobRejected(ctx context.Context, job jobs.Job) error {
	message := fmt.Sprintf("Your job listing %q was rejected by an administrator.", job.Title)
	if _, err := s.repo.Create(ctx, Notification{
		UserID:  job.RecruiterID,
		Type:    TypeJobRejected,
		Message: message,
	}); err != nil {
		return err
	}

	if s.emails == nil || s.directory == nil {
		return nil
	}
	recruiter, err := s.directory.FindByID(ctx, job.RecruiterID)
	if err != nil {
		s.logger.Warn("resolve notification recipient", slog.Any("error", err), slog.Int64("user", job.RecruiterID))
		return nil
	}
	if _, err := s.emails.EnqueueSendEmail(ctx, tasks.SendEmailPayload{
		To:      recruiter.Email,
		Subject: "Your job listing was rejected",
		Body:    message,
	}); err != nil {
		s.logger.Warn("enqueue rejection email", slog.Any("error", err), slog.Int64("job", job.ID))
	}
	return nil
}

// ListMine returns the acting user's notifications, newest first.
func (s *Service) ListMine(ctx context.Context, actor *authz.Principal) ([]Notification, error) {
	if err := authz.Require(actor,
		authz.RoleJobseeker, authz.RoleRecruiter, authz.RoleAdmin, authz.RoleSuperadmin); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.ID)
}

// MarkRead flags one of the acting user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, actor *authz.Principal, id int64) error {
	if err := authz.Require(actor,
		authz.RoleJobseeker, authz.RoleRecruiter, authz.RoleAdmin, authz.RoleSuperadmin); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id, actor.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: notification not found", httpx.ErrNotFound)
		}
		return err
	}
	return nil
}
