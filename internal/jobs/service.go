package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

// Notifier delivers out-of-band messages to recruiters when moderation
// decisions land on their listings.
type Notifier interface {
	JobRejected(ctx context.Context, job Job) error
}

// StatsInvalidator drops cached analytics after listing data changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service implements job listing business rules.
type Service struct {
	repo     Repository
	notifier Notifier
	stats    StatsInvalidator
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, notifier Notifier, stats StatsInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, stats: stats, logger: logger}
}

// Browse lists active jobs for jobseekers and recruiters. The status
// filter is forced server-side so pending and rejected listings never
// leak through query parameters.
func (s *Service) Browse(ctx context.Context, actor *authz.Principal, filters Filters, page, limit int) ([]Job, shared.Pagination, error) {
	if err := authz.Require(actor, authz.RoleJobseeker, authz.RoleRecruiter, authz.RoleAdmin, authz.RoleSuperadmin); err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.Status = StatusActive
	return s.page(ctx, filters, page, limit)
}

// Get returns one listing. Non-active listings are only visible to the
// posting recruiter and admins; everyone else sees not found.
func (s *Service) Get(ctx context.Context, actor *authz.Principal, id int64) (Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Job{}, fmt.Errorf("%w: job not found", httpx.ErrNotFound)
		}
		return Job{}, err
	}
	if job.Status != StatusActive {
		if actor == nil || (job.RecruiterID != actor.ID && !actor.IsAdmin()) {
			return Job{}, fmt.Errorf("%w: job not found", httpx.ErrNotFound)
		}
	}
	return job, nil
}

// CreateInput carries the fields for a new listing.
type CreateInput struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Category    string `json:"category"`
	Description string `json:"description" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Slots       int    `json:"slots"`
}

// Create posts a new listing for the acting recruiter. Listings always
// enter the moderation queue as pending.
func (s *Service) Create(ctx context.Context, actor *authz.Principal, input CreateInput) (Job, error) {
	if err := authz.Require(actor, authz.RoleRecruiter); err != nil {
		return Job{}, err
	}
	if !ValidType(input.Type) {
		return Job{}, fmt.Errorf("%w: unknown job type %q", httpx.ErrValidation, input.Type)
	}
	slots := input.Slots
	if slots <= 0 {
		slots = 1
	}
	job, err := s.repo.Create(ctx, Job{
		Title:       input.Title,
		Company:     input.Company,
		Address:     input.Address,
		Type:        input.Type,
		Category:    input.Category,
		Description: input.Description,
		Email:       input.Email,
		Slots:       slots,
		Status:      StatusPending,
		RecruiterID: actor.ID,
	})
	if err != nil {
		return Job{}, err
	}
	s.bumpStats(ctx)
	return job, nil
}

// ListMine returns the acting recruiter's own listings, any status.
func (s *Service) ListMine(ctx context.Context, actor *authz.Principal) ([]Job, error) {
	if err := authz.Require(actor, authz.RoleRecruiter); err != nil {
		return nil, err
	}
	return s.repo.ListByRecruiter(ctx, actor.ID)
}

// AdminList returns listings for the moderation queue, filterable by
// any status. Admin or superadmin.
func (s *Service) AdminList(ctx context.Context, actor *authz.Principal, filters Filters, page, limit int) ([]Job, shared.Pagination, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, shared.Pagination{}, err
	}
	if filters.Status != "" && !ValidStatus(filters.Status) {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, filters.Status)
	}
	return s.page(ctx, filters, page, limit)
}

// ChangeStatus moves a listing through the moderation lifecycle. Admin
// or superadmin. A rejection notifies the posting recruiter after the
// status change commits. Moderation decisions leave no audit entry; the
// audit trail covers account, user and content mutations only.
func (s *Service) ChangeStatus(ctx context.Context, actor *authz.Principal, id int64, status string) (Job, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Job{}, err
	}
	if !ValidStatus(status) {
		return Job{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}

	var job Job
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		found, err := tx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: job not found", httpx.ErrNotFound)
			}
			return err
		}
		if err := tx.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		found.Status = status
		job = found
		return nil
	})
	if err != nil {
		return Job{}, err
	}
	s.bumpStats(ctx)

	if status == StatusRejected && s.notifier != nil {
		if err := s.notifier.JobRejected(ctx, job); err != nil {
			s.logger.Warn("notify rejected job", slog.Any("error", err), slog.Int64("job", job.ID))
		}
	}
	return job, nil
}

// Delete removes a listing and all applications against it in one
// transaction. Admin or superadmin.
func (s *Service) Delete(ctx context.Context, actor *authz.Principal, id int64) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	var removed int64
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		if _, err := tx.FindByID(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: job not found", httpx.ErrNotFound)
			}
			return err
		}
		n, err := tx.DeleteApplicationsByJob(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteJob(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("job deleted", slog.Int64("job", id), slog.Int64("applicationsRemoved", removed))
	s.bumpStats(ctx)
	return nil
}

// bumpStats invalidates cached analytics best-effort; on failure reports
// catch up when the cache TTL expires.
func (s *Service) bumpStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate analytics cache", slog.Any("error", err))
	}
}

func (s *Service) page(ctx context.Context, filters Filters, page, limit int) ([]Job, shared.Pagination, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	list, total, err := s.repo.List(ctx, filters, limit, (page-1)*limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, limit, total), nil
}
