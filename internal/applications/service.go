package applications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/jobs"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

// JobFinder resolves listings for application checks. Satisfied by the
// jobs repository.
type JobFinder interface {
	FindByID(ctx context.Context, id int64) (jobs.Job, error)
}

// StatsInvalidator drops cached analytics after application data changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service implements application business rules.
type Service struct {
	repo  Repository
	jobs  JobFinder
	stats StatsInvalidator
}

// NewService builds a Service instance.
func NewService(repo Repository, jobFinder JobFinder, stats StatsInvalidator) *Service {
	return &Service{repo: repo, jobs: jobFinder, stats: stats}
}

// Apply files an application against an active listing. Jobseeker only;
// one application per listing per account.
func (s *Service) Apply(ctx context.Context, actor *authz.Principal, jobID int64, coverNote string) (Application, error) {
	if err := authz.Require(actor, authz.RoleJobseeker); err != nil {
		return Application{}, err
	}
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Application{}, fmt.Errorf("%w: job not found", httpx.ErrNotFound)
		}
		return Application{}, err
	}
	if job.Status != jobs.StatusActive {
		return Application{}, fmt.Errorf("%w: job is not open for applications", httpx.ErrValidation)
	}
	created, err := s.repo.Create(ctx, Application{
		JobID:     jobID,
		UserID:    actor.ID,
		CoverNote: coverNote,
		Status:    StatusSubmitted,
	})
	if err != nil {
		return Application{}, err
	}
	if s.stats != nil {
		// Best effort; reports catch up when the cache TTL expires.
		_ = s.stats.Invalidate(ctx)
	}
	return created, nil
}

// ListMine returns the acting jobseeker's applications, newest first.
func (s *Service) ListMine(ctx context.Context, actor *authz.Principal) ([]WithJob, error) {
	if err := authz.Require(actor, authz.RoleJobseeker); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.ID)
}

// ListForJob returns applications against one listing. Only the posting
// recruiter and admins may review applicants.
func (s *Service) ListForJob(ctx context.Context, actor *authz.Principal, jobID int64) (jobs.Job, []WithApplicant, error) {
	if err := authz.Require(actor, authz.RoleRecruiter, authz.RoleAdmin, authz.RoleSuperadmin); err != nil {
		return jobs.Job{}, nil, err
	}
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return jobs.Job{}, nil, fmt.Errorf("%w: job not found", httpx.ErrNotFound)
		}
		return jobs.Job{}, nil, err
	}
	if job.RecruiterID != actor.ID && !actor.IsAdmin() {
		return jobs.Job{}, nil, fmt.Errorf("%w: not your listing", httpx.ErrForbidden)
	}
	list, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return jobs.Job{}, nil, err
	}
	return job, list, nil
}

// HasApplied reports whether the user already applied to the listing.
func (s *Service) HasApplied(ctx context.Context, jobID, userID int64) (bool, error) {
	return s.repo.HasApplied(ctx, jobID, userID)
}
