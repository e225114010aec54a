package analytics

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jobport/jobport/internal/authz"
)

// Service coordinates report queries with the cache layer. Concurrent
// requests for the same report collapse into one database round trip.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Overview returns the platform summary. Admin or superadmin.
func (s *Service) Overview(ctx context.Context, actor *authz.Principal) (Overview, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Overview{}, err
	}
	key, err := s.cache.BuildKey(ctx, "analytics", "overview")
	if err != nil {
		return Overview{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var overview Overview
		err := s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
			return s.loadOverview(ctx)
		})
		return overview, err
	})
	if err != nil {
		return Overview{}, err
	}
	return result.(Overview), nil
}

func (s *Service) loadOverview(ctx context.Context) (Overview, error) {
	var overview Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.TotalUsers, err = s.repo.CountUsers(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		overview.ActiveUsers, err = s.repo.CountUsers(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		overview.TotalJobs, err = s.repo.CountJobs(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		overview.ActiveJobs, err = s.repo.CountJobs(ctx, "active")
		return err
	})
	g.Go(func() (err error) {
		overview.TotalApplications, err = s.repo.CountApplications(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.RecentActions, err = s.repo.RecentAdminActions(ctx, time.Now().AddDate(0, 0, -7))
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// Users returns account growth over the trailing window. Admin or
// superadmin.
func (s *Service) Users(ctx context.Context, actor *authz.Principal, days int) (UsersReport, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return UsersReport{}, err
	}
	days = clampDays(days)
	key, err := s.cache.BuildKey(ctx, "analytics", "users", strconv.Itoa(days))
	if err != nil {
		return UsersReport{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var report UsersReport
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
			since := time.Now().AddDate(0, 0, -days)
			var report UsersReport
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				report.RegistrationsByDay, err = s.repo.UsersByDay(ctx, since)
				return err
			})
			g.Go(func() (err error) {
				report.RoleDistribution, err = s.repo.RoleDistribution(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return report, nil
		})
		return report, err
	})
	if err != nil {
		return UsersReport{}, err
	}
	return result.(UsersReport), nil
}

// Jobs returns listing volume and moderation state. Admin or superadmin.
func (s *Service) Jobs(ctx context.Context, actor *authz.Principal, days int) (JobsReport, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return JobsReport{}, err
	}
	days = clampDays(days)
	key, err := s.cache.BuildKey(ctx, "analytics", "jobs", strconv.Itoa(days))
	if err != nil {
		return JobsReport{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var report JobsReport
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
			since := time.Now().AddDate(0, 0, -days)
			var report JobsReport
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				report.PostedByDay, err = s.repo.JobsByDay(ctx, since)
				return err
			})
			g.Go(func() (err error) {
				report.StatusDistribution, err = s.repo.JobStatusDistribution(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return report, nil
		})
		return report, err
	})
	if err != nil {
		return JobsReport{}, err
	}
	return result.(JobsReport), nil
}

// Applications returns application volume. Admin or superadmin.
func (s *Service) Applications(ctx context.Context, actor *authz.Principal, days int) (ApplicationsReport, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return ApplicationsReport{}, err
	}
	days = clampDays(days)
	key, err := s.cache.BuildKey(ctx, "analytics", "applications", strconv.Itoa(days))
	if err != nil {
		return ApplicationsReport{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var report ApplicationsReport
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
			since := time.Now().AddDate(0, 0, -days)
			byDay, err := s.repo.ApplicationsByDay(ctx, since)
			if err != nil {
				return nil, err
			}
			return ApplicationsReport{SubmittedByDay: byDay}, nil
		})
		return report, err
	})
	if err != nil {
		return ApplicationsReport{}, err
	}
	return result.(ApplicationsReport), nil
}

// Invalidate bumps the cache version after bulk data changes.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func clampDays(days int) int {
	if days <= 0 {
		return 30
	}
	if days > 365 {
		return 365
	}
	return days
}
