package analytics

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
)

type stubAnalyticsRepo struct {
	countCalls atomic.Int64
}

func (r *stubAnalyticsRepo) CountUsers(ctx context.Context, activeOnly bool) (int, error) {
	r.countCalls.Add(1)
	if activeOnly {
		return 8, nil
	}
	return 10, nil
}

func (r *stubAnalyticsRepo) CountJobs(ctx context.Context, status string) (int, error) {
	r.countCalls.Add(1)
	if status == "active" {
		return 3, nil
	}
	return 5, nil
}

func (r *stubAnalyticsRepo) CountApplications(ctx context.Context) (int, error) {
	r.countCalls.Add(1)
	return 12, nil
}

func (r *stubAnalyticsRepo) UsersByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return []DayCount{{Date: "2026-08-01", Count: 2}}, nil
}

func (r *stubAnalyticsRepo) JobsByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return []DayCount{{Date: "2026-08-01", Count: 1}}, nil
}

func (r *stubAnalyticsRepo) ApplicationsByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return []DayCount{{Date: "2026-08-01", Count: 4}}, nil
}

func (r *stubAnalyticsRepo) RoleDistribution(ctx context.Context) ([]KeyCount, error) {
	return []KeyCount{{Key: "jobseeker", Count: 7}, {Key: "recruiter", Count: 3}}, nil
}

func (r *stubAnalyticsRepo) JobStatusDistribution(ctx context.Context) ([]KeyCount, error) {
	return []KeyCount{{Key: "active", Count: 3}, {Key: "pending", Count: 2}}, nil
}

func (r *stubAnalyticsRepo) RecentAdminActions(ctx context.Context, since time.Time) ([]KeyCount, error) {
	return []KeyCount{{Key: "create admin", Count: 2}}, nil
}

func newAnalyticsService(t *testing.T) (*Service, *stubAnalyticsRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &stubAnalyticsRepo{}
	return NewService(repo, NewCache(client, time.Minute)), repo
}

func adminActor() *authz.Principal {
	return &authz.Principal{ID: 99, Roles: []string{authz.RoleAdmin}, IsActive: true}
}

func TestOverviewRequiresAdmin(t *testing.T) {
	svc, _ := newAnalyticsService(t)
	seeker := &authz.Principal{ID: 5, Roles: []string{authz.RoleJobseeker}, IsActive: true}

	_, err := svc.Overview(context.Background(), seeker)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestOverviewAggregatesCounts(t *testing.T) {
	svc, _ := newAnalyticsService(t)

	overview, err := svc.Overview(context.Background(), adminActor())
	require.NoError(t, err)
	require.Equal(t, 10, overview.TotalUsers)
	require.Equal(t, 8, overview.ActiveUsers)
	require.Equal(t, 5, overview.TotalJobs)
	require.Equal(t, 3, overview.ActiveJobs)
	require.Equal(t, 12, overview.TotalApplications)
	require.Len(t, overview.RecentActions, 1)
}

func TestOverviewIsCached(t *testing.T) {
	svc, repo := newAnalyticsService(t)

	_, err := svc.Overview(context.Background(), adminActor())
	require.NoError(t, err)
	first := repo.countCalls.Load()

	_, err = svc.Overview(context.Background(), adminActor())
	require.NoError(t, err)
	require.Equal(t, first, repo.countCalls.Load(), "second call should hit the cache")
}

func TestBumpInvalidatesCache(t *testing.T) {
	svc, repo := newAnalyticsService(t)

	_, err := svc.Overview(context.Background(), adminActor())
	require.NoError(t, err)
	first := repo.countCalls.Load()

	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Overview(context.Background(), adminActor())
	require.NoError(t, err)
	require.Greater(t, repo.countCalls.Load(), first, "bump should force a reload")
}

func TestUsersReport(t *testing.T) {
	svc, _ := newAnalyticsService(t)

	report, err := svc.Users(context.Background(), adminActor(), 0)
	require.NoError(t, err)
	require.Len(t, report.RegistrationsByDay, 1)
	require.Len(t, report.RoleDistribution, 2)
}

func TestJobsReport(t *testing.T) {
	svc, _ := newAnalyticsService(t)

	report, err := svc.Jobs(context.Background(), adminActor(), 14)
	require.NoError(t, err)
	require.Len(t, report.PostedByDay, 1)
	require.Len(t, report.StatusDistribution, 2)
}

func TestApplicationsReport(t *testing.T) {
	svc, _ := newAnalyticsService(t)

	report, err := svc.Applications(context.Background(), adminActor(), 7)
	require.NoError(t, err)
	require.Len(t, report.SubmittedByDay, 1)
}
