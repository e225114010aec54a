package jobs

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

type memoryJobRepo struct {
	jobs         map[int64]Job
	applications map[int64]int // job ID -> application count
	audits       []audit.Entry
	nextID       int64
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{jobs: make(map[int64]Job), applications: make(map[int64]int)}
}

func (r *memoryJobRepo) put(job Job) Job {
	if job.ID == 0 {
		r.nextID++
		job.ID = r.nextID
	}
	job.CreatedAt = time.Now()
	r.jobs[job.ID] = job
	return job
}

func (r *memoryJobRepo) List(ctx context.Context, filters Filters, limit, offset int) ([]Job, int, error) {
	var matched []Job
	for _, j := range r.jobs {
		if filters.Status != "" && j.Status != filters.Status {
			continue
		}
		if filters.Type != "" && j.Type != filters.Type {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(j.Title+j.Company+j.Description), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.Location != "" && !strings.Contains(strings.ToLower(j.Address), strings.ToLower(filters.Location)) {
			continue
		}
		matched = append(matched, j)
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memoryJobRepo) FindByID(ctx context.Context, id int64) (Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, shared.ErrNotFound
	}
	return j, nil
}

func (r *memoryJobRepo) Create(ctx context.Context, job Job) (Job, error) {
	return r.put(job), nil
}

func (r *memoryJobRepo) ListByRecruiter(ctx context.Context, recruiterID int64) ([]Job, error) {
	var out []Job
	for _, j := range r.jobs {
		if j.RecruiterID == recruiterID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memoryJobRepo) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	tx := &memoryJobTx{repo: r, snapshot: r.snapshot()}
	if err := fn(tx); err != nil {
		r.restore(tx.snapshot)
		return err
	}
	r.audits = append(r.audits, tx.pending...)
	return nil
}

type jobRepoSnapshot struct {
	jobs         map[int64]Job
	applications map[int64]int
}

func (r *memoryJobRepo) snapshot() jobRepoSnapshot {
	jobs := make(map[int64]Job, len(r.jobs))
	for k, v := range r.jobs {
		jobs[k] = v
	}
	apps := make(map[int64]int, len(r.applications))
	for k, v := range r.applications {
		apps[k] = v
	}
	return jobRepoSnapshot{jobs: jobs, applications: apps}
}

func (r *memoryJobRepo) restore(s jobRepoSnapshot) {
	r.jobs = s.jobs
	r.applications = s.applications
}

type memoryJobTx struct {
	repo     *memoryJobRepo
	snapshot jobRepoSnapshot
	pending  []audit.Entry
}

func (t *memoryJobTx) FindByID(ctx context.Context, id int64) (Job, error) {
	return t.repo.FindByID(ctx, id)
}

func (t *memoryJobTx) UpdateStatus(ctx context.Context, id int64, status string) error {
	j, ok := t.repo.jobs[id]
	if !ok {
		return shared.ErrNotFound
	}
	j.Status = status
	t.repo.jobs[id] = j
	return nil
}

func (t *memoryJobTx) DeleteApplicationsByJob(ctx context.Context, jobID int64) (int64, error) {
	n := t.repo.applications[jobID]
	delete(t.repo.applications, jobID)
	return int64(n), nil
}

func (t *memoryJobTx) DeleteJob(ctx context.Context, id int64) error {
	if _, ok := t.repo.jobs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.repo.jobs, id)
	return nil
}

func (t *memoryJobTx) RecordAudit(ctx context.Context, entry audit.Entry) error {
	t.pending = append(t.pending, entry)
	return nil
}

type recordingNotifier struct {
	rejected []Job
}

func (n *recordingNotifier) JobRejected(ctx context.Context, job Job) error {
	n.rejected = append(n.rejected, job)
	return nil
}

type recordingStats struct {
	bumps int
}

func (s *recordingStats) Invalidate(ctx context.Context) error {
	s.bumps++
	return nil
}

func newJobService(repo Repository, notifier Notifier) *Service {
	return NewService(repo, notifier, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func recruiter(id int64) *authz.Principal {
	return &authz.Principal{ID: id, Roles: []string{authz.RoleRecruiter}, IsActive: true}
}

func jobseeker(id int64) *authz.Principal {
	return &authz.Principal{ID: id, Roles: []string{authz.RoleJobseeker}, IsActive: true}
}

func admin() *authz.Principal {
	return &authz.Principal{ID: 99, Roles: []string{authz.RoleAdmin}, IsActive: true}
}

func TestBrowseOnlyReturnsActiveJobs(t *testing.T) {
	repo := newMemoryJobRepo()
	repo.put(Job{Title: "Live role", Status: StatusActive, RecruiterID: 1})
	repo.put(Job{Title: "Queued role", Status: StatusPending, RecruiterID: 1})
	repo.put(Job{Title: "Bad role", Status: StatusRejected, RecruiterID: 1})
	svc := newJobService(repo, nil)

	list, pagination, err := svc.Browse(context.Background(), jobseeker(5), Filters{Status: StatusRejected}, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Live role", list[0].Title)
	require.Equal(t, 1, pagination.Total)
}

func TestBrowseRequiresAuthentication(t *testing.T) {
	svc := newJobService(newMemoryJobRepo(), nil)
	_, _, err := svc.Browse(context.Background(), nil, Filters{}, 1, 10)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestCreateStartsPending(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := newJobService(repo, nil)

	job, err := svc.Create(context.Background(), recruiter(7), CreateInput{
		Title: "Backend Engineer", Company: "Acme", Address: "Jakarta",
		Type: "full-time", Description: "Go services", Email: "jobs@acme.test",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, job.Status)
	require.Equal(t, int64(7), job.RecruiterID)
	require.Equal(t, 1, job.Slots)
}

func TestCreateRejectsNonRecruiters(t *testing.T) {
	svc := newJobService(newMemoryJobRepo(), nil)
	input := CreateInput{Title: "X", Company: "Y", Address: "Z", Type: "full-time", Description: "D", Email: "a@b.test"}

	_, err := svc.Create(context.Background(), jobseeker(5), input)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestCreateValidatesJobType(t *testing.T) {
	svc := newJobService(newMemoryJobRepo(), nil)
	_, err := svc.Create(context.Background(), recruiter(7), CreateInput{
		Title: "X", Company: "Y", Address: "Z", Type: "gig", Description: "D", Email: "a@b.test",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetHidesPendingFromOtherUsers(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Queued", Status: StatusPending, RecruiterID: 7})
	svc := newJobService(repo, nil)

	_, err := svc.Get(context.Background(), jobseeker(5), job.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	owned, err := svc.Get(context.Background(), recruiter(7), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, owned.ID)

	seen, err := svc.Get(context.Background(), admin(), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, seen.ID)
}

func TestChangeStatusRequiresAdmin(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Queued", Status: StatusPending, RecruiterID: 7})
	svc := newJobService(repo, nil)

	_, err := svc.ChangeStatus(context.Background(), recruiter(7), job.ID, StatusActive)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestChangeStatusApproveActivatesJob(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Queued", Status: StatusPending, RecruiterID: 7})
	notifier := &recordingNotifier{}
	svc := newJobService(repo, notifier)

	updated, err := svc.ChangeStatus(context.Background(), admin(), job.ID, StatusActive)
	require.NoError(t, err)
	require.Equal(t, StatusActive, updated.Status)
	require.Equal(t, StatusActive, repo.jobs[job.ID].Status)
	require.Empty(t, notifier.rejected)
}

func TestChangeStatusRejectNotifiesRecruiter(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Queued", Status: StatusPending, RecruiterID: 7})
	notifier := &recordingNotifier{}
	svc := newJobService(repo, notifier)

	_, err := svc.ChangeStatus(context.Background(), admin(), job.ID, StatusRejected)
	require.NoError(t, err)
	require.Len(t, notifier.rejected, 1)
	require.Equal(t, job.ID, notifier.rejected[0].ID)
	require.Equal(t, StatusRejected, notifier.rejected[0].Status)
}

func TestModerationLeavesAuditTrailUntouched(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Queued", Status: StatusPending, RecruiterID: 7})
	svc := newJobService(repo, &recordingNotifier{})

	_, err := svc.ChangeStatus(context.Background(), admin(), job.ID, StatusRejected)
	require.NoError(t, err)
	require.Empty(t, repo.audits, "rejection must not be audit-logged")

	_, err = svc.ChangeStatus(context.Background(), admin(), job.ID, StatusActive)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), admin(), job.ID))
	require.Empty(t, repo.audits, "moderation must not be audit-logged")
}

func TestMutationsBumpAnalyticsCache(t *testing.T) {
	repo := newMemoryJobRepo()
	stats := &recordingStats{}
	svc := NewService(repo, nil, stats, slog.New(slog.NewTextHandler(io.Discard, nil)))

	job, err := svc.Create(context.Background(), recruiter(7), CreateInput{
		Title: "Backend Engineer", Company: "Acme", Address: "Jakarta",
		Type: "full-time", Description: "Go services", Email: "jobs@acme.test",
	})
	require.NoError(t, err)
	require.Equal(t, 1, stats.bumps)

	_, err = svc.ChangeStatus(context.Background(), admin(), job.ID, StatusActive)
	require.NoError(t, err)
	require.Equal(t, 2, stats.bumps)

	require.NoError(t, svc.Delete(context.Background(), admin(), job.ID))
	require.Equal(t, 3, stats.bumps)

	_, err = svc.ChangeStatus(context.Background(), admin(), 404, StatusActive)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, 3, stats.bumps, "failed mutations must not bump the cache")
}

func TestChangeStatusUnknownJob(t *testing.T) {
	svc := newJobService(newMemoryJobRepo(), nil)
	_, err := svc.ChangeStatus(context.Background(), admin(), 42, StatusActive)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteCascadesApplications(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Doomed", Status: StatusActive, RecruiterID: 7})
	repo.applications[job.ID] = 3
	svc := newJobService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), admin(), job.ID))
	require.NotContains(t, repo.jobs, job.ID)
	require.NotContains(t, repo.applications, job.ID)
}

func TestDeleteUnknownJobLeavesApplicationsIntact(t *testing.T) {
	repo := newMemoryJobRepo()
	job := repo.put(Job{Title: "Survivor", Status: StatusActive, RecruiterID: 7})
	repo.applications[job.ID] = 2
	svc := newJobService(repo, nil)

	err := svc.Delete(context.Background(), admin(), 42)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, 2, repo.applications[job.ID])
	require.Empty(t, repo.audits)
}
