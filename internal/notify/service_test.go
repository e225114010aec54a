package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/jobs"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/users"
	"github.com/jobport/jobport/tasks"
)

type memoryNotifyRepo struct {
	notifications []Notification
	nextID        int64
}

func (r *memoryNotifyRepo) Create(ctx context.Context, n Notification) (Notification, error) {
	r.nextID++
	n.ID = r.nextID
	r.notifications = append(r.notifications, n)
	return n, nil
}

func (r *memoryNotifyRepo) ListByUser(ctx context.Context, userID int64) ([]Notification, error) {
	var out []Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memoryNotifyRepo) MarkRead(ctx context.Context, id, userID int64) error {
	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return shared.ErrNotFound
}

type recordingEnqueuer struct {
	payloads []tasks.SendEmailPayload
}

func (e *recordingEnqueuer) EnqueueSendEmail(ctx context.Context, payload tasks.SendEmailPayload) (*asynq.TaskInfo, error) {
	e.payloads = append(e.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

type stubDirectory struct {
	users map[int64]users.User
}

func (d *stubDirectory) FindByID(ctx context.Context, id int64) (users.User, error) {
	u, ok := d.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func newNotifyService(repo Repository, emails EmailEnqueuer, directory RecipientDirectory) *Service {
	return NewService(repo, emails, directory, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestJobRejectedCreatesNotificationAndEmail(t *testing.T) {
	repo := &memoryNotifyRepo{}
	emails := &recordingEnqueuer{}
	directory := &stubDirectory{users: map[int64]users.User{
		7: {ID: 7, Email: "recruiter@test.local", Name: "Rae"},
	}}
	svc := newNotifyService(repo, emails, directory)

	err := svc.JobRejected(context.Background(), jobs.Job{ID: 1, Title: "Backend Engineer", RecruiterID: 7})
	require.NoError(t, err)

	require.Len(t, repo.notifications, 1)
	require.Equal(t, int64(7), repo.notifications[0].UserID)
	require.Equal(t, TypeJobRejected, repo.notifications[0].Type)
	require.False(t, repo.notifications[0].Read)

	require.Len(t, emails.payloads, 1)
	require.Equal(t, "recruiter@test.local", emails.payloads[0].To)
	require.Contains(t, emails.payloads[0].Body, "Backend Engineer")
}

func TestJobRejectedWithoutEnqueuerStillNotifies(t *testing.T) {
	repo := &memoryNotifyRepo{}
	svc := newNotifyService(repo, nil, nil)

	err := svc.JobRejected(context.Background(), jobs.Job{ID: 1, Title: "Role", RecruiterID: 7})
	require.NoError(t, err)
	require.Len(t, repo.notifications, 1)
}

func TestJobRejectedUnknownRecipientSkipsEmail(t *testing.T) {
	repo := &memoryNotifyRepo{}
	emails := &recordingEnqueuer{}
	svc := newNotifyService(repo, emails, &stubDirectory{users: map[int64]users.User{}})

	err := svc.JobRejected(context.Background(), jobs.Job{ID: 1, Title: "Role", RecruiterID: 7})
	require.NoError(t, err)
	require.Len(t, repo.notifications, 1)
	require.Empty(t, emails.payloads)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := &memoryNotifyRepo{}
	svc := newNotifyService(repo, nil, nil)
	n, err := repo.Create(context.Background(), Notification{UserID: 7, Type: TypeJobRejected, Message: "x"})
	require.NoError(t, err)

	other := &authz.Principal{ID: 8, Roles: []string{authz.RoleRecruiter}, IsActive: true}
	require.ErrorIs(t, svc.MarkRead(context.Background(), other, n.ID), httpx.ErrNotFound)

	owner := &authz.Principal{ID: 7, Roles: []string{authz.RoleRecruiter}, IsActive: true}
	require.NoError(t, svc.MarkRead(context.Background(), owner, n.ID))
	require.True(t, repo.notifications[0].Read)
}

func TestListMineRequiresAuthentication(t *testing.T) {
	svc := newNotifyService(&memoryNotifyRepo{}, nil, nil)
	_, err := svc.ListMine(context.Background(), nil)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}
