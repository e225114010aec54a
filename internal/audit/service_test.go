package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
)

type memoryAuditRepo struct {
	entries []EntryWithActor
}

func (m *memoryAuditRepo) ListEntries(ctx context.Context, filters Filters, limit, offset int) ([]EntryWithActor, int, error) {
	var matched []EntryWithActor
	for _, e := range m.entries {
		if !filters.From.IsZero() && e.At.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && e.At.After(filters.To) {
			continue
		}
		if filters.Action != "" && e.Action != filters.Action {
			continue
		}
		if filters.ActorID > 0 && e.ActorID != filters.ActorID {
			continue
		}
		matched = append(matched, e)
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

func admin() *authz.Principal {
	return &authz.Principal{ID: 9, Roles: []string{authz.RoleAdmin}, IsActive: true}
}

func TestListRequiresAdmin(t *testing.T) {
	svc := NewService(&memoryAuditRepo{})
	_, err := svc.List(context.Background(), &authz.Principal{ID: 1, Roles: []string{authz.RoleRecruiter}}, Filters{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = svc.List(context.Background(), nil, Filters{})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestListFiltersAndPages(t *testing.T) {
	now := time.Now()
	repo := &memoryAuditRepo{}
	for i := 0; i < 5; i++ {
		repo.entries = append(repo.entries, EntryWithActor{Entry: Entry{
			ID:       int64(i + 1),
			ActorID:  1,
			Action:   "create admin",
			TargetID: "t",
			At:       now.Add(time.Duration(i) * time.Minute),
		}})
	}
	repo.entries = append(repo.entries, EntryWithActor{Entry: Entry{
		ID: 6, ActorID: 2, Action: "delete faq", TargetID: "t", At: now,
	}})

	svc := NewService(repo)

	result, err := svc.List(context.Background(), admin(), Filters{Action: "create admin", Page: 1, Limit: 3})
	require.NoError(t, err)
	require.Len(t, result.Logs, 3)
	require.Equal(t, 5, result.Pagination.Total)
	require.Equal(t, 2, result.Pagination.TotalPages)

	result, err = svc.List(context.Background(), admin(), Filters{ActorID: 2})
	require.NoError(t, err)
	require.Len(t, result.Logs, 1)
	require.Equal(t, "delete faq", result.Logs[0].Action)
}
