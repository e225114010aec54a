package audit

import (
	"context"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/shared"
)

// Result bundles log rows with paging metadata.
type Result struct {
	Logs       []EntryWithActor  `json:"logs"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service coordinates the admin log viewer.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns filtered audit entries. Only admins may read the log.
func (s *Service) List(ctx context.Context, actor *authz.Principal, filters Filters) (Result, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Result{}, err
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	entries, total, err := s.repo.ListEntries(ctx, filters, limit, offset)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Logs:       entries,
		Pagination: shared.NewPagination(page, limit, total),
	}, nil
}
