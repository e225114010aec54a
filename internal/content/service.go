package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

// Service implements content management rules. All operations are
// limited to admins and superadmins.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns content items of one type, newest first.
func (s *Service) List(ctx context.Context, actor *authz.Principal, itemType string, page, limit int) ([]Item, shared.Pagination, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, shared.Pagination{}, err
	}
	if !ValidType(itemType) {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown content type %q", httpx.ErrValidation, itemType)
	}
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	items, total, err := s.repo.List(ctx, itemType, limit, (page-1)*limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, limit, total), nil
}

// CreateInput carries the fields for a new content item.
type CreateInput struct {
	Type    string `json:"type" validate:"required,oneof=faq blog"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Create stores a new item and records who wrote it.
func (s *Service) Create(ctx context.Context, actor *authz.Principal, input CreateInput) (Item, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Item{}, err
	}
	if !ValidType(input.Type) {
		return Item{}, fmt.Errorf("%w: unknown content type %q", httpx.ErrValidation, input.Type)
	}
	if input.Title == "" || input.Content == "" {
		return Item{}, fmt.Errorf("%w: title and content are required", httpx.ErrValidation)
	}

	var created Item
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		var err error
		created, err = tx.Create(ctx, Item{
			Type:     input.Type,
			Title:    input.Title,
			Content:  input.Content,
			AuthorID: actor.ID,
		})
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   "create " + input.Type,
			TargetID: strconv.FormatInt(created.ID, 10),
			Details:  map[string]any{"title": created.Title},
		})
	})
	if err != nil {
		return Item{}, err
	}
	return created, nil
}

// Update replaces the title and body of an existing item.
func (s *Service) Update(ctx context.Context, actor *authz.Principal, id int64, title, content string) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	if title == "" || content == "" {
		return fmt.Errorf("%w: title and content are required", httpx.ErrValidation)
	}
	return s.repo.WithTx(ctx, func(tx TxRepository) error {
		item, err := tx.FindByID(ctx, id)
		if err != nil {
			return translateNotFound(err)
		}
		if err := tx.Update(ctx, id, title, content); err != nil {
			return translateNotFound(err)
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   "update " + item.Type,
			TargetID: strconv.FormatInt(id, 10),
			Details:  map[string]any{"title": title},
		})
	})
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, actor *authz.Principal, id int64) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(tx TxRepository) error {
		item, err := tx.FindByID(ctx, id)
		if err != nil {
			return translateNotFound(err)
		}
		if err := tx.Delete(ctx, id); err != nil {
			return translateNotFound(err)
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   "delete " + item.Type,
			TargetID: strconv.FormatInt(id, 10),
			Details:  map[string]any{"title": item.Title},
		})
	})
}

func translateNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: content item not found", httpx.ErrNotFound)
	}
	return err
}
