package content

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/platform/db"
	"github.com/jobport/jobport/internal/shared"
)

// Repository defines data access for content items.
type Repository interface {
	List(ctx context.Context, itemType string, limit, offset int) ([]Item, int, error)
	FindByID(ctx context.Context, id int64) (Item, error)
	// WithTx runs fn inside one transaction so edits and their audit
	// entries commit or roll back together.
	WithTx(ctx context.Context, fn func(TxRepository) error) error
}

// TxRepository exposes the mutations available inside a transaction.
type TxRepository interface {
	FindByID(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, title, content string) error
	Delete(ctx context.Context, id int64) error
	RecordAudit(ctx context.Context, entry audit.Entry) error
}

const itemColumns = `id, type, title, content, author_id, created_at, updated_at`

type repository struct {
	pool    *pgxpool.Pool
	auditor *audit.Logger
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool, auditor *audit.Logger) Repository {
	return &repository{pool: pool, auditor: auditor}
}

func (r *repository) List(ctx context.Context, itemType string, limit, offset int) ([]Item, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM content_items WHERE type = $1`, itemType).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM content_items WHERE type = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		itemType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id int64) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = $1`, id)
	return scanItem(row)
}

func (r *repository) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx, auditor: r.auditor})
	})
}

type txRepository struct {
	tx      pgx.Tx
	auditor *audit.Logger
}

func (t *txRepository) FindByID(ctx context.Context, id int64) (Item, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = $1`, id)
	return scanItem(row)
}

func (t *txRepository) Create(ctx context.Context, item Item) (Item, error) {
	now := time.Now().UTC()
	row := t.tx.QueryRow(ctx,
		`INSERT INTO content_items (type, title, content, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING `+itemColumns,
		item.Type, item.Title, item.Content, item.AuthorID, now)
	return scanItem(row)
}

func (t *txRepository) Update(ctx context.Context, id int64, title, content string) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE content_items SET title = $2, content = $3, updated_at = NOW() WHERE id = $1`,
		id, title, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM content_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) RecordAudit(ctx context.Context, entry audit.Entry) error {
	return t.auditor.RecordIn(ctx, t.tx, entry)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Type, &item.Title, &item.Content, &item.AuthorID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}
