package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/internal/shared"
)

// Repository defines data access for notifications.
type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, n Notification) (Notification, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, type, message, read, created_at)
		 VALUES ($1, $2, $3, FALSE, $4)
		 RETURNING id, user_id, type, message, read, created_at`,
		n.UserID, n.Type, n.Message, now)

	var created Notification
	err := row.Scan(&created.ID, &created.UserID, &created.Type, &created.Message, &created.Read, &created.CreatedAt)
	if err != nil {
		return Notification{}, err
	}
	return created, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, type, message, read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead only touches rows owned by userID so one user cannot mark
// another user's notifications.
func (r *repository) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
