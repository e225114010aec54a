package audit

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads back audit entries for the log viewer.
type Repository interface {
	ListEntries(ctx context.Context, filters Filters, limit, offset int) ([]EntryWithActor, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ListEntries uses a dynamic query: every filter is optional.
func (r *repository) ListEntries(ctx context.Context, filters Filters, limit, offset int) ([]EntryWithActor, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if !filters.From.IsZero() {
		argCount++
		where += ` AND l.at >= $` + strconv.Itoa(argCount)
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		argCount++
		where += ` AND l.at <= $` + strconv.Itoa(argCount)
		args = append(args, filters.To)
	}
	if filters.Action != "" {
		argCount++
		where += ` AND l.action = $` + strconv.Itoa(argCount)
		args = append(args, filters.Action)
	}
	if filters.ActorID > 0 {
		argCount++
		where += ` AND l.actor_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.ActorID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM admin_logs l` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT l.id, l.actor_id, l.action, l.target_id, l.details, l.at,
		COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM admin_logs l
		LEFT JOIN users u ON u.id = l.actor_id` + where + ` ORDER BY l.at DESC`

	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []EntryWithActor
	for rows.Next() {
		var e EntryWithActor
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetID, &details, &e.At, &e.ActorName, &e.ActorEmail); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
