package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the aggregate queries the reports rely on.
type Repository interface {
	CountUsers(ctx context.Context, activeOnly bool) (int, error)
	CountJobs(ctx context.Context, status string) (int, error)
	CountApplications(ctx context.Context) (int, error)
	UsersByDay(ctx context.Context, since time.Time) ([]DayCount, error)
	JobsByDay(ctx context.Context, since time.Time) ([]DayCount, error)
	ApplicationsByDay(ctx context.Context, since time.Time) ([]DayCount, error)
	RoleDistribution(ctx context.Context) ([]KeyCount, error)
	JobStatusDistribution(ctx context.Context) ([]KeyCount, error)
	RecentAdminActions(ctx context.Context, since time.Time) ([]KeyCount, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CountUsers(ctx context.Context, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM users`
	if activeOnly {
		query += ` WHERE is_active`
	}
	var n int
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *repository) CountJobs(ctx context.Context, status string) (int, error) {
	var n int
	if status == "" {
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
		return n, err
	}
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (r *repository) CountApplications(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n)
	return n, err
}

func (r *repository) UsersByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.byDay(ctx, `users`, since)
}

func (r *repository) JobsByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.byDay(ctx, `jobs`, since)
}

func (r *repository) ApplicationsByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.byDay(ctx, `applications`, since)
}

func (r *repository) byDay(ctx context.Context, table string, since time.Time) ([]DayCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		 FROM `+table+`
		 WHERE created_at >= $1
		 GROUP BY created_at::date
		 ORDER BY created_at::date`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectKeyedCounts(rows, func(key string, count int) DayCount {
		return DayCount{Date: key, Count: count}
	})
}

func (r *repository) RoleDistribution(ctx context.Context) ([]KeyCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, COUNT(*) FROM users, UNNEST(roles) AS role GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectKeyedCounts(rows, newKeyCount)
}

func (r *repository) JobStatusDistribution(ctx context.Context) ([]KeyCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM jobs GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectKeyedCounts(rows, newKeyCount)
}

func (r *repository) RecentAdminActions(ctx context.Context, since time.Time) ([]KeyCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT action, COUNT(*) FROM admin_logs WHERE at >= $1 GROUP BY action ORDER BY COUNT(*) DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectKeyedCounts(rows, newKeyCount)
}

func newKeyCount(key string, count int) KeyCount {
	return KeyCount{Key: key, Count: count}
}

type scannableRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectKeyedCounts[T any](rows scannableRows, build func(string, int) T) ([]T, error) {
	var out []T
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out = append(out, build(key, count))
	}
	return out, rows.Err()
}
