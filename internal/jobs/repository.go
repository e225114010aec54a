package jobs

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/internal/platform/db"
	"github.com/jobport/jobport/internal/shared"
)

// Repository defines data access for job listings.
type Repository interface {
	List(ctx context.Context, filters Filters, limit, offset int) ([]Job, int, error)
	FindByID(ctx context.Context, id int64) (Job, error)
	Create(ctx context.Context, job Job) (Job, error)
	ListByRecruiter(ctx context.Context, recruiterID int64) ([]Job, error)
	// WithTx runs fn inside one transaction so a listing and its
	// applications are removed together.
	WithTx(ctx context.Context, fn func(TxRepository) error) error
}

// TxRepository exposes the mutations available inside a transaction.
type TxRepository interface {
	FindByID(ctx context.Context, id int64) (Job, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	DeleteApplicationsByJob(ctx context.Context, jobID int64) (int64, error)
	DeleteJob(ctx context.Context, id int64) error
}

const jobColumns = `id, title, company, address, type, category, description, email, slots, status, recruiter_id, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters Filters, limit, offset int) ([]Job, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0
	if filters.Search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		where += ` AND (title ILIKE $` + n + ` OR company ILIKE $` + n + ` OR description ILIKE $` + n + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Type != "" {
		argCount++
		where += ` AND type = $` + strconv.Itoa(argCount)
		args = append(args, filters.Type)
	}
	if filters.Location != "" {
		argCount++
		where += ` AND address ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Location+"%")
	}
	if filters.Status != "" {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + jobColumns + ` FROM jobs` + where + ` ORDER BY created_at DESC`
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
	list, err := collectJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *repository) Create(ctx context.Context, job Job) (Job, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, address, type, category, description, email, slots, status, recruiter_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 RETURNING `+jobColumns,
		job.Title, job.Company, job.Address, job.Type, job.Category, job.Description,
		job.Email, job.Slots, job.Status, job.RecruiterID, now)
	return scanJob(row)
}

func (r *repository) ListByRecruiter(ctx context.Context, recruiterID int64) ([]Job, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC`, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *repository) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) FindByID(ctx context.Context, id int64) (Job, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteApplicationsByJob(ctx context.Context, jobID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM applications WHERE job_id = $1`, jobID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *txRepository) DeleteJob(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Address, &j.Type, &j.Category,
		&j.Description, &j.Email, &j.Slots, &j.Status, &j.RecruiterID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, shared.ErrNotFound
		}
		return Job{}, err
	}
	return j, nil
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	var list []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, j)
	}
	return list, rows.Err()
}
