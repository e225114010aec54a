package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/internal/platform/httpx"
)

// Repository defines data access for applications.
type Repository interface {
	Create(ctx context.Context, app Application) (Application, error)
	ListByUser(ctx context.Context, userID int64) ([]WithJob, error)
	ListByJob(ctx context.Context, jobID int64) ([]WithApplicant, error)
	HasApplied(ctx context.Context, jobID, userID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, app Application) (Application, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, user_id, cover_note, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, job_id, user_id, cover_note, status, created_at`,
		app.JobID, app.UserID, app.CoverNote, app.Status, now)

	var created Application
	err := row.Scan(&created.ID, &created.JobID, &created.UserID, &created.CoverNote, &created.Status, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Application{}, fmt.Errorf("%w: already applied to this job", httpx.ErrDuplicate)
		}
		return Application{}, err
	}
	return created, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]WithJob, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.job_id, a.user_id, a.cover_note, a.status, a.created_at, j.title, j.company
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.user_id = $1
		 ORDER BY a.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []WithJob
	for rows.Next() {
		var a WithJob
		if err := rows.Scan(&a.ID, &a.JobID, &a.UserID, &a.CoverNote, &a.Status, &a.CreatedAt, &a.JobTitle, &a.Company); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *repository) ListByJob(ctx context.Context, jobID int64) ([]WithApplicant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.job_id, a.user_id, a.cover_note, a.status, a.created_at, u.name, u.email
		 FROM applications a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []WithApplicant
	for rows.Next() {
		var a WithApplicant
		if err := rows.Scan(&a.ID, &a.JobID, &a.UserID, &a.CoverNote, &a.Status, &a.CreatedAt, &a.ApplicantName, &a.ApplicantEmail); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *repository) HasApplied(ctx context.Context, jobID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	return exists, nil
}
