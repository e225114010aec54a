package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/platform/db"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

// Repository defines data access for user accounts.
type Repository interface {
	FindByID(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	ListByRoles(ctx context.Context, roles []string) ([]User, error)
	ListUsers(ctx context.Context, role string, limit, offset int) ([]User, int, error)
	UpdateProfile(ctx context.Context, id int64, name string, profile Profile) (User, error)
	// WithTx runs fn inside one transaction so a mutation and its audit
	// entry commit or roll back together.
	WithTx(ctx context.Context, fn func(TxRepository) error) error
}

// TxRepository exposes the mutations available inside a transaction.
type TxRepository interface {
	FindByID(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetRoles(ctx context.Context, id int64, roles []string) error
	DeleteUser(ctx context.Context, id int64) error
	RecordAudit(ctx context.Context, entry audit.Entry) error
}

const userColumns = `id, email, name, password_hash, roles, is_active, created_at, updated_at, last_login, profile`

type repository struct {
	pool    *pgxpool.Pool
	auditor *audit.Logger
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool, auditor *audit.Logger) Repository {
	return &repository{pool: pool, auditor: auditor}
}

func (r *repository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// ListByRoles returns users whose role set intersects the given roles,
// newest first.
func (r *repository) ListByRoles(ctx context.Context, roles []string) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE roles && $1 ORDER BY created_at DESC`, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *repository) ListUsers(ctx context.Context, role string, limit, offset int) ([]User, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0
	if role != "" {
		argCount++
		where += ` AND $` + strconv.Itoa(argCount) + ` = ANY(roles)`
		args = append(args, role)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at DESC`
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
	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id int64, name string, profile Profile) (User, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return User{}, err
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, profile = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, name, payload)
	return scanUser(row)
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

func (t *txRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (t *txRepository) CreateUser(ctx context.Context, user User) (User, error) {
	now := time.Now().UTC()
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return User{}, err
	}
	row := t.tx.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, roles, is_active, created_at, updated_at, profile)
		 VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		 RETURNING `+userColumns,
		user.Email, user.Name, user.PasswordHash, user.Roles, user.IsActive, now, profile)
	created, err := scanUser(row)
	if err != nil {
		return User{}, translateUniqueViolation(err)
	}
	return created, nil
}

func (t *txRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) SetRoles(ctx context.Context, id int64, roles []string) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE users SET roles = $2, updated_at = NOW() WHERE id = $1`, id, roles)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
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

func scanUser(row rowScanner) (User, error) {
	var u User
	var profile []byte
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Roles, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin, &profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	if len(profile) > 0 {
		_ = json.Unmarshal(profile, &u.Profile)
	}
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	}
	return err
}
