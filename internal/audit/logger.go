package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is satisfied by both *pgxpool.Pool and pgx.Tx so entries can be
// written inside the same transaction as the mutation they describe.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Logger writes records into admin_logs.
type Logger struct {
	pool *pgxpool.Pool
}

// NewLogger returns a new audit Logger.
func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

// Record persists the entry using the logger's pool.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	return l.RecordIn(ctx, l.pool, e)
}

// RecordIn persists the entry through the given executor, typically the
// transaction carrying the audited mutation.
func (l *Logger) RecordIn(ctx context.Context, exec Execer, e Entry) error {
	if e.Action == "" || e.TargetID == "" {
		return errors.New("audit entry requires action and target")
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = exec.Exec(ctx,
		`INSERT INTO admin_logs (actor_id, action, target_id, details, at) VALUES ($1, $2, $3, $4, $5)`,
		e.ActorID, e.Action, e.TargetID, details, at)
	return err
}
