package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/johnwards/wells/internal/domain"
)

// RunStore defines persistence for the generation run audit log.
type RunStore interface {
	Start(ctx context.Context, config string) (*domain.Run, error)
	Finish(ctx context.Context, id string, runErr error) error
	Get(ctx context.Context, id string) (*domain.Run, error)
	List(ctx context.Context, limit int) ([]*domain.Run, error)
}

// SQLiteRunStore implements RunStore backed by SQLite.
type SQLiteRunStore struct {
	db *sql.DB
}

// NewSQLiteRunStore creates a new SQLiteRunStore.
func NewSQLiteRunStore(db *sql.DB) *SQLiteRunStore {
	return &SQLiteRunStore{db: db}
}

// Start records a new running generation run with the given config snapshot.
func (s *SQLiteRunStore) Start(ctx context.Context, config string) (*domain.Run, error) {
	run := &domain.Run{
		ID:        uuid.NewString(),
		StartedAt: now(),
		Status:    domain.RunRunning,
		Config:    config,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_run (id, started_at, status, config) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Status, run.Config,
	)
	if err != nil {
		return nil, fmt.Errorf("insert generation run: %w", err)
	}
	return run, nil
}

// Finish marks a run as succeeded, or failed with runErr's message when
// runErr is non-nil.
func (s *SQLiteRunStore) Finish(ctx context.Context, id string, runErr error) error {
	status := domain.RunSucceeded
	var msg sql.NullString
	if runErr != nil {
		status = domain.RunFailed
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE generation_run SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, msg, now(), id,
	)
	if err != nil {
		return fmt.Errorf("finish generation run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a run by ID.
func (s *SQLiteRunStore) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), status, COALESCE(error, ''), COALESCE(config, '')
		 FROM generation_run WHERE id = ?`,
		id,
	)
	var r domain.Run
	if err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Error, &r.Config); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get generation run: %w", err)
	}
	return &r, nil
}

// List returns the most recent runs, newest first.
func (s *SQLiteRunStore) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), status, COALESCE(error, ''), COALESCE(config, '')
		 FROM generation_run ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list generation runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Error, &r.Config); err != nil {
			return nil, fmt.Errorf("scan generation run: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
