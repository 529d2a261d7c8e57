package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Backend over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL and creates the codes table when
// missing.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 4
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres lookup: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS ref_codes (
		kind TEXT NOT NULL,
		code TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (kind, code)
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create %s table: %w", TableName, err)
	}
	return &Postgres{pool: pool}, nil
}

// Value returns the value of code within kind.
func (p *Postgres) Value(ctx context.Context, kind, code string) (string, bool, error) {
	return p.scalar(ctx, `SELECT value FROM ref_codes WHERE kind = $1 AND code = $2`, kind, code)
}

// IsValid reports whether code exists for any kind.
func (p *Postgres) IsValid(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ref_codes WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return exists, nil
}

// Code returns the smallest code whose value within kind equals value.
func (p *Postgres) Code(ctx context.Context, kind, value string) (string, bool, error) {
	return p.scalar(ctx, `SELECT code FROM ref_codes WHERE kind = $1 AND value = $2 ORDER BY code LIMIT 1`, kind, value)
}

func (p *Postgres) scalar(ctx context.Context, query string, args ...any) (string, bool, error) {
	var v string
	err := p.pool.QueryRow(ctx, query, args...).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", TableName, err)
	}
	return v, true, nil
}

// Put upserts entries in one batch.
func (p *Postgres) Put(ctx context.Context, entries []Entry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO ref_codes (kind, code, value) VALUES ($1, $2, $3)
			ON CONFLICT (kind, code) DO UPDATE SET value = EXCLUDED.value`,
			e.Kind, e.Code, e.Value)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %s: %w", TableName, err)
	}
	return nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
