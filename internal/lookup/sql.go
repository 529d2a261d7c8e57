package lookup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/johnwards/wells/internal/database"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name        string
	createTable string
	value       string
	isValid     string
	code        string
	remove      string
	insert      string
}

var sqliteDialect = dialect{
	name: BackendSQLite,
	createTable: `CREATE TABLE IF NOT EXISTS ref_codes (
		kind TEXT NOT NULL,
		code TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (kind, code)
	)`,
	value:   `SELECT value FROM ref_codes WHERE kind = ? AND code = ?`,
	isValid: `SELECT 1 FROM ref_codes WHERE code = ? LIMIT 1`,
	code:    `SELECT code FROM ref_codes WHERE kind = ? AND value = ? ORDER BY code LIMIT 1`,
	remove:  `DELETE FROM ref_codes WHERE kind = ? AND code = ?`,
	insert:  `INSERT INTO ref_codes (kind, code, value) VALUES (?, ?, ?)`,
}

var sqlServerDialect = dialect{
	name: BackendSQLServer,
	createTable: `IF OBJECT_ID(N'ref_codes', N'U') IS NULL
		CREATE TABLE ref_codes (
			kind NVARCHAR(128) NOT NULL,
			code NVARCHAR(128) NOT NULL,
			value NVARCHAR(4000) NOT NULL,
			PRIMARY KEY (kind, code)
		)`,
	value:   `SELECT value FROM ref_codes WHERE kind = @p1 AND code = @p2`,
	isValid: `SELECT TOP 1 1 FROM ref_codes WHERE code = @p1`,
	code:    `SELECT TOP 1 code FROM ref_codes WHERE kind = @p1 AND value = @p2 ORDER BY code`,
	remove:  `DELETE FROM ref_codes WHERE kind = @p1 AND code = @p2`,
	insert:  `INSERT INTO ref_codes (kind, code, value) VALUES (@p1, @p2, @p3)`,
}

// SQL is a Backend over database/sql.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens a SQLite lookup database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQL, error) {
	db, err := database.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite lookup: %w", err)
	}
	return newSQL(ctx, db, sqliteDialect)
}

// OpenSQLServer connects to SQL Server using a sqlserver:// URL.
func OpenSQLServer(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver lookup: %w", err)
	}
	return newSQL(ctx, db, sqlServerDialect)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s lookup: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s table: %w", TableName, err)
	}
	return &SQL{db: db, dialect: d}, nil
}

// Value returns the value of code within kind.
func (s *SQL) Value(ctx context.Context, kind, code string) (string, bool, error) {
	return s.scalar(ctx, s.dialect.value, kind, code)
}

// IsValid reports whether code exists for any kind.
func (s *SQL) IsValid(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.dialect.isValid, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return true, nil
}

// Code returns the smallest code whose value within kind equals value.
func (s *SQL) Code(ctx context.Context, kind, value string) (string, bool, error) {
	return s.scalar(ctx, s.dialect.code, kind, value)
}

func (s *SQL) scalar(ctx context.Context, query string, args ...any) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", TableName, err)
	}
	return v, true, nil
}

// Put upserts entries in one transaction.
func (s *SQL) Put(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, s.dialect.remove, e.Kind, e.Code); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("replace %s/%s: %w", e.Kind, e.Code, err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.insert, e.Kind, e.Code, e.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s/%s: %w", e.Kind, e.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQL) Close() error { return s.db.Close() }
