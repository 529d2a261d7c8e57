package testhelpers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/seed"
)

// NewTestDB returns an in-memory SQLite database configured the same way as
// production. The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewMigratedDB returns an in-memory database with all migrations applied.
func NewMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewTestDB(t)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewSeededDB returns a migrated in-memory database with the reference
// vocabularies inserted.
func NewSeededDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewMigratedDB(t)
	if err := seed.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}
