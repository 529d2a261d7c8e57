package database_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/testhelpers"
)

func TestOpen(t *testing.T) {
	db := testhelpers.NewTestDB(t)

	require.NoError(t, db.Ping())

	// In-memory databases may report "memory" instead of "wal".
	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Contains(t, []string{"wal", "memory"}, journalMode)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "wells.db")

	db, err := database.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping())
	assert.FileExists(t, path)
}

func TestMigrate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.Migrate(ctx, db))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestMigrateIdempotent(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, database.Migrate(ctx, db), "migrate run %d", i+1)
	}

	version, err := database.Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := database.InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO benchmark (name) VALUES ('WTI')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM benchmark").Scan(&count))
	assert.Zero(t, count)
}

func TestInTxCommits(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)
	ctx := context.Background()

	err := database.InTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO benchmark (name) VALUES ('Brent')`)
		return err
	})
	require.NoError(t, err)

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM benchmark").Scan(&name))
	assert.Equal(t, "Brent", name)
}
