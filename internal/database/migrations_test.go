package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/testhelpers"
)

func TestMigrationsCreateAllTables(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)

	tables := append([]string{
		database.TableSchemaMigrations,
		database.TableGenerationRun,
	}, database.DataTables...)

	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %q not found", table)
	}
}

func TestMigrationsIndexes(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)

	indexes := []string{
		"idx_product_type",
		"idx_property_product_product",
		"idx_production_metric_pptpm",
		"idx_sales_metric_pptpm",
		"idx_sales_metric_type",
		"idx_differential_realised_price",
		"idx_generation_run_started",
	}

	for _, idx := range indexes {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		assert.NoError(t, err, "index %q not found", idx)
	}
}

func TestPPTPMTripleIsUnique(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO product_type (id, name) VALUES (1, 'oil')`,
		`INSERT INTO property (id, name, quantity_of_wells) VALUES (1, 'Property 1', 3)`,
		`INSERT INTO production_month (id, month_date, month_name) VALUES (1, '2020-01-01', '2020-01')`,
		`INSERT INTO property_product_type_production_month (property_id, product_type_id, production_month_id) VALUES (1, 1, 1)`,
	}
	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO property_product_type_production_month (property_id, product_type_id, production_month_id) VALUES (1, 1, 1)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}

func TestForeignKeysEnforced(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)

	_, err := db.Exec(`INSERT INTO product (name, product_type_id) VALUES ('Orphan', 42)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestNegativeWellCountRejected(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)

	_, err := db.Exec(`INSERT INTO property (name, quantity_of_wells) VALUES ('Dry', -1)`)
	require.Error(t, err)
}
