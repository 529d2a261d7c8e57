package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnwards/wells/internal/database"
)

type vocabulary struct {
	table string
	defs  []VocabularyDef
}

var vocabularies = []vocabulary{
	{table: database.TableProductType, defs: ProductTypeDefs},
	{table: database.TableSalesMetricType, defs: SalesMetricTypeDefs},
	{table: database.TableTaxType, defs: TaxTypeDefs},
}

// Seed inserts the fixed reference vocabularies. It is idempotent: when every
// vocabulary row already exists nothing is written, otherwise the missing rows
// are inserted in a single transaction so a failure leaves no partial seed.
func Seed(ctx context.Context, db *sql.DB) error {
	complete, err := Complete(ctx, db)
	if err != nil {
		return err
	}
	if complete {
		return nil
	}

	return database.InTx(ctx, db, func(tx *sql.Tx) error {
		if err := ProductTypes(ctx, tx); err != nil {
			return fmt.Errorf("seed product types: %w", err)
		}
		if err := SalesMetricTypes(ctx, tx); err != nil {
			return fmt.Errorf("seed sales metric types: %w", err)
		}
		if err := TaxTypes(ctx, tx); err != nil {
			return fmt.Errorf("seed tax types: %w", err)
		}
		return nil
	})
}

// Complete reports whether every reference vocabulary row is present.
func Complete(ctx context.Context, db *sql.DB) (bool, error) {
	for _, v := range vocabularies {
		for _, def := range v.defs {
			var count int
			if err := db.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM `+v.table+` WHERE name = ?`, def.Name,
			).Scan(&count); err != nil {
				return false, fmt.Errorf("count %s: %w", v.table, err)
			}
			if count == 0 {
				return false, nil
			}
		}
	}
	return true, nil
}

// ProductTypes inserts the standard product types. Existing rows are kept.
func ProductTypes(ctx context.Context, tx *sql.Tx) error {
	return insertVocabulary(ctx, tx, database.TableProductType, ProductTypeDefs)
}

// SalesMetricTypes inserts the standard sales metric types. Existing rows are kept.
func SalesMetricTypes(ctx context.Context, tx *sql.Tx) error {
	return insertVocabulary(ctx, tx, database.TableSalesMetricType, SalesMetricTypeDefs)
}

// TaxTypes inserts the standard tax types. Existing rows are kept.
func TaxTypes(ctx context.Context, tx *sql.Tx) error {
	return insertVocabulary(ctx, tx, database.TableTaxType, TaxTypeDefs)
}

func insertVocabulary(ctx context.Context, tx *sql.Tx, table string, defs []VocabularyDef) error {
	for _, def := range defs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+table+` (name, description) VALUES (?, ?)`,
			def.Name, def.Description,
		); err != nil {
			return fmt.Errorf("insert %s %q: %w", table, def.Name, err)
		}
	}
	return nil
}
