package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/domain"
)

// FactStore defines persistence for the PPTPM fact grid.
type FactStore interface {
	InsertPPTPMs(ctx context.Context, rows []domain.PPTPM) error
	FactPage(ctx context.Context, afterID int64, limit int) ([]domain.FactRow, error)
}

// SQLiteFactStore implements FactStore backed by SQLite.
type SQLiteFactStore struct {
	db *sql.DB
}

// NewSQLiteFactStore creates a new SQLiteFactStore.
func NewSQLiteFactStore(db *sql.DB) *SQLiteFactStore {
	return &SQLiteFactStore{db: db}
}

// InsertPPTPMs inserts one batch of fact rows in a single transaction. A
// duplicate (property, product type, month) triple aborts the whole batch.
func (s *SQLiteFactStore) InsertPPTPMs(ctx context.Context, rows []domain.PPTPM) error {
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return execEach(ctx, tx,
			`INSERT INTO property_product_type_production_month
			 (property_id, product_type_id, production_month_id, ngl_yield) VALUES (?, ?, ?, ?)`,
			len(rows),
			func(i int) []any {
				r := rows[i]
				return []any{r.PropertyID, r.ProductTypeID, r.ProductionMonthID, nullFloat64(r.NGLYield)}
			},
		)
	})
	if err != nil {
		return fmt.Errorf("insert pptpm batch: %w", err)
	}
	return nil
}

// FactPage returns up to limit fact rows with id greater than afterID, in id
// order, joined with their property name.
func (s *SQLiteFactStore) FactPage(ctx context.Context, afterID int64, limit int) ([]domain.FactRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.property_id, f.product_type_id, f.production_month_id, f.ngl_yield, p.name
		 FROM property_product_type_production_month f
		 JOIN property p ON p.id = f.property_id
		 WHERE f.id > ?
		 ORDER BY f.id
		 LIMIT ?`,
		afterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query fact page: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.FactRow
	for rows.Next() {
		var r domain.FactRow
		var ngl sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.ProductTypeID, &r.ProductionMonthID, &ngl, &r.PropertyName); err != nil {
			return nil, fmt.Errorf("scan fact row: %w", err)
		}
		r.NGLYield = float64Ptr(ngl)
		out = append(out, r)
	}
	return out, rows.Err()
}
