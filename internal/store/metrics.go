package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/domain"
)

// MetricStore defines persistence for production metrics, sales metrics and
// price differentials.
type MetricStore interface {
	InsertMetrics(ctx context.Context, production []domain.ProductionMetric, sales []domain.SalesMetric) error
	RealisedPricePage(ctx context.Context, afterID int64, limit int) ([]domain.RealisedPrice, error)
	InsertDifferentials(ctx context.Context, differentials []domain.Differential) error
}

// SQLiteMetricStore implements MetricStore backed by SQLite.
type SQLiteMetricStore struct {
	db *sql.DB
}

// NewSQLiteMetricStore creates a new SQLiteMetricStore.
func NewSQLiteMetricStore(db *sql.DB) *SQLiteMetricStore {
	return &SQLiteMetricStore{db: db}
}

// InsertMetrics writes one batch of production and sales metrics in a single
// transaction.
func (s *SQLiteMetricStore) InsertMetrics(ctx context.Context, production []domain.ProductionMetric, sales []domain.SalesMetric) error {
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := execEach(ctx, tx,
			`INSERT INTO production_metric (pptpm_id, metric_name, metric_value, description) VALUES (?, ?, ?, ?)`,
			len(production),
			func(i int) []any {
				m := production[i]
				return []any{m.PPTPMID, m.MetricName, m.MetricValue, m.Description}
			},
		); err != nil {
			return fmt.Errorf("insert production metrics: %w", err)
		}

		if err := execEach(ctx, tx,
			`INSERT INTO sales_metric (pptpm_id, sales_metric_type_id, tax_type_id, value, description) VALUES (?, ?, ?, ?, ?)`,
			len(sales),
			func(i int) []any {
				m := sales[i]
				return []any{m.PPTPMID, m.SalesMetricTypeID, nullInt64(m.TaxTypeID), m.Value, m.Description}
			},
		); err != nil {
			return fmt.Errorf("insert sales metrics: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert metric batch: %w", err)
	}
	return nil
}

// RealisedPricePage returns up to limit Realised Price sales metrics with id
// greater than afterID, in id order, with the owning PPTPM's property and
// product type.
func (s *SQLiteMetricStore) RealisedPricePage(ctx context.Context, afterID int64, limit int) ([]domain.RealisedPrice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sm.id, f.property_id, p.name, f.product_type_id
		 FROM sales_metric sm
		 JOIN sales_metric_type smt ON smt.id = sm.sales_metric_type_id
		 JOIN property_product_type_production_month f ON f.id = sm.pptpm_id
		 JOIN property p ON p.id = f.property_id
		 WHERE smt.name = ? AND sm.id > ?
		 ORDER BY sm.id
		 LIMIT ?`,
		domain.SalesMetricRealisedPrice, afterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query realised prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.RealisedPrice
	for rows.Next() {
		var r domain.RealisedPrice
		if err := rows.Scan(&r.SalesMetricID, &r.PropertyID, &r.PropertyName, &r.ProductTypeID); err != nil {
			return nil, fmt.Errorf("scan realised price: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertDifferentials writes one batch of differentials in a single
// transaction.
func (s *SQLiteMetricStore) InsertDifferentials(ctx context.Context, differentials []domain.Differential) error {
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return execEach(ctx, tx,
			`INSERT INTO differential (benchmark_id, realised_price_id, value, description) VALUES (?, ?, ?, ?)`,
			len(differentials),
			func(i int) []any {
				d := differentials[i]
				return []any{d.BenchmarkID, d.RealisedPriceID, d.Value, d.Description}
			},
		)
	})
	if err != nil {
		return fmt.Errorf("insert differential batch: %w", err)
	}
	return nil
}
