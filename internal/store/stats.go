package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/domain"
)

// countable reports whether table may be counted or exported.
func countable(table string) bool {
	return table == database.TableGenerationRun || slices.Contains(database.DataTables, table)
}

// Count returns the number of rows in a schema table. Names outside the
// schema return ErrUnknownTable.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if !countable(table) {
		return 0, fmt.Errorf("%q: %w", table, ErrUnknownTable)
	}
	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Counts returns the row count of every data table in dependency order.
func (s *Store) Counts(ctx context.Context) ([]domain.TableCount, error) {
	out := make([]domain.TableCount, 0, len(database.DataTables))
	for _, t := range database.DataTables {
		n, err := s.Count(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TableCount{Table: t, Rows: n})
	}
	return out, nil
}

// ValidateTable returns ErrUnknownTable for names outside the schema.
func ValidateTable(table string) error {
	if !countable(table) {
		return fmt.Errorf("%q: %w", table, ErrUnknownTable)
	}
	return nil
}

// SampleSalesMetric is a sales metric with its type and tax names resolved.
type SampleSalesMetric struct {
	Type    string  `json:"type"`
	TaxType string  `json:"taxType,omitempty"`
	Value   float64 `json:"value"`
}

// Sample is a readable slice through the generated data: the first property,
// its products and its first PPTPM with metrics.
type Sample struct {
	Property          domain.Property           `json:"property"`
	Products          []string                  `json:"products"`
	Month             string                    `json:"month,omitempty"`
	ProductType       string                    `json:"productType,omitempty"`
	ProductionMetrics []domain.ProductionMetric `json:"productionMetrics,omitempty"`
	SalesMetrics      []SampleSalesMetric       `json:"salesMetrics,omitempty"`
}

// Sample builds a Sample from the lowest-id property. It returns ErrNotFound
// when no property exists.
func (s *Store) Sample(ctx context.Context) (*Sample, error) {
	var out Sample
	p := &out.Property
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, quantity_of_wells, COALESCE(location, ''), COALESCE(description, '')
		 FROM property ORDER BY id LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.QuantityOfWells, &p.Location, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sample property: %w", err)
	}

	out.Products, err = s.stringColumn(ctx,
		`SELECT pr.name FROM property_product pp JOIN product pr ON pr.id = pp.product_id
		 WHERE pp.property_id = ? ORDER BY pr.id`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("sample products: %w", err)
	}

	var pptpmID int64
	err = s.DB.QueryRowContext(ctx,
		`SELECT f.id, COALESCE(m.month_name, ''), t.name
		 FROM property_product_type_production_month f
		 JOIN production_month m ON m.id = f.production_month_id
		 JOIN product_type t ON t.id = f.product_type_id
		 WHERE f.property_id = ? ORDER BY f.id LIMIT 1`,
		p.ID,
	).Scan(&pptpmID, &out.Month, &out.ProductType)
	if errors.Is(err, sql.ErrNoRows) {
		return &out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sample pptpm: %w", err)
	}

	if out.ProductionMetrics, err = s.productionMetrics(ctx, pptpmID); err != nil {
		return nil, err
	}
	if out.SalesMetrics, err = s.sampleSalesMetrics(ctx, pptpmID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) stringColumn(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) productionMetrics(ctx context.Context, pptpmID int64) ([]domain.ProductionMetric, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pptpm_id, metric_name, metric_value, COALESCE(description, '')
		 FROM production_metric WHERE pptpm_id = ? ORDER BY id`, pptpmID)
	if err != nil {
		return nil, fmt.Errorf("query production metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ProductionMetric
	for rows.Next() {
		var m domain.ProductionMetric
		if err := rows.Scan(&m.ID, &m.PPTPMID, &m.MetricName, &m.MetricValue, &m.Description); err != nil {
			return nil, fmt.Errorf("scan production metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) sampleSalesMetrics(ctx context.Context, pptpmID int64) ([]SampleSalesMetric, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT smt.name, COALESCE(tt.name, ''), sm.value
		 FROM sales_metric sm
		 JOIN sales_metric_type smt ON smt.id = sm.sales_metric_type_id
		 LEFT JOIN tax_type tt ON tt.id = sm.tax_type_id
		 WHERE sm.pptpm_id = ? ORDER BY sm.id`, pptpmID)
	if err != nil {
		return nil, fmt.Errorf("query sales metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SampleSalesMetric
	for rows.Next() {
		var m SampleSalesMetric
		if err := rows.Scan(&m.Type, &m.TaxType, &m.Value); err != nil {
			return nil, fmt.Errorf("scan sales metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
