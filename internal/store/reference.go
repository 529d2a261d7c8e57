package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnwards/wells/internal/domain"
)

// ReferenceStore reads the fixed reference vocabularies.
type ReferenceStore interface {
	ProductTypes(ctx context.Context) ([]domain.ProductType, error)
	SalesMetricTypes(ctx context.Context) ([]domain.SalesMetricType, error)
	TaxTypes(ctx context.Context) ([]domain.TaxType, error)
}

// SQLiteReferenceStore implements ReferenceStore backed by SQLite.
type SQLiteReferenceStore struct {
	db *sql.DB
}

// NewSQLiteReferenceStore creates a new SQLiteReferenceStore.
func NewSQLiteReferenceStore(db *sql.DB) *SQLiteReferenceStore {
	return &SQLiteReferenceStore{db: db}
}

type namedRow struct {
	id          int64
	name        string
	description string
}

func (s *SQLiteReferenceStore) list(ctx context.Context, table string) ([]namedRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.id, &r.name, &r.description); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// ProductTypes returns all product types ordered by id.
func (s *SQLiteReferenceStore) ProductTypes(ctx context.Context) ([]domain.ProductType, error) {
	rows, err := s.list(ctx, "product_type")
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProductType, len(rows))
	for i, r := range rows {
		out[i] = domain.ProductType{ID: r.id, Name: r.name, Description: r.description}
	}
	return out, nil
}

// SalesMetricTypes returns all sales metric types ordered by id.
func (s *SQLiteReferenceStore) SalesMetricTypes(ctx context.Context) ([]domain.SalesMetricType, error) {
	rows, err := s.list(ctx, "sales_metric_type")
	if err != nil {
		return nil, err
	}
	out := make([]domain.SalesMetricType, len(rows))
	for i, r := range rows {
		out[i] = domain.SalesMetricType{ID: r.id, Name: r.name, Description: r.description}
	}
	return out, nil
}

// TaxTypes returns all tax types ordered by id.
func (s *SQLiteReferenceStore) TaxTypes(ctx context.Context) ([]domain.TaxType, error) {
	rows, err := s.list(ctx, "tax_type")
	if err != nil {
		return nil, err
	}
	out := make([]domain.TaxType, len(rows))
	for i, r := range rows {
		out[i] = domain.TaxType{ID: r.id, Name: r.name, Description: r.description}
	}
	return out, nil
}
