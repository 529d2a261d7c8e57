package store

import (
	"context"
	"fmt"
)

// Violation is one integrity rule and the number of rows breaking it.
type Violation struct {
	Rule string `json:"rule"`
	Rows int64  `json:"rows"`
}

type integrityRule struct {
	name  string
	query string
}

// Each query returns the number of offending rows.
var integrityRules = []integrityRule{
	{
		name: "pptpm_unique_triple",
		query: `SELECT COUNT(*) FROM (
			SELECT 1 FROM property_product_type_production_month
			GROUP BY property_id, product_type_id, production_month_id
			HAVING COUNT(*) > 1)`,
	},
	{
		name: "ngl_yield_only_for_ngl",
		query: `SELECT COUNT(*) FROM property_product_type_production_month f
			JOIN product_type t ON t.id = f.product_type_id
			WHERE t.name <> 'ngl' AND f.ngl_yield IS NOT NULL`,
	},
	{
		name: "ngl_yield_in_range",
		query: `SELECT COUNT(*) FROM property_product_type_production_month f
			JOIN product_type t ON t.id = f.product_type_id
			WHERE t.name = 'ngl' AND (f.ngl_yield IS NULL OR f.ngl_yield < 0.1 OR f.ngl_yield > 5.0)`,
	},
	{
		name: "tax_type_iff_taxes",
		query: `SELECT COUNT(*) FROM sales_metric sm
			JOIN sales_metric_type smt ON smt.id = sm.sales_metric_type_id
			WHERE (smt.name = 'Taxes') <> (sm.tax_type_id IS NOT NULL)`,
	},
	{
		name: "differential_references_realised_price",
		query: `SELECT COUNT(*) FROM differential d
			JOIN sales_metric sm ON sm.id = d.realised_price_id
			JOIN sales_metric_type smt ON smt.id = sm.sales_metric_type_id
			WHERE smt.name <> 'Realised Price'`,
	},
	{
		name: "sales_value_in_range",
		query: `SELECT COUNT(*) FROM sales_metric sm
			JOIN sales_metric_type smt ON smt.id = sm.sales_metric_type_id
			WHERE CASE smt.name
				WHEN 'Volume' THEN sm.value < 1000 OR sm.value > 100000
				WHEN 'Revenue' THEN sm.value < 10000 OR sm.value > 1000000
				ELSE sm.value < 10 OR sm.value > 1000
			END`,
	},
	{
		name:  "production_metric_positive",
		query: `SELECT COUNT(*) FROM production_metric WHERE metric_value <= 0`,
	},
	{
		name:  "differential_in_range",
		query: `SELECT COUNT(*) FROM differential WHERE value < -20 OR value > 20`,
	},
	{
		name:  "foreign_keys",
		query: `SELECT COUNT(*) FROM pragma_foreign_key_check`,
	},
}

// Check runs every integrity rule and returns the rules with offending rows.
// An empty result means the database is consistent.
func (s *Store) Check(ctx context.Context) ([]Violation, error) {
	var out []Violation
	for _, r := range integrityRules {
		var n int64
		if err := s.DB.QueryRowContext(ctx, r.query).Scan(&n); err != nil {
			return nil, fmt.Errorf("check %s: %w", r.name, err)
		}
		if n > 0 {
			out = append(out, Violation{Rule: r.name, Rows: n})
		}
	}
	return out, nil
}
