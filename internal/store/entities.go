package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/domain"
)

// EntityStore defines persistence for the top-level generated entities and
// the property↔product association.
type EntityStore interface {
	InsertBenchmarks(ctx context.Context, benchmarks []domain.Benchmark) ([]domain.Benchmark, error)
	InsertProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	InsertProperties(ctx context.Context, properties []domain.Property) ([]domain.Property, error)
	InsertProductionMonths(ctx context.Context, months []domain.ProductionMonth) ([]domain.ProductionMonth, error)
	LinkProducts(ctx context.Context, links []domain.PropertyProduct) error

	Benchmarks(ctx context.Context) ([]domain.Benchmark, error)
	Products(ctx context.Context) ([]domain.Product, error)
	Properties(ctx context.Context) ([]domain.Property, error)
	ProductionMonths(ctx context.Context) ([]domain.ProductionMonth, error)
	PropertyProducts(ctx context.Context) (map[int64][]domain.Product, error)
}

// SQLiteEntityStore implements EntityStore backed by SQLite.
type SQLiteEntityStore struct {
	db *sql.DB
}

// NewSQLiteEntityStore creates a new SQLiteEntityStore.
func NewSQLiteEntityStore(db *sql.DB) *SQLiteEntityStore {
	return &SQLiteEntityStore{db: db}
}

// InsertBenchmarks inserts benchmarks in one transaction and returns them with
// their assigned IDs.
func (s *SQLiteEntityStore) InsertBenchmarks(ctx context.Context, benchmarks []domain.Benchmark) ([]domain.Benchmark, error) {
	out := append([]domain.Benchmark(nil), benchmarks...)
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return insertEach(ctx, tx,
			`INSERT INTO benchmark (name, description) VALUES (?, ?)`,
			len(out),
			func(i int) []any { return []any{out[i].Name, out[i].Description} },
			func(i int, id int64) { out[i].ID = id },
		)
	})
	if err != nil {
		return nil, fmt.Errorf("insert benchmarks: %w", err)
	}
	return out, nil
}

// InsertProducts inserts products in one transaction and returns them with
// their assigned IDs.
func (s *SQLiteEntityStore) InsertProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	out := append([]domain.Product(nil), products...)
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return insertEach(ctx, tx,
			`INSERT INTO product (name, product_type_id, benchmark_id, description) VALUES (?, ?, ?, ?)`,
			len(out),
			func(i int) []any {
				return []any{out[i].Name, out[i].ProductTypeID, nullInt64(out[i].BenchmarkID), out[i].Description}
			},
			func(i int, id int64) { out[i].ID = id },
		)
	})
	if err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}
	return out, nil
}

// InsertProperties inserts properties in one transaction and returns them
// with their assigned IDs.
func (s *SQLiteEntityStore) InsertProperties(ctx context.Context, properties []domain.Property) ([]domain.Property, error) {
	out := append([]domain.Property(nil), properties...)
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return insertEach(ctx, tx,
			`INSERT INTO property (name, quantity_of_wells, location, description) VALUES (?, ?, ?, ?)`,
			len(out),
			func(i int) []any {
				return []any{out[i].Name, out[i].QuantityOfWells, out[i].Location, out[i].Description}
			},
			func(i int, id int64) { out[i].ID = id },
		)
	})
	if err != nil {
		return nil, fmt.Errorf("insert properties: %w", err)
	}
	return out, nil
}

// InsertProductionMonths inserts production months in one transaction and
// returns them with their assigned IDs. month_date is unique, so inserting an
// existing month fails the whole batch.
func (s *SQLiteEntityStore) InsertProductionMonths(ctx context.Context, months []domain.ProductionMonth) ([]domain.ProductionMonth, error) {
	out := append([]domain.ProductionMonth(nil), months...)
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return insertEach(ctx, tx,
			`INSERT INTO production_month (month_date, month_name) VALUES (?, ?)`,
			len(out),
			func(i int) []any {
				return []any{out[i].MonthDate.Format(domain.MonthDateLayout), out[i].MonthName}
			},
			func(i int, id int64) { out[i].ID = id },
		)
	})
	if err != nil {
		return nil, fmt.Errorf("insert production months: %w", err)
	}
	return out, nil
}

// LinkProducts records property↔product associations in one transaction.
func (s *SQLiteEntityStore) LinkProducts(ctx context.Context, links []domain.PropertyProduct) error {
	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return execEach(ctx, tx,
			`INSERT INTO property_product (property_id, product_id) VALUES (?, ?)`,
			len(links),
			func(i int) []any { return []any{links[i].PropertyID, links[i].ProductID} },
		)
	})
	if err != nil {
		return fmt.Errorf("link products: %w", err)
	}
	return nil
}

// Benchmarks returns all benchmarks ordered by id.
func (s *SQLiteEntityStore) Benchmarks(ctx context.Context) ([]domain.Benchmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM benchmark ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query benchmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Benchmark
	for rows.Next() {
		var b domain.Benchmark
		if err := rows.Scan(&b.ID, &b.Name, &b.Description); err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Products returns all products ordered by id.
func (s *SQLiteEntityStore) Products(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, product_type_id, benchmark_id, COALESCE(description, '') FROM product ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Properties returns all properties ordered by id.
func (s *SQLiteEntityStore) Properties(ctx context.Context) ([]domain.Property, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity_of_wells, COALESCE(location, ''), COALESCE(description, '') FROM property ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.QuantityOfWells, &p.Location, &p.Description); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProductionMonths returns all production months ordered by date.
func (s *SQLiteEntityStore) ProductionMonths(ctx context.Context) ([]domain.ProductionMonth, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, month_date, COALESCE(month_name, '') FROM production_month ORDER BY month_date`)
	if err != nil {
		return nil, fmt.Errorf("query production months: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ProductionMonth
	for rows.Next() {
		var m domain.ProductionMonth
		var date string
		if err := rows.Scan(&m.ID, &date, &m.MonthName); err != nil {
			return nil, fmt.Errorf("scan production month: %w", err)
		}
		m.MonthDate, err = time.Parse(domain.MonthDateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse month date %q: %w", date, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PropertyProducts returns the linked products of every property that has
// at least one, keyed by property id. Products are ordered by id.
func (s *SQLiteEntityStore) PropertyProducts(ctx context.Context) (map[int64][]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pp.property_id, p.id, p.name, p.product_type_id, p.benchmark_id, COALESCE(p.description, '')
		 FROM property_product pp
		 JOIN product p ON p.id = pp.product_id
		 ORDER BY pp.property_id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query property products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]domain.Product)
	for rows.Next() {
		var propertyID int64
		var p domain.Product
		var benchmarkID sql.NullInt64
		if err := rows.Scan(&propertyID, &p.ID, &p.Name, &p.ProductTypeID, &benchmarkID, &p.Description); err != nil {
			return nil, fmt.Errorf("scan property product: %w", err)
		}
		p.BenchmarkID = int64Ptr(benchmarkID)
		out[propertyID] = append(out[propertyID], p)
	}
	return out, rows.Err()
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var p domain.Product
	var benchmarkID sql.NullInt64
	if err := rows.Scan(&p.ID, &p.Name, &p.ProductTypeID, &benchmarkID, &p.Description); err != nil {
		return p, fmt.Errorf("scan product: %w", err)
	}
	p.BenchmarkID = int64Ptr(benchmarkID)
	return p, nil
}
