package database

// Table names.
const (
	TableProductType      = "product_type"
	TableBenchmark        = "benchmark"
	TableProduct          = "product"
	TableProperty         = "property"
	TablePropertyProduct  = "property_product"
	TableProductionMonth  = "production_month"
	TablePPTPM            = "property_product_type_production_month"
	TableProductionMetric = "production_metric"
	TableSalesMetricType  = "sales_metric_type"
	TableTaxType          = "tax_type"
	TableSalesMetric      = "sales_metric"
	TableDifferential     = "differential"
	TableGenerationRun    = "generation_run"
	TableSchemaMigrations = "schema_migrations"
)

// DataTables lists the tables holding reference and generated data, in
// foreign-key dependency order.
var DataTables = []string{
	TableProductType,
	TableSalesMetricType,
	TableTaxType,
	TableBenchmark,
	TableProduct,
	TableProperty,
	TablePropertyProduct,
	TableProductionMonth,
	TablePPTPM,
	TableProductionMetric,
	TableSalesMetric,
	TableDifferential,
}

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: production and sales schema
	{
		`CREATE TABLE product_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		`CREATE TABLE benchmark (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT
		)`,

		`CREATE TABLE product (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			product_type_id INTEGER NOT NULL,
			benchmark_id INTEGER,
			description TEXT,
			FOREIGN KEY (product_type_id) REFERENCES product_type(id),
			FOREIGN KEY (benchmark_id) REFERENCES benchmark(id)
		)`,
		`CREATE INDEX idx_product_type ON product(product_type_id)`,

		`CREATE TABLE property (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			quantity_of_wells INTEGER NOT NULL DEFAULT 0 CHECK (quantity_of_wells >= 0),
			location TEXT,
			description TEXT
		)`,

		`CREATE TABLE property_product (
			property_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			PRIMARY KEY (property_id, product_id),
			FOREIGN KEY (property_id) REFERENCES property(id),
			FOREIGN KEY (product_id) REFERENCES product(id)
		)`,
		`CREATE INDEX idx_property_product_product ON property_product(product_id)`,

		`CREATE TABLE production_month (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			month_date TEXT NOT NULL UNIQUE,
			month_name TEXT
		)`,

		`CREATE TABLE property_product_type_production_month (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			property_id INTEGER NOT NULL,
			product_type_id INTEGER NOT NULL,
			production_month_id INTEGER NOT NULL,
			ngl_yield REAL,
			UNIQUE (property_id, product_type_id, production_month_id),
			FOREIGN KEY (property_id) REFERENCES property(id),
			FOREIGN KEY (product_type_id) REFERENCES product_type(id),
			FOREIGN KEY (production_month_id) REFERENCES production_month(id)
		)`,

		`CREATE TABLE production_metric (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pptpm_id INTEGER NOT NULL,
			metric_name TEXT NOT NULL,
			metric_value REAL NOT NULL,
			description TEXT,
			FOREIGN KEY (pptpm_id) REFERENCES property_product_type_production_month(id)
		)`,
		`CREATE INDEX idx_production_metric_pptpm ON production_metric(pptpm_id)`,

		`CREATE TABLE sales_metric_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		`CREATE TABLE tax_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		`CREATE TABLE sales_metric (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pptpm_id INTEGER NOT NULL,
			sales_metric_type_id INTEGER NOT NULL,
			tax_type_id INTEGER,
			value REAL NOT NULL,
			description TEXT,
			FOREIGN KEY (pptpm_id) REFERENCES property_product_type_production_month(id),
			FOREIGN KEY (sales_metric_type_id) REFERENCES sales_metric_type(id),
			FOREIGN KEY (tax_type_id) REFERENCES tax_type(id)
		)`,
		`CREATE INDEX idx_sales_metric_pptpm ON sales_metric(pptpm_id)`,
		`CREATE INDEX idx_sales_metric_type ON sales_metric(sales_metric_type_id, id)`,

		`CREATE TABLE differential (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			benchmark_id INTEGER NOT NULL,
			realised_price_id INTEGER NOT NULL,
			value REAL NOT NULL,
			description TEXT,
			FOREIGN KEY (benchmark_id) REFERENCES benchmark(id),
			FOREIGN KEY (realised_price_id) REFERENCES sales_metric(id)
		)`,
		`CREATE INDEX idx_differential_realised_price ON differential(realised_price_id)`,
	},

	// Migration 2: generation run audit log
	{
		`CREATE TABLE generation_run (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			error TEXT,
			config TEXT
		)`,
		`CREATE INDEX idx_generation_run_started ON generation_run(started_at)`,
	},
}
