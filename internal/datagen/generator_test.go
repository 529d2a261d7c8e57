package datagen_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnwards/wells/internal/datagen"
	"github.com/johnwards/wells/internal/domain"
	"github.com/johnwards/wells/internal/metrics"
	"github.com/johnwards/wells/internal/store"
	"github.com/johnwards/wells/internal/testhelpers"
)

func smallConfig() datagen.Config {
	cfg := datagen.DefaultConfig()
	cfg.NumProperties = 5
	cfg.NumProducts = 3
	cfg.NumBenchmarks = 2
	cfg.NumMonths = 2
	cfg.Seed = 1
	return cfg
}

func runGenerator(t *testing.T, s *store.Store, cfg datagen.Config) *datagen.Report {
	t.Helper()
	g, err := datagen.New(s, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	report, err := g.Run(context.Background())
	require.NoError(t, err)
	return report
}

func count(t *testing.T, s *store.Store, table string) int64 {
	t.Helper()
	n, err := s.Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

func TestRunScenario(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	cfg := smallConfig()
	cfg.ProductTypes = []string{domain.ProductTypeOil, domain.ProductTypeGas}

	report := runGenerator(t, s, cfg)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, uint64(1), report.Seed)

	assert.Equal(t, int64(4), count(t, s, "product_type"))
	assert.Equal(t, int64(5), count(t, s, "property"))
	assert.Equal(t, int64(3), count(t, s, "product"))
	assert.Equal(t, int64(2), count(t, s, "benchmark"))
	assert.Equal(t, int64(2), count(t, s, "production_month"))

	pptpm := count(t, s, "property_product_type_production_month")
	assert.LessOrEqual(t, pptpm, int64(20))
	assert.GreaterOrEqual(t, pptpm, int64(10), "every property owns at least one product in both months")
	assert.Equal(t, 5*pptpm, count(t, s, "production_metric"))
	assert.Equal(t, 6*pptpm, count(t, s, "sales_metric"))

	var perPPTPM int
	require.NoError(t, s.DB.QueryRow(
		`SELECT COUNT(*) FROM (
			SELECT f.id FROM property_product_type_production_month f
			LEFT JOIN production_metric pm ON pm.pptpm_id = f.id
			GROUP BY f.id HAVING COUNT(pm.id) <> 5)`).Scan(&perPPTPM))
	assert.Zero(t, perPPTPM)

	var nonOilGas int
	require.NoError(t, s.DB.QueryRow(
		`SELECT COUNT(*) FROM property_product_type_production_month f
		 JOIN product_type t ON t.id = f.product_type_id
		 WHERE t.name NOT IN ('oil', 'gas')`).Scan(&nonOilGas))
	assert.Zero(t, nonOilGas)

	entities, ok := report.Stage(datagen.StageEntities)
	require.True(t, ok)
	assert.Equal(t, int64(5+3+2+2), entities.Rows)
	assert.False(t, entities.Skipped)
}

func TestRunInvariants(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	cfg := smallConfig()
	cfg.NumProperties = 12
	cfg.NumProducts = 10
	cfg.NumBenchmarks = 4
	cfg.NumMonths = 6
	cfg.ProductBenchmarkProbability = 0.5

	runGenerator(t, s, cfg)

	violations, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)

	var missing int
	require.NoError(t, s.DB.QueryRow(
		`SELECT COUNT(*) FROM sales_metric sm
		 JOIN sales_metric_type smt ON smt.id = sm.sales_metric_type_id
		 LEFT JOIN differential d ON d.realised_price_id = sm.id
		 WHERE smt.name = 'Realised Price' AND d.id IS NULL`).Scan(&missing))
	assert.Zero(t, missing, "every realised price gets at least one differential")

	// A differential either uses a benchmark of a matching product or is the
	// single random fallback for a price with no matching product.
	var unmatched int
	require.NoError(t, s.DB.QueryRow(
		`WITH matching AS (
			SELECT sm.id AS rp_id, pr.benchmark_id
			FROM sales_metric sm
			JOIN property_product_type_production_month f ON f.id = sm.pptpm_id
			JOIN property_product pp ON pp.property_id = f.property_id
			JOIN product pr ON pr.id = pp.product_id
			WHERE pr.product_type_id = f.product_type_id AND pr.benchmark_id IS NOT NULL
		)
		SELECT COUNT(*) FROM differential d
		WHERE EXISTS (SELECT 1 FROM matching m WHERE m.rp_id = d.realised_price_id)
		  AND NOT EXISTS (SELECT 1 FROM matching m WHERE m.rp_id = d.realised_price_id AND m.benchmark_id = d.benchmark_id)`).Scan(&unmatched))
	assert.Zero(t, unmatched)

	var duplicated int
	require.NoError(t, s.DB.QueryRow(
		`SELECT COUNT(*) FROM (
			SELECT 1 FROM differential GROUP BY realised_price_id, benchmark_id HAVING COUNT(*) > 1)`).Scan(&duplicated))
	assert.Zero(t, duplicated)
}

func TestRunIsIdempotent(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	cfg := smallConfig()

	runGenerator(t, s, cfg)
	before, err := s.Counts(context.Background())
	require.NoError(t, err)

	cfg.Seed = 99
	report := runGenerator(t, s, cfg)
	after, err := s.Counts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before, after)
	for _, st := range report.Stages {
		assert.True(t, st.Skipped, "stage %s should be skipped", st.Stage)
	}

	// The run log is not a data table and grows on every invocation.
	runs, err := s.Runs.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, domain.RunSucceeded, r.Status)
	}
}

type snapshot struct {
	facts         [][4]any
	production    [][3]any
	sales         [][3]any
	differentials [][3]any
}

func takeSnapshot(t *testing.T, db *sql.DB) snapshot {
	t.Helper()
	var snap snapshot

	rows, err := db.Query(`SELECT property_id, product_type_id, production_month_id, ngl_yield
		FROM property_product_type_production_month ORDER BY id`)
	require.NoError(t, err)
	for rows.Next() {
		var p, pt, m int64
		var y sql.NullFloat64
		require.NoError(t, rows.Scan(&p, &pt, &m, &y))
		snap.facts = append(snap.facts, [4]any{p, pt, m, y})
	}
	require.NoError(t, rows.Close())

	rows, err = db.Query(`SELECT pptpm_id, metric_name, metric_value FROM production_metric ORDER BY id`)
	require.NoError(t, err)
	for rows.Next() {
		var id int64
		var name string
		var v float64
		require.NoError(t, rows.Scan(&id, &name, &v))
		snap.production = append(snap.production, [3]any{id, name, v})
	}
	require.NoError(t, rows.Close())

	rows, err = db.Query(`SELECT pptpm_id, sales_metric_type_id, value FROM sales_metric ORDER BY id`)
	require.NoError(t, err)
	for rows.Next() {
		var id, typeID int64
		var v float64
		require.NoError(t, rows.Scan(&id, &typeID, &v))
		snap.sales = append(snap.sales, [3]any{id, typeID, v})
	}
	require.NoError(t, rows.Close())

	rows, err = db.Query(`SELECT benchmark_id, realised_price_id, value FROM differential ORDER BY id`)
	require.NoError(t, err)
	for rows.Next() {
		var b, rp int64
		var v float64
		require.NoError(t, rows.Scan(&b, &rp, &v))
		snap.differentials = append(snap.differentials, [3]any{b, rp, v})
	}
	require.NoError(t, rows.Close())

	return snap
}

func TestRunIndependentOfBatchSize(t *testing.T) {
	cfg := smallConfig()
	cfg.NumProperties = 8
	cfg.NumProducts = 6
	cfg.NumMonths = 4
	cfg.Seed = 20240601

	var snaps []snapshot
	for _, size := range []int{1, 7, 1000} {
		c := cfg
		c.FactBatchSize = size
		c.MetricBatchSize = size
		c.DifferentialBatchSize = size

		db := testhelpers.NewMigratedDB(t)
		runGenerator(t, store.New(db), c)
		snaps = append(snaps, takeSnapshot(t, db))
	}

	require.NotEmpty(t, snaps[0].facts)
	for _, snap := range snaps[1:] {
		assert.Equal(t, snaps[0].facts, snap.facts)
		assert.Equal(t, snaps[0].production, snap.production)
		assert.Equal(t, snaps[0].sales, snap.sales)
		assert.Equal(t, snaps[0].differentials, snap.differentials)
	}
}

func TestNoiseRateWithoutProducts(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	cfg := smallConfig()
	cfg.NumProperties = 50
	cfg.NumMonths = 50
	cfg.NumProducts = 0
	cfg.NumBenchmarks = 0
	cfg.NumProductionMetricsPerPPTPM = 1
	cfg.Seed = 77

	report := runGenerator(t, s, cfg)

	// 50 properties × 4 product types × 50 months, none backed by a product.
	const trials = 50 * 4 * 50
	rate := float64(count(t, s, "property_product_type_production_month")) / trials
	assert.InDelta(t, 0.20, rate, 0.02)

	assert.Zero(t, count(t, s, "property_product"))
	assert.Zero(t, count(t, s, "differential"), "no benchmarks means no differentials")
	diffs, ok := report.Stage(datagen.StageDifferentials)
	require.True(t, ok)
	assert.Zero(t, diffs.Rows)
}

func TestRunUnknownProductType(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	cfg := smallConfig()
	cfg.ProductTypes = []string{"bitumen"}

	g, err := datagen.New(s, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	report, err := g.Run(context.Background())
	require.ErrorIs(t, err, datagen.ErrMissingReference)

	run, err := s.Runs.Get(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Contains(t, run.Error, "bitumen")
	assert.Zero(t, count(t, s, "property"))
}

func TestRunCancelled(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	g, err := datagen.New(s, smallConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Run(ctx)
	require.Error(t, err)
}

func TestRunRecordsMetrics(t *testing.T) {
	s := store.New(testhelpers.NewMigratedDB(t))
	rec := metrics.NewRecorder()
	g, err := datagen.New(s, smallConfig(), zaptest.NewLogger(t), datagen.WithRecorder(rec))
	require.NoError(t, err)
	_, err = g.Run(context.Background())
	require.NoError(t, err)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["wells_rows_inserted_total"])
	assert.True(t, names["wells_runs_total"])
}
