// Package datagen populates the production and sales schema with synthetic,
// internally consistent data.
package datagen

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/domain"
	"github.com/johnwards/wells/internal/metrics"
	"github.com/johnwards/wells/internal/seed"
	"github.com/johnwards/wells/internal/store"
)

// ErrMissingReference is returned when a reference vocabulary the run depends
// on is absent.
var ErrMissingReference = errors.New("missing reference data")

// Stage names in execution order.
const (
	StageSeed          = "seed"
	StageEntities      = "entities"
	StageAssociations  = "associations"
	StageFactGrid      = "fact_grid"
	StageMetrics       = "metrics"
	StageDifferentials = "differentials"
)

// StageReport describes one stage of a run.
type StageReport struct {
	Stage    string        `json:"stage"`
	Rows     int64         `json:"rows"`
	Skipped  bool          `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Report summarizes a run. Seed is the effective seed, which reproduces the
// run when fed back through Config.Seed.
type Report struct {
	RunID  string        `json:"runId"`
	Seed   uint64        `json:"seed"`
	Stages []StageReport `json:"stages"`
}

// Stage returns the report of the named stage.
func (r *Report) Stage(name string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder reports stage metrics to rec.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = rec }
}

// Generator runs the generation pipeline against a store.
type Generator struct {
	store    *store.Store
	cfg      Config
	seed     uint64
	rnd      *random
	logger   *zap.Logger
	recorder *metrics.Recorder

	refs references
}

// references are the vocabulary rows a run draws from.
type references struct {
	productTypes     []domain.ProductType
	salesMetricTypes []domain.SalesMetricType
	taxTypes         []domain.TaxType
	nglTypeID        int64
}

// New creates a Generator. The config is validated here so Run only fails on
// storage or reference problems.
func New(s *store.Store, cfg Config, logger *zap.Logger, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g := &Generator{
		store:  s,
		cfg:    cfg,
		seed:   seed,
		rnd:    newRandom(seed),
		logger: logger.Named("datagen"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type stage struct {
	name string
	skip func(ctx context.Context) (bool, error)
	run  func(ctx context.Context) (int64, error)
}

func (g *Generator) stages() []stage {
	return []stage{
		{StageSeed, g.seedComplete, g.seedReference},
		{StageEntities, g.atLeast("property", int64(g.cfg.NumProperties)), g.generateEntities},
		{StageAssociations, g.atLeast("property_product", 1), g.generateAssociations},
		{StageFactGrid, g.atLeast("property_product_type_production_month", 1), g.generateFactGrid},
		{StageMetrics, g.atLeast("production_metric", 1), g.generateMetrics},
		{StageDifferentials, g.atLeast("differential", 1), g.generateDifferentials},
	}
}

// Run executes every stage in order, skipping stages whose output already
// exists. The run is recorded in the audit log whatever the outcome. Batches
// committed before a failure are left in place.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	cfg := g.cfg
	cfg.Seed = g.seed
	snapshot, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	run, err := g.store.Runs.Start(ctx, string(snapshot))
	if err != nil {
		return nil, err
	}

	logger := g.logger.With(zap.String("run_id", run.ID), zap.Uint64("seed", g.seed))
	logger.Info("generation started")

	report := &Report{RunID: run.ID, Seed: g.seed}
	runErr := g.runStages(ctx, logger, report)

	status := domain.RunSucceeded
	if runErr != nil {
		status = domain.RunFailed
	}
	if err := g.store.Runs.Finish(context.WithoutCancel(ctx), run.ID, runErr); err != nil {
		logger.Error("failed to record run outcome", zap.Error(err))
	}
	g.recorder.RunFinished(status)

	if runErr != nil {
		logger.Error("generation failed", zap.Error(runErr))
		return report, runErr
	}
	logger.Info("generation finished")
	return report, nil
}

func (g *Generator) runStages(ctx context.Context, logger *zap.Logger, report *Report) error {
	for _, st := range g.stages() {
		if err := ctx.Err(); err != nil {
			return err
		}

		skip, err := st.skip(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		if skip {
			logger.Info("stage skipped, output already present", zap.String("stage", st.name))
			g.recorder.StageSkipped(st.name)
			report.Stages = append(report.Stages, StageReport{Stage: st.name, Skipped: true})
			continue
		}

		if st.name != StageSeed {
			if err := g.ensureReferences(ctx); err != nil {
				return err
			}
		}

		logger.Info("stage started", zap.String("stage", st.name))
		start := time.Now()
		rows, err := st.run(ctx)
		elapsed := time.Since(start)
		report.Stages = append(report.Stages, StageReport{Stage: st.name, Rows: rows, Duration: elapsed})
		if err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		g.recorder.StageDone(st.name, rows, elapsed)
		logger.Info("stage finished",
			zap.String("stage", st.name),
			zap.Int64("rows", rows),
			zap.Duration("duration", elapsed),
		)
	}
	return nil
}

func (g *Generator) atLeast(table string, n int64) func(ctx context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		count, err := g.store.Count(ctx, table)
		if err != nil {
			return false, err
		}
		return count >= n, nil
	}
}

func (g *Generator) seedComplete(ctx context.Context) (bool, error) {
	return seed.Complete(ctx, g.store.DB)
}

func (g *Generator) seedReference(ctx context.Context) (int64, error) {
	before, err := g.referenceRows(ctx)
	if err != nil {
		return 0, err
	}
	if err := seed.Seed(ctx, g.store.DB); err != nil {
		return 0, err
	}
	after, err := g.referenceRows(ctx)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

func (g *Generator) referenceRows(ctx context.Context) (int64, error) {
	var total int64
	for _, t := range []string{"product_type", "sales_metric_type", "tax_type"} {
		n, err := g.store.Count(ctx, t)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// ensureReferences loads the vocabularies once per run and applies the
// product type filter.
func (g *Generator) ensureReferences(ctx context.Context) error {
	if g.refs.productTypes != nil {
		return nil
	}

	all, err := g.store.Reference.ProductTypes(ctx)
	if err != nil {
		return err
	}
	salesTypes, err := g.store.Reference.SalesMetricTypes(ctx)
	if err != nil {
		return err
	}
	taxTypes, err := g.store.Reference.TaxTypes(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 || len(salesTypes) == 0 || len(taxTypes) == 0 {
		return fmt.Errorf("reference vocabularies not seeded: %w", ErrMissingReference)
	}

	refs := references{salesMetricTypes: salesTypes, taxTypes: taxTypes}
	byName := make(map[string]domain.ProductType, len(all))
	for _, pt := range all {
		byName[pt.Name] = pt
		if pt.Name == domain.ProductTypeNGL {
			refs.nglTypeID = pt.ID
		}
	}

	if len(g.cfg.ProductTypes) == 0 {
		refs.productTypes = all
	} else {
		seen := make(map[string]bool, len(g.cfg.ProductTypes))
		for _, name := range g.cfg.ProductTypes {
			pt, ok := byName[name]
			if !ok {
				return fmt.Errorf("product type %q: %w", name, ErrMissingReference)
			}
			if !seen[name] {
				seen[name] = true
				refs.productTypes = append(refs.productTypes, pt)
			}
		}
		slices.SortFunc(refs.productTypes, func(a, b domain.ProductType) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}

	g.refs = refs
	return nil
}
