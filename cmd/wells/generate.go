package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/datagen"
	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/metrics"
	"github.com/johnwards/wells/internal/seed"
	"github.com/johnwards/wells/internal/store"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			v, err := database.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and insert the reference vocabularies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := seed.Seed(ctx, db); err != nil {
				return fmt.Errorf("seed data: %w", err)
			}
			a.logger.Info("reference data seeded")
			fmt.Fprintln(cmd.OutOrStdout(), "reference data seeded")
			return nil
		},
	}
}

type generateFlags struct {
	properties   int
	products     int
	benchmarks   int
	months       int
	productTypes []string
}

func (a *app) generateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Seed and run every generation stage",
		Long: `Runs the reference seeder, entity generator, association builder, metric
generator and differential generator in order. Stages whose output already
exists are skipped, so repeated runs leave the data unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Generation
			fl := cmd.Flags()
			if fl.Changed("properties") {
				cfg.NumProperties = f.properties
			}
			if fl.Changed("products") {
				cfg.NumProducts = f.products
			}
			if fl.Changed("benchmarks") {
				cfg.NumBenchmarks = f.benchmarks
			}
			if fl.Changed("months") {
				cfg.NumMonths = f.months
			}
			if fl.Changed("product-types") {
				cfg.ProductTypes = f.productTypes
			}
			return a.generate(cmd, cfg)
		},
	}
	cmd.Flags().IntVar(&f.properties, "properties", 0, "number of properties (overrides config)")
	cmd.Flags().IntVar(&f.products, "products", 0, "number of products (overrides config)")
	cmd.Flags().IntVar(&f.benchmarks, "benchmarks", 0, "number of benchmarks (overrides config)")
	cmd.Flags().IntVar(&f.months, "months", 0, "number of production months (overrides config)")
	cmd.Flags().StringSliceVar(&f.productTypes, "product-types", nil, "product types to generate, e.g. oil,gas")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, cfg datagen.Config) error {
	ctx := cmd.Context()
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	s := store.New(db)
	rec := metrics.NewRecorder()
	g, err := datagen.New(s, cfg, a.logger, datagen.WithRecorder(rec))
	if err != nil {
		return err
	}

	report, runErr := g.Run(ctx)
	if report != nil {
		printReport(cmd, report)
	}
	if a.cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.logger.Warn("write metrics textfile failed", zap.Error(err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("generate: %w", runErr)
	}
	return printCounts(cmd, s)
}

func printReport(cmd *cobra.Command, r *datagen.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s (seed %d)\n", r.RunID, r.Seed)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tROWS\tSTATUS\tDURATION")
	for _, st := range r.Stages {
		status := "done"
		if st.Skipped {
			status = "skipped"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", st.Stage, st.Rows, status, st.Duration.Round(time.Millisecond))
	}
	_ = w.Flush()
}
