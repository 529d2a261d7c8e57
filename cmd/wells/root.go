package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/config"
	"github.com/johnwards/wells/internal/database"
	"github.com/johnwards/wells/internal/logging"
	"github.com/johnwards/wells/internal/lookup"
)

// app carries global flags and the state loaded from them.
type app struct {
	out io.Writer

	configPath string
	envFile    string
	dbPath     string
	seed       uint64

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "wells",
		Short:         "Generate synthetic oil and gas production data",
		Long:          `Seeds reference data and generates properties, products, production months, fact rows, metrics and price differentials into SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file loaded before reading the environment (default .env)")
	pf.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides WELLS_DB)")
	pf.Uint64Var(&a.seed, "seed", 0, "random seed; 0 seeds from the clock (overrides WELLS_SEED)")

	root.AddCommand(
		a.migrateCmd(),
		a.seedCmd(),
		a.generateCmd(),
		a.statsCmd(),
		a.verifyCmd(),
		a.lookupCmd(),
		a.transformCmd(),
		a.exportCmd(),
	)
	return root
}

// load reads configuration, applies flag overrides and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = a.dbPath
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generation.Seed = a.seed
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// openDB opens the configured database and applies pending migrations.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func (a *app) openLookup(ctx context.Context) (lookup.Backend, error) {
	a.logger.Debug("opening lookup backend",
		zap.String("backend", a.cfg.Lookup.Backend),
		zap.String("dsn", logging.SanitizeConnectionString(a.cfg.Lookup.DSN)))
	b, err := lookup.Open(ctx, a.cfg.Lookup)
	if err != nil {
		return nil, fmt.Errorf("open lookup: %s", logging.SanitizeError(err))
	}
	return b, nil
}
