package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/table"
)

type transformFlags struct {
	pipeline string
	in       string
	outJSON  string
	outTable string
}

func (a *app) transformCmd() *cobra.Command {
	var f transformFlags
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Run a YAML table pipeline over a CSV file",
		Long: `Reads --in as CSV, applies the steps in --pipeline and writes the result
as JSON records to --out-json or replaces the --out-table table in the
database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (f.outJSON == "") == (f.outTable == "") {
				return errors.New("exactly one of --out-json or --out-table is required")
			}
			return a.transform(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.pipeline, "pipeline", "", "YAML pipeline file")
	cmd.Flags().StringVar(&f.in, "in", "", "input CSV file")
	cmd.Flags().StringVar(&f.outJSON, "out-json", "", "write JSON records to this file")
	cmd.Flags().StringVar(&f.outTable, "out-table", "", "replace this database table with the result")
	_ = cmd.MarkFlagRequired("pipeline")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func (a *app) transform(cmd *cobra.Command, f transformFlags) error {
	ctx := cmd.Context()
	l, err := a.openLookup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	p, err := table.LoadPipeline(f.pipeline, l)
	if err != nil {
		return err
	}
	in, err := os.Open(f.in)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	t, err := table.ReadCSV(in)
	if err != nil {
		return err
	}

	out, err := p.Apply(ctx, t)
	if err != nil {
		return fmt.Errorf("apply pipeline: %w", err)
	}
	a.logger.Info("pipeline applied",
		zap.Int("steps", p.Len()), zap.Int("rows_in", t.Len()), zap.Int("rows_out", out.Len()))

	if f.outJSON != "" {
		w, err := os.Create(f.outJSON)
		if err != nil {
			return err
		}
		if err := table.WriteJSON(w, out); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", out.Len(), f.outJSON)
		return nil
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := table.ToSQL(ctx, db, f.outTable, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to table %s\n", out.Len(), f.outTable)
	return nil
}
