package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/johnwards/wells/internal/domain"
	"github.com/johnwards/wells/internal/store"
)

// errViolations makes verify exit non-zero.
var errViolations = errors.New("integrity violations found")

func (a *app) statsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print row counts and a sample property breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			s := store.New(db)

			counts, err := s.Counts(ctx)
			if err != nil {
				return err
			}
			sample, err := s.Sample(ctx)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			runs, err := s.Runs.List(ctx, 5)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Counts []domain.TableCount `json:"counts"`
					Sample *store.Sample       `json:"sample,omitempty"`
					Runs   []*domain.Run       `json:"runs"`
				}{counts, sample, runs})
			}
			writeCounts(cmd, counts)
			if sample != nil {
				writeSample(cmd, sample)
			}
			writeRuns(cmd, runs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printCounts(cmd *cobra.Command, s *store.Store) error {
	counts, err := s.Counts(cmd.Context())
	if err != nil {
		return err
	}
	writeCounts(cmd, counts)
	return nil
}

func writeCounts(cmd *cobra.Command, counts []domain.TableCount) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
	}
	_ = w.Flush()
}

func writeSample(cmd *cobra.Command, s *store.Sample) {
	out := cmd.OutOrStdout()
	p := s.Property
	fmt.Fprintf(out, "\nsample property %q: %d wells in %s\n", p.Name, p.QuantityOfWells, p.Location)
	fmt.Fprintf(out, "  products: %v\n", s.Products)
	if s.Month == "" {
		return
	}
	fmt.Fprintf(out, "  %s %s\n", s.Month, s.ProductType)
	for _, m := range s.ProductionMetrics {
		fmt.Fprintf(out, "    %-24s %12.2f\n", m.MetricName, m.MetricValue)
	}
	for _, m := range s.SalesMetrics {
		name := m.Type
		if m.TaxType != "" {
			name += " (" + m.TaxType + ")"
		}
		fmt.Fprintf(out, "    %-24s %12.2f\n", name, m.Value)
	}
}

func writeRuns(cmd *cobra.Command, runs []*domain.Run) {
	if len(runs) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.StartedAt, r.Status, r.Error)
	}
	_ = w.Flush()
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check generated data against the integrity rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			violations, err := store.New(db).Check(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(violations) == 0 {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "%s: %d rows\n", v.Rule, v.Rows)
			}
			return fmt.Errorf("%w: %d rules", errViolations, len(violations))
		},
	}
}
