package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/blob"
	"github.com/johnwards/wells/internal/export"
)

func (a *app) exportCmd() *cobra.Command {
	var name, format, dest string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump a table as CSV or JSON to a directory or s3://bucket/prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			dst, err := blob.Open(ctx, dest, a.cfg.S3)
			if err != nil {
				return err
			}
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			res, err := export.Table(ctx, db, name, f, dst)
			if err != nil {
				return err
			}
			a.logger.Info("table exported",
				zap.String("table", name), zap.String("dest", dest), zap.Int("rows", res.Rows))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", res.Rows, res.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "table", "", "table to export")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().StringVar(&dest, "dest", ".", "directory or s3://bucket/prefix")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
