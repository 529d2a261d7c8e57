package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnwards/wells/internal/lookup"
)

var errNoMatch = errors.New("no match")

func (a *app) lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve reference codes against the configured backend",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KIND CODE",
			Short: "Print the value of CODE within KIND",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLookup(cmd, func(l lookup.Backend) error {
					v, ok, err := l.Value(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%s %s: %w", args[0], args[1], errNoMatch)
					}
					fmt.Fprintln(cmd.OutOrStdout(), v)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "valid CODE",
			Short: "Report whether CODE exists for any kind",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLookup(cmd, func(l lookup.Backend) error {
					ok, err := l.IsValid(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), ok)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "code KIND VALUE",
			Short: "Print the code whose value within KIND is VALUE",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLookup(cmd, func(l lookup.Backend) error {
					c, ok, err := l.Code(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%s %q: %w", args[0], args[1], errNoMatch)
					}
					fmt.Fprintln(cmd.OutOrStdout(), c)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "load FILE",
			Short: "Load kind,code,value CSV rows into the backend",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				entries, err := lookup.ReadEntries(f)
				if err != nil {
					return err
				}
				return a.withLookup(cmd, func(l lookup.Backend) error {
					if err := l.Put(cmd.Context(), entries); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "loaded %d entries\n", len(entries))
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *app) withLookup(cmd *cobra.Command, fn func(lookup.Backend) error) error {
	l, err := a.openLookup(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()
	return fn(l)
}
