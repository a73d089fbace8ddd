package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/rundir/pkg/cli"
	"mercator-hq/rundir/pkg/journal"
)

var historyFlags struct {
	root      string
	operation string
	since     string
	limit     int
	output    string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled operations",
	Long: `Show create and clean operations recorded in the journal, newest first.

Examples:
  # Operations of the last day
  runctl history --since 24h

  # Cleaning passes of one root as CSV
  runctl history --root ./experiments --operation clean --output csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := runHistory(cmd.Context(), a, time.Now(), cmd.OutOrStdout()); err != nil {
			return cli.NewCommandError("history", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyFlags.root, "root", "r", "", "filter by root directory")
	historyCmd.Flags().StringVar(&historyFlags.operation, "operation", "", "filter by operation: create, clean")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only records since a duration ago (24h) or an RFC3339 time")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "max results")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runHistory(ctx context.Context, a *app, now time.Time, w io.Writer) error {
	if a.journal == nil {
		return cli.NewConfigError("journal.enabled", "the journal is disabled")
	}

	format, err := cli.ParseOutputFormat(historyFlags.output)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	q := &journal.Query{Limit: historyFlags.limit}
	if historyFlags.root != "" {
		q.Root = filepath.Clean(historyFlags.root)
	}
	switch op := journal.Operation(historyFlags.operation); op {
	case "", journal.OperationCreate, journal.OperationClean:
		q.Operation = op
	default:
		return fmt.Errorf("unknown operation %q (supported: create, clean)", historyFlags.operation)
	}
	if q.Since, err = parseSince(historyFlags.since, now); err != nil {
		return err
	}

	records, err := a.journal.Query(ctx, q)
	if err != nil {
		return err
	}
	return formatter.FormatTo(w, historyView{Records: records})
}
