package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/rundir/pkg/cli"
)

var statusFlags struct {
	roots  []string
	output string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the runs under each root",
	Long: `List the active and archived runs of each root, newest first, with the
creation time decoded from their names. Names that cannot be decoded are
listed separately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := runStatus(cmd.Context(), a, statusFlags.roots, statusFlags.output, time.Now(), cmd.OutOrStdout()); err != nil {
			return cli.NewCommandError("status", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringSliceVarP(&statusFlags.roots, "root", "r", nil, "root directory, repeatable (default: all configured roots)")
	statusCmd.Flags().StringVarP(&statusFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runStatus(ctx context.Context, a *app, flagRoots []string, output string, now time.Time, w io.Writer) error {
	format, err := cli.ParseOutputFormat(output)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	roots, err := a.resolveRoots(flagRoots)
	if err != nil {
		return err
	}

	for _, root := range roots {
		mgr, err := a.manager(root.Path)
		if err != nil {
			return err
		}
		status, err := mgr.Status(ctx)
		if err != nil {
			return err
		}
		if err := formatter.FormatTo(w, statusView{Status: status, Now: now}); err != nil {
			return err
		}
	}
	return nil
}
