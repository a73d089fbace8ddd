package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/rundir/pkg/cli"
	"mercator-hq/rundir/pkg/rundir"
)

// cleanFlagValues holds the flags shared by clean and plan.
type cleanFlagValues struct {
	roots     []string
	keep      int
	protect   []string
	noProtect bool
	strict    bool
	dryRun    bool
	output    string
}

var (
	cleanFlags cleanFlagValues
	planFlags  cleanFlagValues
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Rotate run directories",
	Long: `Run a cleaning pass over one or more roots.

The most recent runs are kept (active runs always survive), older runs are
permanently deleted from the archive and active runs are moved into the
archive. The pass aborts without changes if any file under the archive ends
with a protected suffix.

Examples:
  # Clean every configured root
  runctl clean --config runctl.yaml

  # Keep the three most recent runs of one root
  runctl clean --root ./experiments --keep 3

  # Preview the pass as JSON
  runctl clean --root ./experiments --dry-run --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeClean(cmd, "clean", cleanFlags)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a cleaning pass would do",
	Long: `Compute a cleaning pass without deleting or moving anything.

The protected file check still runs, so plan fails exactly when clean would.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := planFlags
		flags.dryRun = true
		return executeClean(cmd, "plan", flags)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd, planCmd)

	addCleanFlags(cleanCmd, &cleanFlags)
	cleanCmd.Flags().BoolVar(&cleanFlags.dryRun, "dry-run", false, "compute the pass without changing anything")
	addCleanFlags(planCmd, &planFlags)
}

func addCleanFlags(cmd *cobra.Command, f *cleanFlagValues) {
	cmd.Flags().StringSliceVarP(&f.roots, "root", "r", nil, "root directory, repeatable (default: all configured roots)")
	cmd.Flags().IntVarP(&f.keep, "keep", "k", 0, "number of most recent runs to keep (default: from config)")
	cmd.Flags().StringSliceVar(&f.protect, "protect", nil, "protected file suffixes, e.g. .py,.ipynb (default: from config)")
	cmd.Flags().BoolVar(&f.noProtect, "no-protect", false, "disable the protected file check")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on run names that cannot be decoded")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text", "output format: text, json, csv")
}

func executeClean(cmd *cobra.Command, name string, flags cleanFlagValues) error {
	if flags.keep < 0 {
		return cli.NewConfigError("--keep", "must be at least 1")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := runClean(cmd.Context(), a, flags, cmd.OutOrStdout()); err != nil {
		return cli.NewCommandError(name, err)
	}
	return nil
}

// runClean cleans each root in turn. A failing root does not stop the
// others; the errors are joined.
func runClean(ctx context.Context, a *app, flags cleanFlagValues, w io.Writer) error {
	format, err := cli.ParseOutputFormat(flags.output)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	roots, err := a.resolveRoots(flags.roots)
	if err != nil {
		return err
	}

	var (
		view reportView
		errs []error
	)
	for _, root := range roots {
		opts := a.cleanOptions(root)
		if flags.keep > 0 {
			opts.Keep = flags.keep
		}
		if flags.protect != nil {
			opts.ProtectedFileTypes = flags.protect
		}
		if flags.noProtect {
			opts.ProtectedFileTypes = []string{}
		}
		opts.Strict = opts.Strict || flags.strict
		opts.DryRun = flags.dryRun

		report, err := cleanRoot(ctx, a, root.Path, opts)
		entry := reportEntry{Report: report}
		if err != nil {
			entry.Error = err.Error()
			errs = append(errs, err)
		}
		if entry.Report == nil {
			entry.Report = &rundir.Report{Root: root.Path, Keep: opts.Keep, DryRun: opts.DryRun}
		}
		view.Reports = append(view.Reports, entry)
	}

	if err := formatter.FormatTo(w, view); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func cleanRoot(ctx context.Context, a *app, root string, opts rundir.CleanOptions) (*rundir.Report, error) {
	mgr, err := a.manager(root)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return mgr.Plan(ctx, opts)
	}

	var report *rundir.Report
	err = a.withLock(ctx, mgr.Root(), func() error {
		var cleanErr error
		report, cleanErr = mgr.Clean(ctx, opts)
		return cleanErr
	})
	return report, err
}
