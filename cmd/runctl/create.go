package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/rundir/pkg/cli"
)

var createFlags struct {
	root   string
	autoID bool
	output string
}

var createCmd = &cobra.Command{
	Use:   "create RUN_NAME [UNIQUE_ID]",
	Short: "Create a run directory in the active location",
	Long: `Create a timestamped run directory in the active location of a root and
print its path.

The directory is named Run--<run_name>-<filler><unique_id>-<YYYYMMDDHHMMSS>
with the current UTC time. Spaces in the run name become underscores.

Examples:
  # Create a run with an explicit unique ID
  runctl create mnist 42 --root ./experiments

  # Generate a UUID as the unique ID
  runctl create "resnet sweep" --auto-id --root ./experiments`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		uniqueID := ""
		if len(args) == 2 {
			uniqueID = args[1]
		}
		if createFlags.autoID {
			if uniqueID != "" {
				return cli.NewConfigError("--auto-id", "cannot be combined with an explicit UNIQUE_ID")
			}
			uniqueID = uuid.NewString()
		}

		if err := runCreate(cmd.Context(), a, createFlags.root, args[0], uniqueID, createFlags.output, cmd.OutOrStdout()); err != nil {
			return cli.NewCommandError("create", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createFlags.root, "root", "r", "", "root directory (default: the single configured root)")
	createCmd.Flags().BoolVar(&createFlags.autoID, "auto-id", false, "generate a UUID as the unique ID")
	createCmd.Flags().StringVarP(&createFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func runCreate(ctx context.Context, a *app, flagRoot, runName, uniqueID, output string, w io.Writer) error {
	format, err := cli.ParseOutputFormat(output)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	root, err := a.singleRoot(flagRoot)
	if err != nil {
		return err
	}
	mgr, err := a.manager(root.Path)
	if err != nil {
		return err
	}

	var name string
	err = a.withLock(ctx, mgr.Root(), func() error {
		var createErr error
		name, createErr = mgr.Create(ctx, runName, uniqueID)
		return createErr
	})
	if err != nil {
		return err
	}

	return formatter.FormatTo(w, createResult{
		Root: mgr.Root(),
		Name: name,
		Path: filepath.Join(mgr.ActivePath(), name),
	})
}
