/*
Package cli provides command-line helpers shared by the runctl commands.

Output Formatting:

Command results can be rendered as text, JSON or CSV:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Values implementing TextRenderer control their own text output. CSV output
requires a Table.

Exit Codes:

ExitCode maps a command error to the process exit status so scripts can tell
a protected-file abort or a held lock apart from other failures.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
