// Runctl creates and rotates experiment run directories.
//
// Every managed root holds an active location for runs in progress and an
// archive location for retired runs. A cleaning pass keeps the most recent
// runs, deletes the rest from the archive and moves active runs into it,
// unless the archive contains protected source files.
//
// Usage:
//
//	# Create a run directory and print its path
//	runctl create mnist --root ./experiments --auto-id
//
//	# Preview a cleaning pass
//	runctl plan --root ./experiments --keep 5
//
//	# Clean every configured root
//	runctl clean --config runctl.yaml
//
//	# Show the runs under a root
//	runctl status --root ./experiments
//
//	# Show recent journaled operations
//	runctl history --since 24h
//
//	# Clean on a cron schedule
//	runctl schedule --config runctl.yaml
package main

func main() {
	Execute()
}
