// Package rundir manages the lifecycle of experiment run directories.
//
// A root directory is split into an active location, holding runs in progress,
// and an archive location, holding retired runs:
//
//	<root>/
//	  current_run/
//	    Run--<run_name>-<filler><unique_id>-<YYYYMMDDHHMMSS>/
//	  past_run/
//	    Run--<run_name>-<filler><unique_id>-<YYYYMMDDHHMMSS>/
//
// # Creating Runs
//
// Manager.Create makes one new, timestamp-named directory in the active
// location and returns its name:
//
//	mgr, err := rundir.NewManager("/srv/experiments")
//	if err != nil {
//	    return err
//	}
//	name, err := mgr.Create(ctx, "mnist", "42")
//
// # Cleaning
//
// Manager.Clean retires every active run into the archive and prunes the
// archive to the most recent Keep entries:
//
//  1. The active and archive listings are read. Hidden entries such as
//     .DS_Store are ignored.
//  2. retention.Select picks the archive entries to delete. Active entries are
//     never deleted on the pass that archives them.
//  3. The whole archive tree is scanned for protected file types (.py, .cpp and
//     .hpp by default). A match aborts the pass with a
//     *ProtectedFileDetectedError before anything is deleted or moved.
//  4. Selected archive entries are removed permanently.
//  5. Every active entry is moved into the archive.
//
// A failure during steps 4 or 5 is returned together with a Report describing
// what was already done. Nothing is rolled back.
//
// # Concurrency
//
// Manager does no locking. Two passes against the same root, or a Create racing
// a Clean, may see inconsistent listings. Callers serialize access per root,
// for example with package lock.
package rundir
