// Package journal records the history of run directory operations.
//
// Every create and clean pass handled by a rundir.Manager can be appended to a
// Store. The journal answers "what was deleted from this root and when", which
// the directory tree itself cannot once a pass has run.
//
// # Backends
//
//   - SQLite (NewSQLiteStore): persistent storage. Driver "sqlite" uses the
//     pure-Go modernc.org/sqlite driver, driver "sqlite3" uses
//     github.com/mattn/go-sqlite3 and requires cgo.
//   - Memory (NewMemoryStore): for tests and one-shot CLI runs.
//
// # Basic Usage
//
//	store, err := journal.NewSQLiteStore(&journal.SQLiteConfig{
//	    Driver: "sqlite",
//	    Path:   "data/rundir.db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	records, err := store.Query(ctx, &journal.Query{Root: "/srv/experiments", Limit: 20})
package journal
