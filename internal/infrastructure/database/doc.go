// Package database provides SQLite connectivity and schema migrations for
// jobtrack.
//
// Connections are opened with foreign keys enforced, a busy timeout, and
// optionally WAL journaling. The pool is limited to a single connection
// because SQLite serialises writers.
//
// Migrations are passed in as an fs.FS (normally the embedded
// migrations package) so tests can supply their own set:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Every query in the repositories built on this package uses ? placeholders.
package database
