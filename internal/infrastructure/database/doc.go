// Package database provides SQLite connectivity for wxbridge.
//
// It manages:
//   - Connection lifecycle with WAL mode and busy timeout pragmas
//   - Embedded schema migrations (compiled into the binary)
//   - Health checks
//
// SQLite is configured for a single writer with concurrent readers, which
// matches the pipeline: the bridge is the only writer, the REST façade reads.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/wxbridge.db", WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
