// Package database provides SQLite connectivity for SmartHouse Core.
//
// It opens the database file with WAL mode and a busy timeout, limits the
// pool to a single writer, and applies embedded schema migrations.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql (with an
// optional matching .down.sql) and are applied once each, oldest first.
package database
