// Package database provides SQLite connectivity for the studio.
//
// The database is optional: it only backs saved layouts. The package
// manages the connection (WAL mode, busy timeout, single writer) and
// applies embedded schema migrations.
//
// Usage:
//
//	dbCfg := database.ConfigFrom(cfg.Database)
//	dbCfg.Migrations = migrations.FS
//	db, err := database.Open(ctx, dbCfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
//	repo := world.NewSQLiteRepository(db.Sqlx())
//
// Migration files live in the top-level migrations package and are named
// YYYYMMDD_HHMMSS_description.up.sql. There are no down migrations:
// changes are additive, so new columns must be nullable or carry a default.
// SchemaStatus reports the applied version for /health and /status.
package database
