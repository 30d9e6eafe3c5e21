package database

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"
)

// upSuffix marks a migration file. Files are named
// YYYYMMDD_HHMMSS_description.up.sql and applied in version order.
const upSuffix = ".up.sql"

const schemaMigrationsDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	applied_at TEXT NOT NULL
)`

// Migration is one schema change read from the migrations filesystem.
type Migration struct {
	Version string // YYYYMMDD_HHMMSS
	Name    string
	SQL     string
}

// SchemaStatus reports how far the schema has been migrated.
type SchemaStatus struct {
	Version string   `json:"version"`
	Applied int      `json:"applied"`
	Pending []string `json:"pending"`
}

// UpToDate reports whether every known migration has been applied.
func (s SchemaStatus) UpToDate() bool {
	return len(s.Pending) == 0
}

// Migrate applies pending migrations in version order.
//
// Each migration runs in its own transaction. A failed migration is rolled
// back and stops the run; the ones before it stay applied, so re-running
// Migrate after a fix continues where it left off.
func (db *DB) Migrate(ctx context.Context) error {
	pending, _, err := db.pendingMigrations(ctx)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// SchemaStatus returns the latest applied version and the migrations
// still waiting to run.
func (db *DB) SchemaStatus(ctx context.Context) (SchemaStatus, error) {
	pending, applied, err := db.pendingMigrations(ctx)
	if err != nil {
		return SchemaStatus{}, err
	}

	status := SchemaStatus{
		Applied: len(applied),
		Pending: make([]string, 0, len(pending)),
	}
	if len(applied) > 0 {
		status.Version = applied[len(applied)-1]
	}
	for _, m := range pending {
		status.Pending = append(status.Pending, m.Version+"_"+m.Name)
	}
	return status, nil
}

// pendingMigrations returns the migrations not yet recorded in
// schema_migrations and the versions that are, both oldest first.
func (db *DB) pendingMigrations(ctx context.Context) (pending []Migration, applied []string, err error) {
	if _, err := db.x.ExecContext(ctx, schemaMigrationsDDL); err != nil {
		return nil, nil, fmt.Errorf("creating schema_migrations: %w", err)
	}
	if err := db.x.SelectContext(ctx, &applied,
		"SELECT version FROM schema_migrations ORDER BY version",
	); err != nil {
		return nil, nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	all, err := LoadMigrations(db.migrations)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range all {
		if _, done := slices.BinarySearch(applied, m.Version); !done {
			pending = append(pending, m)
		}
	}
	return pending, applied, nil
}

func (db *DB) apply(ctx context.Context, m Migration) error {
	tx, err := db.x.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}

// LoadMigrations reads every *.up.sql file at the root of fsys, oldest
// first. A nil fsys has no migrations.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	if fsys == nil {
		return nil, nil
	}

	files, err := fs.Glob(fsys, "*"+upSuffix)
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(files))
	for _, file := range files {
		version, name, ok := parseMigrationName(file)
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %q", file)
		}
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		return strings.Compare(a.Version, b.Version)
	})
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %s", migrations[i].Version)
		}
	}
	return migrations, nil
}

// parseMigrationName splits "20260301_090000_layouts.up.sql" into its
// version ("20260301_090000") and name ("layouts").
func parseMigrationName(file string) (version, name string, ok bool) {
	base, found := strings.CutSuffix(file, upSuffix)
	if !found {
		return "", "", false
	}
	date, rest, found := strings.Cut(base, "_")
	if !found || len(date) != len("20060102") {
		return "", "", false
	}
	clock, name, found := strings.Cut(rest, "_")
	if !found || len(clock) != len("150405") || name == "" {
		return "", "", false
	}
	return date + "_" + clock, name, true
}
