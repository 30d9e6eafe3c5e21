package database

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/hangsome/system-builder-studio/migrations"
)

// openMigratingDB opens a temporary database that migrates from fsys.
func openMigratingDB(t *testing.T, fsys fstest.MapFS) *DB {
	t.Helper()

	cfg := Config{Path: filepath.Join(t.TempDir(), "studio.db"), BusyTimeout: 5}
	if fsys != nil {
		cfg.Migrations = fsys
	}
	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	return db
}

func tableColumns(t *testing.T, db *DB, table string) []string {
	t.Helper()
	var cols []string
	if err := db.Sqlx().Select(&cols, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table); err != nil {
		t.Fatalf("reading columns of %s: %v", table, err)
	}
	return cols
}

// ─── Studio schema ──────────────────────────────────────────────────

func TestMigrate_LayoutsSchema(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{
		Path:        filepath.Join(t.TempDir(), "studio.db"),
		BusyTimeout: 5,
		Migrations:  migrations.FS,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	before, err := db.SchemaStatus(ctx)
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if before.UpToDate() || before.Applied != 0 {
		t.Fatalf("fresh database status = %+v, want pending migrations", before)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	want := []string{"name", "description", "data", "component_count", "wire_count", "created_at", "updated_at"}
	if got := tableColumns(t, db, "layouts"); !slices.Equal(got, want) {
		t.Errorf("layouts columns = %v, want %v", got, want)
	}

	after, err := db.SchemaStatus(ctx)
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if !after.UpToDate() {
		t.Errorf("Pending = %v after Migrate()", after.Pending)
	}
	if after.Version != "20260301_090000" {
		t.Errorf("Version = %q, want 20260301_090000", after.Version)
	}

	// A second run has nothing to do.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

// ─── Runner behaviour ───────────────────────────────────────────────

func TestMigrate_AppliesOnlyNewVersions(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"20260301_090000_layouts.up.sql": {Data: []byte(
			"CREATE TABLE layouts (name TEXT PRIMARY KEY, data TEXT NOT NULL);")},
	}
	db := openMigratingDB(t, fsys)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// A later release adds a column; only that file runs.
	fsys["20260415_120000_layout_thumbnail.up.sql"] = &fstest.MapFile{Data: []byte(
		"ALTER TABLE layouts ADD COLUMN thumbnail TEXT NOT NULL DEFAULT '';")}

	status, err := db.SchemaStatus(ctx)
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if want := []string{"20260415_120000_layout_thumbnail"}; !slices.Equal(status.Pending, want) {
		t.Errorf("Pending = %v, want %v", status.Pending, want)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() after adding a file error = %v", err)
	}
	if got := tableColumns(t, db, "layouts"); !slices.Contains(got, "thumbnail") {
		t.Errorf("layouts columns = %v, want thumbnail", got)
	}
	status, err = db.SchemaStatus(ctx)
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if status.Applied != 2 || status.Version != "20260415_120000" {
		t.Errorf("status = %+v, want 2 applied at 20260415_120000", status)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openMigratingDB(t, fstest.MapFS{
		"20260301_090000_layouts.up.sql": {Data: []byte(
			"CREATE TABLE layouts (name TEXT PRIMARY KEY);")},
		"20260302_090000_broken.up.sql": {Data: []byte(
			"CREATE TABLE scratch (id INTEGER); ALTER TABLE no_such_table ADD COLUMN x TEXT;")},
	})

	if err := db.Migrate(ctx); err == nil {
		t.Fatal("Migrate() with a broken migration expected error")
	}

	status, err := db.SchemaStatus(ctx)
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if status.Applied != 1 || status.Version != "20260301_090000" {
		t.Errorf("status = %+v, want the first migration kept", status)
	}
	if cols := tableColumns(t, db, "scratch"); len(cols) != 0 {
		t.Errorf("scratch table survived the failed migration: %v", cols)
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	db := openMigratingDB(t, nil)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
	status, err := db.SchemaStatus(ctx)
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if !status.UpToDate() || status.Applied != 0 || status.Version != "" {
		t.Errorf("status = %+v, want empty and up to date", status)
	}
}

// ─── File naming ────────────────────────────────────────────────────

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted by version, non-up files ignored", func(t *testing.T) {
		got, err := LoadMigrations(fstest.MapFS{
			"20260415_120000_thumbnail.up.sql": {Data: []byte("SELECT 2;")},
			"20260301_090000_layouts.up.sql":   {Data: []byte("SELECT 1;")},
			"20260301_090000_layouts.down.sql": {Data: []byte("DROP TABLE layouts;")},
			"README.md":                        {Data: []byte("notes")},
		})
		if err != nil {
			t.Fatalf("LoadMigrations() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Name != "layouts" || got[1].Name != "thumbnail" || got[0].SQL != "SELECT 1;" {
			t.Errorf("migrations = %+v", got)
		}
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"20260301_090000_a.up.sql": {Data: []byte("SELECT 1;")},
			"20260301_090000_b.up.sql": {Data: []byte("SELECT 1;")},
		})
		if err == nil {
			t.Error("LoadMigrations() with duplicate versions expected error")
		}
	})

	t.Run("malformed name", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"layouts.up.sql": {Data: []byte("SELECT 1;")},
		})
		if err == nil {
			t.Error("LoadMigrations() with malformed name expected error")
		}
	})

	t.Run("embedded studio migrations", func(t *testing.T) {
		got, err := LoadMigrations(migrations.FS)
		if err != nil {
			t.Fatalf("LoadMigrations() error = %v", err)
		}
		if len(got) == 0 || got[0].Name != "layouts" {
			t.Errorf("embedded migrations = %+v, want layouts first", got)
		}
	})
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		file        string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{"20260301_090000_layouts.up.sql", "20260301_090000", "layouts", true},
		{"20260415_120000_layout_thumbnail.up.sql", "20260415_120000", "layout_thumbnail", true},
		{"20260301_090000_layouts.down.sql", "", "", false},
		{"20260301_090000.up.sql", "", "", false},
		{"2026031_090000_layouts.up.sql", "", "", false},
		{"20260301_0900_layouts.up.sql", "", "", false},
		{"layouts.sql", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, ok := parseMigrationName(tt.file)
			if ok != tt.wantOK || version != tt.wantVersion || name != tt.wantName {
				t.Errorf("parseMigrationName(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.file, version, name, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
