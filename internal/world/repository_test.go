package world

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hangsome/system-builder-studio/internal/infrastructure/database"
	"github.com/hangsome/system-builder-studio/migrations"
)

// setupTestDB opens a temporary studio database migrated to the current
// layouts schema.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "layouts.db"),
		BusyTimeout: 5,
		Migrations:  migrations.FS,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.Sqlx()
}

func TestSQLiteRepositorySaveGet(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	l, err := Scenario("classroom-temperature")
	if err != nil {
		t.Fatal(err)
	}
	l.Name = "period-3"

	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := repo.Get(ctx, "period-3")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Components) != len(l.Components) || len(got.Wires) != len(l.Wires) {
		t.Errorf("Get() = %d components / %d wires, want %d / %d",
			len(got.Components), len(got.Wires), len(l.Components), len(l.Wires))
	}
	if got.Router == nil || got.Router.SSID != "School_WiFi" {
		t.Errorf("Router = %+v", got.Router)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("Get(missing) = %v, want ErrLayoutNotFound", err)
	}
}

func TestSQLiteRepositoryUpsertAndList(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	if err := repo.Save(ctx, Layout{Name: "a", Description: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, Layout{Name: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, Layout{Name: "a", Description: "second"}); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() = %d entries, want 2", len(list))
	}
	if list[0].Name != "a" || list[0].Description != "second" {
		t.Errorf("List()[0] = %+v, want updated layout a first", list[0])
	}

	if err := repo.Save(ctx, Layout{}); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Save(unnamed) = %v, want ErrInvalidLayout", err)
	}
}

func TestSQLiteRepositoryDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, Layout{Name: "tmp"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "tmp"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "tmp"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("Delete(again) = %v, want ErrLayoutNotFound", err)
	}
}
