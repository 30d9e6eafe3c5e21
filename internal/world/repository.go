package world

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository persists named layouts.
type Repository interface {
	// Save inserts or replaces the layout with l.Name.
	Save(ctx context.Context, l Layout) error

	// Get returns the layout with the given name.
	// Returns ErrLayoutNotFound if it does not exist.
	Get(ctx context.Context, name string) (Layout, error)

	// List returns summaries of all saved layouts, most recently updated first.
	List(ctx context.Context) ([]LayoutSummary, error)

	// Delete removes a layout.
	// Returns ErrLayoutNotFound if it does not exist.
	Delete(ctx context.Context, name string) error
}

// LayoutSummary describes a saved layout without its contents.
type LayoutSummary struct {
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Components  int       `json:"components" db:"component_count"`
	Wires       int       `json:"wires" db:"wire_count"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// layoutRow is the layouts table row.
type layoutRow struct {
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	Data           string    `db:"data"`
	ComponentCount int       `db:"component_count"`
	WireCount      int       `db:"wire_count"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// SQLiteRepository implements Repository using the layouts table.
type SQLiteRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository over an open SQLite connection
// that has been migrated.
func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		now: time.Now,
	}
}

// Save inserts or replaces a layout.
func (r *SQLiteRepository) Save(ctx context.Context, l Layout) error {
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLayout)
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}

	now := r.now().UTC()
	row := layoutRow{
		Name:           l.Name,
		Description:    l.Description,
		Data:           string(data),
		ComponentCount: len(l.Components),
		WireCount:      len(l.Wires),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query := `
		INSERT INTO layouts (name, description, data, component_count, wire_count, created_at, updated_at)
		VALUES (:name, :description, :data, :component_count, :wire_count, :created_at, :updated_at)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			data = excluded.data,
			component_count = excluded.component_count,
			wire_count = excluded.wire_count,
			updated_at = excluded.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("saving layout: %w", err)
	}
	return nil
}

// Get returns a layout by name.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (Layout, error) {
	var row layoutRow
	err := r.db.GetContext(ctx, &row, `
		SELECT name, description, data, component_count, wire_count, created_at, updated_at
		FROM layouts WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Layout{}, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
		}
		return Layout{}, fmt.Errorf("querying layout: %w", err)
	}

	var l Layout
	if err := json.Unmarshal([]byte(row.Data), &l); err != nil {
		return Layout{}, fmt.Errorf("decoding layout %s: %w", name, err)
	}
	return l, nil
}

// List returns summaries of all layouts, most recently updated first.
func (r *SQLiteRepository) List(ctx context.Context) ([]LayoutSummary, error) {
	out := []LayoutSummary{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT name, description, component_count, wire_count, updated_at
		FROM layouts ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	return out, nil
}

// Delete removes a layout by name.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	return nil
}
