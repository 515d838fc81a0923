// Package sqlite persists the player's save data, inventory contents
// and crafting history, in a local SQLite database. Grid occupancy is
// deliberately not stored; the scene is rebuilt by the host on load.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/erin-fowler/buildmode/internal/game/inventory"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store wraps the save database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies all pending
// migrations.
//
// Precondition: path is a writable file path, or ":memory:".
// Postcondition: the returned Store is ready for queries; the caller
// must Close it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %q: %w", path, err)
	}
	// The pure-Go driver serializes writers; a single connection avoids
	// SQLITE_BUSY on concurrent statements.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlite: set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("sqlite: run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveInventory replaces the stored inventory with the given stacks, in
// slot order, in one transaction.
//
// Postcondition: LoadInventory returns exactly these stacks.
func (s *Store) SaveInventory(ctx context.Context, stacks []inventory.Stack) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_stacks`); err != nil {
		return fmt.Errorf("sqlite: clearing inventory: %w", err)
	}
	for slot, st := range stacks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_stacks (slot, instance_id, def_id, quantity) VALUES (?, ?, ?, ?)`,
			slot, st.InstanceID, st.DefID, st.Quantity,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting slot %d: %w", slot, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}

// LoadInventory returns the stored inventory stacks in slot order. An
// empty database yields an empty slice, not an error.
func (s *Store) LoadInventory(ctx context.Context) ([]inventory.Stack, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instance_id, def_id, quantity FROM inventory_stacks ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading inventory: %w", err)
	}
	defer rows.Close()

	var stacks []inventory.Stack
	for rows.Next() {
		var st inventory.Stack
		if err := rows.Scan(&st.InstanceID, &st.DefID, &st.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scanning stack: %w", err)
		}
		stacks = append(stacks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: reading inventory: %w", err)
	}
	return stacks, nil
}

// RecordCraft appends one craft of the given recipe to the history.
func (s *Store) RecordCraft(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return fmt.Errorf("sqlite: recipe ID must not be empty")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO craft_log (recipe_id) VALUES (?)`, recipeID); err != nil {
		return fmt.Errorf("sqlite: recording craft of %q: %w", recipeID, err)
	}
	return nil
}

// CraftCounts returns how many times each recipe has been crafted.
func (s *Store) CraftCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_id, COUNT(*) FROM craft_log GROUP BY recipe_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting crafts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scanning craft count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: reading craft counts: %w", err)
	}
	return counts, nil
}
