// Package sqlite stores records in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on entities(kind, created_at) for ordered listings
const currentSchemaVersion = 1

// Backend is a store.Backend over SQLite with WAL mode.
type Backend struct {
	db *sql.DB
}

var _ store.Backend = (*Backend)(nil)

// body holds the kind specific record fields.
type body struct {
	BoardID       entity.ID               `json:"boardId,omitempty"`
	Color         entity.Color            `json:"color,omitempty"`
	StepIDs       []entity.ID             `json:"stepIds,omitempty"`
	DefaultStepID entity.ID               `json:"defaultStepId,omitempty"`
	FlowID        entity.ID               `json:"flowId,omitempty"`
	TaskStepIDs   map[entity.ID]entity.ID `json:"taskStepIds,omitempty"`
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Backend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Backend{db: db}, nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Records implements store.Backend.
func (b *Backend) Records(ctx context.Context, kind entity.Kind) ([]store.Record, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at, body
		FROM entities
		WHERE kind = ?
		ORDER BY created_at ASC, id ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s records: %w", kind, err)
	}
	defer rows.Close()

	var recs []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", kind, err)
	}
	return recs, nil
}

// Record implements store.Backend.
func (b *Backend) Record(ctx context.Context, kind entity.Kind, id entity.ID) (store.Record, bool, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at, body
		FROM entities
		WHERE kind = ? AND id = ?
	`, string(kind), string(id))

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	return rec, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (store.Record, error) {
	var (
		rec  store.Record
		id   string
		data string
	)
	if err := row.Scan(&id, &rec.Name, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt, &data); err != nil {
		if err == sql.ErrNoRows {
			return rec, err
		}
		return rec, fmt.Errorf("scan record: %w", err)
	}
	rec.ID = entity.ID(id)

	var extra body
	if err := json.Unmarshal([]byte(data), &extra); err != nil {
		return rec, fmt.Errorf("decode body of %s: %w", id, err)
	}
	rec.BoardID = extra.BoardID
	rec.Color = extra.Color
	rec.StepIDs = extra.StepIDs
	rec.DefaultStepID = extra.DefaultStepID
	rec.FlowID = extra.FlowID
	rec.TaskStepIDs = extra.TaskStepIDs
	return rec, nil
}

// PutRecord implements store.Backend.
func (b *Backend) PutRecord(ctx context.Context, kind entity.Kind, rec store.Record) error {
	data, err := json.Marshal(body{
		BoardID:       rec.BoardID,
		Color:         rec.Color,
		StepIDs:       rec.StepIDs,
		DefaultStepID: rec.DefaultStepID,
		FlowID:        rec.FlowID,
		TaskStepIDs:   rec.TaskStepIDs,
	})
	if err != nil {
		return fmt.Errorf("encode body of %s: %w", rec.ID, err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO entities (kind, id, name, description, created_at, updated_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			body = excluded.body
	`, string(kind), string(rec.ID), rec.Name, rec.Description, rec.CreatedAt, rec.UpdatedAt, string(data))
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, rec.ID, err)
	}
	return nil
}

// DeleteRecord implements store.Backend.
func (b *Backend) DeleteRecord(ctx context.Context, kind entity.Kind, id entity.ID) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM entities WHERE kind = ? AND id = ?`, string(kind), string(id)); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the listing index.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entities_kind_created
		ON entities(kind, created_at, id)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *Backend) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := b.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
