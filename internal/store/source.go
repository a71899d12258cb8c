package store

import (
	"context"

	"github.com/roach88/todo-manager/internal/entity"
)

// Source is the entity store contract.
type Source interface {
	// Get returns the entity or nil when no entity of kind has that id.
	Get(ctx context.Context, kind entity.Kind, id entity.ID) (entity.Entity, error)

	// Set persists e and returns the saved copy. Ids and timestamps are
	// assigned on the copy; e itself is left untouched.
	Set(ctx context.Context, e entity.Entity) (entity.Entity, error)

	// Delete removes the entity. Deleting a missing entity is a no-op.
	Delete(ctx context.Context, kind entity.Kind, id entity.ID) error

	// List returns every saved entity of kind ordered by creation time, then id.
	List(ctx context.Context, kind entity.Kind) ([]entity.Entity, error)

	// TaskBoard returns the board owning the task, or nil for an orphan.
	TaskBoard(ctx context.Context, taskID entity.ID) (*entity.Board, error)
}

// Backend stores records. It knows nothing about references between kinds.
type Backend interface {
	// Records returns every record of kind in any order.
	Records(ctx context.Context, kind entity.Kind) ([]Record, error)

	// Record returns a single record; ok is false when it does not exist.
	Record(ctx context.Context, kind entity.Kind, id entity.ID) (rec Record, ok bool, err error)

	// PutRecord inserts or replaces a record.
	PutRecord(ctx context.Context, kind entity.Kind, rec Record) error

	// DeleteRecord removes a record. Missing records are ignored.
	DeleteRecord(ctx context.Context, kind entity.Kind, id entity.ID) error

	Close() error
}
