package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/todo-manager/internal/entity"
)

// IDGenerator assigns ids to entities saved without one.
type IDGenerator interface {
	Generate() entity.ID
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// Ids created later sort later, which keeps listings stable for entities
// created within the same millisecond.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() entity.ID {
	return entity.ID(uuid.Must(uuid.NewV7()).String())
}

// FixedGenerator returns predetermined ids, in order.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []entity.ID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...entity.ID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed.
func (g *FixedGenerator) Generate() entity.ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
