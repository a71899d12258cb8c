package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/todo-manager/internal/entity"
)

// SequentialIDs generates "<prefix>-1", "<prefix>-2", ... in order.
//
// Readable ids keep golden files and assertions stable.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "id".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() entity.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return entity.ID(fmt.Sprintf("%s-%d", g.prefix, g.n))
}
