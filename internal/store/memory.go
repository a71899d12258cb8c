package store

import (
	"context"
	"sync"

	"github.com/roach88/todo-manager/internal/entity"
)

// MemoryBackend keeps records in process memory. It backs tests and
// throwaway stores.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[entity.Kind]map[entity.ID]Record
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[entity.Kind]map[entity.ID]Record)}
}

var _ Backend = (*MemoryBackend)(nil)

func (m *MemoryBackend) Records(_ context.Context, kind entity.Kind) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := make([]Record, 0, len(m.records[kind]))
	for _, rec := range m.records[kind] {
		recs = append(recs, CopyRecord(rec))
	}
	return recs, nil
}

func (m *MemoryBackend) Record(_ context.Context, kind entity.Kind, id entity.ID) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[kind][id]
	if !ok {
		return Record{}, false, nil
	}
	return CopyRecord(rec), true, nil
}

func (m *MemoryBackend) PutRecord(_ context.Context, kind entity.Kind, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.records[kind] == nil {
		m.records[kind] = make(map[entity.ID]Record)
	}
	m.records[kind][rec.ID] = CopyRecord(rec)
	return nil
}

func (m *MemoryBackend) DeleteRecord(_ context.Context, kind entity.Kind, id entity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records[kind], id)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// CopyRecord returns rec with its own slice and map, for backends that
// keep records in memory.
func CopyRecord(rec Record) Record {
	if rec.StepIDs != nil {
		rec.StepIDs = append([]entity.ID(nil), rec.StepIDs...)
	}
	if rec.TaskStepIDs != nil {
		m := make(map[entity.ID]entity.ID, len(rec.TaskStepIDs))
		for k, v := range rec.TaskStepIDs {
			m[k] = v
		}
		rec.TaskStepIDs = m
	}
	return rec
}
