package store

import (
	"sort"
	"time"

	"github.com/roach88/todo-manager/internal/entity"
)

// Record is the persisted form of an entity. Only the fields relevant to the
// record's kind are set. Timestamps are unix milliseconds.
type Record struct {
	ID          entity.ID `yaml:"-" json:"-"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	CreatedAt   int64     `yaml:"createdAt" json:"createdAt"`
	UpdatedAt   int64     `yaml:"updatedAt,omitempty" json:"updatedAt,omitempty"`

	// task
	BoardID entity.ID `yaml:"boardId,omitempty" json:"boardId,omitempty"`

	// flow step
	Color entity.Color `yaml:"color,omitempty" json:"color,omitempty"`

	// flow
	StepIDs       []entity.ID `yaml:"stepIds,omitempty" json:"stepIds,omitempty"`
	DefaultStepID entity.ID   `yaml:"defaultStepId,omitempty" json:"defaultStepId,omitempty"`

	// board
	FlowID      entity.ID               `yaml:"flowId,omitempty" json:"flowId,omitempty"`
	TaskStepIDs map[entity.ID]entity.ID `yaml:"taskStepIds,omitempty" json:"taskStepIds,omitempty"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func baseRecord(b *entity.Base) Record {
	return Record{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   toMillis(b.CreatedAt),
		UpdatedAt:   toMillis(b.UpdatedAt),
	}
}

func baseFromRecord(rec Record) entity.Base {
	return entity.Base{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   fromMillis(rec.CreatedAt),
		UpdatedAt:   fromMillis(rec.UpdatedAt),
	}
}

func stepRecord(s *entity.FlowStep) Record {
	rec := baseRecord(&s.Base)
	rec.Color = s.Color
	return rec
}

func flowRecord(f *entity.Flow) Record {
	rec := baseRecord(&f.Base)
	seen := make(map[entity.ID]bool, len(f.Order))
	for _, id := range f.Order {
		if f.StepCollection().Has(id) && !seen[id] {
			rec.StepIDs = append(rec.StepIDs, id)
			seen[id] = true
		}
	}
	for _, id := range f.StepCollection().Keys() {
		if !seen[id] {
			rec.StepIDs = append(rec.StepIDs, id)
			seen[id] = true
		}
	}
	rec.DefaultStepID = f.DefaultStepID
	return rec
}

func boardRecord(b *entity.Board) Record {
	rec := baseRecord(&b.Base)
	if b.Flow != nil {
		rec.FlowID = b.Flow.ID
	}
	rec.TaskStepIDs = make(map[entity.ID]entity.ID, b.TaskCollection().Len())
	for _, taskID := range b.TaskCollection().Keys() {
		rec.TaskStepIDs[taskID] = b.TaskSteps[taskID]
	}
	return rec
}

// sortRecords orders records by creation time, then id.
func sortRecords(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CreatedAt != recs[j].CreatedAt {
			return recs[i].CreatedAt < recs[j].CreatedAt
		}
		return recs[i].ID < recs[j].ID
	})
}

// sortedTaskIDs returns the keys of a taskStepIds map in a stable order.
func sortedTaskIDs(m map[entity.ID]entity.ID) []entity.ID {
	ids := make([]entity.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
