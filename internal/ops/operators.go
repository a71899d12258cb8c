package ops

import (
	"io"
	"log/slog"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
)

// Operators groups the per-kind operations over one store.
type Operators struct {
	Tasks  *TaskOperators
	Boards *BoardOperators
	Flows  *FlowOperators
	Steps  *FlowStepOperators

	source store.Source
	logger *slog.Logger
}

// New wires operators over source. A nil logger discards output.
func New(source store.Source, logger *slog.Logger) *Operators {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	o := &Operators{source: source, logger: logger}
	o.Tasks = &TaskOperators{EntityOperators: newEntityOperators[*entity.Task](source, entity.KindTask)}
	o.Boards = &BoardOperators{EntityOperators: newEntityOperators[*entity.Board](source, entity.KindBoard)}
	o.Steps = &FlowStepOperators{EntityOperators: newEntityOperators[*entity.FlowStep](source, entity.KindFlowStep)}
	o.Flows = &FlowOperators{
		EntityOperators: newEntityOperators[*entity.Flow](source, entity.KindFlow),
		boards:          o.Boards,
		steps:           o.Steps,
		logger:          logger,
	}
	return o
}

// Source returns the underlying store.
func (o *Operators) Source() store.Source { return o.source }
