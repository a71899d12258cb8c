package entity

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ID identifies a saved entity. The empty ID means "not assigned yet".
type ID string

// String returns the canonical string form used for matching and output.
func (id ID) String() string { return string(id) }

// Kind tags an entity with its type.
type Kind string

const (
	KindTask     Kind = "task"
	KindFlowStep Kind = "flowStep"
	KindFlow     Kind = "flow"
	KindBoard    Kind = "board"
)

// Kinds lists every entity kind in dependency order (leaves first).
var Kinds = []Kind{KindTask, KindFlowStep, KindFlow, KindBoard}

// Label returns a human readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindFlowStep:
		return "flow step"
	default:
		return string(k)
	}
}

// Entity is implemented by *Task, *FlowStep, *Flow and *Board only.
type Entity interface {
	Kind() Kind
	Meta() *Base
	CloneEntity() Entity
	isEntity()
}

// Base holds the fields shared by every entity kind.
type Base struct {
	ID          ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Description string
}

// Meta gives access to the shared fields.
func (b *Base) Meta() *Base { return b }

// IsSaved reports whether the store has assigned an id and creation time.
func (b *Base) IsSaved() bool {
	return b.ID != "" && !b.CreatedAt.IsZero()
}

// LastTouched returns UpdatedAt if set, CreatedAt otherwise.
func (b *Base) LastTouched() time.Time {
	if !b.UpdatedAt.IsZero() {
		return b.UpdatedAt
	}
	return b.CreatedAt
}

// NormalizeText trims and NFC-normalizes user supplied names and descriptions
// so that the same visible text always matches the same selector.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Task is a unit of work. It may belong to at most one board.
type Task struct {
	Base
}

func (*Task) Kind() Kind            { return KindTask }
func (t *Task) CloneEntity() Entity { return t.Clone() }
func (*Task) isEntity()             {}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// FlowStep is a named position inside a flow.
type FlowStep struct {
	Base
	Color Color
}

func (*FlowStep) Kind() Kind            { return KindFlowStep }
func (s *FlowStep) CloneEntity() Entity { return s.Clone() }
func (*FlowStep) isEntity()             {}

// Clone returns a copy of the step.
func (s *FlowStep) Clone() *FlowStep {
	c := *s
	return &c
}

// Flow is an ordered workflow definition.
//
// Invariants: every id in Order is a key of Steps; DefaultStepID, when set,
// is a key of Steps.
type Flow struct {
	Base
	Steps         *Collection[*FlowStep]
	Order         []ID
	DefaultStepID ID
}

func (*Flow) Kind() Kind            { return KindFlow }
func (f *Flow) CloneEntity() Entity { return f.Clone() }
func (*Flow) isEntity()             {}

// Clone returns a copy of the flow with its own step collection and order.
// Steps themselves are shared.
func (f *Flow) Clone() *Flow {
	c := *f
	c.Steps = f.StepCollection().Clone()
	c.Order = append([]ID(nil), f.Order...)
	return &c
}

// StepCollection never returns nil.
func (f *Flow) StepCollection() *Collection[*FlowStep] {
	if f.Steps == nil {
		return NewCollection[*FlowStep]()
	}
	return f.Steps
}

// OrderedSteps returns the steps following Order.
func (f *Flow) OrderedSteps() []*FlowStep {
	steps := make([]*FlowStep, 0, len(f.Order))
	for _, id := range f.Order {
		if step, ok := f.StepCollection().Get(id); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

// StepIndex returns the position of a step in Order, or -1.
func (f *Flow) StepIndex(id ID) int {
	for i, stepID := range f.Order {
		if stepID == id {
			return i
		}
	}
	return -1
}

// DefaultStep returns the default step, if any.
func (f *Flow) DefaultStep() (*FlowStep, bool) {
	if f.DefaultStepID == "" {
		return nil, false
	}
	return f.StepCollection().Get(f.DefaultStepID)
}

// Board is a work surface instantiating one flow.
//
// Invariants: every key of TaskSteps is a key of Tasks; every value of
// TaskSteps is a key of Flow.Steps.
type Board struct {
	Base
	Flow      *Flow
	Tasks     *Collection[*Task]
	TaskSteps map[ID]ID
}

func (*Board) Kind() Kind            { return KindBoard }
func (b *Board) CloneEntity() Entity { return b.Clone() }
func (*Board) isEntity()             {}

// Clone returns a copy of the board with its own task collection and step
// assignment. The flow is referenced, not copied.
func (b *Board) Clone() *Board {
	c := *b
	c.Tasks = b.TaskCollection().Clone()
	c.TaskSteps = make(map[ID]ID, len(b.TaskSteps))
	for taskID, stepID := range b.TaskSteps {
		c.TaskSteps[taskID] = stepID
	}
	return &c
}

// TaskCollection never returns nil.
func (b *Board) TaskCollection() *Collection[*Task] {
	if b.Tasks == nil {
		return NewCollection[*Task]()
	}
	return b.Tasks
}

// TaskStep returns the step a task is assigned to within the board's flow.
func (b *Board) TaskStep(taskID ID) (*FlowStep, bool) {
	stepID, ok := b.TaskSteps[taskID]
	if !ok || b.Flow == nil {
		return nil, false
	}
	return b.Flow.StepCollection().Get(stepID)
}

// Describe returns "<kind> <id> (<name>)" for log and error messages.
func Describe(e Entity) string {
	meta := e.Meta()
	if meta.ID == "" {
		return fmt.Sprintf("unsaved %s %q", e.Kind().Label(), meta.Name)
	}
	return fmt.Sprintf("%s %s (%s)", e.Kind().Label(), meta.ID, meta.Name)
}

// New returns an empty entity of the given kind.
func New(kind Kind) (Entity, error) {
	switch kind {
	case KindTask:
		return &Task{}, nil
	case KindFlowStep:
		return &FlowStep{}, nil
	case KindFlow:
		return &Flow{Steps: NewCollection[*FlowStep]()}, nil
	case KindBoard:
		return &Board{Tasks: NewCollection[*Task](), TaskSteps: map[ID]ID{}}, nil
	default:
		return nil, NewInvalidInputError(fmt.Sprintf("unknown entity kind %q", kind))
	}
}

// ParseKind maps user input ("task", "board", "flow", "step") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "task", "tasks":
		return KindTask, nil
	case "flowstep", "flow-step", "step", "steps":
		return KindFlowStep, nil
	case "flow", "flows":
		return KindFlow, nil
	case "board", "boards":
		return KindBoard, nil
	default:
		return "", NewInvalidInputError(fmt.Sprintf("unknown entity kind %q", s))
	}
}
