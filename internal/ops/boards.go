package ops

import (
	"context"
	"fmt"

	"github.com/roach88/todo-manager/internal/entity"
)

// BoardOperators are the board operations. Mutators never modify their
// board argument; they return a new board value.
type BoardOperators struct {
	EntityOperators[*entity.Board]
}

// Create returns an unsaved, empty board on flow.
func (o *BoardOperators) Create(id entity.ID, name, description string, flow *entity.Flow) (*entity.Board, error) {
	if err := validateName(entity.KindBoard, name); err != nil {
		return nil, err
	}
	if flow == nil {
		return nil, entity.NewInvalidInputError("a board needs a flow")
	}
	return &entity.Board{
		Base: entity.Base{
			ID:          id,
			Name:        entity.NormalizeText(name),
			Description: entity.NormalizeText(description),
		},
		Flow:      flow,
		Tasks:     entity.NewCollection[*entity.Task](),
		TaskSteps: make(map[entity.ID]entity.ID),
	}, nil
}

// Clone returns an independent copy of board.
func (o *BoardOperators) Clone(board *entity.Board) *entity.Board {
	return board.Clone()
}

// AddTask returns board with task added and no step assigned. Adding a task
// the board already owns changes nothing.
func (o *BoardOperators) AddTask(task *entity.Task, board *entity.Board) *entity.Board {
	next := board.Clone()
	if next.Tasks.Has(task.ID) {
		return next
	}
	next.Tasks.Set(task)
	return next
}

// RemoveTask returns board without task and its step assignment.
func (o *BoardOperators) RemoveTask(task *entity.Task, board *entity.Board) *entity.Board {
	next := board.Clone()
	next.Tasks.Delete(task.ID)
	delete(next.TaskSteps, task.ID)
	return next
}

// SetTaskStep returns board with task assigned to step. The task must be on
// the board and the step must belong to the board's flow.
func (o *BoardOperators) SetTaskStep(step *entity.FlowStep, task *entity.Task, board *entity.Board) (*entity.Board, error) {
	if !board.TaskCollection().Has(task.ID) {
		return nil, entity.NewInvalidInputError(fmt.Sprintf("task %s is not on board %s", task.ID, board.ID))
	}
	if board.Flow == nil || !board.Flow.StepCollection().Has(step.ID) {
		return nil, entity.NewInvalidStepError(board.Flow, step.Name, nil)
	}
	next := board.Clone()
	next.TaskSteps[task.ID] = step.ID
	return next, nil
}

// DefaultStep returns the default step of the board's flow, or NO_DEFAULT_STEP.
func (o *BoardOperators) DefaultStep(board *entity.Board) (*entity.FlowStep, error) {
	if board.Flow != nil {
		if step, ok := board.Flow.DefaultStep(); ok {
			return step, nil
		}
	}
	return nil, entity.NewNoDefaultStepError(board)
}

// ResolveStep resolves a step selector among the steps of the board's flow.
func (o *BoardOperators) ResolveStep(board *entity.Board, expr string) (*entity.FlowStep, error) {
	return resolveFlowStep(board.Flow, expr)
}

// StepFor resolves expr on the board, or takes the default step when expr
// is empty.
func (o *BoardOperators) StepFor(board *entity.Board, expr string) (*entity.FlowStep, error) {
	if expr == "" {
		return o.DefaultStep(board)
	}
	return o.ResolveStep(board, expr)
}

// Attach puts task on board at the step selected by stepExpr (the default
// step when empty) and saves the board.
func (o *BoardOperators) Attach(ctx context.Context, task *entity.Task, board *entity.Board, stepExpr string) (*entity.Board, error) {
	step, err := o.StepFor(board, stepExpr)
	if err != nil {
		return nil, err
	}
	next, err := o.SetTaskStep(step, task, o.AddTask(task, board))
	if err != nil {
		return nil, err
	}
	return o.Save(ctx, next)
}

// TaskCount is the number of tasks assigned to each step of the board,
// keyed by step id. Unassigned tasks count under "".
func (o *BoardOperators) TaskCount(board *entity.Board) map[entity.ID]int {
	counts := make(map[entity.ID]int)
	for _, id := range board.TaskCollection().Keys() {
		counts[board.TaskSteps[id]]++
	}
	return counts
}

// resolveFlowStep resolves expr within flow's steps, reporting failure as
// INVALID_STEP_FOR_BOARD with the resolver error as cause.
func resolveFlowStep(flow *entity.Flow, expr string) (*entity.FlowStep, error) {
	if flow == nil {
		return nil, entity.NewInvalidStepError(nil, expr, nil)
	}
	re, err := CompileSelector(expr)
	if err != nil {
		return nil, err
	}
	step, err := ResolveOneFrom(entity.KindFlowStep, expr, re, entity.NewCollection(flow.OrderedSteps()...))
	if err != nil {
		return nil, entity.NewInvalidStepError(flow, expr, err)
	}
	return step, nil
}
