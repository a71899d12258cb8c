package ops

import (
	"context"
	"fmt"

	"github.com/roach88/todo-manager/internal/entity"
)

// MoveTarget says where to move tasks. With a nil Board the board is the
// one the tasks are already on and StepExpr is required.
type MoveTarget struct {
	Board    *entity.Board
	StepExpr string
}

// MoveTasks attaches tasks to the target board and step. Every board
// involved is saved once. Nothing is saved when the target cannot be
// resolved for every task.
func (o *Operators) MoveTasks(ctx context.Context, tasks []*entity.Task, target MoveTarget) ([]*entity.Board, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	if target.Board != nil {
		return o.moveToBoard(ctx, tasks, target.Board, target.StepExpr)
	}
	if target.StepExpr == "" {
		return nil, entity.NewInvalidInputError("moving tasks needs a board or a step")
	}

	groups, err := o.Tasks.GroupByBoard(ctx, tasks)
	if err != nil {
		return nil, err
	}
	flow, err := sharedFlow(groups, target.StepExpr)
	if err != nil {
		return nil, err
	}
	step, err := resolveFlowStep(flow, target.StepExpr)
	if err != nil {
		return nil, err
	}

	updated := make([]*entity.Board, 0, len(groups))
	for _, group := range groups {
		next := group.Board
		for _, task := range group.Tasks {
			if next, err = o.Boards.SetTaskStep(step, task, next); err != nil {
				return nil, err
			}
		}
		updated = append(updated, next)
	}
	return o.saveBoards(ctx, updated)
}

func (o *Operators) moveToBoard(ctx context.Context, tasks []*entity.Task, board *entity.Board, stepExpr string) ([]*entity.Board, error) {
	step, err := o.Boards.StepFor(board, stepExpr)
	if err != nil {
		return nil, err
	}
	next := board
	for _, task := range tasks {
		if next, err = o.Boards.SetTaskStep(step, task, o.Boards.AddTask(task, next)); err != nil {
			return nil, err
		}
	}
	return o.saveBoards(ctx, []*entity.Board{next})
}

// sharedFlow returns the flow of every group's board. Orphans and boards on
// different flows make the step impossible to resolve.
func sharedFlow(groups []BoardGroup, stepExpr string) (*entity.Flow, error) {
	var flow *entity.Flow
	for _, group := range groups {
		if group.Board == nil {
			return nil, entity.NewInvalidStepError(nil, stepExpr, entity.NewInvalidInputError(
				fmt.Sprintf("task %s has no board, a board must be given", group.Tasks[0].ID)))
		}
		if flow != nil && group.Board.Flow.ID != flow.ID {
			return nil, entity.NewInvalidStepError(nil, stepExpr, entity.NewInvalidInputError(
				"tasks are on boards with different flows, a board must be given"))
		}
		flow = group.Board.Flow
	}
	return flow, nil
}

// OrphanTasks detaches tasks from their boards. Orphans are skipped. Returns
// the tasks that were detached.
func (o *Operators) OrphanTasks(ctx context.Context, tasks []*entity.Task) ([]*entity.Task, error) {
	groups, err := o.Tasks.GroupByBoard(ctx, tasks)
	if err != nil {
		return nil, err
	}

	var detached []*entity.Task
	var updated []*entity.Board
	for _, group := range groups {
		if group.Board == nil {
			continue
		}
		next := group.Board
		for _, task := range group.Tasks {
			next = o.Boards.RemoveTask(task, next)
			detached = append(detached, task)
		}
		updated = append(updated, next)
	}
	if _, err := o.saveBoards(ctx, updated); err != nil {
		return nil, err
	}
	return detached, nil
}

// saveBoards saves boards one after the other.
func (o *Operators) saveBoards(ctx context.Context, boards []*entity.Board) ([]*entity.Board, error) {
	saved := make([]*entity.Board, 0, len(boards))
	for _, board := range boards {
		s, err := o.Boards.Save(ctx, board)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("board saved", "board", s.ID, "tasks", s.TaskCollection().Len())
		saved = append(saved, s)
	}
	return saved, nil
}
