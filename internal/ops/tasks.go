package ops

import (
	"cmp"
	"context"
	"regexp"
	"slices"

	"github.com/roach88/todo-manager/internal/entity"
)

// TaskOperators are the task operations.
type TaskOperators struct {
	EntityOperators[*entity.Task]
}

// Create returns an unsaved task. An empty id lets the store assign one.
func (o *TaskOperators) Create(id entity.ID, name, description string) (*entity.Task, error) {
	if err := validateName(entity.KindTask, name); err != nil {
		return nil, err
	}
	return &entity.Task{Base: entity.Base{
		ID:          id,
		Name:        entity.NormalizeText(name),
		Description: entity.NormalizeText(description),
	}}, nil
}

// TaskFilters narrows a task listing. Zero fields do not filter.
type TaskFilters struct {
	// Board keeps only tasks it owns.
	Board *entity.Board
	// Pattern keeps tasks whose id or name matches.
	Pattern *regexp.Regexp
	// Steps keeps tasks currently assigned to one of these steps.
	Steps *entity.Collection[*entity.FlowStep]
}

// GetCollectionWithFilters lists saved tasks and applies filters, board
// first, then pattern, then steps.
func (o *TaskOperators) GetCollectionWithFilters(ctx context.Context, filters TaskFilters) (*entity.Collection[*entity.Task], error) {
	tasks, err := o.List(ctx)
	if err != nil {
		return nil, err
	}

	var preds []Predicate[*entity.Task]
	if filters.Board != nil {
		preds = append(preds, InBoard(filters.Board))
	}
	if filters.Pattern != nil {
		preds = append(preds, ByRegExp[*entity.Task](filters.Pattern))
	}
	if filters.Steps != nil {
		preds = append(preds, InSteps(filters.Steps, o.Step))
	}
	if len(preds) == 0 {
		return tasks, nil
	}
	return Filter(ctx, tasks, All(preds...))
}

// Board returns the board owning task, or nil for an orphan.
func (o *TaskOperators) Board(ctx context.Context, task *entity.Task) (*entity.Board, error) {
	if !task.IsSaved() {
		return nil, nil
	}
	return o.source.TaskBoard(ctx, task.ID)
}

// Step returns the step task is assigned to on its board, or nil.
func (o *TaskOperators) Step(ctx context.Context, task *entity.Task) (*entity.FlowStep, error) {
	board, err := o.Board(ctx, task)
	if err != nil || board == nil {
		return nil, err
	}
	step, _ := board.TaskStep(task.ID)
	return step, nil
}

// BoardGroup is a run of tasks sharing a board. Board is nil for orphans.
type BoardGroup struct {
	Board *entity.Board
	Tasks []*entity.Task
}

// GroupByBoard groups tasks by owning board, in order of first appearance.
func (o *TaskOperators) GroupByBoard(ctx context.Context, tasks []*entity.Task) ([]BoardGroup, error) {
	var groups []BoardGroup
	index := make(map[entity.ID]int)
	for _, task := range tasks {
		board, err := o.Board(ctx, task)
		if err != nil {
			return nil, err
		}
		var key entity.ID
		if board != nil {
			key = board.ID
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, BoardGroup{Board: board})
		}
		groups[i].Tasks = append(groups[i].Tasks, task)
	}
	return groups, nil
}

// taskPosition is where a task sits: its board and its step on that board.
type taskPosition struct {
	board *entity.Board
	step  *entity.FlowStep
}

func (o *TaskOperators) position(ctx context.Context, task *entity.Task) (taskPosition, error) {
	board, err := o.Board(ctx, task)
	if err != nil || board == nil {
		return taskPosition{}, err
	}
	step, _ := board.TaskStep(task.ID)
	return taskPosition{board: board, step: step}, nil
}

// Sort returns tasks ordered by board creation, step position within the
// board's flow, then recency. The sort is stable. Each task's board and step
// are looked up once per call.
func (o *TaskOperators) Sort(ctx context.Context, tasks []*entity.Task) ([]*entity.Task, error) {
	positions := make(map[entity.ID]taskPosition, len(tasks))
	for _, task := range tasks {
		if _, done := positions[task.ID]; done || !task.IsSaved() {
			continue
		}
		pos, err := o.position(ctx, task)
		if err != nil {
			return nil, err
		}
		positions[task.ID] = pos
	}

	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b *entity.Task) int {
		return compareTasks(a, b, positions[a.ID], positions[b.ID])
	})
	return sorted, nil
}

// Compare orders two tasks like Sort does.
func (o *TaskOperators) Compare(ctx context.Context, a, b *entity.Task) (int, error) {
	pa, err := o.position(ctx, a)
	if err != nil {
		return 0, err
	}
	pb, err := o.position(ctx, b)
	if err != nil {
		return 0, err
	}
	return compareTasks(a, b, pa, pb), nil
}

// compareTasks applies, in order: saved before unsaved, tasks on a board
// before orphans, older boards first, assigned before unassigned, earlier
// step first. Every tie falls back to entity.Compare; a tie between two
// boards created at the same instant compares the boards.
func compareTasks(a, b *entity.Task, pa, pb taskPosition) int {
	if !a.IsSaved() || !b.IsSaved() {
		return entity.Compare(a, b)
	}

	switch {
	case pa.board == nil && pb.board == nil:
		return entity.Compare(a, b)
	case pa.board == nil:
		return 1
	case pb.board == nil:
		return -1
	}

	if pa.board.ID != pb.board.ID {
		if c := pa.board.CreatedAt.Compare(pb.board.CreatedAt); c != 0 {
			return c
		}
		return entity.Compare(pa.board, pb.board)
	}

	switch {
	case pa.step == nil && pb.step == nil:
		return entity.Compare(a, b)
	case pa.step == nil:
		return 1
	case pb.step == nil:
		return -1
	}

	flow := pa.board.Flow
	if c := cmp.Compare(flow.StepIndex(pa.step.ID), flow.StepIndex(pb.step.ID)); c != 0 {
		return c
	}
	return entity.Compare(a, b)
}
