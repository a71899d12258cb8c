package ops

import (
	"context"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
)

// RemovalPlan lists everything a removal deletes or detaches. Plans are
// computed without writing, so they can be shown for confirmation first.
type RemovalPlan struct {
	Flows  []*entity.Flow
	Steps  []*entity.FlowStep
	Boards []*entity.Board
	Tasks  []*entity.Task

	// Orphaned tasks lose their board but are kept.
	Orphaned []*entity.Task
}

// IsEmpty reports whether the plan deletes nothing.
func (p *RemovalPlan) IsEmpty() bool {
	return len(p.Flows)+len(p.Steps)+len(p.Boards)+len(p.Tasks) == 0
}

// IDs lists the deleted ids: flows, then steps, boards and tasks.
func (p *RemovalPlan) IDs() []entity.ID {
	var ids []entity.ID
	for _, f := range p.Flows {
		ids = append(ids, f.ID)
	}
	for _, s := range p.Steps {
		ids = append(ids, s.ID)
	}
	for _, b := range p.Boards {
		ids = append(ids, b.ID)
	}
	for _, t := range p.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// PlanTaskRemoval deletes tasks.
func (o *Operators) PlanTaskRemoval(tasks *entity.Collection[*entity.Task]) *RemovalPlan {
	return &RemovalPlan{Tasks: tasks.Values()}
}

// PlanBoardRemoval deletes boards. Their tasks are deleted when recursive,
// orphaned otherwise.
func (o *Operators) PlanBoardRemoval(boards *entity.Collection[*entity.Board], recursive bool) *RemovalPlan {
	plan := &RemovalPlan{Boards: boards.Values()}
	tasks := entity.NewCollection[*entity.Task]()
	for _, board := range plan.Boards {
		for _, task := range board.TaskCollection().Values() {
			tasks.Set(task)
		}
	}
	if recursive {
		plan.Tasks = tasks.Values()
	} else {
		plan.Orphaned = tasks.Values()
	}
	return plan
}

// PlanFlowRemoval deletes flows and their steps. Boards on those flows block
// the removal with BLOCKED_BY_REFERENCES unless withBoards is set, in which
// case they are removed as by PlanBoardRemoval.
func (o *Operators) PlanFlowRemoval(ctx context.Context, flows *entity.Collection[*entity.Flow], withBoards, recursive bool) (*RemovalPlan, error) {
	boards := entity.NewCollection[*entity.Board]()
	for _, flow := range flows.Values() {
		refs, err := o.Flows.Boards(ctx, flow)
		if err != nil {
			return nil, err
		}
		boards = MergeCollections(boards, refs)
	}
	if boards.Len() > 0 && !withBoards {
		return nil, entity.NewBlockedByReferencesError(boards.Len())
	}

	plan := o.PlanBoardRemoval(boards, recursive)
	plan.Flows = flows.Values()
	for _, flow := range plan.Flows {
		plan.Steps = append(plan.Steps, flow.OrderedSteps()...)
	}
	return plan, nil
}

// ExecuteRemoval deletes what plan lists: tasks, then boards, steps and
// flows, so no record ever references a deleted one. Deletes of one kind go
// through a single-lane queue; the first failure stops the rest.
func (o *Operators) ExecuteRemoval(ctx context.Context, plan *RemovalPlan) error {
	if err := deleteAll(ctx, o.source, plan.Tasks); err != nil {
		return err
	}
	if err := deleteAll(ctx, o.source, plan.Boards); err != nil {
		return err
	}
	if err := deleteAll(ctx, o.source, plan.Steps); err != nil {
		return err
	}
	if err := deleteAll(ctx, o.source, plan.Flows); err != nil {
		return err
	}
	o.logger.Info("removed entities",
		"flows", len(plan.Flows),
		"steps", len(plan.Steps),
		"boards", len(plan.Boards),
		"tasks", len(plan.Tasks),
		"orphaned", len(plan.Orphaned),
	)
	return nil
}

func deleteAll[E entity.Entity](ctx context.Context, source store.Source, entities []E) error {
	return store.QueuedMap(ctx, entities, func(ctx context.Context, e E) error {
		return source.Delete(ctx, e.Kind(), e.Meta().ID)
	})
}
