package ops

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/todo-manager/internal/edition"
	"github.com/roach88/todo-manager/internal/entity"
)

// FlowOperators are the flow operations.
type FlowOperators struct {
	EntityOperators[*entity.Flow]

	boards *BoardOperators
	steps  *FlowStepOperators
	logger *slog.Logger
}

// Boards returns the saved boards referencing flow.
func (o *FlowOperators) Boards(ctx context.Context, flow *entity.Flow) (*entity.Collection[*entity.Board], error) {
	boards, err := o.boards.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(ctx, boards, func(_ context.Context, b *entity.Board) (bool, error) {
		return b.Flow != nil && b.Flow.ID == flow.ID, nil
	})
}

// Steps returns the flow's steps in flow order.
func (o *FlowOperators) Steps(flow *entity.Flow) *entity.Collection[*entity.FlowStep] {
	return entity.NewCollection(flow.OrderedSteps()...)
}

// EditResult reports what applying an edition changed.
type EditResult struct {
	Flow    *entity.Flow
	Added   []*entity.FlowStep
	Edited  []*entity.FlowStep
	Removed []*entity.FlowStep
}

// AffectedIDs lists the flow id followed by added, edited and removed steps.
func (r *EditResult) AffectedIDs() []entity.ID {
	ids := []entity.ID{r.Flow.ID}
	for _, group := range [][]*entity.FlowStep{r.Added, r.Edited, r.Removed} {
		for _, step := range group {
			ids = append(ids, step.ID)
		}
	}
	return ids
}

// CreateFromEdition saves a new flow from an edition made only of add
// actions. An empty id lets the store assign one.
func (o *FlowOperators) CreateFromEdition(ctx context.Context, id entity.ID, ed *edition.FlowEdition) (*EditResult, error) {
	if err := edition.Check(ed); err != nil {
		return nil, err
	}
	for i, s := range ed.Steps {
		if s.Action != edition.ActionAdd {
			return nil, entity.NewInvalidEditionError(
				fmt.Sprintf("steps[%d]: a new flow only accepts add actions, got %s", i, s.Action), nil)
		}
	}
	// Steps are saved before the flow; a taken id must fail first.
	if id != "" {
		_, exists, err := o.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, entity.NewAlreadyExistsError(entity.KindFlow, id)
		}
	}
	flow := &entity.Flow{
		Base:  entity.Base{ID: id, Name: ed.Name},
		Steps: entity.NewCollection[*entity.FlowStep](),
	}
	if ed.Description != nil {
		flow.Description = *ed.Description
	}
	return o.apply(ctx, flow, ed, nil)
}

// ApplyEdition changes flow's steps as the edition says. Everything is
// validated before the first write: unknown or unmentioned steps, a default
// that does not survive, and removed steps that tasks are still assigned to
// (STEP_IN_USE).
func (o *FlowOperators) ApplyEdition(ctx context.Context, flow *entity.Flow, ed *edition.FlowEdition) (*EditResult, error) {
	if err := edition.Check(ed); err != nil {
		return nil, err
	}

	current := make(map[string]*entity.FlowStep, flow.StepCollection().Len())
	for _, step := range flow.OrderedSteps() {
		current[step.Name] = step
	}
	matched := make(map[int]*entity.FlowStep)
	mentioned := make(map[entity.ID]bool)
	for i, s := range ed.Steps {
		if s.Action == edition.ActionAdd {
			continue
		}
		step, ok := current[s.Name]
		if !ok {
			return nil, entity.NewInvalidEditionError(
				fmt.Sprintf("steps[%d]: flow %s has no step named %q", i, flow.ID, s.Name), nil)
		}
		matched[i] = step
		mentioned[step.ID] = true
	}
	for _, step := range flow.OrderedSteps() {
		if !mentioned[step.ID] {
			return nil, entity.NewInvalidEditionError(
				fmt.Sprintf("step %q is not mentioned; keep, edit or remove it", step.Name), nil)
		}
	}

	if err := o.checkRemovable(ctx, flow, ed, matched); err != nil {
		return nil, err
	}

	next := flow.Clone()
	next.Name = ed.Name
	if ed.Description != nil {
		next.Description = *ed.Description
	}
	return o.apply(ctx, next, ed, matched)
}

// checkRemovable fails when a task of a board on flow sits on a step the
// edition removes.
func (o *FlowOperators) checkRemovable(ctx context.Context, flow *entity.Flow, ed *edition.FlowEdition, matched map[int]*entity.FlowStep) error {
	removed := make(map[entity.ID]*entity.FlowStep)
	for i, s := range ed.Steps {
		if s.Action == edition.ActionRemove {
			removed[matched[i].ID] = matched[i]
		}
	}
	if len(removed) == 0 {
		return nil
	}

	boards, err := o.Boards(ctx, flow)
	if err != nil {
		return err
	}
	inUse := make(map[entity.ID]int)
	for _, board := range boards.Values() {
		for stepID, n := range o.boards.TaskCount(board) {
			if _, ok := removed[stepID]; ok {
				inUse[stepID] += n
			}
		}
	}
	for _, step := range flow.OrderedSteps() {
		if n := inUse[step.ID]; n > 0 {
			return entity.NewStepInUseError(removed[step.ID], n)
		}
	}
	return nil
}

// apply writes an already validated edition: new and edited steps first,
// then the flow, then removals. matched maps action indexes to current steps.
func (o *FlowOperators) apply(ctx context.Context, flow *entity.Flow, ed *edition.FlowEdition, matched map[int]*entity.FlowStep) (*EditResult, error) {
	result := &EditResult{}
	steps := entity.NewCollection[*entity.FlowStep]()
	order := make([]entity.ID, 0, len(ed.Steps))
	byName := make(map[string]entity.ID)

	for i, s := range ed.Steps {
		var step *entity.FlowStep
		switch s.Action {
		case edition.ActionAdd:
			created, err := o.newStep(s)
			if err != nil {
				return nil, err
			}
			if step, err = o.steps.Save(ctx, created); err != nil {
				return nil, err
			}
			result.Added = append(result.Added, step)

		case edition.ActionKeep:
			step = matched[i]

		case edition.ActionEdit:
			edited := matched[i].Clone()
			if s.NewName != "" {
				edited.Name = s.NewName
			}
			if s.Description != nil {
				edited.Description = *s.Description
			}
			if s.Color != nil {
				edited.Color = *s.Color
			}
			var err error
			if step, err = o.steps.Save(ctx, edited); err != nil {
				return nil, err
			}
			result.Edited = append(result.Edited, step)

		case edition.ActionRemove:
			result.Removed = append(result.Removed, matched[i])
			continue
		}
		steps.Set(step)
		order = append(order, step.ID)
		byName[step.Name] = step.ID
	}

	flow.Steps = steps
	flow.Order = order
	switch {
	case ed.Default != "":
		flow.DefaultStepID = byName[ed.Default]
	case !steps.Has(flow.DefaultStepID):
		flow.DefaultStepID = ""
	}

	saved, err := o.Save(ctx, flow)
	if err != nil {
		return nil, err
	}
	result.Flow = saved

	for _, step := range result.Removed {
		if err := o.steps.Delete(ctx, step); err != nil {
			return nil, err
		}
	}
	o.logger.Info("flow saved",
		"flow", saved.ID,
		"added", len(result.Added),
		"edited", len(result.Edited),
		"removed", len(result.Removed),
	)
	return result, nil
}

func (o *FlowOperators) newStep(s edition.StepEdition) (*entity.FlowStep, error) {
	var description string
	if s.Description != nil {
		description = *s.Description
	}
	var color entity.Color
	if s.Color != nil {
		color = *s.Color
	}
	return o.steps.Create(s.Name, description, color)
}

// Rename saves flow with a new name and/or description.
func (o *FlowOperators) Rename(ctx context.Context, flow *entity.Flow, name, description *string) (*entity.Flow, error) {
	return o.Edit(ctx, flow, name, description)
}
