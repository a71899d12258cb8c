package ops

import (
	"context"
	"regexp"

	"github.com/roach88/todo-manager/internal/entity"
)

// Predicate decides whether an entity stays in a filtered collection. It may
// hit the store.
type Predicate[E entity.Entity] func(ctx context.Context, e E) (bool, error)

// Filter returns the entities of c for which pred holds, keeping their order.
// pred runs sequentially in iteration order; the first error aborts.
func Filter[E entity.Entity](ctx context.Context, c *entity.Collection[E], pred Predicate[E]) (*entity.Collection[E], error) {
	kept := entity.NewCollection[E]()
	for _, e := range c.Values() {
		ok, err := pred(ctx, e)
		if err != nil {
			return nil, err
		}
		if ok {
			kept.Set(e)
		}
	}
	return kept, nil
}

// All combines predicates; every one must hold. Evaluation stops at the
// first that does not.
func All[E entity.Entity](preds ...Predicate[E]) Predicate[E] {
	return func(ctx context.Context, e E) (bool, error) {
		for _, pred := range preds {
			ok, err := pred(ctx, e)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// ByRegExp keeps entities whose id or name matches re.
func ByRegExp[E entity.Entity](re *regexp.Regexp) Predicate[E] {
	return func(_ context.Context, e E) (bool, error) {
		return MatchesID(re, e) || MatchesName(re, e), nil
	}
}

// InBoard keeps tasks owned by board.
func InBoard(board *entity.Board) Predicate[*entity.Task] {
	return func(_ context.Context, t *entity.Task) (bool, error) {
		return board.TaskCollection().Has(t.ID), nil
	}
}

// InSteps keeps tasks whose current step, as returned by stepOf, is one of
// steps. Tasks without a step never match.
func InSteps(steps *entity.Collection[*entity.FlowStep], stepOf func(context.Context, *entity.Task) (*entity.FlowStep, error)) Predicate[*entity.Task] {
	return func(ctx context.Context, t *entity.Task) (bool, error) {
		step, err := stepOf(ctx, t)
		if err != nil || step == nil {
			return false, err
		}
		return steps.Has(step.ID), nil
	}
}

// InFlow keeps steps belonging to flow.
func InFlow(flow *entity.Flow) Predicate[*entity.FlowStep] {
	return func(_ context.Context, s *entity.FlowStep) (bool, error) {
		return flow.StepCollection().Has(s.ID), nil
	}
}

// MergeCollections unions collections by id; later entries win.
func MergeCollections[E entity.Entity](collections ...*entity.Collection[E]) *entity.Collection[E] {
	return entity.Merge(collections...)
}
