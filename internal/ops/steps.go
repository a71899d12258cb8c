package ops

import (
	"context"
	"regexp"

	"github.com/roach88/todo-manager/internal/entity"
)

// FlowStepOperators are the flow step operations.
type FlowStepOperators struct {
	EntityOperators[*entity.FlowStep]
}

// Create returns an unsaved step.
func (o *FlowStepOperators) Create(name, description string, color entity.Color) (*entity.FlowStep, error) {
	if err := validateName(entity.KindFlowStep, name); err != nil {
		return nil, err
	}
	if !color.IsValid() {
		return nil, entity.NewInvalidInputError("unknown color " + string(color))
	}
	return &entity.FlowStep{
		Base: entity.Base{
			Name:        entity.NormalizeText(name),
			Description: entity.NormalizeText(description),
		},
		Color: color,
	}, nil
}

// StepFilters narrows a step listing. Zero fields do not filter.
type StepFilters struct {
	Flow    *entity.Flow
	Pattern *regexp.Regexp
}

// GetCollectionWithFilters lists saved steps and applies filters.
func (o *FlowStepOperators) GetCollectionWithFilters(ctx context.Context, filters StepFilters) (*entity.Collection[*entity.FlowStep], error) {
	steps, err := o.List(ctx)
	if err != nil {
		return nil, err
	}
	var preds []Predicate[*entity.FlowStep]
	if filters.Flow != nil {
		preds = append(preds, InFlow(filters.Flow))
	}
	if filters.Pattern != nil {
		preds = append(preds, ByRegExp[*entity.FlowStep](filters.Pattern))
	}
	if len(preds) == 0 {
		return steps, nil
	}
	return Filter(ctx, steps, All(preds...))
}

// GetOrFailWithFilters resolves expr to one step among the filtered steps.
func (o *FlowStepOperators) GetOrFailWithFilters(ctx context.Context, expr string, filters StepFilters) (*entity.FlowStep, error) {
	re, err := CompileSelector(expr)
	if err != nil {
		return nil, err
	}
	steps, err := o.GetCollectionWithFilters(ctx, filters)
	if err != nil {
		return nil, err
	}
	return ResolveOneFrom(entity.KindFlowStep, expr, re, steps)
}

// GetCollectionBySelectorsIn merges the steps of flow matched by each
// selector. A selector matching none is INVALID_STEP_FOR_BOARD.
func (o *FlowStepOperators) GetCollectionBySelectorsIn(flow *entity.Flow, exprs []string) (*entity.Collection[*entity.FlowStep], error) {
	steps := entity.NewCollection(flow.OrderedSteps()...)
	collections := make([]*entity.Collection[*entity.FlowStep], 0, len(exprs))
	for _, expr := range exprs {
		re, err := CompileSelector(expr)
		if err != nil {
			return nil, err
		}
		matched := MatchCollection(re, steps)
		if matched.Len() == 0 {
			return nil, entity.NewInvalidStepError(flow, expr, entity.NewDoesNotExistError(entity.KindFlowStep, expr))
		}
		collections = append(collections, matched)
	}
	return MergeCollections(collections...), nil
}
