package ops

import (
	"context"
	"fmt"
	"regexp"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
)

// EntityOperators are the operations shared by every entity kind.
type EntityOperators[E entity.Entity] struct {
	source store.Source
	kind   entity.Kind
}

func newEntityOperators[E entity.Entity](source store.Source, kind entity.Kind) EntityOperators[E] {
	return EntityOperators[E]{source: source, kind: kind}
}

// Kind returns the entity kind handled.
func (o *EntityOperators[E]) Kind() entity.Kind { return o.kind }

func (o *EntityOperators[E]) cast(e entity.Entity) (E, error) {
	typed, ok := e.(E)
	if !ok {
		var zero E
		return zero, entity.NewStorageError(fmt.Sprintf("store returned %T for a %s", e, o.kind.Label()), nil)
	}
	return typed, nil
}

// List returns every saved entity of the kind, oldest first.
func (o *EntityOperators[E]) List(ctx context.Context) (*entity.Collection[E], error) {
	list, err := o.source.List(ctx, o.kind)
	if err != nil {
		return nil, err
	}
	c := entity.NewCollection[E]()
	for _, e := range list {
		typed, err := o.cast(e)
		if err != nil {
			return nil, err
		}
		c.Set(typed)
	}
	return c, nil
}

// Get returns the entity with id; ok is false when there is none.
func (o *EntityOperators[E]) Get(ctx context.Context, id entity.ID) (e E, ok bool, err error) {
	got, err := o.source.Get(ctx, o.kind, id)
	if err != nil || got == nil {
		return e, false, err
	}
	e, err = o.cast(got)
	return e, err == nil, err
}

// GetOrFail returns the entity with id or ENTITY_DOES_NOT_EXIST.
func (o *EntityOperators[E]) GetOrFail(ctx context.Context, id entity.ID) (E, error) {
	e, ok, err := o.Get(ctx, id)
	if err != nil {
		return e, err
	}
	if !ok {
		return e, entity.NewDoesNotExistError(o.kind, id.String())
	}
	return e, nil
}

// GetOrFailByRegExp resolves a selector to exactly one saved entity.
func (o *EntityOperators[E]) GetOrFailByRegExp(ctx context.Context, expr string) (E, error) {
	re, err := CompileSelector(expr)
	if err != nil {
		var zero E
		return zero, err
	}
	return o.getOrFail(ctx, expr, re)
}

// GetOrFailByPattern resolves an already compiled pattern; its case
// sensitivity is kept.
func (o *EntityOperators[E]) GetOrFailByPattern(ctx context.Context, re *regexp.Regexp) (E, error) {
	return o.getOrFail(ctx, re.String(), re)
}

func (o *EntityOperators[E]) getOrFail(ctx context.Context, expr string, re *regexp.Regexp) (E, error) {
	all, err := o.List(ctx)
	if err != nil {
		var zero E
		return zero, err
	}
	return ResolveOneFrom(o.kind, expr, re, all)
}

// GetCollectionByRegExp returns every saved entity whose id or name matches.
func (o *EntityOperators[E]) GetCollectionByRegExp(ctx context.Context, expr string) (*entity.Collection[E], error) {
	re, err := CompileSelector(expr)
	if err != nil {
		return nil, err
	}
	return o.GetCollectionByPattern(ctx, re)
}

// GetCollectionByPattern is GetCollectionByRegExp for a compiled pattern.
func (o *EntityOperators[E]) GetCollectionByPattern(ctx context.Context, re *regexp.Regexp) (*entity.Collection[E], error) {
	all, err := o.List(ctx)
	if err != nil {
		return nil, err
	}
	return MatchCollection(re, all), nil
}

// GetCollectionBySelectors merges the matches of several selectors. Every
// selector must match at least one entity.
func (o *EntityOperators[E]) GetCollectionBySelectors(ctx context.Context, exprs []string) (*entity.Collection[E], error) {
	collections := make([]*entity.Collection[E], 0, len(exprs))
	for _, expr := range exprs {
		c, err := o.GetCollectionByRegExp(ctx, expr)
		if err != nil {
			return nil, err
		}
		if c.Len() == 0 {
			return nil, entity.NewDoesNotExistError(o.kind, expr)
		}
		collections = append(collections, c)
	}
	return MergeCollections(collections...), nil
}

// Update returns a copy of e with the given fields replaced. Nil fields are
// kept.
func (o *EntityOperators[E]) Update(e E, name, description *string) E {
	updated, _ := e.CloneEntity().(E)
	meta := updated.Meta()
	if name != nil {
		meta.Name = entity.NormalizeText(*name)
	}
	if description != nil {
		meta.Description = entity.NormalizeText(*description)
	}
	return updated
}

// Edit saves e with a new name and/or description. A given name must not
// be empty.
func (o *EntityOperators[E]) Edit(ctx context.Context, e E, name, description *string) (E, error) {
	if name != nil {
		if err := validateName(o.kind, *name); err != nil {
			var zero E
			return zero, err
		}
	}
	return o.Save(ctx, o.Update(e, name, description))
}

// Save persists e and returns the saved copy.
func (o *EntityOperators[E]) Save(ctx context.Context, e E) (E, error) {
	saved, err := o.source.Set(ctx, e)
	if err != nil {
		var zero E
		return zero, err
	}
	return o.cast(saved)
}

// Delete removes e from the store.
func (o *EntityOperators[E]) Delete(ctx context.Context, e E) error {
	return o.source.Delete(ctx, o.kind, e.Meta().ID)
}

// validateName rejects empty names; every entity is selected by name.
func validateName(kind entity.Kind, name string) error {
	if entity.NormalizeText(name) == "" {
		return entity.NewInvalidInputError(fmt.Sprintf("a %s needs a name", kind.Label()))
	}
	return nil
}
