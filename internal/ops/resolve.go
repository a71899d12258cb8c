package ops

import (
	"fmt"
	"regexp"

	"github.com/roach88/todo-manager/internal/entity"
)

// CompileSelector compiles a user selector. Selectors are unanchored and case
// insensitive.
func CompileSelector(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, &entity.Error{
			Code:       entity.ErrCodeInvalidInput,
			Message:    fmt.Sprintf("invalid selector `%s`", expr),
			Expression: expr,
			Err:        err,
		}
	}
	return re, nil
}

// MatchesID reports whether re matches the entity's id.
func MatchesID(re *regexp.Regexp, e entity.Entity) bool {
	return re.MatchString(e.Meta().ID.String())
}

// MatchesName reports whether re matches the entity's name.
func MatchesName(re *regexp.Regexp, e entity.Entity) bool {
	return re.MatchString(e.Meta().Name)
}

// ResolveOneFrom picks the single entity of c selected by re.
//
// A unique id match wins, even when several names match too. Otherwise a
// unique name match wins. No match at all is ENTITY_DOES_NOT_EXIST; anything
// else is ENTITY_IS_NOT_UNIQUE. expr is the selector as the user wrote it,
// used in error messages.
func ResolveOneFrom[E entity.Entity](kind entity.Kind, expr string, re *regexp.Regexp, c *entity.Collection[E]) (E, error) {
	var zero E
	var byID, byName []E
	for _, e := range c.Values() {
		if MatchesID(re, e) {
			byID = append(byID, e)
		}
		if MatchesName(re, e) {
			byName = append(byName, e)
		}
	}

	switch {
	case len(byID) == 1:
		return byID[0], nil
	case len(byName) == 1:
		return byName[0], nil
	case len(byID) == 0 && len(byName) == 0:
		return zero, entity.NewDoesNotExistError(kind, expr)
	default:
		return zero, entity.NewNotUniqueError(kind, expr)
	}
}

// MatchCollection returns the entities of c whose id or name matches re, in
// the order of c.
func MatchCollection[E entity.Entity](re *regexp.Regexp, c *entity.Collection[E]) *entity.Collection[E] {
	matched := entity.NewCollection[E]()
	for _, e := range c.Values() {
		if MatchesID(re, e) || MatchesName(re, e) {
			matched.Set(e)
		}
	}
	return matched
}
