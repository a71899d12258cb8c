package edition

import (
	"fmt"
	"strings"

	"github.com/roach88/todo-manager/internal/entity"
)

// Validation error codes (E200-E299)
const (
	ErrFlowNameEmpty      = "E201" // flow name is required
	ErrInvalidAction      = "E202" // unknown step action
	ErrStepNameEmpty      = "E203" // step name is required
	ErrNewNameNotAllowed  = "E204" // newName only applies to edit
	ErrDuplicateStepName  = "E205" // two resulting steps share a name
	ErrStepMentionedTwice = "E206" // one current step has several actions
	ErrInvalidDefault     = "E207" // default is not a resulting step
	ErrInvalidColor       = "E208" // unknown color
)

// ValidationError represents one consistency problem in an edition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks an edition for internal consistency.
// Returns all errors found (does not fail-fast).
//
// Validation only looks at the declared actions; matching them against an
// existing flow is the caller's job.
func Validate(ed *FlowEdition) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(ed.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "flow name is required and must be non-empty",
			Code:    ErrFlowNameEmpty,
		})
	}

	results := make(map[string]bool)
	removed := make(map[string]bool)
	mentioned := make(map[string]bool)
	for i, step := range ed.Steps {
		field := fmt.Sprintf("steps[%d]", i)

		if !step.Action.IsValid() {
			errs = append(errs, ValidationError{
				Field:   field + ".action",
				Message: fmt.Sprintf("unknown action %q (want add, keep, edit or remove)", step.Action),
				Code:    ErrInvalidAction,
			})
			continue
		}
		if step.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "step name is required and must be non-empty",
				Code:    ErrStepNameEmpty,
			})
			continue
		}
		if step.NewName != "" && step.Action != ActionEdit {
			errs = append(errs, ValidationError{
				Field:   field + ".newName",
				Message: fmt.Sprintf("newName is only valid for edit, not %s", step.Action),
				Code:    ErrNewNameNotAllowed,
			})
		}
		if step.Color != nil && !step.Color.IsValid() {
			errs = append(errs, ValidationError{
				Field:   field + ".color",
				Message: fmt.Sprintf("unknown color %q", *step.Color),
				Code:    ErrInvalidColor,
			})
		}

		if step.Action != ActionAdd {
			if mentioned[step.Name] {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: fmt.Sprintf("step %q has more than one action", step.Name),
					Code:    ErrStepMentionedTwice,
				})
			}
			mentioned[step.Name] = true
		}

		if !step.Survives() {
			removed[step.Name] = true
			continue
		}
		name := step.ResultName()
		if results[name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("more than one step would be named %q", name),
				Code:    ErrDuplicateStepName,
			})
		}
		results[name] = true
	}

	if ed.Default != "" && !results[ed.Default] {
		msg := fmt.Sprintf("default step %q is not part of the resulting flow", ed.Default)
		if removed[ed.Default] {
			msg = fmt.Sprintf("default step %q is removed by this edition", ed.Default)
		}
		errs = append(errs, ValidationError{
			Field:   "default",
			Message: msg,
			Code:    ErrInvalidDefault,
		})
	}

	return errs
}

// Check runs Validate and folds the problems into one INVALID_EDITION error.
func Check(ed *FlowEdition) error {
	errs := Validate(ed)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return entity.NewInvalidEditionError(strings.Join(msgs, "; "), nil)
}
