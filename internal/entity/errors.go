package entity

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes todo-manager errors. Callers match on the code, not
// on the Go type.
type ErrorCode string

const (
	// ErrCodeDoesNotExist: a selector matched zero entities.
	ErrCodeDoesNotExist ErrorCode = "ENTITY_DOES_NOT_EXIST"

	// ErrCodeNotUnique: a selector matched several entities ambiguously.
	ErrCodeNotUnique ErrorCode = "ENTITY_IS_NOT_UNIQUE"

	// ErrCodeAlreadyExists: an explicit id given on creation is taken.
	ErrCodeAlreadyExists ErrorCode = "ENTITY_ALREADY_EXISTS"

	// ErrCodeNoDefaultStep: a task was attached without a step to a board
	// whose flow has no default step.
	ErrCodeNoDefaultStep ErrorCode = "NO_DEFAULT_STEP"

	// ErrCodeInvalidStepForBoard: a step did not resolve within the flow scope.
	ErrCodeInvalidStepForBoard ErrorCode = "INVALID_STEP_FOR_BOARD"

	// ErrCodeBlockedByReferences: a flow is still referenced by boards.
	ErrCodeBlockedByReferences ErrorCode = "BLOCKED_BY_REFERENCES"

	// ErrCodeStepInUse: a flow edition removes a step that tasks are assigned to.
	ErrCodeStepInUse ErrorCode = "STEP_IN_USE"

	// ErrCodeInvalidEdition: a flow edition document failed validation.
	ErrCodeInvalidEdition ErrorCode = "INVALID_EDITION"

	// ErrCodeInvalidInput: malformed user input (bad regexp, missing option).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeStorage: the store could not be read or written.
	ErrCodeStorage ErrorCode = "STORAGE"
)

// Error is the single error type of the core. Optional fields carry the
// subject of the failure.
type Error struct {
	Code    ErrorCode
	Message string

	// Kind and Expression identify the lookup that failed, if any.
	Kind       Kind
	Expression string

	// Count is the number of blocking references or assigned tasks.
	Count int

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewDoesNotExistError reports that no entity of kind matches expression.
func NewDoesNotExistError(kind Kind, expression string) *Error {
	return &Error{
		Code:       ErrCodeDoesNotExist,
		Message:    fmt.Sprintf("%s with expression `%s` does not exist", kind.Label(), expression),
		Kind:       kind,
		Expression: expression,
	}
}

// NewNotUniqueError reports that several entities of kind match expression.
func NewNotUniqueError(kind Kind, expression string) *Error {
	return &Error{
		Code:       ErrCodeNotUnique,
		Message:    fmt.Sprintf("there are several %s entities matching expression `%s`", kind.Label(), expression),
		Kind:       kind,
		Expression: expression,
	}
}

// NewAlreadyExistsError reports that an explicit id is already used.
func NewAlreadyExistsError(kind Kind, id ID) *Error {
	return &Error{
		Code:       ErrCodeAlreadyExists,
		Message:    fmt.Sprintf("%s with id `%s` already exists", kind.Label(), id),
		Kind:       kind,
		Expression: string(id),
	}
}

// NewNoDefaultStepError reports that a board's flow has no default step.
func NewNoDefaultStepError(board *Board) *Error {
	return &Error{
		Code:    ErrCodeNoDefaultStep,
		Message: fmt.Sprintf("board %s has a flow without a default step, a step must be provided", board.ID),
		Kind:    KindBoard,
	}
}

// NewInvalidStepError reports a step selector that did not resolve within flow.
func NewInvalidStepError(flow *Flow, expression string, cause error) *Error {
	msg := fmt.Sprintf("step `%s` cannot be resolved", expression)
	if flow != nil {
		msg = fmt.Sprintf("step `%s` cannot be resolved within flow %s", expression, flow.ID)
	}
	return &Error{
		Code:       ErrCodeInvalidStepForBoard,
		Message:    msg,
		Kind:       KindFlowStep,
		Expression: expression,
		Err:        cause,
	}
}

// NewBlockedByReferencesError reports that count boards still use the flows
// being deleted.
func NewBlockedByReferencesError(count int) *Error {
	return &Error{
		Code: ErrCodeBlockedByReferences,
		Message: fmt.Sprintf("trying to delete flows with %d associated boards; "+
			"to remove the boards too use option --boards", count),
		Kind:  KindBoard,
		Count: count,
	}
}

// NewStepInUseError reports that count tasks are assigned to a step being removed.
func NewStepInUseError(step *FlowStep, count int) *Error {
	return &Error{
		Code:       ErrCodeStepInUse,
		Message:    fmt.Sprintf("step %q is assigned to %d tasks; move them before removing it", step.Name, count),
		Kind:       KindFlowStep,
		Expression: step.Name,
		Count:      count,
	}
}

// NewInvalidEditionError reports an invalid flow edition document.
func NewInvalidEditionError(message string, cause error) *Error {
	return &Error{Code: ErrCodeInvalidEdition, Message: message, Kind: KindFlow, Err: cause}
}

// NewInvalidInputError reports malformed user input.
func NewInvalidInputError(message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message}
}

// NewStorageError wraps a store failure.
func NewStorageError(message string, cause error) *Error {
	return &Error{Code: ErrCodeStorage, Message: message, Err: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// IsDoesNotExist reports whether err is an ErrCodeDoesNotExist error.
func IsDoesNotExist(err error) bool { return HasCode(err, ErrCodeDoesNotExist) }

// IsNotUnique reports whether err is an ErrCodeNotUnique error.
func IsNotUnique(err error) bool { return HasCode(err, ErrCodeNotUnique) }
