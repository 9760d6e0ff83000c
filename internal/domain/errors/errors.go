package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrNotFound       = errors.New("not found")
	ErrGateway        = errors.New("gateway error")
)

// StepError ties a failure to the workflow step that produced it.
// Kind is one of the sentinels above; Err keeps the underlying cause.
type StepError struct {
	Step string
	Kind error
	Err  error
}

// NewStepError builds StepError for step with the provided kind and cause.
func NewStepError(step string, kind, err error) *StepError {
	return &StepError{Step: step, Kind: kind, Err: err}
}

// Invalid reports a validation failure with a formatted message.
func Invalid(step, format string, args ...any) *StepError {
	return &StepError{Step: step, Kind: ErrValidation, Err: fmt.Errorf(format, args...)}
}

func (e *StepError) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Step, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Step, e.Kind)
	default:
		return e.Step
	}
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *StepError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// StepOf returns the failing step name if err carries one.
func StepOf(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
