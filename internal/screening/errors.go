package screening

import (
	"errors"
	"fmt"
)

// InputError reports a required field missing from the intake request. It is
// returned before the pipeline starts; the core stages never see it.
type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("required field %s is missing", e.Field)
}

// StageError wraps a failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}
