package models

import (
	"errors"
	"fmt"
)

// ErrValidation classifies every local input error. Match it with errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
