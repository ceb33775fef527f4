package project

import (
	"errors"
	"fmt"
)

var (
	ErrLoad    = errors.New("failed to load project")
	ErrParse   = errors.New("failed to parse project")
	ErrInvalid = errors.New("invalid project")
	ErrPort    = errors.New("invalid port specification")
)

// Describes a single validation failure.
type ValidationError struct {
	Field   string // Dotted path of the offending field (e.g. "images[1].alias").
	Value   any    // Value that failed validation.
	Message string // What is wrong with it.
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}
