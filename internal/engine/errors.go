package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema marks a filter or aggregation referencing a column the
	// dataset does not have, or using one with the wrong type.
	ErrSchema = errors.New("schema error")

	// ErrInsufficientData marks an aggregation that cannot be computed for
	// the current selection (too few rows, zero variance).
	ErrInsufficientData = errors.New("insufficient data")
)

// SchemaError wraps a bad column reference.
type SchemaError struct {
	Column string
	Msg    string
}

func (e *SchemaError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: unknown column %q", ErrSchema.Error(), e.Column)
	}
	return fmt.Sprintf("%s: column %q: %s", ErrSchema.Error(), e.Column, e.Msg)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func unknownColumn(col string) error {
	return &SchemaError{Column: col}
}

func schemaErrf(col, format string, args ...any) error {
	return &SchemaError{Column: col, Msg: fmt.Sprintf(format, args...)}
}

// InsufficientDataError wraps an undefined statistic. The HTTP layer turns
// it into an informational message, never a crash.
type InsufficientDataError struct {
	Op     string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInsufficientData.Error(), e.Op, e.Reason)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

func insufficientf(op, format string, args ...any) error {
	return &InsufficientDataError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
