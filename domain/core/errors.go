package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrProjectNotFound = fmt.Errorf("%w: test project", ErrNotFound)
	ErrRunNotFound     = fmt.Errorf("%w: test run", ErrNotFound)
	ErrCycleNotFound   = fmt.Errorf("%w: cycle row", ErrNotFound)

	// Ingestion errors
	ErrMalformedInput = errors.New("malformed input table")
	ErrMissingColumn  = fmt.Errorf("%w: required column absent", ErrMalformedInput)
	ErrNonNumeric     = fmt.Errorf("%w: non-numeric value in numeric column", ErrMalformedInput)

	// Pipeline errors
	ErrNoDischargeFound   = errors.New("no discharge step found in input")
	ErrCapacityReference  = errors.New("reference capacity is zero or negative")
	ErrStageOrder         = errors.New("pipeline stage invoked out of order")
	ErrInsufficientPoints = errors.New("insufficient samples for integration")

	// Comparison errors
	ErrShapeMismatch = errors.New("comparison table shape mismatch")
)

// Error constructors with context

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, column)
}

func NewNonNumericError(row int, column, value string) error {
	return fmt.Errorf("%w: row %d column %q value %q", ErrNonNumeric, row, column, value)
}

func NewCapacityReferenceError(capacity float64) error {
	return fmt.Errorf("%w: got %.3f mAh", ErrCapacityReference, capacity)
}

func NewShapeMismatchError(refRows, candRows int) error {
	return fmt.Errorf("%w: reference has %d rows, candidate has %d", ErrShapeMismatch, refRows, candRows)
}

func NewStageOrderError(expected, got string) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrStageOrder, expected, got)
}

// Error checking helpers

func IsMalformedInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

func IsFatalRunError(err error) bool {
	return errors.Is(err, ErrNoDischargeFound) ||
		errors.Is(err, ErrCapacityReference)
}

func IsComparisonError(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}
