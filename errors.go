package sparsela

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sparsela/internal/triplet"
)

var (
	// ErrInvalidShape is returned for non-positive dimensions.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrOutOfRange is returned for element or lane indices outside the shape.
	ErrOutOfRange = errors.New("index out of range")
	// ErrDimensionMismatch is returned when operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNotSquare is returned by methods that require a square matrix.
	ErrNotSquare = errors.New("matrix is not square")
	// ErrUnknownMethod is returned for solver method names that are not recognised.
	ErrUnknownMethod = errors.New("unknown solver method")
	// ErrDivisionByZero is returned when a divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrMalformedInput is returned for unparsable triplet input.
	ErrMalformedInput = triplet.ErrMalformed
	// ErrLaneWidthMismatch is returned when operands use different lane widths.
	ErrLaneWidthMismatch = errors.New("lane width mismatch")
	// ErrInvalidParameter is returned for out-of-domain numeric parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidStructure is returned when CRS arrays violate the storage invariants.
	ErrInvalidStructure = errors.New("invalid storage structure")
	// ErrNotSolved is returned when results are read before a successful solve.
	ErrNotSolved = errors.New("system has not been solved")
)

// ParseError reports the line of a triplet file that failed to parse.
type ParseError = triplet.ParseError

// OpError records the operation and reason of a failure.
//
// The sentinel cause can be matched with errors.Is.
type OpError struct {
	Op     string
	Err    error
	Detail string
}

func (e *OpError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("sparsela: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sparsela: %s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(op string, err error, format string, args ...any) error {
	return &OpError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)}
}

func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	return &OpError{Op: op, Err: err}
}

// translateError maps errors of internal packages onto the exported sentinels.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, triplet.ErrNegativeIndex) {
		return &OpError{Op: op, Err: fmt.Errorf("%w: %w", ErrOutOfRange, err)}
	}
	return wrapOp(op, err)
}
