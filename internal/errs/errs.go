// Package errs holds the error taxonomy shared by the decode and append paths.
//
// The root package re-exports every sentinel and typed error so callers never
// import this package directly.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for logical types outside the supported set.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrInvalidCast is returned when a value cannot be represented in the requested type.
	ErrInvalidCast = errors.New("invalid cast")
	// ErrCorruptData is returned when a vector buffer violates its documented layout.
	ErrCorruptData = errors.New("corrupt data")
	// ErrColumnCountMismatch is returned when a row ends before every column was written.
	ErrColumnCountMismatch = errors.New("column count mismatch")
	// ErrProtocol is returned when the engine rejects a submitted chunk.
	ErrProtocol = errors.New("engine protocol error")
	// ErrInvalidOperation is returned for API misuse (closed appender, stale reader, ...).
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrOutOfRange is returned for row or column positions outside a chunk.
	ErrOutOfRange = errors.New("out of range")
)

// InvalidCastError reports a failed conversion between a column type and a host type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InvalidCastError struct {
	From   string
	To     string
	Column string
	cause  error
}

// NewInvalidCast builds an InvalidCastError.
func NewInvalidCast(from, to, column string, cause error) *InvalidCastError {
	return &InvalidCastError{From: from, To: to, Column: column, cause: cause}
}

func (e *InvalidCastError) Error() string {
	msg := fmt.Sprintf("invalid cast from %s to %s", e.From, e.To)
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *InvalidCastError) Is(target error) bool { return target == ErrInvalidCast }

func (e *InvalidCastError) Unwrap() error { return e.cause }

// ColumnCountMismatchError reports a positional row that ended early.
type ColumnCountMismatchError struct {
	Table    string
	Expected int
	Actual   int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("column count mismatch for table %q: expected %d values, got %d", e.Table, e.Expected, e.Actual)
}

func (e *ColumnCountMismatchError) Is(target error) bool { return target == ErrColumnCountMismatch }

// ProtocolError carries the engine's own error text for a rejected chunk.
type ProtocolError struct {
	Table   string
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Table == "" {
		return "engine error: " + e.Message
	}
	return fmt.Sprintf("engine error appending to %q: %s", e.Table, e.Message)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// Unsupported wraps ErrUnsupportedType with a description of the offending type.
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedType, fmt.Sprintf(format, args...))
}

// Corrupt wraps ErrCorruptData.
func Corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptData, fmt.Sprintf(format, args...))
}

// Invalid wraps ErrInvalidOperation.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

// OutOfRange wraps ErrOutOfRange.
func OutOfRange(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, fmt.Sprintf(format, args...))
}
