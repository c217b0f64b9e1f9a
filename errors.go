package duckvec

import (
	"errors"

	"github.com/hupe1980/duckvec/internal/conv"
	"github.com/hupe1980/duckvec/internal/errs"
)

var (
	// ErrUnsupportedType is returned for logical types outside the supported set.
	ErrUnsupportedType = errs.ErrUnsupportedType
	// ErrInvalidCast is returned when a value cannot be represented in the requested type.
	ErrInvalidCast = errs.ErrInvalidCast
	// ErrOverflow is wrapped by InvalidCastError when a numeric value is out of range.
	ErrOverflow = conv.ErrOverflow
	// ErrCorruptData is returned when a vector buffer violates its layout.
	ErrCorruptData = errs.ErrCorruptData
	// ErrColumnCountMismatch is returned when a positional row ends early.
	ErrColumnCountMismatch = errs.ErrColumnCountMismatch
	// ErrProtocol is returned when the engine rejects a chunk.
	ErrProtocol = errs.ErrProtocol
	// ErrInvalidOperation is returned for API misuse.
	ErrInvalidOperation = errs.ErrInvalidOperation
	// ErrOutOfRange is returned for row, column or ordinal positions outside bounds.
	ErrOutOfRange = errs.ErrOutOfRange
	// ErrMixedMappingScheme is returned when column mappings mix name and ordinal addressing.
	ErrMixedMappingScheme = errors.New("column mappings must use names or ordinals consistently")
	// ErrAborted is returned when a RowsCopied handler aborts a bulk copy.
	ErrAborted = errors.New("bulk copy aborted")
)

// InvalidCastError reports a failed conversion between a column type and a host type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InvalidCastError = errs.InvalidCastError

// ColumnCountMismatchError reports a positional row that ended before every
// column was written.
type ColumnCountMismatchError = errs.ColumnCountMismatchError

// ProtocolError carries the engine's error text for a rejected chunk.
type ProtocolError = errs.ProtocolError
