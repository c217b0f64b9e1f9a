package duckvec

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
)

// Destination is the engine side of an appender session: one table that
// accepts filled chunks.
type Destination interface {
	// Table names the destination table.
	Table() string
	// ColumnNames returns the destination column names in ordinal order.
	ColumnNames() []string
	// ColumnTypes returns one type handle per destination column.
	ColumnTypes() ([]types.Handle, error)
	// AppendChunk submits a filled chunk. The returned error text is the
	// engine's own message.
	AppendChunk(c *chunk.Chunk) error
	// Close ends the engine-side appender.
	Close() error
}

// EngineInfo reports process-wide engine parameters.
type EngineInfo interface {
	VectorSize() int
}

var (
	initOnce   sync.Once
	initErr    error
	vectorSize atomic.Int64
)

func init() {
	vectorSize.Store(chunk.DefaultCapacity)
}

// Initialize records the engine's vector size. Only the first call has an
// effect; later calls return the first call's result.
func Initialize(info EngineInfo) error {
	initOnce.Do(func() {
		if info == nil {
			initErr = errs.Invalid("nil engine info")
			return
		}
		n := info.VectorSize()
		if n <= 0 {
			initErr = errs.OutOfRange("vector size %d", n)
			return
		}
		vectorSize.Store(int64(n))
	})
	return initErr
}

// VectorSize returns the engine's chunk capacity, 2048 until Initialize
// reports otherwise.
func VectorSize() int {
	return int(vectorSize.Load())
}
