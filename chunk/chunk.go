package chunk

import (
	"github.com/hupe1980/duckvec/internal/arena"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
)

// DefaultCapacity is the engine's standard vector size.
const DefaultCapacity = 2048

type options struct {
	capacity int
	heapOpts []arena.Option
}

// Option configures a Chunk.
type Option func(*options)

// WithCapacity sets the row capacity. Values <= 0 select DefaultCapacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithMemoryAcquirer charges heap growth of every vector against acq.
func WithMemoryAcquirer(acq arena.MemoryAcquirer) Option {
	return func(o *options) {
		if acq != nil {
			o.heapOpts = append(o.heapOpts, arena.WithMemoryAcquirer(acq))
		}
	}
}

// Chunk is a batch of column vectors sharing one row count.
// It is owned by its creator and is not safe for concurrent use.
type Chunk struct {
	types   []*types.LogicalType
	vectors []*Vector
	cap     int
	size    int
	closed  bool
}

// New allocates a chunk with one vector per type. The chunk does not take
// ownership of the types; callers release them after Close.
func New(ts []*types.LogicalType, optFns ...Option) (*Chunk, error) {
	o := options{capacity: DefaultCapacity}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.capacity <= 0 {
		o.capacity = DefaultCapacity
	}

	c := &Chunk{
		types:   ts,
		vectors: make([]*Vector, len(ts)),
		cap:     o.capacity,
	}
	for i, t := range ts {
		v, err := NewVector(t, o.capacity, o.heapOpts...)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.vectors[i] = v
	}
	return c, nil
}

// Types returns the column types.
func (c *Chunk) Types() []*types.LogicalType { return c.types }

// ColumnCount returns the number of vectors.
func (c *Chunk) ColumnCount() int { return len(c.vectors) }

// Capacity returns the maximum number of rows.
func (c *Chunk) Capacity() int { return c.cap }

// Size returns the number of rows in use.
func (c *Chunk) Size() int { return c.size }

// Closed reports whether Close was called.
func (c *Chunk) Closed() bool { return c.closed }

// Vector returns column i.
func (c *Chunk) Vector(i int) (*Vector, error) {
	if c.closed {
		return nil, errs.Invalid("chunk is closed")
	}
	if i < 0 || i >= len(c.vectors) {
		return nil, errs.OutOfRange("column %d of %d", i, len(c.vectors))
	}
	return c.vectors[i], nil
}

// SetSize sets the number of rows in use.
func (c *Chunk) SetSize(n int) error {
	if c.closed {
		return errs.Invalid("chunk is closed")
	}
	if n < 0 || n > c.cap {
		return errs.OutOfRange("size %d exceeds capacity %d", n, c.cap)
	}
	c.size = n
	return nil
}

// Reset empties the chunk for the next batch. Validity, heaps and list sizes
// are cleared; buffers are kept.
func (c *Chunk) Reset() error {
	if c.closed {
		return errs.Invalid("chunk is closed")
	}
	c.size = 0
	for _, v := range c.vectors {
		v.reset()
	}
	return nil
}

// Close releases every vector. Closing twice is a no-op.
func (c *Chunk) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.size = 0
	for _, v := range c.vectors {
		if v != nil {
			v.release()
		}
	}
}
