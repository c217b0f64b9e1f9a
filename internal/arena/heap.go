package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned for references outside the used part of the heap.
	ErrOutOfBounds = errors.New("arena: reference out of bounds")
)

const minGrow = 256

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Option configures a Heap.
type Option func(*Heap)

// WithMemoryAcquirer charges heap growth against acq.
func WithMemoryAcquirer(acq MemoryAcquirer) Option {
	return func(h *Heap) {
		h.acq = acq
	}
}

// WithInitialSize preallocates size bytes.
func WithInitialSize(size int) Option {
	return func(h *Heap) {
		h.initial = size
	}
}

// Stats tracks heap usage.
type Stats struct {
	BytesReserved uint64
	BytesUsed     uint64
	TotalAllocs   uint64
}

// Heap is a growable byte arena addressed by uint64 offsets.
// It is not safe for concurrent use.
type Heap struct {
	buf      []byte
	used     uint64
	initial  int
	acq      MemoryAcquirer
	reserved int64
	allocs   uint64
}

// NewHeap creates an empty heap.
func NewHeap(optFns ...Option) *Heap {
	h := &Heap{used: 1}
	for _, fn := range optFns {
		fn(h)
	}
	if h.initial > 0 {
		// Preallocation is best effort; Alloc reports limit failures.
		_ = h.grow(uint64(h.initial))
	}
	return h
}

// Alloc copies p into the heap and returns its offset.
func (h *Heap) Alloc(p []byte) (uint64, error) {
	need := h.used + uint64(len(p))
	if need > uint64(len(h.buf)) {
		if err := h.grow(need); err != nil {
			return 0, err
		}
	}
	off := h.used
	copy(h.buf[off:need], p)
	h.used = need
	h.allocs++
	return off, nil
}

func (h *Heap) grow(need uint64) error {
	newCap := uint64(len(h.buf)) * 2
	if newCap < need {
		newCap = need
	}
	if newCap < minGrow {
		newCap = minGrow
	}
	delta := int64(newCap) - int64(len(h.buf))
	if h.acq != nil {
		if err := h.acq.AcquireMemory(delta); err != nil {
			return fmt.Errorf("arena: grow to %d bytes: %w", newCap, err)
		}
		h.reserved += delta
	}
	buf := make([]byte, newCap)
	copy(buf, h.buf[:min(h.used, uint64(len(h.buf)))])
	h.buf = buf
	return nil
}

// Get returns size bytes at offset.
// WARNING: The returned slice is valid only until the next Alloc.
func (h *Heap) Get(offset, size uint64) ([]byte, error) {
	end := offset + size
	if offset == 0 || end < offset || end > h.used {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfBounds, offset, end, h.used)
	}
	return h.buf[offset:end:end], nil
}

// Bytes returns the used part of the heap, including the reserved null byte.
func (h *Heap) Bytes() []byte {
	if len(h.buf) == 0 {
		return nil
	}
	return h.buf[:h.used]
}

// Load replaces the heap contents with a copy of b, as returned by Bytes.
func (h *Heap) Load(b []byte) error {
	h.used = 1
	if len(b) <= 1 {
		return nil
	}
	if uint64(len(b)) > uint64(len(h.buf)) {
		if err := h.grow(uint64(len(b))); err != nil {
			return err
		}
	}
	copy(h.buf, b)
	h.used = uint64(len(b))
	return nil
}

// Size returns the used size in bytes.
func (h *Heap) Size() uint64 { return h.used }

// Reset forgets every allocation but keeps the buffer.
func (h *Heap) Reset() {
	h.used = 1
}

// Release drops the buffer and returns charged memory.
func (h *Heap) Release() {
	if h.acq != nil && h.reserved > 0 {
		h.acq.ReleaseMemory(h.reserved)
	}
	h.reserved = 0
	h.buf = nil
	h.used = 1
}

// Stats returns current usage.
func (h *Heap) Stats() Stats {
	return Stats{
		BytesReserved: uint64(len(h.buf)),
		BytesUsed:     h.used - 1,
		TotalAllocs:   h.allocs,
	}
}
