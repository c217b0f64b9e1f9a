package chunk

import (
	"math"

	"github.com/hupe1980/duckvec/internal/arena"
	"github.com/hupe1980/duckvec/internal/conv"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/internal/mem"
	"github.com/hupe1980/duckvec/types"
)

const (
	// InlineThreshold is the longest payload stored inside a string header.
	InlineThreshold = 12
	// StringHeaderSize is the size of one VARCHAR/BLOB slot.
	StringHeaderSize = 16
	// ListEntrySize is the size of one LIST/MAP slot.
	ListEntrySize = 16
)

// Vector is one column of a chunk, or a child of a nested column.
type Vector struct {
	typ      *types.LogicalType
	width    int
	capacity int
	data     []byte
	validity []uint64
	heap     *arena.Heap
	children []*Vector
	listSize int
	gen      uint64
	closed   bool
}

// NewVector allocates a standalone vector of the given type and capacity.
func NewVector(t *types.LogicalType, capacity int, heapOpts ...arena.Option) (*Vector, error) {
	if t == nil {
		return nil, errs.Unsupported("nil logical type")
	}
	if t.Released() {
		return nil, errs.Invalid("logical type %s was released", t)
	}
	if capacity < 0 {
		return nil, errs.OutOfRange("negative capacity %d", capacity)
	}
	return newVector(t, capacity, heapOpts), nil
}

func newVector(t *types.LogicalType, capacity int, heapOpts []arena.Option) *Vector {
	v := &Vector{
		typ:      t,
		width:    t.SlotWidth(),
		capacity: capacity,
	}
	v.data = mem.AllocAligned(capacity * v.width)

	switch t.Storage() {
	case types.TypeVarchar, types.TypeBlob, types.TypeBit, types.TypeVarInt:
		v.heap = arena.NewHeap(heapOpts...)
	case types.TypeList, types.TypeMap:
		v.children = []*Vector{newVector(t.Child(), capacity, heapOpts)}
	case types.TypeArray:
		v.children = []*Vector{newVector(t.Child(), capacity*t.Size(), heapOpts)}
	case types.TypeStruct:
		for _, f := range t.Fields() {
			v.children = append(v.children, newVector(f.Type, capacity, heapOpts))
		}
	}
	return v
}

// Type returns the logical type of the vector.
func (v *Vector) Type() *types.LogicalType { return v.typ }

// Capacity returns the number of addressable rows.
func (v *Vector) Capacity() int { return v.capacity }

// Width returns the slot width in bytes.
func (v *Vector) Width() int { return v.width }

// Generation changes whenever the vector is reset or closed.
func (v *Vector) Generation() uint64 { return v.gen }

// Closed reports whether the owning chunk was closed.
func (v *Vector) Closed() bool { return v.closed }

// Data returns the raw slot buffer.
func (v *Vector) Data() []byte { return v.data }

// Validity returns the validity words, or nil when every row is valid.
func (v *Vector) Validity() []uint64 { return v.validity }

// Heap returns the out-of-line heap of string-like vectors, nil otherwise.
func (v *Vector) Heap() *arena.Heap { return v.heap }

// Children returns the child vectors of nested types.
func (v *Vector) Children() []*Vector { return v.children }

// Child returns child i.
func (v *Vector) Child(i int) (*Vector, error) {
	if i < 0 || i >= len(v.children) {
		return nil, errs.OutOfRange("child %d of %s", i, v.typ)
	}
	return v.children[i], nil
}

// CheckRow validates a row index against the capacity.
func (v *Vector) CheckRow(row int) error {
	if v.closed {
		return errs.Invalid("vector is closed")
	}
	if row < 0 || row >= v.capacity {
		return errs.OutOfRange("row %d of vector with capacity %d", row, v.capacity)
	}
	return nil
}

// Slot returns the bytes of one row. It is the single bounds-checked
// indexing primitive every codec goes through.
func (v *Vector) Slot(row int) ([]byte, error) {
	if err := v.CheckRow(row); err != nil {
		return nil, err
	}
	if v.width == 0 {
		return nil, errs.Invalid("%s keeps no slot data", v.typ)
	}
	off := row * v.width
	end := off + v.width
	return v.data[off:end:end], nil
}

// IsValid reports whether row holds a value. Rows outside the vector are invalid.
func (v *Vector) IsValid(row int) bool {
	if v.validity == nil {
		return row >= 0 && row < v.capacity
	}
	if row < 0 || row >= v.capacity {
		return false
	}
	return v.validity[row/64]&(1<<(uint(row)%64)) != 0
}

// EnsureValidityWritable materializes the all-valid bitmap.
func (v *Vector) EnsureValidityWritable() {
	if v.validity == nil {
		v.validity = mem.Words((v.capacity+63)/64, math.MaxUint64)
	}
}

// SetNull marks row as NULL.
func (v *Vector) SetNull(row int) error {
	if err := v.CheckRow(row); err != nil {
		return err
	}
	v.EnsureValidityWritable()
	v.validity[row/64] &^= 1 << (uint(row) % 64)
	return nil
}

// SetValid marks row as holding a value.
func (v *Vector) SetValid(row int) error {
	if err := v.CheckRow(row); err != nil {
		return err
	}
	if v.validity != nil {
		v.validity[row/64] |= 1 << (uint(row) % 64)
	}
	return nil
}

// SetBytes writes a VARCHAR/BLOB/BIT/VARINT payload, inline or on the heap.
func (v *Vector) SetBytes(row int, p []byte) error {
	if v.heap == nil {
		return errs.Invalid("%s has no string storage", v.typ)
	}
	slot, err := v.Slot(row)
	if err != nil {
		return err
	}
	n, err := conv.IntToUint32(len(p))
	if err != nil {
		return err
	}
	clear(slot)
	ByteOrder.PutUint32(slot[0:4], n)
	if len(p) <= InlineThreshold {
		copy(slot[4:], p)
		return nil
	}
	copy(slot[4:8], p[:4])
	off, err := v.heap.Alloc(p)
	if err != nil {
		return err
	}
	ByteOrder.PutUint64(slot[8:16], off)
	return nil
}

// Bytes returns the payload of a string-like row. The slice aliases vector
// memory and is valid until the next write or reset.
func (v *Vector) Bytes(row int) ([]byte, error) {
	if v.heap == nil {
		return nil, errs.Invalid("%s has no string storage", v.typ)
	}
	slot, err := v.Slot(row)
	if err != nil {
		return nil, err
	}
	n := ByteOrder.Uint32(slot[0:4])
	if n <= InlineThreshold {
		return slot[4 : 4+n : 4+n], nil
	}
	off := ByteOrder.Uint64(slot[8:16])
	b, err := v.heap.Get(off, uint64(n))
	if err != nil {
		return nil, errs.Corrupt("string at row %d: %v", row, err)
	}
	if string(b[:4]) != string(slot[4:8]) {
		return nil, errs.Corrupt("string prefix mismatch at row %d", row)
	}
	return b, nil
}

// ListEntry returns the child range of a LIST or MAP row.
func (v *Vector) ListEntry(row int) (offset, length int, err error) {
	if err := v.checkList(); err != nil {
		return 0, 0, err
	}
	slot, err := v.Slot(row)
	if err != nil {
		return 0, 0, err
	}
	off, err := conv.Uint64ToInt(ByteOrder.Uint64(slot[0:8]))
	if err != nil {
		return 0, 0, errs.Corrupt("list offset at row %d: %v", row, err)
	}
	n, err := conv.Uint64ToInt(ByteOrder.Uint64(slot[8:16]))
	if err != nil {
		return 0, 0, errs.Corrupt("list length at row %d: %v", row, err)
	}
	if off+n < off || off+n > v.children[0].capacity {
		return 0, 0, errs.Corrupt("list entry [%d, +%d) exceeds child capacity %d", off, n, v.children[0].capacity)
	}
	return off, n, nil
}

// SetListEntry writes the child range of a LIST or MAP row.
func (v *Vector) SetListEntry(row, offset, length int) error {
	if err := v.checkList(); err != nil {
		return err
	}
	slot, err := v.Slot(row)
	if err != nil {
		return err
	}
	off, err := conv.IntToUint64(offset)
	if err != nil {
		return err
	}
	n, err := conv.IntToUint64(length)
	if err != nil {
		return err
	}
	ByteOrder.PutUint64(slot[0:8], off)
	ByteOrder.PutUint64(slot[8:16], n)
	return nil
}

func (v *Vector) checkList() error {
	switch v.typ.Storage() {
	case types.TypeList, types.TypeMap:
		return nil
	default:
		return errs.Invalid("%s is not a list", v.typ)
	}
}

// ListSize returns the number of child rows in use by a LIST or MAP vector.
func (v *Vector) ListSize() int { return v.listSize }

// SetListSize records the number of child rows in use.
func (v *Vector) SetListSize(n int) error {
	if err := v.checkList(); err != nil {
		return err
	}
	if n < 0 || n > v.children[0].capacity {
		return errs.OutOfRange("list size %d exceeds child capacity %d", n, v.children[0].capacity)
	}
	v.listSize = n
	return nil
}

// ReserveChild grows the child of a LIST or MAP vector to hold at least n rows.
func (v *Vector) ReserveChild(n int) error {
	if err := v.checkList(); err != nil {
		return err
	}
	child := v.children[0]
	if n > child.capacity {
		child.grow(max(n, child.capacity*2))
	}
	return nil
}

func (v *Vector) grow(capacity int) {
	if capacity <= v.capacity {
		return
	}
	v.data = mem.GrowAligned(v.data, capacity*v.width)
	if v.validity != nil {
		words := mem.Words((capacity+63)/64, math.MaxUint64)
		copy(words, v.validity)
		v.validity = words
	}
	switch v.typ.Storage() {
	case types.TypeArray:
		v.children[0].grow(capacity * v.typ.Size())
	case types.TypeStruct:
		for _, c := range v.children {
			c.grow(capacity)
		}
	}
	v.capacity = capacity
}

func (v *Vector) reset() {
	v.validity = nil
	if v.heap != nil {
		v.heap.Reset()
	}
	v.listSize = 0
	v.gen++
	for _, c := range v.children {
		c.reset()
	}
}

func (v *Vector) release() {
	if v.heap != nil {
		v.heap.Release()
	}
	v.data = nil
	v.validity = nil
	v.closed = true
	v.gen++
	for _, c := range v.children {
		c.release()
	}
}
