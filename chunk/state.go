package chunk

import (
	"bytes"
	"math"
	"slices"

	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/internal/mem"
	"github.com/hupe1980/duckvec/types"
)

// State is a detached deep copy of the first rows of a vector, used by
// engines that keep appended batches after the appender resets its chunk.
type State struct {
	Data     []byte
	Validity []uint64
	Heap     []byte
	ListSize int
	Children []State
}

func (v *Vector) childRows(rows int) int {
	switch v.typ.Storage() {
	case types.TypeList, types.TypeMap:
		return v.listSize
	case types.TypeArray:
		return rows * v.typ.Size()
	default:
		return rows
	}
}

// Export copies the first rows of the vector and its children.
func (v *Vector) Export(rows int) (State, error) {
	if v.closed {
		return State{}, errs.Invalid("vector is closed")
	}
	if rows < 0 || rows > v.capacity {
		return State{}, errs.OutOfRange("export of %d rows from capacity %d", rows, v.capacity)
	}
	s := State{ListSize: v.listSize}
	if v.width > 0 {
		s.Data = bytes.Clone(v.data[:rows*v.width])
	}
	if v.validity != nil {
		s.Validity = slices.Clone(v.validity[:(rows+63)/64])
	}
	if v.heap != nil {
		s.Heap = bytes.Clone(v.heap.Bytes())
	}
	childRows := v.childRows(rows)
	for _, c := range v.children {
		cs, err := c.Export(childRows)
		if err != nil {
			return State{}, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

// Import overwrites the first rows of the vector with an exported state,
// growing buffers as needed.
func (v *Vector) Import(s State, rows int) error {
	if v.closed {
		return errs.Invalid("vector is closed")
	}
	if rows < 0 || len(s.Data) != rows*v.width || len(s.Children) != len(v.children) {
		return errs.Corrupt("state of %d bytes does not describe %d rows of %s", len(s.Data), rows, v.typ)
	}
	v.grow(rows)
	copy(v.data, s.Data)
	v.validity = nil
	if s.Validity != nil {
		v.validity = mem.Words((v.capacity+63)/64, math.MaxUint64)
		copy(v.validity, s.Validity)
	}
	if v.heap != nil {
		if err := v.heap.Load(s.Heap); err != nil {
			return err
		}
	}
	switch v.typ.Storage() {
	case types.TypeList, types.TypeMap:
		if err := v.ReserveChild(s.ListSize); err != nil {
			return err
		}
		v.listSize = s.ListSize
	}
	childRows := v.childRows(rows)
	for i, c := range v.children {
		if err := c.Import(s.Children[i], childRows); err != nil {
			return err
		}
	}
	return nil
}
