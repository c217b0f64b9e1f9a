package duckvec

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/duckvec/internal/errs"
)

type rowMode uint8

const (
	modeUnset rowMode = iota
	modeOrdinal
	modePositional
)

func (m rowMode) String() string {
	switch m {
	case modeOrdinal:
		return "ordinal"
	case modePositional:
		return "positional"
	default:
		return "unset"
	}
}

// Row builds one appender row, either positionally with Append or by
// ordinal with Insert. The first call fixes the mode for the row.
//
// In ordinal mode columns may be written in any order and EndRow writes NULL
// into every column left unset. In positional mode EndRow requires a value
// for every column.
type Row struct {
	a     *Appender
	index int
	mode  rowMode
	set   *bitset.BitSet
	next  int
	ended bool
}

func newRow(a *Appender, index int) *Row {
	return &Row{a: a, index: index, set: bitset.New(uint(len(a.writers)))}
}

// Index returns the row's position in the current chunk.
func (r *Row) Index() int { return r.index }

func (r *Row) enter(mode rowMode) error {
	if r.ended {
		return errs.Invalid("row already ended")
	}
	if r.a.closed {
		return errs.Invalid("appender for %q is closed", r.a.table)
	}
	if r.mode != modeUnset && r.mode != mode {
		return errs.Invalid("cannot mix %s and %s writes in one row", r.mode, mode)
	}
	r.mode = mode
	return nil
}

func (r *Row) ordinal(ord int) error {
	if err := r.enter(modeOrdinal); err != nil {
		return err
	}
	if ord < 0 || ord >= len(r.a.writers) {
		return errs.OutOfRange("column ordinal %d of table %q with %d columns", ord, r.a.table, len(r.a.writers))
	}
	return nil
}

// Insert writes v into the column at ordinal.
func (r *Row) Insert(ordinal int, v any) error {
	if err := r.ordinal(ordinal); err != nil {
		return err
	}
	if err := r.a.writers[ordinal].Write(r.index, v); err != nil {
		return err
	}
	r.set.Set(uint(ordinal))
	return nil
}

// InsertNull writes NULL into the column at ordinal.
func (r *Row) InsertNull(ordinal int) error {
	if err := r.ordinal(ordinal); err != nil {
		return err
	}
	if err := r.a.writers[ordinal].WriteNull(r.index); err != nil {
		return err
	}
	r.set.Set(uint(ordinal))
	return nil
}

// InsertBlob writes raw bytes into the BLOB or VARCHAR column at ordinal.
func (r *Row) InsertBlob(ordinal int, p []byte) error {
	if err := r.ordinal(ordinal); err != nil {
		return err
	}
	if err := r.a.writers[ordinal].WriteBlob(r.index, p); err != nil {
		return err
	}
	r.set.Set(uint(ordinal))
	return nil
}

func (r *Row) position() (int, error) {
	if err := r.enter(modePositional); err != nil {
		return 0, err
	}
	if r.next >= len(r.a.writers) {
		return 0, errs.OutOfRange("row of table %q already holds %d values", r.a.table, len(r.a.writers))
	}
	return r.next, nil
}

// Append writes v into the next column.
func (r *Row) Append(v any) error {
	pos, err := r.position()
	if err != nil {
		return err
	}
	if err := r.a.writers[pos].Write(r.index, v); err != nil {
		return err
	}
	r.next++
	return nil
}

// AppendNull writes NULL into the next column.
func (r *Row) AppendNull() error {
	pos, err := r.position()
	if err != nil {
		return err
	}
	if err := r.a.writers[pos].WriteNull(r.index); err != nil {
		return err
	}
	r.next++
	return nil
}

// AppendBlob writes raw bytes into the next column.
func (r *Row) AppendBlob(p []byte) error {
	pos, err := r.position()
	if err != nil {
		return err
	}
	if err := r.a.writers[pos].WriteBlob(r.index, p); err != nil {
		return err
	}
	r.next++
	return nil
}

// EndRow completes the row. A row that never chose a mode counts as
// positional and fails like any short positional row.
func (r *Row) EndRow() error {
	if r.ended {
		return errs.Invalid("row already ended")
	}
	if r.a.closed {
		return errs.Invalid("appender for %q is closed", r.a.table)
	}
	n := len(r.a.writers)
	switch r.mode {
	case modeOrdinal:
		for i := 0; i < n; i++ {
			if r.set.Test(uint(i)) {
				continue
			}
			if err := r.a.writers[i].WriteNull(r.index); err != nil {
				return err
			}
		}
	default:
		if r.next < n {
			return &ColumnCountMismatchError{Table: r.a.table, Expected: n, Actual: r.next}
		}
	}
	r.ended = true
	r.a.endRow()
	return nil
}
