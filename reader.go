package duckvec

import (
	"fmt"
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
)

// ChunkReader reads the rows of one result chunk. Rows beyond the chunk's
// size are out of range. After the engine refills the chunk, Rebind must be
// called before reading again.
type ChunkReader struct {
	chunk   *chunk.Chunk
	names   []string
	byName  map[string]int
	readers []*column.Reader
}

// NewChunkReader binds one column reader per vector of c. names may be
// shorter than the column count; missing names become "columnN".
func NewChunkReader(c *chunk.Chunk, names []string) (*ChunkReader, error) {
	if c == nil {
		return nil, errs.Invalid("nil chunk")
	}
	r := &ChunkReader{
		chunk:   c,
		names:   make([]string, c.ColumnCount()),
		byName:  make(map[string]int, c.ColumnCount()),
		readers: make([]*column.Reader, c.ColumnCount()),
	}
	for i := range r.readers {
		name := fmt.Sprintf("column%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		r.names[i] = name
		if _, dup := r.byName[name]; !dup {
			r.byName[name] = i
		}
		vec, err := c.Vector(i)
		if err != nil {
			return nil, err
		}
		if r.readers[i], err = column.NewReader(vec, name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Rebind adopts the chunk's current contents after a reset and refill.
func (r *ChunkReader) Rebind() error {
	for _, cr := range r.readers {
		if err := cr.Rebind(); err != nil {
			return err
		}
	}
	return nil
}

// Chunk returns the bound chunk.
func (r *ChunkReader) Chunk() *chunk.Chunk { return r.chunk }

// RowCount returns the number of rows in the chunk.
func (r *ChunkReader) RowCount() int { return r.chunk.Size() }

// ColumnCount returns the number of columns.
func (r *ChunkReader) ColumnCount() int { return len(r.readers) }

// ColumnName returns the name of column col.
func (r *ChunkReader) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(r.names) {
		return "", errs.OutOfRange("column %d of %d", col, len(r.names))
	}
	return r.names[col], nil
}

// ColumnType returns the logical type of column col.
func (r *ChunkReader) ColumnType(col int) (*types.LogicalType, error) {
	cr, err := r.column(col)
	if err != nil {
		return nil, err
	}
	return cr.Type(), nil
}

// Ordinal returns the position of the named column.
func (r *ChunkReader) Ordinal(name string) (int, error) {
	i, ok := r.byName[name]
	if !ok {
		return 0, errs.OutOfRange("no column named %q", name)
	}
	return i, nil
}

// Column returns the reader of column col.
func (r *ChunkReader) Column(col int) (*column.Reader, error) {
	return r.column(col)
}

func (r *ChunkReader) column(col int) (*column.Reader, error) {
	if col < 0 || col >= len(r.readers) {
		return nil, errs.OutOfRange("column %d of %d", col, len(r.readers))
	}
	return r.readers[col], nil
}

func (r *ChunkReader) cell(col, row int) (*column.Reader, error) {
	cr, err := r.column(col)
	if err != nil {
		return nil, err
	}
	if r.chunk.Closed() {
		return nil, errs.Invalid("chunk is closed")
	}
	if row < 0 || row >= r.chunk.Size() {
		return nil, errs.OutOfRange("row %d of chunk with %d rows", row, r.chunk.Size())
	}
	return cr, nil
}

// IsNull reports whether the cell holds NULL.
func (r *ChunkReader) IsNull(col, row int) (bool, error) {
	cr, err := r.cell(col, row)
	if err != nil {
		return false, err
	}
	ok, err := cr.IsValid(row)
	return !ok, err
}

// Value returns the default Go mapping of the cell, or nil for NULL.
func (r *ChunkReader) Value(col, row int) (any, error) {
	cr, err := r.cell(col, row)
	if err != nil {
		return nil, err
	}
	return cr.Value(row)
}

// GetValue converts the cell to the target type.
func (r *ChunkReader) GetValue(col, row int, target reflect.Type) (any, error) {
	cr, err := r.cell(col, row)
	if err != nil {
		return nil, err
	}
	return cr.Convert(row, target)
}

// Stream returns a read-only view over a BLOB or VARCHAR cell, or nil for NULL.
func (r *ChunkReader) Stream(col, row int) (*column.BlobReader, error) {
	cr, err := r.cell(col, row)
	if err != nil {
		return nil, err
	}
	return cr.Stream(row)
}

// Nulls returns the NULL rows of column col.
func (r *ChunkReader) Nulls(col int) (*roaring.Bitmap, error) {
	cr, err := r.column(col)
	if err != nil {
		return nil, err
	}
	return cr.Nulls(r.chunk.Size())
}

// Row returns the default Go mapping of every cell of row.
func (r *ChunkReader) Row(row int) ([]any, error) {
	out := make([]any, len(r.readers))
	for col := range out {
		v, err := r.Value(col, row)
		if err != nil {
			return nil, err
		}
		out[col] = v
	}
	return out, nil
}

// ReadValue converts the cell to T.
func ReadValue[T any](r *ChunkReader, col, row int) (T, error) {
	var zero T
	cr, err := r.cell(col, row)
	if err != nil {
		return zero, err
	}
	return column.Read[T](cr, row)
}
