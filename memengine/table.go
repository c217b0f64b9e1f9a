package memengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/types"
)

// Table stores appended chunks as blocks of encoded columns.
type Table struct {
	engine *Engine
	name   string
	names  []string
	types  []*types.LogicalType
	log    *duckvec.Logger

	mu        sync.RWMutex
	blocks    []block
	rows      int64
	appends   int
	raw       int64
	stored    int64
	failNext  error
	appenders int
	dropped   bool
}

type block struct {
	rows int
	cols []encodedState
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// ColumnNames returns the column names in ordinal order.
func (t *Table) ColumnNames() []string { return slices.Clone(t.names) }

// ColumnTypes returns the column types. The table owns them.
func (t *Table) ColumnTypes() []*types.LogicalType { return t.types }

// Rows returns the number of stored rows.
func (t *Table) Rows() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Appends returns the number of accepted non-empty chunks.
func (t *Table) Appends() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.appends
}

// Stats describes a table's storage.
type Stats struct {
	Rows        int64
	Blocks      int
	RawBytes    int64
	StoredBytes int64
}

// Stats returns the current storage figures.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{Rows: t.rows, Blocks: len(t.blocks), RawBytes: t.raw, StoredBytes: t.stored}
}

// OpenAppenders returns the number of destinations not yet closed.
func (t *Table) OpenAppenders() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.appenders
}

// FailNextAppend makes the next AppendChunk on any destination of this
// table fail with err.
func (t *Table) FailNextAppend(err error) {
	t.mu.Lock()
	t.failNext = err
	t.mu.Unlock()
}

// Destination opens an engine-side appender for the table.
func (t *Table) Destination() *Destination {
	t.mu.Lock()
	t.appenders++
	t.mu.Unlock()
	return &Destination{table: t}
}

func (t *Table) append(c *chunk.Chunk) error {
	t.mu.Lock()
	if t.dropped {
		t.mu.Unlock()
		return fmt.Errorf("table %q was dropped", t.name)
	}
	if err := t.failNext; err != nil {
		t.failNext = nil
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	if c == nil {
		return errors.New("nil chunk")
	}
	if c.ColumnCount() != len(t.types) {
		return fmt.Errorf("table %q has %d columns but %d were supplied", t.name, len(t.types), c.ColumnCount())
	}
	for i, ct := range c.Types() {
		if !ct.Equal(t.types[i]) {
			return fmt.Errorf("column %q expects %s, got %s", t.names[i], t.types[i], ct)
		}
	}
	rows := c.Size()
	if rows == 0 {
		return nil
	}

	cols, err := t.encode(c, rows)
	if err != nil {
		return err
	}

	var raw, stored int64
	for _, col := range cols {
		r, s := col.sizes()
		raw += r
		stored += s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dropped {
		return fmt.Errorf("table %q was dropped", t.name)
	}
	t.blocks = append(t.blocks, block{rows: rows, cols: cols})
	t.rows += int64(rows)
	t.appends++
	t.raw += raw
	t.stored += stored
	return nil
}

// encode exports and compresses every column in parallel.
func (t *Table) encode(c *chunk.Chunk, rows int) ([]encodedState, error) {
	rc := t.engine.opts.controller
	ct := t.engine.opts.compression

	cols := make([]encodedState, c.ColumnCount())
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(t.engine.workers())
	for i := range cols {
		g.Go(func() error {
			if err := rc.AcquireWorker(ctx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			vec, err := c.Vector(i)
			if err != nil {
				return err
			}
			s, err := vec.Export(rows)
			if err != nil {
				return err
			}
			enc, err := encodeState(s, ct)
			if err != nil {
				return fmt.Errorf("column %q: %w", t.names[i], err)
			}
			cols[i] = enc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cols, nil
}

// Scan replays stored blocks in append order. Each block is decoded into
// one reused chunk; r is rebound before every call and must not be kept.
func (t *Table) Scan(fn func(r *duckvec.ChunkReader) error) error {
	t.mu.RLock()
	if t.dropped {
		t.mu.RUnlock()
		return fmt.Errorf("table %q was dropped", t.name)
	}
	blocks := slices.Clone(t.blocks)
	t.mu.RUnlock()

	capacity := t.engine.VectorSize()
	for _, b := range blocks {
		capacity = max(capacity, b.rows)
	}
	c, err := chunk.New(t.types, chunk.WithCapacity(capacity))
	if err != nil {
		return err
	}
	defer c.Close()

	r, err := duckvec.NewChunkReader(c, t.names)
	if err != nil {
		return err
	}
	ct := t.engine.opts.compression
	for _, b := range blocks {
		if err := c.Reset(); err != nil {
			return err
		}
		for i, col := range b.cols {
			s, err := decodeState(col, ct)
			if err != nil {
				return fmt.Errorf("column %q: %w", t.names[i], err)
			}
			vec, err := c.Vector(i)
			if err != nil {
				return err
			}
			if err := vec.Import(s, b.rows); err != nil {
				return fmt.Errorf("column %q: %w", t.names[i], err)
			}
		}
		if err := c.SetSize(b.rows); err != nil {
			return err
		}
		if err := r.Rebind(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// Rowset reads every stored row into memory, one []any per row.
func (t *Table) Rowset() ([][]any, error) {
	var out [][]any
	err := t.Scan(func(r *duckvec.ChunkReader) error {
		for row := range r.RowCount() {
			vals, err := r.Row(row)
			if err != nil {
				return err
			}
			out = append(out, vals)
		}
		return nil
	})
	return out, err
}

// Truncate removes every stored row.
func (t *Table) Truncate() {
	t.mu.Lock()
	t.blocks = nil
	t.rows, t.raw, t.stored = 0, 0, 0
	t.mu.Unlock()
}

func (t *Table) drop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dropped {
		return
	}
	t.dropped = true
	t.blocks = nil
	for _, lt := range t.types {
		_ = lt.Release()
	}
}

// Destination is the engine side of one appender session. It implements
// duckvec.Destination.
type Destination struct {
	table  *Table
	closed bool
}

var _ duckvec.Destination = (*Destination)(nil)

// Table returns the table name.
func (d *Destination) Table() string { return d.table.name }

// ColumnNames returns the table's column names.
func (d *Destination) ColumnNames() []string { return d.table.ColumnNames() }

// ColumnTypes returns one handle per column. The handles stay owned by the
// table.
func (d *Destination) ColumnTypes() ([]types.Handle, error) {
	if d.closed {
		return nil, errors.New("appender is closed")
	}
	hs := make([]types.Handle, len(d.table.types))
	for i, lt := range d.table.types {
		hs[i] = lt
	}
	return hs, nil
}

// AppendChunk stores the chunk's rows.
func (d *Destination) AppendChunk(c *chunk.Chunk) error {
	if d.closed {
		return errors.New("appender is closed")
	}
	err := d.table.append(c)
	if c != nil {
		d.table.log.LogFlush(context.Background(), c.Size(), err)
	}
	return err
}

// Close ends the session. Closing twice is a no-op.
func (d *Destination) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.table.mu.Lock()
	d.table.appenders--
	d.table.mu.Unlock()
	return nil
}
