package duckvec

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
)

// Appender packs rows into a chunk and submits the chunk to its Destination
// whenever it is full. An Appender is not safe for concurrent use.
type Appender struct {
	dest    Destination
	table   string
	names   []string
	types   []*types.LogicalType
	chunk   *chunk.Chunk
	writers []*column.Writer

	rows    int // rows ended in the current chunk
	total   int64
	flushes int
	current *Row
	closed  bool

	opts options
	log  *Logger
}

// NewAppender resolves the destination's column types and allocates the
// appender's chunk. The appender owns dest and closes it in Close.
func NewAppender(dest Destination, optFns ...Option) (*Appender, error) {
	if dest == nil {
		return nil, errs.Invalid("nil destination")
	}
	o := applyOptions(optFns)

	handles, err := dest.ColumnTypes()
	if err != nil {
		return nil, err
	}
	ts, err := types.ResolveAll(handles)
	if err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		return nil, errs.Invalid("table %q has no columns", dest.Table())
	}

	names := make([]string, len(ts))
	destNames := dest.ColumnNames()
	for i := range names {
		if i < len(destNames) && destNames[i] != "" {
			names[i] = destNames[i]
		} else {
			names[i] = fmt.Sprintf("column%d", i)
		}
	}

	chunkOpts := []chunk.Option{chunk.WithCapacity(o.chunkCapacity)}
	if o.controller != nil {
		chunkOpts = append(chunkOpts, chunk.WithMemoryAcquirer(o.controller))
	}
	c, err := chunk.New(ts, chunkOpts...)
	if err != nil {
		releaseTypes(ts)
		return nil, err
	}

	a := &Appender{
		dest:  dest,
		table: dest.Table(),
		names: names,
		types: ts,
		chunk: c,
		opts:  o,
		log:   o.logger.WithTable(dest.Table()).WithColumns(len(ts)),
	}
	if err := a.bindWriters(); err != nil {
		c.Close()
		releaseTypes(ts)
		return nil, err
	}
	return a, nil
}

func releaseTypes(ts []*types.LogicalType) {
	for _, t := range ts {
		_ = t.Release()
	}
}

func (a *Appender) bindWriters() error {
	writers := make([]*column.Writer, a.chunk.ColumnCount())
	for i := range writers {
		vec, err := a.chunk.Vector(i)
		if err != nil {
			return err
		}
		if writers[i], err = column.NewWriter(vec, a.names[i]); err != nil {
			return err
		}
	}
	a.writers = writers
	return nil
}

// Table returns the destination table name.
func (a *Appender) Table() string { return a.table }

// ColumnCount returns the number of destination columns.
func (a *Appender) ColumnCount() int { return len(a.types) }

// ColumnTypes returns the resolved destination column types.
func (a *Appender) ColumnTypes() []*types.LogicalType { return a.types }

// ColumnNames returns the destination column names.
func (a *Appender) ColumnNames() []string { return a.names }

// Rows returns the number of rows ended so far, flushed or not.
func (a *Appender) Rows() int64 { return a.total }

// Pending returns the number of ended rows waiting in the current chunk.
func (a *Appender) Pending() int { return a.rows }

// Flushes returns the number of chunks submitted.
func (a *Appender) Flushes() int { return a.flushes }

// BeginRow opens the next row. When the chunk is full it is submitted first.
func (a *Appender) BeginRow() (*Row, error) {
	if a.closed {
		return nil, errs.Invalid("appender for %q is closed", a.table)
	}
	if a.current != nil && !a.current.ended {
		return nil, errs.Invalid("previous row has not ended")
	}
	if a.rows >= a.chunk.Capacity() {
		if err := a.flush(); err != nil {
			return nil, err
		}
	}
	a.current = newRow(a, a.rows)
	return a.current, nil
}

// Flush submits the rows ended so far. It is a no-op when none are pending.
func (a *Appender) Flush() error {
	if a.closed {
		return errs.Invalid("appender for %q is closed", a.table)
	}
	if a.current != nil && !a.current.ended {
		return errs.Invalid("cannot flush while a row is open")
	}
	if a.rows == 0 {
		return nil
	}
	return a.flush()
}

func (a *Appender) flush() error {
	start := time.Now()
	rows := a.rows
	err := a.submit()
	a.opts.metricsCollector.RecordFlush(rows, time.Since(start), err)
	a.log.LogFlush(context.Background(), rows, err)
	return err
}

func (a *Appender) submit() error {
	if err := a.chunk.SetSize(a.rows); err != nil {
		return err
	}
	if err := a.dest.AppendChunk(a.chunk); err != nil {
		return &ProtocolError{Table: a.table, Message: err.Error()}
	}
	a.flushes++
	if err := a.chunk.Reset(); err != nil {
		return err
	}
	for _, w := range a.writers {
		if err := w.Rebind(); err != nil {
			return err
		}
	}
	a.rows = 0
	a.current = nil
	return nil
}

func (a *Appender) endRow() {
	a.rows++
	a.total++
}
