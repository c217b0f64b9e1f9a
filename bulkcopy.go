package duckvec

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/hupe1980/duckvec/internal/errs"
)

// RowSource yields rows for a bulk copy. Next returns io.EOF after the last row.
type RowSource interface {
	Columns() []string
	Next() ([]any, error)
}

// RowsCopiedEvent is passed to the RowsCopied handler every NotifyAfter rows.
type RowsCopiedEvent struct {
	RowsCopied int64
	// Abort stops the copy when set by the handler.
	Abort bool
}

// RowsCopiedHandler observes bulk copy progress.
type RowsCopiedHandler func(*RowsCopiedEvent)

// BulkCopy copies rows from a RowSource into a Destination through an
// Appender. Transactions are managed by the caller.
type BulkCopy struct {
	dest     Destination
	mappings ColumnMappings
	opts     bulkOptions
}

// NewBulkCopy prepares a copy into dest.
func NewBulkCopy(dest Destination, optFns ...BulkOption) *BulkCopy {
	return &BulkCopy{dest: dest, opts: applyBulkOptions(optFns)}
}

// ColumnMappings returns the mutable mapping collection. When empty, source
// column i is copied to destination column i.
func (b *BulkCopy) ColumnMappings() *ColumnMappings { return &b.mappings }

// WriteToServer copies every row of src and returns the number of rows ended.
// The destination is closed when the copy finishes, fails or is aborted.
func (b *BulkCopy) WriteToServer(ctx context.Context, src RowSource) (copied int64, err error) {
	if b.dest == nil {
		return 0, errs.Invalid("nil destination")
	}
	if src == nil {
		return 0, errs.Invalid("nil row source")
	}
	start := time.Now()
	log := b.opts.logger.WithTable(b.dest.Table())

	resolved, err := b.mappings.Resolve(src.Columns(), b.dest.ColumnNames())
	if err != nil {
		_ = b.dest.Close()
		return 0, err
	}

	app, err := NewAppender(b.dest, b.opts.appender...)
	if err != nil {
		_ = b.dest.Close()
		return 0, err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
		app.opts.metricsCollector.RecordRowsCopied(copied, time.Since(start), err)
		log.LogRowsCopied(ctx, copied, true, err)
	}()

	notifyIn := b.opts.notifyAfter
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		values, err := src.Next()
		if errors.Is(err, io.EOF) {
			return copied, nil
		}
		if err != nil {
			return copied, err
		}
		if err := b.copyRow(app, resolved, values); err != nil {
			return copied, err
		}
		copied++

		if err := b.opts.controller.AcquireRows(ctx, 1); err != nil {
			return copied, err
		}

		if b.opts.notifyAfter > 0 {
			notifyIn--
			if notifyIn == 0 {
				notifyIn = b.opts.notifyAfter
				log.LogRowsCopied(ctx, copied, false, nil)
				if b.opts.onRowsCopied != nil {
					ev := &RowsCopiedEvent{RowsCopied: copied}
					b.opts.onRowsCopied(ev)
					if ev.Abort {
						return copied, ErrAborted
					}
				}
			}
		}
	}
}

func (b *BulkCopy) copyRow(app *Appender, resolved []ResolvedMapping, values []any) error {
	row, err := app.BeginRow()
	if err != nil {
		return err
	}
	for _, m := range resolved {
		if m.Source >= len(values) {
			return &ColumnCountMismatchError{Table: app.Table(), Expected: m.Source + 1, Actual: len(values)}
		}
		if err := row.Insert(m.Destination, values[m.Source]); err != nil {
			return err
		}
	}
	return row.EndRow()
}
