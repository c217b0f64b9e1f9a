// Package duckvec decodes and encodes DuckDB-style columnar data chunks.
//
// A chunk is a fixed-capacity batch of column vectors. Each vector has a
// data buffer of fixed-width slots, a validity bitmap, a heap for
// out-of-line bytes and child vectors for nested types. duckvec reads those
// vectors into Go values and writes Go values into them, with checked
// numeric conversion that never wraps or clamps.
//
// # Reading
//
//	r, _ := duckvec.NewChunkReader(c, names)
//	id, err := duckvec.ReadValue[int64](r, 0, row)
//	tags, err := duckvec.ReadValue[[]string](r, 2, row)
//
// NULL reads into pointers, interfaces, slices and maps as nil; any other
// target fails with ErrInvalidCast.
//
// # Appending
//
//	app, _ := duckvec.NewAppender(dest)
//	defer app.Close()
//
//	row, _ := app.BeginRow()
//	_ = row.Append(int64(1))      // positional
//	_ = row.Append("duck")
//	_ = row.EndRow()
//
//	row, _ = app.BeginRow()
//	_ = row.Insert(1, "goose")    // by ordinal; unset columns become NULL
//	_ = row.EndRow()
//
// The appender submits its chunk to the Destination whenever the chunk is
// full and once more on Close. An engine rejection surfaces as a
// *ProtocolError carrying the engine's message.
//
// # Bulk copy
//
// BulkCopy drives an appender from a RowSource through optional column
// mappings, with progress events every NotifyAfter rows and an optional
// rows-per-second limit.
//
// # Errors
//
// All failures are returned as errors that match one of the sentinels
// (ErrInvalidCast, ErrOverflow, ErrCorruptData, ErrUnsupportedType,
// ErrColumnCountMismatch, ErrProtocol, ErrInvalidOperation, ErrOutOfRange)
// with errors.Is. The memengine package provides an in-process engine for
// tests and tooling.
package duckvec
