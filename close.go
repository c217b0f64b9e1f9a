package duckvec

import "context"

// Close flushes pending rows, releases the chunk and closes the destination.
//
// Resources are released even when the final flush fails; the first error is
// returned. Rows of a row that was begun but not ended are discarded. Closing
// twice is a no-op.
func (a *Appender) Close() error {
	if a == nil || a.closed {
		return nil
	}
	a.closed = true

	var firstErr error
	if a.rows > 0 {
		if err := a.flush(); err != nil {
			firstErr = err
		}
	}

	a.writers = nil
	a.current = nil
	a.chunk.Close()
	releaseTypes(a.types)

	if err := a.dest.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	a.log.LogClose(context.Background(), a.total, a.flushes, firstErr)
	return firstErr
}
