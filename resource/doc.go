// Package resource implements the Controller for ingest limits.
//
// The Controller manages three resource types:
//
//   - Memory: budget for vector heap growth (non-blocking, fail-fast)
//   - Workers: bound on goroutines encoding column blocks in parallel
//   - Rows: token bucket limiting bulk copy throughput in rows per second
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded
// immediately when the budget would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - the heap refuses to grow
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Row Rate Limiting
//
//	rc := resource.NewController(resource.Config{RowsPerSecond: 50_000})
//	if err := rc.AcquireRows(ctx, batch); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
