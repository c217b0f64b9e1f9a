package duckvec

import (
	"log/slog"

	"github.com/hupe1980/duckvec/resource"
)

type options struct {
	chunkCapacity    int
	memoryLimit      int64
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Appender.
type Option func(*options)

// WithChunkCapacity sets the row capacity of the appender's chunk.
//
// Defaults to VectorSize(). Values <= 0 keep the default.
func WithChunkCapacity(n int) Option {
	return func(o *options) {
		o.chunkCapacity = n
	}
}

// WithMemoryLimit caps the bytes the appender's string heaps may grow to.
// Writes that would exceed the limit fail. 0 means unlimited.
//
// Ignored when WithResourceController is also given.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController shares a resource controller between appenders so
// their heaps draw on one memory budget.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring flushes.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &duckvec.BasicMetricsCollector{}
//	app, _ := duckvec.NewAppender(dest, duckvec.WithMetricsCollector(metrics))
//	// ... append rows, close ...
//	stats := metrics.GetStats()
//	fmt.Printf("Flushes: %d, rows: %d\n", stats.FlushCount, stats.FlushedRows)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := duckvec.NewJSONLogger(slog.LevelDebug)
//	app, _ := duckvec.NewAppender(dest, duckvec.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		chunkCapacity:    VectorSize(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.chunkCapacity <= 0 {
		o.chunkCapacity = VectorSize()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil && o.memoryLimit > 0 {
		o.controller = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}
	return o
}

type bulkOptions struct {
	notifyAfter   int64
	onRowsCopied  RowsCopiedHandler
	rowsPerSecond int64
	controller    *resource.Controller
	logger        *Logger
	appender      []Option
}

// BulkOption configures a BulkCopy.
type BulkOption func(*bulkOptions)

// WithNotifyAfter raises a RowsCopied event every n rows. 0 disables events.
func WithNotifyAfter(n int64) BulkOption {
	return func(o *bulkOptions) {
		o.notifyAfter = n
	}
}

// WithRowsCopiedHandler registers the handler for RowsCopied events.
// The handler may set Abort to stop the copy.
func WithRowsCopiedHandler(h RowsCopiedHandler) BulkOption {
	return func(o *bulkOptions) {
		o.onRowsCopied = h
	}
}

// WithRowsPerSecond throttles ingestion. 0 means unlimited.
func WithRowsPerSecond(n int64) BulkOption {
	return func(o *bulkOptions) {
		o.rowsPerSecond = n
	}
}

// WithBulkResourceController throttles ingestion through a shared controller.
// It takes precedence over WithRowsPerSecond.
func WithBulkResourceController(c *resource.Controller) BulkOption {
	return func(o *bulkOptions) {
		o.controller = c
	}
}

// WithBulkLogger configures structured logging of copy progress.
func WithBulkLogger(logger *Logger) BulkOption {
	return func(o *bulkOptions) {
		o.logger = logger
	}
}

// WithAppenderOptions passes options to the appender opened by WriteToServer.
func WithAppenderOptions(optFns ...Option) BulkOption {
	return func(o *bulkOptions) {
		o.appender = append(o.appender, optFns...)
	}
}

func applyBulkOptions(optFns []BulkOption) bulkOptions {
	o := bulkOptions{logger: NoopLogger()}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil && o.rowsPerSecond > 0 {
		o.controller = resource.NewController(resource.Config{RowsPerSecond: o.rowsPerSecond})
	}
	return o
}
