package memengine

import (
	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/resource"
)

type options struct {
	compression Compression
	vectorSize  int
	controller  *resource.Controller
	logger      *duckvec.Logger
}

// Option configures an Engine.
type Option func(o *options)

// WithCompression sets the codec used for stored column buffers.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithVectorSize sets the chunk capacity reported to appenders and used
// for scans.
func WithVectorSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.vectorSize = n
		}
	}
}

// WithResourceController bounds parallel column encoding by the
// controller's worker count.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *duckvec.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
