// Package mem provides memory allocation utilities for vector buffers.
//
// # Aligned Allocation
//
// Vector data buffers start on a 64-byte boundary so fixed-width slots never
// straddle a cache line and word-sized loads stay aligned.
package mem
