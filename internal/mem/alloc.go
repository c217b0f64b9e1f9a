package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every buffer handed out by this package.
const Alignment = 64

// AllocAligned allocates a zeroed byte slice of the given size with 64-byte alignment.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// GrowAligned returns an aligned buffer of at least size bytes holding a copy of buf.
// buf is returned unchanged when it is already large enough.
func GrowAligned(buf []byte, size int) []byte {
	if size <= len(buf) {
		return buf
	}
	out := AllocAligned(size)
	copy(out, buf)
	return out
}

// Words allocates n words, each set to fill.
func Words(n int, fill uint64) []uint64 {
	w := make([]uint64, n)
	for i := range w {
		w[i] = fill
	}
	return w
}
