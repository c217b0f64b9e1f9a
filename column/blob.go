package column

import (
	"io"

	"github.com/hupe1980/duckvec/internal/errs"
)

// BlobReader is a read-only, seekable view over a payload held in vector
// memory. Seeking outside [0, Size] fails.
type BlobReader struct {
	data []byte
	off  int64
}

var (
	_ io.ReadSeeker = (*BlobReader)(nil)
	_ io.ReaderAt   = (*BlobReader)(nil)
	_ io.WriterTo   = (*BlobReader)(nil)
)

// NewBlobReader returns a reader over b. b is not copied.
func NewBlobReader(b []byte) *BlobReader {
	return &BlobReader{data: b}
}

// Size returns the payload length.
func (b *BlobReader) Size() int64 { return int64(len(b.data)) }

// Len returns the number of unread bytes.
func (b *BlobReader) Len() int {
	if b.off >= int64(len(b.data)) {
		return 0
	}
	return len(b.data) - int(b.off)
}

// Read implements io.Reader.
func (b *BlobReader) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt. It does not move the read position.
func (b *BlobReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.OutOfRange("negative offset %d", off)
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker.
func (b *BlobReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errs.Invalid("invalid whence %d", whence)
	}
	if abs < 0 || abs > int64(len(b.data)) {
		return 0, errs.OutOfRange("seek to %d outside blob of %d bytes", abs, len(b.data))
	}
	b.off = abs
	return abs, nil
}

// WriteTo implements io.WriterTo.
func (b *BlobReader) WriteTo(w io.Writer) (int64, error) {
	if b.off >= int64(len(b.data)) {
		return 0, nil
	}
	rest := b.data[b.off:]
	n, err := w.Write(rest)
	b.off += int64(n)
	if err == nil && n != len(rest) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}
