package chunk

import (
	"math/big"

	"github.com/hupe1980/duckvec/internal/errs"
)

const (
	varintHeaderSize = 3
	varintSignBit    = 0x800000
	varintMaxBytes   = varintSignBit - 1
)

// DecodeVarint decodes a VARINT blob.
//
// The 3-byte big-endian header holds the payload length with bit 23 set; a
// negative value stores the header and every payload byte complemented, so
// the top bit of byte 0 is set for non-negative values only. The payload is
// the big-endian magnitude.
func DecodeVarint(b []byte) (*big.Int, error) {
	if len(b) < varintHeaderSize+1 {
		return nil, errs.Corrupt("VARINT of %d bytes is shorter than its header", len(b))
	}
	negative := b[0]&0x80 == 0
	mag := make([]byte, len(b)-varintHeaderSize)
	copy(mag, b[varintHeaderSize:])
	if negative {
		for i := range mag {
			mag[i] = ^mag[i]
		}
	}
	v := new(big.Int).SetBytes(mag)
	if negative {
		v.Neg(v)
	}
	return v, nil
}

// EncodeVarint encodes v as a VARINT blob.
func EncodeVarint(v *big.Int) ([]byte, error) {
	mag := new(big.Int).Abs(v).Bytes()
	if len(mag) == 0 {
		mag = []byte{0}
	}
	if len(mag) > varintMaxBytes {
		return nil, errs.OutOfRange("VARINT magnitude of %d bytes", len(mag))
	}
	header := uint32(len(mag)) | varintSignBit
	negative := v.Sign() < 0
	if negative {
		header = ^header
	}
	out := make([]byte, varintHeaderSize, varintHeaderSize+len(mag))
	out[0] = byte(header >> 16)
	out[1] = byte(header >> 8)
	out[2] = byte(header)
	for _, m := range mag {
		if negative {
			m = ^m
		}
		out = append(out, m)
	}
	return out, nil
}
