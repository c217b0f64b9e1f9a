package chunk

import (
	"fmt"
	"strings"

	"github.com/hupe1980/duckvec/internal/errs"
)

// DecodeBits decodes a BIT blob: byte 0 counts the padding bits at the start
// of byte 1, the remaining bits follow most significant first.
func DecodeBits(b []byte) ([]bool, error) {
	if len(b) == 0 {
		return nil, errs.Corrupt("empty BIT value")
	}
	padding := int(b[0])
	total := (len(b) - 1) * 8
	if padding > 7 || padding > total {
		return nil, errs.Corrupt("BIT padding %d for %d data bytes", padding, len(b)-1)
	}
	out := make([]bool, 0, total-padding)
	for i := padding; i < total; i++ {
		out = append(out, b[1+i/8]>>(7-uint(i%8))&1 == 1)
	}
	return out, nil
}

// EncodeBits encodes bits as a BIT blob. Padding bits are set to 1, as the engine does.
func EncodeBits(bits []bool) []byte {
	nbytes := (len(bits) + 7) / 8
	padding := nbytes*8 - len(bits)
	out := make([]byte, 1+nbytes)
	out[0] = byte(padding)
	for i := 0; i < padding; i++ {
		out[1] |= 1 << (7 - uint(i))
	}
	for i, bit := range bits {
		if bit {
			pos := padding + i
			out[1+pos/8] |= 1 << (7 - uint(pos%8))
		}
	}
	return out
}

// BitString renders a BIT blob as a string of '0' and '1'.
func BitString(b []byte) (string, error) {
	bits, err := DecodeBits(b)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, bit := range bits {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String(), nil
}

// ParseBitString parses a string of '0' and '1'.
func ParseBitString(s string) ([]bool, error) {
	out := make([]bool, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			out[i] = true
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", s[i], i)
		}
	}
	return out, nil
}
