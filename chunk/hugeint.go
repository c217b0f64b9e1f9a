package chunk

import (
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/hupe1980/duckvec/internal/conv"
)

var mask64 = new(big.Int).SetUint64(math.MaxUint64)

// HugeInt is the engine's signed 128-bit integer.
type HugeInt struct {
	Lower uint64
	Upper int64
}

// UHugeInt is the engine's unsigned 128-bit integer.
type UHugeInt struct {
	Lower uint64
	Upper uint64
}

// HugeIntFromInt64 sign-extends v.
func HugeIntFromInt64(v int64) HugeInt {
	return HugeInt{Lower: uint64(v), Upper: v >> 63}
}

// HugeIntFromBig converts b, failing with conv.ErrOverflow outside the 128-bit range.
func HugeIntFromBig(b *big.Int) (HugeInt, error) {
	if !conv.FitsBits(b, 128, true) {
		return HugeInt{}, fmt.Errorf("%w: %s does not fit in HUGEINT", conv.ErrOverflow, b)
	}
	lo := new(big.Int).And(b, mask64)
	hi := new(big.Int).Rsh(b, 64)
	return HugeInt{Lower: lo.Uint64(), Upper: hi.Int64()}, nil
}

// Big returns the value as a big integer.
func (h HugeInt) Big() *big.Int {
	b := big.NewInt(h.Upper)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(h.Lower))
}

// Int64 returns the value when it fits in an int64.
func (h HugeInt) Int64() (int64, bool) {
	v := int64(h.Lower)
	return v, h.Upper == v>>63
}

func (h HugeInt) String() string { return h.Big().String() }

// UHugeIntFromBig converts b, failing with conv.ErrOverflow outside [0, 2^128).
func UHugeIntFromBig(b *big.Int) (UHugeInt, error) {
	if !conv.FitsBits(b, 128, false) {
		return UHugeInt{}, fmt.Errorf("%w: %s does not fit in UHUGEINT", conv.ErrOverflow, b)
	}
	lo := new(big.Int).And(b, mask64)
	hi := new(big.Int).Rsh(b, 64)
	return UHugeInt{Lower: lo.Uint64(), Upper: hi.Uint64()}, nil
}

// Big returns the value as a big integer.
func (h UHugeInt) Big() *big.Int {
	b := new(big.Int).SetUint64(h.Upper)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(h.Lower))
}

func (h UHugeInt) String() string { return h.Big().String() }

// ReadHugeInt decodes a 16-byte slot.
func ReadHugeInt(slot []byte) HugeInt {
	return HugeInt{Lower: ByteOrder.Uint64(slot[0:8]), Upper: int64(ByteOrder.Uint64(slot[8:16]))}
}

// PutHugeInt encodes h into a 16-byte slot.
func PutHugeInt(slot []byte, h HugeInt) {
	ByteOrder.PutUint64(slot[0:8], h.Lower)
	ByteOrder.PutUint64(slot[8:16], uint64(h.Upper))
}

// ReadUHugeInt decodes a 16-byte slot.
func ReadUHugeInt(slot []byte) UHugeInt {
	return UHugeInt{Lower: ByteOrder.Uint64(slot[0:8]), Upper: ByteOrder.Uint64(slot[8:16])}
}

// PutUHugeInt encodes h into a 16-byte slot.
func PutUHugeInt(slot []byte, h UHugeInt) {
	ByteOrder.PutUint64(slot[0:8], h.Lower)
	ByteOrder.PutUint64(slot[8:16], h.Upper)
}

// UUIDFromHugeInt decodes the engine's UUID representation. The top bit of
// the upper half is flipped so that UUIDs sort like their byte strings.
func UUIDFromHugeInt(h HugeInt) uuid.UUID {
	var u uuid.UUID
	upper := uint64(h.Upper) ^ (1 << 63)
	for i := 0; i < 8; i++ {
		u[i] = byte(upper >> (56 - 8*i))
		u[8+i] = byte(h.Lower >> (56 - 8*i))
	}
	return u
}

// HugeIntFromUUID encodes u in the engine's UUID representation.
func HugeIntFromUUID(u uuid.UUID) HugeInt {
	var upper, lower uint64
	for i := 0; i < 8; i++ {
		upper = upper<<8 | uint64(u[i])
		lower = lower<<8 | uint64(u[8+i])
	}
	return HugeInt{Lower: lower, Upper: int64(upper ^ (1 << 63))}
}
