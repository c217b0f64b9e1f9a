package conv

import (
	"fmt"
	"math"
	"math/big"
)

func signedBounds(bits int) (int64, int64) {
	if bits >= 64 {
		return math.MinInt64, math.MaxInt64
	}
	return -1 << (bits - 1), 1<<(bits-1) - 1
}

func unsignedMax(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return 1<<bits - 1
}

func intName(bits int) string  { return fmt.Sprintf("int%d", bits) }
func uintName(bits int) string { return fmt.Sprintf("uint%d", bits) }

// Int narrows a signed value to a signed integer of the given bit width.
func Int(v int64, bits int) (int64, error) {
	lo, hi := signedBounds(bits)
	if v < lo || v > hi {
		return 0, overflow(v, intName(bits))
	}
	return v, nil
}

// Uint narrows an unsigned value to an unsigned integer of the given bit width.
func Uint(v uint64, bits int) (uint64, error) {
	if v > unsignedMax(bits) {
		return 0, overflow(v, uintName(bits))
	}
	return v, nil
}

// IntToUint converts a signed value to an unsigned integer of the given bit width.
func IntToUint(v int64, bits int) (uint64, error) {
	if v < 0 {
		return 0, overflow(v, uintName(bits))
	}
	return Uint(uint64(v), bits)
}

// UintToInt converts an unsigned value to a signed integer of the given bit width.
func UintToInt(v uint64, bits int) (int64, error) {
	_, hi := signedBounds(bits)
	if v > uint64(hi) {
		return 0, overflow(v, intName(bits))
	}
	return int64(v), nil
}

// FloatToInt converts a float to a signed integer of the given bit width.
func FloatToInt(f float64, bits int) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, overflow(f, intName(bits))
	}
	r := math.RoundToEven(f)
	lo, hi := signedBounds(bits)
	// float64(hi) rounds up to 2^(bits-1) for bits == 64, so compare with >=.
	if r < float64(lo) || r >= float64(hi)+1 {
		return 0, overflow(f, intName(bits))
	}
	return int64(r), nil
}

// FloatToUint converts a float to an unsigned integer of the given bit width.
func FloatToUint(f float64, bits int) (uint64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, overflow(f, uintName(bits))
	}
	r := math.RoundToEven(f)
	if r < 0 || r >= float64(unsignedMax(bits))+1 {
		return 0, overflow(f, uintName(bits))
	}
	return uint64(r), nil
}

// Float32 narrows a float64 to float32. Finite values beyond the float32 range fail.
func Float32(f float64) (float32, error) {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, overflow(f, "float32")
	}
	return float32(f), nil
}

// BigToInt narrows a big integer to a signed integer of the given bit width.
func BigToInt(b *big.Int, bits int) (int64, error) {
	if !b.IsInt64() {
		return 0, overflow(b, intName(bits))
	}
	return Int(b.Int64(), bits)
}

// BigToUint narrows a big integer to an unsigned integer of the given bit width.
func BigToUint(b *big.Int, bits int) (uint64, error) {
	if b.Sign() < 0 || !b.IsUint64() {
		return 0, overflow(b, uintName(bits))
	}
	return Uint(b.Uint64(), bits)
}

// BigToFloat converts a big integer to the nearest float64. Magnitudes
// beyond the float64 range fail instead of becoming infinite.
func BigToFloat(b *big.Int) (float64, error) {
	f, _ := new(big.Float).SetInt(b).Float64()
	if math.IsInf(f, 0) {
		return 0, overflow(b, "float64")
	}
	return f, nil
}

// FitsBits reports whether b fits in a two's complement (signed) or plain
// (unsigned) integer of the given bit width.
func FitsBits(b *big.Int, bits int, signed bool) bool {
	if !signed {
		return b.Sign() >= 0 && b.BitLen() <= bits
	}
	if b.Sign() >= 0 {
		return b.BitLen() < bits
	}
	// -2^(bits-1) is the one negative value whose magnitude needs all bits.
	m := new(big.Int).Neg(b)
	m.Sub(m, big.NewInt(1))
	return m.BitLen() < bits
}
