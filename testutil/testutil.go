package testutil

import (
	"math"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/types"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 äöü€"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// String returns a random string of up to maxLen runes.
func (r *RNG) String(maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.str(maxLen)
}

func (r *RNG) str(maxLen int) string {
	runes := []rune(letters)
	n := r.rand.Intn(maxLen + 1)
	var sb strings.Builder
	for range n {
		sb.WriteRune(runes[r.rand.Intn(len(runes))])
	}
	return sb.String()
}

// Row generates one value per type. See Value for nullRate.
func (r *RNG) Row(ts []*types.LogicalType, nullRate float64) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := make([]any, len(ts))
	for i, t := range ts {
		row[i] = r.value(t, nullRate)
	}
	return row
}

// Value generates a random value of type t, or nil with probability
// nullRate. Nested element values use the same rate.
func (r *RNG) Value(t *types.LogicalType, nullRate float64) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value(t, nullRate)
}

func (r *RNG) value(t *types.LogicalType, nullRate float64) any {
	if nullRate > 0 && r.rand.Float64() < nullRate {
		return nil
	}
	rnd := r.rand
	switch t.ID() {
	case types.TypeBoolean:
		return rnd.Intn(2) == 1
	case types.TypeTinyInt:
		return int8(rnd.Uint32())
	case types.TypeSmallInt:
		return int16(rnd.Uint32())
	case types.TypeInteger:
		return int32(rnd.Uint32())
	case types.TypeBigInt:
		return int64(rnd.Uint64())
	case types.TypeUTinyInt:
		return uint8(rnd.Uint32())
	case types.TypeUSmallInt:
		return uint16(rnd.Uint32())
	case types.TypeUInteger:
		return rnd.Uint32()
	case types.TypeUBigInt:
		return rnd.Uint64()
	case types.TypeFloat:
		return float32(rnd.NormFloat64() * 1e6)
	case types.TypeDouble:
		return rnd.NormFloat64() * 1e12
	case types.TypeVarchar:
		return r.str(40)
	case types.TypeBlob:
		b := make([]byte, rnd.Intn(40))
		rnd.Read(b)
		return b
	case types.TypeDecimal:
		limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(t.Width())), nil)
		u := new(big.Int).Rand(rnd, limit)
		if rnd.Intn(2) == 1 {
			u.Neg(u)
		}
		return decimal.NewFromBigInt(u, -int32(t.Scale()))
	case types.TypeHugeInt:
		b := new(big.Int).Rand(rnd, new(big.Int).Lsh(big.NewInt(1), 127))
		if rnd.Intn(2) == 1 {
			b.Neg(b)
		}
		return b
	case types.TypeUHugeInt:
		return new(big.Int).Rand(rnd, new(big.Int).Lsh(big.NewInt(1), 128))
	case types.TypeVarInt:
		b := new(big.Int).Rand(rnd, new(big.Int).Lsh(big.NewInt(1), uint(1+rnd.Intn(300))))
		if rnd.Intn(2) == 1 {
			b.Neg(b)
		}
		return b
	case types.TypeUUID:
		var u uuid.UUID
		rnd.Read(u[:])
		return u
	case types.TypeDate:
		return chunk.DateFromDays(int32(rnd.Intn(200_000) - 100_000))
	case types.TypeTime:
		return chunk.TimeFromMicros(rnd.Int63n(86_400_000_000))
	case types.TypeTimeTZ:
		return chunk.TimeTZ{
			Micros: rnd.Int63n(86_400_000_000),
			Offset: int32(rnd.Intn(2*57_599+1) - 57_599),
		}.Time()
	case types.TypeTimestamp, types.TypeTimestampTZ:
		return time.UnixMicro(r.between(-2_208_988_800, 7_258_118_400) * 1_000_000).UTC().
			Add(time.Duration(rnd.Intn(1_000_000)) * time.Microsecond)
	case types.TypeTimestampS:
		return time.Unix(r.between(-2_208_988_800, 7_258_118_400), 0).UTC()
	case types.TypeTimestampMS:
		return time.UnixMilli(r.between(-2_208_988_800_000, 7_258_118_400_000)).UTC()
	case types.TypeTimestampNS:
		return time.Unix(0, int64(rnd.Uint64())).UTC()
	case types.TypeInterval:
		return chunk.Interval{
			Months: int32(rnd.Intn(2000) - 1000),
			Days:   int32(rnd.Intn(2000) - 1000),
			Micros: rnd.Int63n(math.MaxInt32) - math.MaxInt32/2,
		}
	case types.TypeEnum:
		dict := t.Dictionary()
		return dict[rnd.Intn(len(dict))]
	case types.TypeBit:
		n := 1 + rnd.Intn(30)
		var sb strings.Builder
		for range n {
			sb.WriteByte(byte('0' + rnd.Intn(2)))
		}
		return sb.String()
	case types.TypeList:
		out := make([]any, rnd.Intn(5))
		for i := range out {
			out[i] = r.value(t.Child(), nullRate)
		}
		return out
	case types.TypeArray:
		out := make([]any, t.Size())
		for i := range out {
			out[i] = r.value(t.Child(), nullRate)
		}
		return out
	case types.TypeStruct:
		out := make(map[string]any, len(t.Fields()))
		for _, f := range t.Fields() {
			out[f.Name] = r.value(f.Type, nullRate)
		}
		return out
	case types.TypeMap:
		out := make(column.Map)
		for range rnd.Intn(4) {
			k := r.value(t.Key(), 0)
			out[k] = r.value(t.Value(), nullRate)
		}
		return out
	}
	return nil
}

func (r *RNG) between(lo, hi int64) int64 {
	return lo + r.rand.Int63n(hi-lo)
}

// Equal reports whether two values in default read form are equal.
// Decimals, big integers and times compare by value.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case *big.Int:
		y, ok := b.(*big.Int)
		return ok && x.Cmp(y) == 0
	case time.Time:
		y, ok := b.(time.Time)
		if !ok || !x.Equal(y) {
			return false
		}
		_, xo := x.Zone()
		_, yo := y.Zone()
		return xo == yo
	case []byte:
		y, ok := b.([]byte)
		return ok && string(x) == string(y)
	case float32:
		y, ok := b.(float32)
		return ok && (x == y || x != x && y != y)
	case float64:
		y, ok := b.(float64)
		return ok && (x == y || x != x && y != y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case column.Map:
		y, ok := b.(column.Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return a == b
}
