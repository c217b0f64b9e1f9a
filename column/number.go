package column

import (
	"math"
	"math/big"
	"reflect"

	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/internal/conv"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
)

type numKind uint8

const (
	numInt numKind = iota
	numUint
	numFloat
	numBig
	numDecimal
)

// number is the common form every numeric column and host value passes
// through on its way to a narrower representation.
type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
	b    *big.Int
	d    decimal.Decimal
}

func fromBig(b *big.Int) number {
	if b.IsInt64() {
		return number{kind: numInt, i: b.Int64()}
	}
	return number{kind: numBig, b: b}
}

// rounded returns the value rounded half to even as a big integer.
func (n number) rounded() (*big.Int, error) {
	switch n.kind {
	case numInt:
		return big.NewInt(n.i), nil
	case numUint:
		return new(big.Int).SetUint64(n.u), nil
	case numFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return nil, conv.ErrOverflow
		}
		b, _ := big.NewFloat(math.RoundToEven(n.f)).Int(nil)
		return b, nil
	case numBig:
		return n.b, nil
	default:
		return n.d.RoundBank(0).BigInt(), nil
	}
}

func (n number) toInt(bits int) (int64, error) {
	switch n.kind {
	case numInt:
		return conv.Int(n.i, bits)
	case numUint:
		return conv.UintToInt(n.u, bits)
	case numFloat:
		return conv.FloatToInt(n.f, bits)
	default:
		b, err := n.rounded()
		if err != nil {
			return 0, err
		}
		return conv.BigToInt(b, bits)
	}
}

func (n number) toUint(bits int) (uint64, error) {
	switch n.kind {
	case numInt:
		return conv.IntToUint(n.i, bits)
	case numUint:
		return conv.Uint(n.u, bits)
	case numFloat:
		return conv.FloatToUint(n.f, bits)
	default:
		b, err := n.rounded()
		if err != nil {
			return 0, err
		}
		return conv.BigToUint(b, bits)
	}
}

func (n number) toFloat(bits int) (float64, error) {
	var f float64
	switch n.kind {
	case numInt:
		f = float64(n.i)
	case numUint:
		f = float64(n.u)
	case numFloat:
		f = n.f
	case numBig:
		var err error
		if f, err = conv.BigToFloat(n.b); err != nil {
			return 0, err
		}
	default:
		f = n.d.InexactFloat64()
	}
	if bits == 32 {
		f32, err := conv.Float32(f)
		return float64(f32), err
	}
	return f, nil
}

func (n number) toDecimal() (decimal.Decimal, error) {
	switch n.kind {
	case numInt:
		return decimal.NewFromInt(n.i), nil
	case numUint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n.u), 0), nil
	case numFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return decimal.Decimal{}, conv.ErrOverflow
		}
		return decimal.NewFromFloat(n.f), nil
	case numBig:
		return decimal.NewFromBigInt(n.b, 0), nil
	default:
		return n.d, nil
	}
}

// number reads row of a numeric column. ok is false for non-numeric columns.
func (r *Reader) number(row int) (number, bool, error) {
	switch r.typ.ID() {
	case types.TypeDecimal:
		d, err := r.decimal(row)
		return number{kind: numDecimal, d: d}, true, err
	case types.TypeEnum:
		return number{}, false, nil
	}
	switch r.typ.Storage() {
	case types.TypeTinyInt, types.TypeSmallInt, types.TypeInteger, types.TypeBigInt:
		v, err := r.fixed(row)
		if err != nil {
			return number{}, true, err
		}
		return number{kind: numInt, i: reflect.ValueOf(v).Int()}, true, nil
	case types.TypeUTinyInt, types.TypeUSmallInt, types.TypeUInteger, types.TypeUBigInt:
		v, err := r.fixed(row)
		if err != nil {
			return number{}, true, err
		}
		return number{kind: numUint, u: reflect.ValueOf(v).Uint()}, true, nil
	case types.TypeFloat, types.TypeDouble:
		v, err := r.value(row)
		if err != nil {
			return number{}, true, err
		}
		return number{kind: numFloat, f: reflect.ValueOf(v).Float()}, true, nil
	case types.TypeHugeInt, types.TypeUHugeInt, types.TypeVarInt:
		b, err := r.big(row)
		if err != nil {
			return number{}, true, err
		}
		return fromBig(b), true, nil
	}
	return number{}, false, nil
}

// numberOf extracts a number from a host value.
func numberOf(rv reflect.Value) (number, bool) {
	switch rv.Type() {
	case typeBigInt:
		b := rv.Interface().(big.Int)
		return number{kind: numBig, b: &b}, true
	case typeDecimal:
		return number{kind: numDecimal, d: rv.Interface().(decimal.Decimal)}, true
	case typeHugeInt:
		return fromBig(rv.Interface().(chunk.HugeInt).Big()), true
	case typeUHugeInt:
		return number{kind: numBig, b: rv.Interface().(chunk.UHugeInt).Big()}, true
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: numInt, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: numUint, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: numFloat, f: rv.Float()}, true
	}
	return number{}, false
}
