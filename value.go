package duckvec

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
)

// ValueHandle is a scalar value produced by the engine, for example a
// function parameter or a setting. Only the accessor that matches the
// handle's type is meaningful.
type ValueHandle interface {
	Type() types.Handle
	IsNull() bool
	Bool() bool
	Int64() int64
	Uint64() uint64
	Float64() float64
	// Varchar returns the value as text. DECIMAL, UUID, HUGEINT, UHUGEINT
	// and VARINT values are only available this way.
	Varchar() string
	// Timestamp returns microseconds since the epoch.
	Timestamp() int64
	Blob() []byte
}

// GetValue converts a scalar engine value to T with the same rules as
// column reads.
func GetValue[T any](h ValueHandle) (T, error) {
	var zero T
	if h == nil {
		return zero, errs.Invalid("nil value handle")
	}
	t, err := types.Resolve(h.Type())
	if err != nil {
		return zero, err
	}
	defer func() { _ = t.Release() }()

	vec, err := chunk.NewVector(t, 1)
	if err != nil {
		return zero, err
	}
	w, err := column.NewWriter(vec, "value")
	if err != nil {
		return zero, err
	}
	if h.IsNull() {
		err = w.WriteNull(0)
	} else {
		var host any
		if host, err = hostValue(t, h); err == nil {
			err = w.Write(0, host)
		}
	}
	if err != nil {
		return zero, err
	}
	r, err := column.NewReader(vec, "value")
	if err != nil {
		return zero, err
	}
	return column.Read[T](r, 0)
}

// hostValue extracts a handle's value in the host form its column writer
// accepts.
func hostValue(t *types.LogicalType, h ValueHandle) (any, error) {
	switch t.ID() {
	case types.TypeBoolean:
		return h.Bool(), nil
	case types.TypeTinyInt, types.TypeSmallInt, types.TypeInteger, types.TypeBigInt:
		return h.Int64(), nil
	case types.TypeUTinyInt, types.TypeUSmallInt, types.TypeUInteger, types.TypeUBigInt:
		return h.Uint64(), nil
	case types.TypeFloat, types.TypeDouble:
		return h.Float64(), nil
	case types.TypeVarchar, types.TypeEnum:
		return h.Varchar(), nil
	case types.TypeBlob:
		return h.Blob(), nil
	case types.TypeDecimal:
		d, err := decimal.NewFromString(h.Varchar())
		if err != nil {
			return nil, errs.NewInvalidCast("VARCHAR", t.String(), "value", err)
		}
		return d, nil
	case types.TypeUUID:
		u, err := uuid.Parse(h.Varchar())
		if err != nil {
			return nil, errs.NewInvalidCast("VARCHAR", t.String(), "value", err)
		}
		return u, nil
	case types.TypeHugeInt, types.TypeUHugeInt, types.TypeVarInt:
		b, ok := new(big.Int).SetString(h.Varchar(), 10)
		if !ok {
			return nil, errs.NewInvalidCast("VARCHAR", t.String(), "value", nil)
		}
		return b, nil
	case types.TypeTimestamp, types.TypeTimestampTZ, types.TypeTimestampS, types.TypeTimestampMS,
		types.TypeTimestampNS, types.TypeDate:
		return time.UnixMicro(h.Timestamp()).UTC(), nil
	}
	return nil, errs.Unsupported("scalar value of type %s", t)
}
