package column

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
)

var errNull = errors.New("value is NULL")

// Map is the default Go mapping of a MAP value.
type Map map[any]any

// Reader decodes the rows of one vector.
type Reader struct {
	vec      *chunk.Vector
	typ      *types.LogicalType
	name     string
	gen      uint64
	children []*Reader
}

// NewReader binds a reader to vec. name is used in error messages.
func NewReader(vec *chunk.Vector, name string) (*Reader, error) {
	if vec == nil {
		return nil, errs.Invalid("nil vector")
	}
	if vec.Closed() {
		return nil, errs.Invalid("vector is closed")
	}
	r := &Reader{vec: vec, typ: vec.Type(), name: name, gen: vec.Generation()}
	if err := supported(r.typ); err != nil {
		return nil, err
	}
	switch r.typ.Storage() {
	case types.TypeList, types.TypeMap, types.TypeArray:
		child, err := NewReader(vec.Children()[0], name)
		if err != nil {
			return nil, err
		}
		r.children = []*Reader{child}
	case types.TypeStruct:
		for i, f := range r.typ.Fields() {
			child, err := NewReader(vec.Children()[i], joinName(name, f.Name))
			if err != nil {
				return nil, err
			}
			r.children = append(r.children, child)
		}
	}
	return r, nil
}

func joinName(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

func supported(t *types.LogicalType) error {
	switch t.ID() {
	case types.TypeInvalid, types.TypeUnion, types.TypeAny, types.TypeSQLNull:
		return errs.Unsupported("%s", t)
	}
	if t.SlotWidth() == 0 && t.ID() != types.TypeStruct && t.ID() != types.TypeArray {
		return errs.Unsupported("%s", t)
	}
	return nil
}

// Name returns the column name used in errors.
func (r *Reader) Name() string { return r.name }

// Type returns the logical type of the vector.
func (r *Reader) Type() *types.LogicalType { return r.typ }

// Vector returns the bound vector.
func (r *Reader) Vector() *chunk.Vector { return r.vec }

// Rebind adopts the current generation of the vector after a reset.
func (r *Reader) Rebind() error {
	if r.vec.Closed() {
		return errs.Invalid("vector of column %q is closed", r.name)
	}
	r.gen = r.vec.Generation()
	for _, c := range r.children {
		if err := c.Rebind(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) check(row int) error {
	if r.vec.Closed() || r.vec.Generation() != r.gen {
		return errs.Invalid("reader for column %q is bound to a previous batch", r.name)
	}
	return r.vec.CheckRow(row)
}

func (r *Reader) castErr(target string, cause error) error {
	return errs.NewInvalidCast(r.typ.String(), target, r.name, cause)
}

// IsValid reports whether row holds a value.
func (r *Reader) IsValid(row int) (bool, error) {
	if err := r.check(row); err != nil {
		return false, err
	}
	return r.vec.IsValid(row), nil
}

// Nulls returns the positions of NULL rows among the first rows of the vector.
func (r *Reader) Nulls(rows int) (*roaring.Bitmap, error) {
	if rows > 0 {
		if err := r.check(rows - 1); err != nil {
			return nil, err
		}
	}
	bm := roaring.New()
	if r.vec.Validity() == nil {
		return bm, nil
	}
	for row := 0; row < rows; row++ {
		if !r.vec.IsValid(row) {
			bm.Add(uint32(row))
		}
	}
	return bm, nil
}

// Value returns the default Go mapping of row, or nil for NULL.
func (r *Reader) Value(row int) (any, error) {
	if err := r.check(row); err != nil {
		return nil, err
	}
	if !r.vec.IsValid(row) {
		return nil, nil
	}
	return r.value(row)
}

// Stream returns a read-only view over a BLOB or VARCHAR payload without
// copying it. The view is valid until the chunk is reset. NULL yields nil.
func (r *Reader) Stream(row int) (*BlobReader, error) {
	if err := r.check(row); err != nil {
		return nil, err
	}
	switch r.typ.Storage() {
	case types.TypeBlob, types.TypeVarchar:
	default:
		return nil, r.castErr("*BlobReader", nil)
	}
	if !r.vec.IsValid(row) {
		return nil, nil
	}
	b, err := r.vec.Bytes(row)
	if err != nil {
		return nil, err
	}
	return NewBlobReader(b), nil
}

func (r *Reader) value(row int) (any, error) {
	switch r.typ.ID() {
	case types.TypeDecimal:
		return r.decimal(row)
	case types.TypeEnum:
		return r.enum(row)
	}

	switch st := r.typ.Storage(); st {
	case types.TypeBoolean:
		slot, err := r.vec.Slot(row)
		if err != nil {
			return nil, err
		}
		return slot[0] != 0, nil
	case types.TypeTinyInt, types.TypeSmallInt, types.TypeInteger, types.TypeBigInt,
		types.TypeUTinyInt, types.TypeUSmallInt, types.TypeUInteger, types.TypeUBigInt:
		return r.fixed(row)
	case types.TypeFloat:
		slot, err := r.vec.Slot(row)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(chunk.ByteOrder.Uint32(slot)), nil
	case types.TypeDouble:
		slot, err := r.vec.Slot(row)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(chunk.ByteOrder.Uint64(slot)), nil
	case types.TypeHugeInt, types.TypeUHugeInt, types.TypeVarInt:
		return r.big(row)
	case types.TypeVarchar:
		b, err := r.vec.Bytes(row)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case types.TypeBlob:
		b, err := r.vec.Bytes(row)
		if err != nil {
			return nil, err
		}
		return bytes.Clone(b), nil
	case types.TypeBit:
		b, err := r.vec.Bytes(row)
		if err != nil {
			return nil, err
		}
		return chunk.BitString(b)
	case types.TypeDate, types.TypeTime, types.TypeTimeTZ, types.TypeTimestamp, types.TypeTimestampTZ,
		types.TypeTimestampS, types.TypeTimestampMS, types.TypeTimestampNS:
		return r.time(row)
	case types.TypeInterval:
		slot, err := r.vec.Slot(row)
		if err != nil {
			return nil, err
		}
		return chunk.ReadInterval(slot), nil
	case types.TypeUUID:
		return r.uuid(row)
	case types.TypeList, types.TypeArray:
		child, off, n, err := r.elements(row)
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			if out[i], err = child.Value(off + i); err != nil {
				return nil, err
			}
		}
		return out, nil
	case types.TypeStruct:
		out := make(map[string]any, len(r.children))
		for i, f := range r.typ.Fields() {
			v, err := r.children[i].Value(row)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	case types.TypeMap:
		entries, off, n, err := r.elements(row)
		if err != nil {
			return nil, err
		}
		out := make(Map, n)
		for i := 0; i < n; i++ {
			k, err := entries.children[0].Value(off + i)
			if err != nil {
				return nil, err
			}
			if k != nil && !reflect.TypeOf(k).Comparable() {
				return nil, r.castErr("Map", errors.New("map key is not comparable"))
			}
			v, err := entries.children[1].Value(off + i)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, errs.Unsupported("%s", r.typ)
	}
}

func (r *Reader) fixed(row int) (any, error) {
	slot, err := r.vec.Slot(row)
	if err != nil {
		return nil, err
	}
	switch r.typ.Storage() {
	case types.TypeTinyInt:
		return int8(slot[0]), nil
	case types.TypeSmallInt:
		return int16(chunk.ByteOrder.Uint16(slot)), nil
	case types.TypeInteger:
		return int32(chunk.ByteOrder.Uint32(slot)), nil
	case types.TypeBigInt:
		return int64(chunk.ByteOrder.Uint64(slot)), nil
	case types.TypeUTinyInt:
		return slot[0], nil
	case types.TypeUSmallInt:
		return chunk.ByteOrder.Uint16(slot), nil
	case types.TypeUInteger:
		return chunk.ByteOrder.Uint32(slot), nil
	default:
		return chunk.ByteOrder.Uint64(slot), nil
	}
}

// index reads an unsigned dictionary index of the storage width.
func (r *Reader) index(row int) (uint64, error) {
	slot, err := r.vec.Slot(row)
	if err != nil {
		return 0, err
	}
	switch r.typ.Storage() {
	case types.TypeUTinyInt:
		return uint64(slot[0]), nil
	case types.TypeUSmallInt:
		return uint64(chunk.ByteOrder.Uint16(slot)), nil
	default:
		return uint64(chunk.ByteOrder.Uint32(slot)), nil
	}
}

func (r *Reader) enum(row int) (string, error) {
	idx, err := r.index(row)
	if err != nil {
		return "", err
	}
	dict := r.typ.Dictionary()
	if idx >= uint64(len(dict)) {
		return "", errs.Corrupt("enum index %d outside dictionary of %d at row %d", idx, len(dict), row)
	}
	return dict[idx], nil
}

func (r *Reader) decimal(row int) (decimal.Decimal, error) {
	slot, err := r.vec.Slot(row)
	if err != nil {
		return decimal.Decimal{}, err
	}
	exp := -int32(r.typ.Scale())
	switch r.typ.Storage() {
	case types.TypeSmallInt:
		return decimal.New(int64(int16(chunk.ByteOrder.Uint16(slot))), exp), nil
	case types.TypeInteger:
		return decimal.New(int64(int32(chunk.ByteOrder.Uint32(slot))), exp), nil
	case types.TypeBigInt:
		return decimal.New(int64(chunk.ByteOrder.Uint64(slot)), exp), nil
	default:
		return decimal.NewFromBigInt(chunk.ReadHugeInt(slot).Big(), exp), nil
	}
}

func (r *Reader) big(row int) (*big.Int, error) {
	switch r.typ.Storage() {
	case types.TypeHugeInt:
		slot, err := r.vec.Slot(row)
		if err != nil {
			return nil, err
		}
		return chunk.ReadHugeInt(slot).Big(), nil
	case types.TypeUHugeInt:
		slot, err := r.vec.Slot(row)
		if err != nil {
			return nil, err
		}
		return chunk.ReadUHugeInt(slot).Big(), nil
	default:
		b, err := r.vec.Bytes(row)
		if err != nil {
			return nil, err
		}
		return chunk.DecodeVarint(b)
	}
}

func (r *Reader) uuid(row int) (uuid.UUID, error) {
	slot, err := r.vec.Slot(row)
	if err != nil {
		return uuid.UUID{}, err
	}
	return chunk.UUIDFromHugeInt(chunk.ReadHugeInt(slot)), nil
}

func (r *Reader) time(row int) (time.Time, error) {
	slot, err := r.vec.Slot(row)
	if err != nil {
		return time.Time{}, err
	}
	switch r.typ.Storage() {
	case types.TypeDate:
		return chunk.DateFromDays(int32(chunk.ByteOrder.Uint32(slot))), nil
	case types.TypeTime:
		return chunk.TimeFromMicros(int64(chunk.ByteOrder.Uint64(slot))), nil
	case types.TypeTimeTZ:
		return chunk.DecodeTimeTZ(chunk.ByteOrder.Uint64(slot)).Time(), nil
	default:
		return chunk.TimestampFromTicks(int64(chunk.ByteOrder.Uint64(slot)), timestampUnit(r.typ.Storage())), nil
	}
}

func timestampUnit(st types.Type) time.Duration {
	switch st {
	case types.TypeTimestampS:
		return time.Second
	case types.TypeTimestampMS:
		return time.Millisecond
	case types.TypeTimestampNS:
		return time.Nanosecond
	default:
		return time.Microsecond
	}
}

// elements returns the child reader and child row range of a LIST, MAP or ARRAY row.
func (r *Reader) elements(row int) (*Reader, int, int, error) {
	if r.typ.Storage() == types.TypeArray {
		size := r.typ.Size()
		return r.children[0], row * size, size, nil
	}
	off, n, err := r.vec.ListEntry(row)
	if err != nil {
		return nil, 0, 0, err
	}
	return r.children[0], off, n, nil
}
