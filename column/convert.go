package column

import (
	"bytes"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
)

var (
	typeTime       = reflect.TypeFor[time.Time]()
	typeDuration   = reflect.TypeFor[time.Duration]()
	typeDecimal    = reflect.TypeFor[decimal.Decimal]()
	typeBigInt     = reflect.TypeFor[big.Int]()
	typeBigIntPtr  = reflect.TypeFor[*big.Int]()
	typeUUID       = reflect.TypeFor[uuid.UUID]()
	typeInterval   = reflect.TypeFor[chunk.Interval]()
	typeTimeTZ     = reflect.TypeFor[chunk.TimeTZ]()
	typeHugeInt    = reflect.TypeFor[chunk.HugeInt]()
	typeUHugeInt   = reflect.TypeFor[chunk.UHugeInt]()
	typeBytes      = reflect.TypeFor[[]byte]()
	typeBools      = reflect.TypeFor[[]bool]()
	typeBlobReader = reflect.TypeFor[*BlobReader]()
)

const tagName = "duckdb"

// Read converts row to T.
func Read[T any](r *Reader, row int) (T, error) {
	var zero T
	rv, err := r.read(row, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	v, _ := rv.Interface().(T) // nil interfaces stay zero
	return v, nil
}

// Convert converts row to a value of the target type.
func (r *Reader) Convert(row int, target reflect.Type) (any, error) {
	if target == nil {
		return nil, errs.Invalid("nil target type")
	}
	rv, err := r.read(row, target)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

func (r *Reader) read(row int, target reflect.Type) (reflect.Value, error) {
	if err := r.check(row); err != nil {
		return reflect.Value{}, err
	}
	return r.convert(row, target)
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

func (r *Reader) convert(row int, target reflect.Type) (reflect.Value, error) {
	if !r.vec.IsValid(row) {
		if nullable(target) {
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, r.castErr(target.String(), errNull)
	}

	if rv, ok, err := r.convertSpecial(row, target); ok || err != nil {
		return rv, err
	}

	switch target.Kind() {
	case reflect.Pointer:
		elem, err := r.convert(row, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(elem)
		return p, nil
	case reflect.Interface:
		v, err := r.value(row)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(target) {
			return reflect.Value{}, r.castErr(target.String(), nil)
		}
		out := reflect.New(target).Elem()
		out.Set(rv)
		return out, nil
	case reflect.Bool:
		if r.typ.Storage() != types.TypeBoolean {
			return reflect.Value{}, r.castErr(target.String(), nil)
		}
		v, err := r.value(row)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target).Elem()
		out.SetBool(v.(bool))
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := r.numberFor(row, target)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := n.toInt(target.Bits())
		if err != nil {
			return reflect.Value{}, r.castErr(target.String(), err)
		}
		out := reflect.New(target).Elem()
		out.SetInt(v)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := r.numberFor(row, target)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := n.toUint(target.Bits())
		if err != nil {
			return reflect.Value{}, r.castErr(target.String(), err)
		}
		out := reflect.New(target).Elem()
		out.SetUint(v)
		return out, nil
	case reflect.Float32, reflect.Float64:
		n, err := r.numberFor(row, target)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := n.toFloat(target.Bits())
		if err != nil {
			return reflect.Value{}, r.castErr(target.String(), err)
		}
		out := reflect.New(target).Elem()
		out.SetFloat(v)
		return out, nil
	case reflect.String:
		s, err := r.text(row, target)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target).Elem()
		out.SetString(s)
		return out, nil
	case reflect.Slice:
		return r.convertSlice(row, target)
	case reflect.Array:
		return r.convertArray(row, target)
	case reflect.Map:
		return r.convertMap(row, target)
	case reflect.Struct:
		return r.convertStruct(row, target)
	}
	return reflect.Value{}, r.castErr(target.String(), nil)
}

// convertSpecial handles library and layout types that must not fall through
// to kind based conversion.
func (r *Reader) convertSpecial(row int, target reflect.Type) (reflect.Value, bool, error) {
	fail := func(cause error) (reflect.Value, bool, error) {
		return reflect.Value{}, true, r.castErr(target.String(), cause)
	}
	st := r.typ.Storage()

	switch target {
	case typeBlobReader:
		b, err := r.Stream(row)
		if err != nil {
			return reflect.Value{}, true, err
		}
		return reflect.ValueOf(b), true, nil
	case typeBigIntPtr, typeBigInt:
		n, err := r.numberFor(row, target)
		if err != nil {
			return reflect.Value{}, true, err
		}
		b, err := n.rounded()
		if err != nil {
			return fail(err)
		}
		if target == typeBigInt {
			return reflect.ValueOf(b).Elem(), true, nil
		}
		return reflect.ValueOf(b), true, nil
	case typeHugeInt:
		n, err := r.numberFor(row, target)
		if err != nil {
			return reflect.Value{}, true, err
		}
		b, err := n.rounded()
		if err != nil {
			return fail(err)
		}
		h, err := chunk.HugeIntFromBig(b)
		if err != nil {
			return fail(err)
		}
		return reflect.ValueOf(h), true, nil
	case typeDecimal:
		if st == types.TypeVarchar {
			s, err := r.vec.Bytes(row)
			if err != nil {
				return reflect.Value{}, true, err
			}
			d, err := decimal.NewFromString(string(s))
			if err != nil {
				return fail(err)
			}
			return reflect.ValueOf(d), true, nil
		}
		n, err := r.numberFor(row, target)
		if err != nil {
			return reflect.Value{}, true, err
		}
		d, err := n.toDecimal()
		if err != nil {
			return fail(err)
		}
		return reflect.ValueOf(d), true, nil
	case typeUUID:
		switch st {
		case types.TypeUUID:
			u, err := r.uuid(row)
			return reflect.ValueOf(u), true, err
		case types.TypeVarchar, types.TypeBlob:
			b, err := r.vec.Bytes(row)
			if err != nil {
				return reflect.Value{}, true, err
			}
			var u uuid.UUID
			if st == types.TypeBlob {
				u, err = uuid.FromBytes(b)
			} else {
				u, err = uuid.ParseBytes(b)
			}
			if err != nil {
				return fail(err)
			}
			return reflect.ValueOf(u), true, nil
		}
		return fail(nil)
	case typeTime:
		switch st {
		case types.TypeDate, types.TypeTime, types.TypeTimeTZ, types.TypeTimestamp, types.TypeTimestampTZ,
			types.TypeTimestampS, types.TypeTimestampMS, types.TypeTimestampNS:
			t, err := r.time(row)
			return reflect.ValueOf(t), true, err
		}
		return fail(nil)
	case typeDuration:
		slot, err := r.slotFor(row, target, types.TypeTime, types.TypeInterval)
		if err != nil {
			return reflect.Value{}, true, err
		}
		if st == types.TypeTime {
			return reflect.ValueOf(time.Duration(int64(chunk.ByteOrder.Uint64(slot))) * time.Microsecond), true, nil
		}
		return reflect.ValueOf(chunk.ReadInterval(slot).Duration()), true, nil
	case typeInterval:
		slot, err := r.slotFor(row, target, types.TypeInterval)
		if err != nil {
			return reflect.Value{}, true, err
		}
		return reflect.ValueOf(chunk.ReadInterval(slot)), true, nil
	case typeTimeTZ:
		slot, err := r.slotFor(row, target, types.TypeTimeTZ)
		if err != nil {
			return reflect.Value{}, true, err
		}
		return reflect.ValueOf(chunk.DecodeTimeTZ(chunk.ByteOrder.Uint64(slot))), true, nil
	case typeBytes:
		switch st {
		case types.TypeVarchar, types.TypeBlob, types.TypeBit, types.TypeVarInt:
			b, err := r.vec.Bytes(row)
			if err != nil {
				return reflect.Value{}, true, err
			}
			return reflect.ValueOf(bytes.Clone(b)), true, nil
		case types.TypeUUID:
			u, err := r.uuid(row)
			if err != nil {
				return reflect.Value{}, true, err
			}
			return reflect.ValueOf(u[:]), true, nil
		}
	case typeBools:
		if st == types.TypeBit {
			b, err := r.vec.Bytes(row)
			if err != nil {
				return reflect.Value{}, true, err
			}
			bits, err := chunk.DecodeBits(b)
			return reflect.ValueOf(bits), true, err
		}
	}
	return reflect.Value{}, false, nil
}

func (r *Reader) slotFor(row int, target reflect.Type, allowed ...types.Type) ([]byte, error) {
	st := r.typ.Storage()
	for _, a := range allowed {
		if a == st {
			return r.vec.Slot(row)
		}
	}
	return nil, r.castErr(target.String(), nil)
}

func (r *Reader) numberFor(row int, target reflect.Type) (number, error) {
	n, ok, err := r.number(row)
	if err != nil {
		return number{}, err
	}
	if !ok {
		return number{}, r.castErr(target.String(), nil)
	}
	return n, nil
}

// text renders row as a string for string targets.
func (r *Reader) text(row int, target reflect.Type) (string, error) {
	switch r.typ.ID() {
	case types.TypeEnum:
		return r.enum(row)
	case types.TypeDecimal:
		d, err := r.decimal(row)
		return d.String(), err
	}
	switch r.typ.Storage() {
	case types.TypeVarchar, types.TypeBlob:
		b, err := r.vec.Bytes(row)
		return string(b), err
	case types.TypeBit, types.TypeUUID, types.TypeHugeInt, types.TypeUHugeInt, types.TypeVarInt:
		v, err := r.value(row)
		if err != nil {
			return "", err
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
		return v.(interface{ String() string }).String(), nil
	}
	return "", r.castErr(target.String(), nil)
}

func (r *Reader) listLike() bool {
	switch r.typ.Storage() {
	case types.TypeList, types.TypeArray:
		return true
	}
	return false
}

func (r *Reader) convertSlice(row int, target reflect.Type) (reflect.Value, error) {
	if !r.listLike() {
		return reflect.Value{}, r.castErr(target.String(), nil)
	}
	child, off, n, err := r.elements(row)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(target, n, n)
	for i := 0; i < n; i++ {
		ev, err := child.read(off+i, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (r *Reader) convertArray(row int, target reflect.Type) (reflect.Value, error) {
	if !r.listLike() {
		return reflect.Value{}, r.castErr(target.String(), nil)
	}
	child, off, n, err := r.elements(row)
	if err != nil {
		return reflect.Value{}, err
	}
	if n != target.Len() {
		return reflect.Value{}, r.castErr(target.String(), errors.New("length mismatch"))
	}
	out := reflect.New(target).Elem()
	for i := 0; i < n; i++ {
		ev, err := child.read(off+i, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (r *Reader) convertMap(row int, target reflect.Type) (reflect.Value, error) {
	switch r.typ.Storage() {
	case types.TypeMap:
		entries, off, n, err := r.elements(row)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeMapWithSize(target, n)
		for i := 0; i < n; i++ {
			kv, err := entries.children[0].read(off+i, target.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			if !kv.Comparable() {
				return reflect.Value{}, r.castErr(target.String(), errors.New("map key is not comparable"))
			}
			vv, err := entries.children[1].read(off+i, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(kv, vv)
		}
		return out, nil
	case types.TypeStruct:
		if target.Key().Kind() != reflect.String {
			return reflect.Value{}, r.castErr(target.String(), nil)
		}
		out := reflect.MakeMapWithSize(target, len(r.children))
		for i, f := range r.typ.Fields() {
			vv, err := r.children[i].read(row, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(f.Name).Convert(target.Key()), vv)
		}
		return out, nil
	}
	return reflect.Value{}, r.castErr(target.String(), nil)
}

func (r *Reader) convertStruct(row int, target reflect.Type) (reflect.Value, error) {
	if r.typ.Storage() != types.TypeStruct {
		return reflect.Value{}, r.castErr(target.String(), nil)
	}
	out := reflect.New(target).Elem()
	for i, f := range r.typ.Fields() {
		idx, ok := fieldIndex(target, f.Name)
		if !ok {
			continue
		}
		fv, err := r.children[i].read(row, target.Field(idx).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(idx).Set(fv)
	}
	return out, nil
}

// fieldIndex finds the exported field named by a duckdb tag, or failing that
// the field whose name matches case-insensitively.
func fieldIndex(t reflect.Type, name string) (int, bool) {
	fallback := -1
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup(tagName); ok {
			if tag == name {
				return i, true
			}
			continue
		}
		if fallback < 0 && strings.EqualFold(sf.Name, name) {
			fallback = i
		}
	}
	return fallback, fallback >= 0
}
