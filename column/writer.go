package column

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/internal/conv"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
)


// Writer encodes Go values into the rows of one vector.
type Writer struct {
	vec      *chunk.Vector
	typ      *types.LogicalType
	name     string
	gen      uint64
	children []*Writer
	enumIdx  map[string]uint32
}

// NewWriter binds a writer to vec. name is used in error messages.
func NewWriter(vec *chunk.Vector, name string) (*Writer, error) {
	if vec == nil {
		return nil, errs.Invalid("nil vector")
	}
	if vec.Closed() {
		return nil, errs.Invalid("vector is closed")
	}
	w := &Writer{vec: vec, typ: vec.Type(), name: name, gen: vec.Generation()}
	if err := supported(w.typ); err != nil {
		return nil, err
	}
	switch w.typ.Storage() {
	case types.TypeList, types.TypeMap, types.TypeArray:
		child, err := NewWriter(vec.Children()[0], name)
		if err != nil {
			return nil, err
		}
		w.children = []*Writer{child}
	case types.TypeStruct:
		for i, f := range w.typ.Fields() {
			child, err := NewWriter(vec.Children()[i], joinName(name, f.Name))
			if err != nil {
				return nil, err
			}
			w.children = append(w.children, child)
		}
	}
	return w, nil
}

// Name returns the column name used in errors.
func (w *Writer) Name() string { return w.name }

// Type returns the logical type of the vector.
func (w *Writer) Type() *types.LogicalType { return w.typ }

// Rebind adopts the current generation of the vector after a reset.
func (w *Writer) Rebind() error {
	if w.vec.Closed() {
		return errs.Invalid("vector of column %q is closed", w.name)
	}
	w.gen = w.vec.Generation()
	for _, c := range w.children {
		if err := c.Rebind(); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) check(row int) error {
	if w.vec.Closed() || w.vec.Generation() != w.gen {
		return errs.Invalid("writer for column %q is bound to a previous batch", w.name)
	}
	return w.vec.CheckRow(row)
}

func (w *Writer) castErr(v reflect.Value, cause error) error {
	return errs.NewInvalidCast(v.Type().String(), w.typ.String(), w.name, cause)
}

// WriteNull marks row as NULL. A NULL struct nulls its fields and a NULL
// array nulls its elements.
func (w *Writer) WriteNull(row int) error {
	if err := w.check(row); err != nil {
		return err
	}
	return w.writeNull(row)
}

func (w *Writer) writeNull(row int) error {
	if err := w.vec.SetNull(row); err != nil {
		return err
	}
	switch w.typ.Storage() {
	case types.TypeStruct:
		for _, c := range w.children {
			if err := c.writeNull(row); err != nil {
				return err
			}
		}
	case types.TypeArray:
		size := w.typ.Size()
		for i := 0; i < size; i++ {
			if err := w.children[0].writeNull(row*size + i); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteBlob writes raw bytes into a BLOB or VARCHAR row.
func (w *Writer) WriteBlob(row int, p []byte) error {
	if err := w.check(row); err != nil {
		return err
	}
	if p == nil {
		return w.writeNull(row)
	}
	switch w.typ.Storage() {
	case types.TypeBlob:
	case types.TypeVarchar:
		if !utf8.Valid(p) {
			return w.castErr(reflect.ValueOf(p), errors.New("invalid UTF-8"))
		}
	default:
		return w.castErr(reflect.ValueOf(p), nil)
	}
	if err := w.vec.SetBytes(row, p); err != nil {
		return err
	}
	return w.vec.SetValid(row)
}

// Write encodes v into row. nil and nil pointers write NULL; other pointers
// are dereferenced.
func (w *Writer) Write(row int, v any) error {
	if err := w.check(row); err != nil {
		return err
	}
	return w.write(row, reflect.ValueOf(v))
}

func (w *Writer) write(row int, rv reflect.Value) error {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return w.writeNull(row)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return w.writeNull(row)
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		return w.writeNull(row)
	}
	if err := w.encode(row, rv); err != nil {
		return err
	}
	return w.vec.SetValid(row)
}

func (w *Writer) encode(row int, rv reflect.Value) error {
	switch w.typ.ID() {
	case types.TypeDecimal:
		return w.encodeDecimal(row, rv)
	case types.TypeEnum:
		return w.encodeEnum(row, rv)
	}

	switch st := w.typ.Storage(); st {
	case types.TypeBoolean:
		if rv.Kind() != reflect.Bool {
			return w.castErr(rv, nil)
		}
		slot, err := w.vec.Slot(row)
		if err != nil {
			return err
		}
		slot[0] = 0
		if rv.Bool() {
			slot[0] = 1
		}
		return nil
	case types.TypeTinyInt, types.TypeSmallInt, types.TypeInteger, types.TypeBigInt:
		n, ok := numberOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		v, err := n.toInt(storageBits(st))
		if err != nil {
			return w.castErr(rv, err)
		}
		return w.putFixed(row, st, uint64(v))
	case types.TypeUTinyInt, types.TypeUSmallInt, types.TypeUInteger, types.TypeUBigInt:
		n, ok := numberOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		v, err := n.toUint(storageBits(st))
		if err != nil {
			return w.castErr(rv, err)
		}
		return w.putFixed(row, st, v)
	case types.TypeFloat, types.TypeDouble:
		n, ok := numberOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		f, err := n.toFloat(storageBits(st))
		if err != nil {
			return w.castErr(rv, err)
		}
		if st == types.TypeFloat {
			return w.putFixed(row, st, uint64(math.Float32bits(float32(f))))
		}
		return w.putFixed(row, st, math.Float64bits(f))
	case types.TypeHugeInt, types.TypeUHugeInt, types.TypeVarInt:
		return w.encodeBig(row, rv)
	case types.TypeVarchar:
		s, ok := textOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		if !utf8.ValidString(s) {
			return w.castErr(rv, errors.New("invalid UTF-8"))
		}
		return w.vec.SetBytes(row, []byte(s))
	case types.TypeBlob:
		switch {
		case rv.Kind() == reflect.String:
			return w.vec.SetBytes(row, []byte(rv.String()))
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			return w.vec.SetBytes(row, rv.Bytes())
		case rv.Type() == typeUUID:
			u := rv.Interface().(uuid.UUID)
			return w.vec.SetBytes(row, u[:])
		}
		return w.castErr(rv, nil)
	case types.TypeBit:
		var bits []bool
		switch {
		case rv.Kind() == reflect.String:
			b, err := chunk.ParseBitString(rv.String())
			if err != nil {
				return w.castErr(rv, err)
			}
			bits = b
		case rv.Type() == typeBools:
			bits = rv.Interface().([]bool)
		default:
			return w.castErr(rv, nil)
		}
		return w.vec.SetBytes(row, chunk.EncodeBits(bits))
	case types.TypeDate:
		t, ok := timeOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		days, err := conv.Int(chunk.DaysFromDate(t), 32)
		if err != nil {
			return w.castErr(rv, err)
		}
		return w.putFixed(row, types.TypeInteger, uint64(days))
	case types.TypeTime:
		var micros int64
		switch {
		case rv.Type() == typeDuration:
			micros = time.Duration(rv.Int()).Microseconds()
		default:
			t, ok := timeOf(rv)
			if !ok {
				return w.castErr(rv, nil)
			}
			micros = chunk.MicrosFromTime(t)
		}
		if micros < 0 || micros > chunk.MicrosPerDay {
			return w.castErr(rv, conv.ErrOverflow)
		}
		return w.putFixed(row, types.TypeBigInt, uint64(micros))
	case types.TypeTimeTZ:
		var tz chunk.TimeTZ
		switch {
		case rv.Type() == typeTimeTZ:
			tz = rv.Interface().(chunk.TimeTZ)
		default:
			t, ok := timeOf(rv)
			if !ok {
				return w.castErr(rv, nil)
			}
			tz = chunk.TimeTZFromTime(t)
		}
		if !tz.Valid() {
			return w.castErr(rv, conv.ErrOverflow)
		}
		return w.putFixed(row, types.TypeBigInt, tz.Encode())
	case types.TypeTimestamp, types.TypeTimestampTZ, types.TypeTimestampS, types.TypeTimestampMS, types.TypeTimestampNS:
		t, ok := timeOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		unit := timestampUnit(st)
		if !chunk.TimestampInRange(t, unit) {
			return w.castErr(rv, conv.ErrOverflow)
		}
		return w.putFixed(row, types.TypeBigInt, uint64(chunk.TicksFromTimestamp(t, unit)))
	case types.TypeInterval:
		var iv chunk.Interval
		switch rv.Type() {
		case typeInterval:
			iv = rv.Interface().(chunk.Interval)
		case typeDuration:
			iv = chunk.IntervalFromDuration(time.Duration(rv.Int()))
		default:
			return w.castErr(rv, nil)
		}
		slot, err := w.vec.Slot(row)
		if err != nil {
			return err
		}
		chunk.PutInterval(slot, iv)
		return nil
	case types.TypeUUID:
		var u uuid.UUID
		switch {
		case rv.Type() == typeUUID:
			u = rv.Interface().(uuid.UUID)
		case rv.Kind() == reflect.String:
			parsed, err := uuid.Parse(rv.String())
			if err != nil {
				return w.castErr(rv, err)
			}
			u = parsed
		default:
			return w.castErr(rv, nil)
		}
		slot, err := w.vec.Slot(row)
		if err != nil {
			return err
		}
		chunk.PutHugeInt(slot, chunk.HugeIntFromUUID(u))
		return nil
	case types.TypeList:
		return w.encodeList(row, rv)
	case types.TypeArray:
		return w.encodeArray(row, rv)
	case types.TypeMap:
		return w.encodeMap(row, rv)
	case types.TypeStruct:
		return w.encodeStruct(row, rv)
	}
	return errs.Unsupported("%s", w.typ)
}

func storageBits(st types.Type) int {
	return types.SlotWidth(st) * 8
}

func (w *Writer) putFixed(row int, st types.Type, v uint64) error {
	slot, err := w.vec.Slot(row)
	if err != nil {
		return err
	}
	switch types.SlotWidth(st) {
	case 1:
		slot[0] = byte(v)
	case 2:
		chunk.ByteOrder.PutUint16(slot, uint16(v))
	case 4:
		chunk.ByteOrder.PutUint32(slot, uint32(v))
	default:
		chunk.ByteOrder.PutUint64(slot, v)
	}
	return nil
}

func textOf(rv reflect.Value) (string, bool) {
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), true
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return string(rv.Bytes()), true
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}

func timeOf(rv reflect.Value) (time.Time, bool) {
	if rv.Type() != typeTime {
		return time.Time{}, false
	}
	return rv.Interface().(time.Time), true
}

func (w *Writer) encodeBig(row int, rv reflect.Value) error {
	n, ok := numberOf(rv)
	if !ok {
		return w.castErr(rv, nil)
	}
	b, err := n.rounded()
	if err != nil {
		return w.castErr(rv, err)
	}
	switch w.typ.Storage() {
	case types.TypeHugeInt:
		h, err := chunk.HugeIntFromBig(b)
		if err != nil {
			return w.castErr(rv, err)
		}
		slot, err := w.vec.Slot(row)
		if err != nil {
			return err
		}
		chunk.PutHugeInt(slot, h)
		return nil
	case types.TypeUHugeInt:
		h, err := chunk.UHugeIntFromBig(b)
		if err != nil {
			return w.castErr(rv, err)
		}
		slot, err := w.vec.Slot(row)
		if err != nil {
			return err
		}
		chunk.PutUHugeInt(slot, h)
		return nil
	default:
		p, err := chunk.EncodeVarint(b)
		if err != nil {
			return w.castErr(rv, err)
		}
		return w.vec.SetBytes(row, p)
	}
}

// encodeDecimal rounds half away from zero to the column scale and rejects
// values whose unscaled magnitude needs more digits than the width.
func (w *Writer) encodeDecimal(row int, rv reflect.Value) error {
	var d decimal.Decimal
	if rv.Kind() == reflect.String {
		parsed, err := decimal.NewFromString(strings.TrimSpace(rv.String()))
		if err != nil {
			return w.castErr(rv, err)
		}
		d = parsed
	} else {
		n, ok := numberOf(rv)
		if !ok {
			return w.castErr(rv, nil)
		}
		nd, err := n.toDecimal()
		if err != nil {
			return w.castErr(rv, err)
		}
		d = nd
	}
	scale := int32(w.typ.Scale())
	unscaled := d.Round(scale).Shift(scale).BigInt()
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(w.typ.Width())), nil)
	if new(big.Int).Abs(unscaled).Cmp(limit) >= 0 {
		return w.castErr(rv, fmt.Errorf("%w: %s does not fit %s", conv.ErrOverflow, d, w.typ))
	}
	slot, err := w.vec.Slot(row)
	if err != nil {
		return err
	}
	switch st := w.typ.Storage(); st {
	case types.TypeHugeInt:
		h, err := chunk.HugeIntFromBig(unscaled)
		if err != nil {
			return w.castErr(rv, err)
		}
		chunk.PutHugeInt(slot, h)
		return nil
	default:
		return w.putFixed(row, st, uint64(unscaled.Int64()))
	}
}

func (w *Writer) encodeEnum(row int, rv reflect.Value) error {
	dict := w.typ.Dictionary()
	var idx uint64
	switch rv.Kind() {
	case reflect.String:
		if w.enumIdx == nil {
			w.enumIdx = make(map[string]uint32, len(dict))
			for i, s := range dict {
				w.enumIdx[s] = uint32(i)
			}
		}
		i, ok := w.enumIdx[rv.String()]
		if !ok {
			return w.castErr(rv, fmt.Errorf("%q is not a member of %s", rv.String(), w.typ))
		}
		idx = uint64(i)
	default:
		n, ok := numberOf(rv)
		if !ok || n.kind == numFloat || n.kind == numDecimal {
			return w.castErr(rv, nil)
		}
		i, err := n.toUint(64)
		if err != nil || i >= uint64(len(dict)) {
			return w.castErr(rv, fmt.Errorf("enum index outside dictionary of %d", len(dict)))
		}
		idx = i
	}
	return w.putFixed(row, w.typ.Storage(), idx)
}

func isSequence(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func (w *Writer) encodeList(row int, rv reflect.Value) error {
	if !isSequence(rv) {
		return w.castErr(rv, nil)
	}
	n := rv.Len()
	off := w.vec.ListSize()
	if err := w.vec.ReserveChild(off + n); err != nil {
		return err
	}
	child := w.children[0]
	for i := 0; i < n; i++ {
		if err := child.write(off+i, rv.Index(i)); err != nil {
			return err
		}
	}
	if err := w.vec.SetListSize(off + n); err != nil {
		return err
	}
	return w.vec.SetListEntry(row, off, n)
}

func (w *Writer) encodeArray(row int, rv reflect.Value) error {
	if !isSequence(rv) {
		return w.castErr(rv, nil)
	}
	size := w.typ.Size()
	if rv.Len() != size {
		return w.castErr(rv, fmt.Errorf("array of %d elements needs exactly %d", rv.Len(), size))
	}
	child := w.children[0]
	for i := 0; i < size; i++ {
		if err := child.write(row*size+i, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) encodeMap(row int, rv reflect.Value) error {
	if rv.Kind() != reflect.Map {
		return w.castErr(rv, nil)
	}
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)

	n := len(keys)
	off := w.vec.ListSize()
	if err := w.vec.ReserveChild(off + n); err != nil {
		return err
	}
	entries := w.children[0]
	for i, k := range keys {
		if isNullValue(k) {
			return w.castErr(rv, errors.New("map key is NULL"))
		}
		if err := entries.children[0].write(off+i, k); err != nil {
			return err
		}
		if err := entries.children[1].write(off+i, rv.MapIndex(k)); err != nil {
			return err
		}
		if err := entries.vec.SetValid(off + i); err != nil {
			return err
		}
	}
	if err := w.vec.SetListSize(off + n); err != nil {
		return err
	}
	return w.vec.SetListEntry(row, off, n)
}

func isNullValue(rv reflect.Value) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	return false
}

// compareKeys orders map keys of basic kinds so entries are written
// deterministically. Other kinds compare by their formatted value.
func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface && !a.IsNil() {
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface && !b.IsNil() {
		b = b.Elem()
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func (w *Writer) encodeStruct(row int, rv reflect.Value) error {
	fields := w.typ.Fields()
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i, f := range fields {
			idx, ok := fieldIndex(t, f.Name)
			if !ok {
				if err := w.children[i].writeNull(row); err != nil {
					return err
				}
				continue
			}
			if err := w.children[i].write(row, rv.Field(idx)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return w.castErr(rv, nil)
		}
		for i, f := range fields {
			v := rv.MapIndex(reflect.ValueOf(f.Name).Convert(rv.Type().Key()))
			if !v.IsValid() {
				if err := w.children[i].writeNull(row); err != nil {
					return err
				}
				continue
			}
			if err := w.children[i].write(row, v); err != nil {
				return err
			}
		}
		return nil
	}
	return w.castErr(rv, nil)
}
