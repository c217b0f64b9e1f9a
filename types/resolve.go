package types

import "github.com/hupe1980/duckvec/internal/errs"

// Handle is the engine's opaque type descriptor for one column or value.
//
// Child handles returned by a Handle are borrowed: Resolve reads them but
// never releases them, their lifetime belongs to the engine.
type Handle interface {
	TypeID() Type
	DecimalWidth() uint8
	DecimalScale() uint8
	EnumDictionary() []string
	ChildType() Handle
	ArraySize() int
	StructFieldCount() int
	StructFieldName(i int) string
	StructFieldType(i int) Handle
	MapKeyType() Handle
	MapValueType() Handle
}

// Resolve builds an owned LogicalType tree from an engine handle.
// Types outside the supported set fail with ErrUnsupportedType.
func Resolve(h Handle) (*LogicalType, error) {
	if h == nil {
		return nil, errs.Unsupported("nil type handle")
	}
	switch id := h.TypeID(); id {
	case TypeDecimal:
		return NewDecimal(h.DecimalWidth(), h.DecimalScale())
	case TypeEnum:
		return NewEnum(h.EnumDictionary())
	case TypeList:
		child, err := Resolve(h.ChildType())
		if err != nil {
			return nil, err
		}
		return NewList(child)
	case TypeArray:
		child, err := Resolve(h.ChildType())
		if err != nil {
			return nil, err
		}
		return NewArray(child, h.ArraySize())
	case TypeStruct:
		n := h.StructFieldCount()
		fields := make([]Field, 0, n)
		for i := 0; i < n; i++ {
			ft, err := Resolve(h.StructFieldType(i))
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: h.StructFieldName(i), Type: ft})
		}
		return NewStruct(fields...)
	case TypeMap:
		key, err := Resolve(h.MapKeyType())
		if err != nil {
			return nil, err
		}
		value, err := Resolve(h.MapValueType())
		if err != nil {
			return nil, err
		}
		return NewMap(key, value)
	default:
		return NewPrimitive(id)
	}
}

// ResolveAll resolves one handle per column.
func ResolveAll(handles []Handle) ([]*LogicalType, error) {
	out := make([]*LogicalType, len(handles))
	for i, h := range handles {
		t, err := Resolve(h)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
