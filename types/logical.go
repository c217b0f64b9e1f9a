package types

import (
	"fmt"
	"strings"

	"github.com/hupe1980/duckvec/internal/errs"
)

// Field is one named member of a STRUCT.
type Field struct {
	Name string
	Type *LogicalType
}

// LogicalType is an owned, resolved type tree.
//
// Children are attached to exactly one parent. Only the root releases the
// tree; releasing an attached child fails with ErrInvalidOperation.
type LogicalType struct {
	id       Type
	width    uint8
	scale    uint8
	dict     []string
	child    *LogicalType // LIST/ARRAY element, MAP entry struct
	size     int          // ARRAY length
	fields   []Field
	parent   *LogicalType
	released bool
}

var _ Handle = (*LogicalType)(nil)

// NewPrimitive returns a type without metadata.
func NewPrimitive(id Type) (*LogicalType, error) {
	switch id {
	case TypeBoolean, TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt,
		TypeUTinyInt, TypeUSmallInt, TypeUInteger, TypeUBigInt,
		TypeHugeInt, TypeUHugeInt, TypeVarInt, TypeFloat, TypeDouble,
		TypeVarchar, TypeBlob, TypeBit, TypeUUID, TypeInterval,
		TypeDate, TypeTime, TypeTimeTZ,
		TypeTimestamp, TypeTimestampS, TypeTimestampMS, TypeTimestampNS, TypeTimestampTZ:
		return &LogicalType{id: id}, nil
	default:
		return nil, errs.Unsupported("%s", id)
	}
}

// MustPrimitive is like NewPrimitive but panics on unsupported ids.
func MustPrimitive(id Type) *LogicalType {
	t, err := NewPrimitive(id)
	if err != nil {
		panic(err)
	}
	return t
}

// NewDecimal returns a DECIMAL(width, scale).
func NewDecimal(width, scale uint8) (*LogicalType, error) {
	if _, ok := DecimalStorage(width); !ok || scale > width {
		return nil, errs.Unsupported("DECIMAL(%d,%d)", width, scale)
	}
	return &LogicalType{id: TypeDecimal, width: width, scale: scale}, nil
}

// NewEnum returns an ENUM over the given dictionary. The slice is copied.
func NewEnum(dict []string) (*LogicalType, error) {
	if len(dict) == 0 {
		return nil, errs.Unsupported("ENUM with empty dictionary")
	}
	if uint64(len(dict)) > 1<<32-1 {
		return nil, errs.Unsupported("ENUM with %d entries", len(dict))
	}
	return &LogicalType{id: TypeEnum, dict: append([]string(nil), dict...)}, nil
}

// NewList returns LIST(child) and takes ownership of child.
func NewList(child *LogicalType) (*LogicalType, error) {
	t := &LogicalType{id: TypeList}
	if err := t.adopt(child); err != nil {
		return nil, err
	}
	t.child = child
	return t, nil
}

// NewArray returns child[size] and takes ownership of child.
func NewArray(child *LogicalType, size int) (*LogicalType, error) {
	if size <= 0 {
		return nil, errs.Unsupported("ARRAY of size %d", size)
	}
	t := &LogicalType{id: TypeArray, size: size}
	if err := t.adopt(child); err != nil {
		return nil, err
	}
	t.child = child
	return t, nil
}

// NewStruct returns STRUCT(fields...) and takes ownership of every field type.
func NewStruct(fields ...Field) (*LogicalType, error) {
	if len(fields) == 0 {
		return nil, errs.Unsupported("STRUCT without fields")
	}
	t := &LogicalType{id: TypeStruct}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, errs.Unsupported("STRUCT with duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := t.adopt(f.Type); err != nil {
			return nil, err
		}
		t.fields = append(t.fields, f)
	}
	return t, nil
}

// NewMap returns MAP(key, value). The engine stores it as a LIST of
// STRUCT(key, value), which is what Child returns.
func NewMap(key, value *LogicalType) (*LogicalType, error) {
	entry, err := NewStruct(Field{Name: "key", Type: key}, Field{Name: "value", Type: value})
	if err != nil {
		return nil, err
	}
	t := &LogicalType{id: TypeMap}
	if err := t.adopt(entry); err != nil {
		return nil, err
	}
	t.child = entry
	return t, nil
}

func (t *LogicalType) adopt(child *LogicalType) error {
	if child == nil {
		return errs.Unsupported("nil child type")
	}
	if child.released {
		return errs.Invalid("child type already released")
	}
	if child.parent != nil {
		return errs.Invalid("child type %s already attached", child)
	}
	child.parent = t
	return nil
}

// ID returns the logical discriminant.
func (t *LogicalType) ID() Type { return t.id }

// Width returns the DECIMAL width.
func (t *LogicalType) Width() uint8 { return t.width }

// Scale returns the DECIMAL scale.
func (t *LogicalType) Scale() uint8 { return t.scale }

// Dictionary returns the ENUM dictionary. Callers must not modify it.
func (t *LogicalType) Dictionary() []string { return t.dict }

// Child returns the element type of LIST and ARRAY and the entry struct of MAP.
func (t *LogicalType) Child() *LogicalType { return t.child }

// Size returns the fixed length of an ARRAY.
func (t *LogicalType) Size() int { return t.size }

// Fields returns the STRUCT members. Callers must not modify the slice.
func (t *LogicalType) Fields() []Field { return t.fields }

// Key returns the MAP key type.
func (t *LogicalType) Key() *LogicalType {
	if t.id != TypeMap {
		return nil
	}
	return t.child.fields[0].Type
}

// Value returns the MAP value type.
func (t *LogicalType) Value() *LogicalType {
	if t.id != TypeMap {
		return nil
	}
	return t.child.fields[1].Type
}

// Released reports whether the owning tree was released.
func (t *LogicalType) Released() bool { return t.released }

// Storage returns the physical type backing the slots of this type.
func (t *LogicalType) Storage() Type {
	switch t.id {
	case TypeDecimal:
		s, _ := DecimalStorage(t.width)
		return s
	case TypeEnum:
		return EnumStorage(len(t.dict))
	default:
		return t.id
	}
}

// SlotWidth returns the width in bytes of one slot of this type.
func (t *LogicalType) SlotWidth() int { return SlotWidth(t.Storage()) }

// Release frees the tree. Only the root may be released; a second release is a no-op.
func (t *LogicalType) Release() error {
	if t.parent != nil {
		return errs.Invalid("cannot release child type %s owned by %s", t, t.parent)
	}
	t.release()
	return nil
}

func (t *LogicalType) release() {
	if t.released {
		return
	}
	t.released = true
	if t.child != nil {
		t.child.release()
	}
	for _, f := range t.fields {
		f.Type.release()
	}
}

// Equal reports structural equality.
func (t *LogicalType) Equal(o *LogicalType) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.id != o.id || t.width != o.width || t.scale != o.scale || t.size != o.size ||
		len(t.dict) != len(o.dict) || len(t.fields) != len(o.fields) {
		return false
	}
	for i := range t.dict {
		if t.dict[i] != o.dict[i] {
			return false
		}
	}
	for i := range t.fields {
		if t.fields[i].Name != o.fields[i].Name || !t.fields[i].Type.Equal(o.fields[i].Type) {
			return false
		}
	}
	if (t.child == nil) != (o.child == nil) {
		return false
	}
	return t.child == nil || t.child.Equal(o.child)
}

// String renders the SQL spelling of the type, e.g. DECIMAL(10,4) or INTEGER[].
func (t *LogicalType) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.id {
	case TypeDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.width, t.scale)
	case TypeEnum:
		quoted := make([]string, len(t.dict))
		for i, s := range t.dict {
			quoted[i] = "'" + strings.ReplaceAll(s, "'", "''") + "'"
		}
		return "ENUM(" + strings.Join(quoted, ", ") + ")"
	case TypeList:
		return t.child.String() + "[]"
	case TypeArray:
		return fmt.Sprintf("%s[%d]", t.child, t.size)
	case TypeStruct:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.Name + " " + f.Type.String()
		}
		return "STRUCT(" + strings.Join(parts, ", ") + ")"
	case TypeMap:
		return fmt.Sprintf("MAP(%s, %s)", t.Key(), t.Value())
	default:
		return t.id.String()
	}
}

// Handle implementation, so resolved types can stand in for engine handles.

func (t *LogicalType) TypeID() Type             { return t.id }
func (t *LogicalType) DecimalWidth() uint8      { return t.width }
func (t *LogicalType) DecimalScale() uint8      { return t.scale }
func (t *LogicalType) EnumDictionary() []string { return t.dict }
func (t *LogicalType) ArraySize() int           { return t.size }
func (t *LogicalType) StructFieldCount() int    { return len(t.fields) }

func (t *LogicalType) ChildType() Handle {
	if t.child == nil || t.id == TypeMap {
		return nil
	}
	return t.child
}

func (t *LogicalType) StructFieldName(i int) string {
	return t.fields[i].Name
}

func (t *LogicalType) StructFieldType(i int) Handle {
	return t.fields[i].Type
}

func (t *LogicalType) MapKeyType() Handle {
	if t.id != TypeMap {
		return nil
	}
	return t.Key()
}

func (t *LogicalType) MapValueType() Handle {
	if t.id != TypeMap {
		return nil
	}
	return t.Value()
}
