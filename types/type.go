// Package types resolves engine type descriptors into owned logical type trees.
//
// A LogicalType carries the metadata the vector codecs need: decimal width and
// scale, enum dictionaries, list and array children, struct fields and map
// key/value types. Its Storage method reports the physical slot layout the
// engine picked for it.
package types

import "fmt"

// Type is the engine's type discriminant. Values match the C API ids.
type Type uint8

const (
	TypeInvalid     Type = 0
	TypeBoolean     Type = 1
	TypeTinyInt     Type = 2
	TypeSmallInt    Type = 3
	TypeInteger     Type = 4
	TypeBigInt      Type = 5
	TypeUTinyInt    Type = 6
	TypeUSmallInt   Type = 7
	TypeUInteger    Type = 8
	TypeUBigInt     Type = 9
	TypeFloat       Type = 10
	TypeDouble      Type = 11
	TypeTimestamp   Type = 12
	TypeDate        Type = 13
	TypeTime        Type = 14
	TypeInterval    Type = 15
	TypeHugeInt     Type = 16
	TypeVarchar     Type = 17
	TypeBlob        Type = 18
	TypeDecimal     Type = 19
	TypeTimestampS  Type = 20
	TypeTimestampMS Type = 21
	TypeTimestampNS Type = 22
	TypeEnum        Type = 23
	TypeList        Type = 24
	TypeStruct      Type = 25
	TypeMap         Type = 26
	TypeUUID        Type = 27
	TypeUnion       Type = 28
	TypeBit         Type = 29
	TypeTimeTZ      Type = 30
	TypeTimestampTZ Type = 31
	TypeUHugeInt    Type = 32
	TypeArray       Type = 33
	TypeAny         Type = 34
	TypeVarInt      Type = 35
	TypeSQLNull     Type = 36
)

var typeNames = map[Type]string{
	TypeInvalid:     "INVALID",
	TypeBoolean:     "BOOLEAN",
	TypeTinyInt:     "TINYINT",
	TypeSmallInt:    "SMALLINT",
	TypeInteger:     "INTEGER",
	TypeBigInt:      "BIGINT",
	TypeUTinyInt:    "UTINYINT",
	TypeUSmallInt:   "USMALLINT",
	TypeUInteger:    "UINTEGER",
	TypeUBigInt:     "UBIGINT",
	TypeFloat:       "FLOAT",
	TypeDouble:      "DOUBLE",
	TypeTimestamp:   "TIMESTAMP",
	TypeDate:        "DATE",
	TypeTime:        "TIME",
	TypeInterval:    "INTERVAL",
	TypeHugeInt:     "HUGEINT",
	TypeVarchar:     "VARCHAR",
	TypeBlob:        "BLOB",
	TypeDecimal:     "DECIMAL",
	TypeTimestampS:  "TIMESTAMP_S",
	TypeTimestampMS: "TIMESTAMP_MS",
	TypeTimestampNS: "TIMESTAMP_NS",
	TypeEnum:        "ENUM",
	TypeList:        "LIST",
	TypeStruct:      "STRUCT",
	TypeMap:         "MAP",
	TypeUUID:        "UUID",
	TypeUnion:       "UNION",
	TypeBit:         "BIT",
	TypeTimeTZ:      "TIME WITH TIME ZONE",
	TypeTimestampTZ: "TIMESTAMP WITH TIME ZONE",
	TypeUHugeInt:    "UHUGEINT",
	TypeArray:       "ARRAY",
	TypeAny:         "ANY",
	TypeVarInt:      "VARINT",
	TypeSQLNull:     "NULL",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// IsNested reports whether values of t live in child vectors.
func (t Type) IsNested() bool {
	switch t {
	case TypeList, TypeStruct, TypeMap, TypeArray:
		return true
	default:
		return false
	}
}

// SlotWidth returns the width in bytes of one slot of a physical type.
// STRUCT and ARRAY keep no data of their own and report 0.
func SlotWidth(storage Type) int {
	switch storage {
	case TypeBoolean, TypeTinyInt, TypeUTinyInt:
		return 1
	case TypeSmallInt, TypeUSmallInt:
		return 2
	case TypeInteger, TypeUInteger, TypeFloat, TypeDate:
		return 4
	case TypeBigInt, TypeUBigInt, TypeDouble, TypeTime, TypeTimeTZ,
		TypeTimestamp, TypeTimestampS, TypeTimestampMS, TypeTimestampNS, TypeTimestampTZ:
		return 8
	case TypeHugeInt, TypeUHugeInt, TypeUUID, TypeInterval:
		return 16
	case TypeVarchar, TypeBlob, TypeBit, TypeVarInt:
		return 16
	case TypeList, TypeMap:
		return 16
	default:
		return 0
	}
}

// DecimalStorage returns the physical type holding a DECIMAL of the given width.
func DecimalStorage(width uint8) (Type, bool) {
	switch {
	case width == 0:
		return TypeInvalid, false
	case width <= 4:
		return TypeSmallInt, true
	case width <= 9:
		return TypeInteger, true
	case width <= 18:
		return TypeBigInt, true
	case width <= MaxDecimalWidth:
		return TypeHugeInt, true
	default:
		return TypeInvalid, false
	}
}

// EnumStorage returns the physical type holding indexes into a dictionary of n entries.
func EnumStorage(n int) Type {
	switch {
	case n <= 0xFF:
		return TypeUTinyInt
	case n <= 0xFFFF:
		return TypeUSmallInt
	default:
		return TypeUInteger
	}
}

// MaxDecimalWidth is the widest DECIMAL the engine supports.
const MaxDecimalWidth = 38
