// Package arrowexport converts chunks into Apache Arrow records.
package arrowexport

import (
	"fmt"
	"math/big"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/types"
)

// DataType maps a logical type to its Arrow counterpart. HUGEINT, UHUGEINT,
// VARINT, BIT and TIME WITH TIME ZONE have no Arrow equivalent and are
// exported as text.
func DataType(t *types.LogicalType) (arrow.DataType, error) {
	switch t.ID() {
	case types.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case types.TypeTinyInt:
		return arrow.PrimitiveTypes.Int8, nil
	case types.TypeSmallInt:
		return arrow.PrimitiveTypes.Int16, nil
	case types.TypeInteger:
		return arrow.PrimitiveTypes.Int32, nil
	case types.TypeBigInt:
		return arrow.PrimitiveTypes.Int64, nil
	case types.TypeUTinyInt:
		return arrow.PrimitiveTypes.Uint8, nil
	case types.TypeUSmallInt:
		return arrow.PrimitiveTypes.Uint16, nil
	case types.TypeUInteger:
		return arrow.PrimitiveTypes.Uint32, nil
	case types.TypeUBigInt:
		return arrow.PrimitiveTypes.Uint64, nil
	case types.TypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case types.TypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case types.TypeVarchar, types.TypeEnum, types.TypeHugeInt, types.TypeUHugeInt,
		types.TypeVarInt, types.TypeBit, types.TypeTimeTZ:
		return arrow.BinaryTypes.String, nil
	case types.TypeBlob:
		return arrow.BinaryTypes.Binary, nil
	case types.TypeDecimal:
		return &arrow.Decimal128Type{Precision: int32(t.Width()), Scale: int32(t.Scale())}, nil
	case types.TypeUUID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, nil
	case types.TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case types.TypeTime:
		return arrow.FixedWidthTypes.Time64us, nil
	case types.TypeTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case types.TypeTimestampTZ:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case types.TypeTimestampS:
		return &arrow.TimestampType{Unit: arrow.Second}, nil
	case types.TypeTimestampMS:
		return &arrow.TimestampType{Unit: arrow.Millisecond}, nil
	case types.TypeTimestampNS:
		return &arrow.TimestampType{Unit: arrow.Nanosecond}, nil
	case types.TypeInterval:
		return arrow.FixedWidthTypes.MonthDayNanoInterval, nil
	case types.TypeList:
		elem, err := DataType(t.Child())
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	case types.TypeArray:
		elem, err := DataType(t.Child())
		if err != nil {
			return nil, err
		}
		return arrow.FixedSizeListOf(int32(t.Size()), elem), nil
	case types.TypeStruct:
		fields := make([]arrow.Field, 0, len(t.Fields()))
		for _, f := range t.Fields() {
			ft, err := DataType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("struct field %q: %w", f.Name, err)
			}
			fields = append(fields, arrow.Field{Name: f.Name, Type: ft, Nullable: true})
		}
		return arrow.StructOf(fields...), nil
	case types.TypeMap:
		key, err := DataType(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := DataType(t.Value())
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(key, value), nil
	}
	return nil, fmt.Errorf("%w: %s has no Arrow mapping", duckvec.ErrUnsupportedType, t)
}

// Schema builds the Arrow schema of the reader's columns.
func Schema(r *duckvec.ChunkReader) (*arrow.Schema, error) {
	fields := make([]arrow.Field, r.ColumnCount())
	for i := range fields {
		name, err := r.ColumnName(i)
		if err != nil {
			return nil, err
		}
		lt, err := r.ColumnType(i)
		if err != nil {
			return nil, err
		}
		dt, err := DataType(lt)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// Record copies every row of r into a new Arrow record. The caller releases
// the record. A nil pool uses the Go allocator.
func Record(r *duckvec.ChunkReader, pool memory.Allocator) (arrow.Record, error) {
	if pool == nil {
		pool = memory.NewGoAllocator()
	}
	schema, err := Schema(r)
	if err != nil {
		return nil, err
	}
	rb := array.NewRecordBuilder(pool, schema)
	defer rb.Release()

	rows := r.RowCount()
	for col := range r.ColumnCount() {
		lt, err := r.ColumnType(col)
		if err != nil {
			return nil, err
		}
		b := rb.Field(col)
		b.Reserve(rows)
		for row := range rows {
			v, err := r.Value(col, row)
			if err != nil {
				return nil, err
			}
			if err := appendValue(b, lt, v); err != nil {
				return nil, fmt.Errorf("column %d row %d: %w", col, row, err)
			}
		}
	}
	return rb.NewRecord(), nil
}

func appendValue(b array.Builder, lt *types.LogicalType, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch builder := b.(type) {
	case *array.BooleanBuilder:
		return appendAs(builder.Append, v)
	case *array.Int8Builder:
		return appendAs(builder.Append, v)
	case *array.Int16Builder:
		return appendAs(builder.Append, v)
	case *array.Int32Builder:
		return appendAs(builder.Append, v)
	case *array.Int64Builder:
		return appendAs(builder.Append, v)
	case *array.Uint8Builder:
		return appendAs(builder.Append, v)
	case *array.Uint16Builder:
		return appendAs(builder.Append, v)
	case *array.Uint32Builder:
		return appendAs(builder.Append, v)
	case *array.Uint64Builder:
		return appendAs(builder.Append, v)
	case *array.Float32Builder:
		return appendAs(builder.Append, v)
	case *array.Float64Builder:
		return appendAs(builder.Append, v)
	case *array.StringBuilder:
		builder.Append(text(v))
	case *array.BinaryBuilder:
		return appendAs(builder.Append, v)
	case *array.FixedSizeBinaryBuilder:
		u, ok := v.(uuid.UUID)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(u[:])
	case *array.Decimal128Builder:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(decimal128.FromBigInt(d.Shift(int32(lt.Scale())).BigInt()))
	case *array.Date32Builder:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(arrow.Date32FromTime(t))
	case *array.Time64Builder:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(arrow.Time64(chunk.MicrosFromTime(t)))
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch(builder, v)
		}
		unit := builder.Type().(*arrow.TimestampType).Unit
		builder.Append(arrow.Timestamp(chunk.TicksFromTimestamp(t, unit.Multiplier())))
	case *array.MonthDayNanoIntervalBuilder:
		iv, ok := v.(chunk.Interval)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(arrow.MonthDayNanoInterval{
			Months:      iv.Months,
			Days:        iv.Days,
			Nanoseconds: iv.Micros * 1000,
		})
	case *array.ListBuilder:
		elems, ok := v.([]any)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(true)
		for _, e := range elems {
			if err := appendValue(builder.ValueBuilder(), lt.Child(), e); err != nil {
				return err
			}
		}
	case *array.FixedSizeListBuilder:
		elems, ok := v.([]any)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(true)
		for _, e := range elems {
			if err := appendValue(builder.ValueBuilder(), lt.Child(), e); err != nil {
				return err
			}
		}
	case *array.StructBuilder:
		fields, ok := v.(map[string]any)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(true)
		for i, f := range lt.Fields() {
			if err := appendValue(builder.FieldBuilder(i), f.Type, fields[f.Name]); err != nil {
				return err
			}
		}
	case *array.MapBuilder:
		m, ok := v.(column.Map)
		if !ok {
			return mismatch(builder, v)
		}
		builder.Append(true)
		for k, val := range m {
			if err := appendValue(builder.KeyBuilder(), lt.Key(), k); err != nil {
				return err
			}
			if err := appendValue(builder.ItemBuilder(), lt.Value(), val); err != nil {
				return err
			}
		}
	default:
		return mismatch(builder, v)
	}
	return nil
}

func appendAs[T any](appendFn func(T), v any) error {
	x, ok := v.(T)
	if !ok {
		var zero T
		return fmt.Errorf("%w: %T is not %T", duckvec.ErrInvalidCast, v, zero)
	}
	appendFn(x)
	return nil
}

func mismatch(b array.Builder, v any) error {
	return fmt.Errorf("%w: cannot append %T to %s", duckvec.ErrInvalidCast, v, b.Type())
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *big.Int:
		return x.String()
	case time.Time:
		return x.Format("15:04:05.999999Z07:00")
	}
	return fmt.Sprint(v)
}
