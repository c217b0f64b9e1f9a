package column

import (
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/internal/conv"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_DefaultMapping(t *testing.T) {
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	day := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2024, time.March, 1, 12, 30, 45, 123456000, time.UTC)

	tests := []struct {
		typ  string
		in   any
		want any
	}{
		{"BOOLEAN", true, true},
		{"TINYINT", -5, int8(-5)},
		{"SMALLINT", int16(-300), int16(-300)},
		{"INTEGER", int64(42), int32(42)},
		{"BIGINT", uint32(7), int64(7)},
		{"UTINYINT", 200, uint8(200)},
		{"USMALLINT", 65535, uint16(65535)},
		{"UINTEGER", uint64(4_000_000_000), uint32(4_000_000_000)},
		{"UBIGINT", uint64(1 << 63), uint64(1 << 63)},
		{"FLOAT", float32(2.5), float32(2.5)},
		{"DOUBLE", 1.5, 1.5},
		{"VARCHAR", "hello", "hello"},
		{"VARCHAR", strings.Repeat("quack", 20), strings.Repeat("quack", 20)},
		{"BLOB", []byte{0, 1, 2}, []byte{0, 1, 2}},
		{"BIT", "0101101", "0101101"},
		{"UUID", u, u},
		{"UUID", u.String(), u},
		{"DATE", day, day},
		{"TIMESTAMP", ts, ts},
		{"TIMESTAMP_S", ts, ts.Truncate(time.Second)},
		{"TIMESTAMP_MS", ts, ts.Truncate(time.Millisecond)},
		{"TIMESTAMP_NS", ts, ts},
		{"TIMESTAMPTZ", ts, ts},
		{"INTERVAL", chunk.Interval{Months: 1, Days: 2, Micros: 3}, chunk.Interval{Months: 1, Days: 2, Micros: 3}},
		{"INTERVAL", 90 * time.Second, chunk.Interval{Micros: 90_000_000}},
		{"ENUM('red', 'green')", "green", "green"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			_, r, w := newColumn(t, tt.typ, 4)
			require.NoError(t, w.Write(2, tt.in))

			got, err := r.Value(2)
			require.NoError(t, err)
			if want, ok := tt.want.(time.Time); ok {
				require.IsType(t, time.Time{}, got)
				assert.True(t, want.Equal(got.(time.Time)), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_BigNumbers(t *testing.T) {
	tests := []struct {
		typ string
		in  any
	}{
		{"HUGEINT", bigFromString(t, "-170141183460469231731687303715884105728")},
		{"HUGEINT", int64(-5)},
		{"UHUGEINT", bigFromString(t, "340282366920938463463374607431768211455")},
		{"VARINT", new(big.Int).Lsh(big.NewInt(1), 200)},
		{"VARINT", big.NewInt(-1)},
		{"VARINT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			_, r, w := newColumn(t, tt.typ, 2)
			require.NoError(t, w.Write(0, tt.in))

			got, err := Read[*big.Int](r, 0)
			require.NoError(t, err)
			n, ok := numberOf(reflectValue(tt.in))
			require.True(t, ok)
			want, err := n.rounded()
			require.NoError(t, err)
			assert.Zero(t, want.Cmp(got), "got %s want %s", got, want)

			v, err := r.Value(0)
			require.NoError(t, err)
			assert.IsType(t, &big.Int{}, v)
		})
	}

	t.Run("small hugeint narrows", func(t *testing.T) {
		_, r, w := newColumn(t, "HUGEINT", 1)
		require.NoError(t, w.Write(0, -5))
		got, err := Read[int64](r, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(-5), got)
		_, err = Read[uint64](r, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidCast)
	})

	t.Run("beyond float64 range", func(t *testing.T) {
		_, r, w := newColumn(t, "VARINT", 1)
		require.NoError(t, w.Write(0, new(big.Int).Exp(big.NewInt(10), big.NewInt(400), nil)))

		_, err := Read[float64](r, 0)
		require.ErrorIs(t, err, errs.ErrInvalidCast)
		assert.ErrorIs(t, err, conv.ErrOverflow)

		got, err := Read[*big.Int](r, 0)
		require.NoError(t, err)
		assert.Equal(t, 401, len(got.String()))
	})

	t.Run("uhugeint rejects negatives", func(t *testing.T) {
		_, _, w := newColumn(t, "UHUGEINT", 1)
		assert.ErrorIs(t, w.Write(0, -1), errs.ErrInvalidCast)
	})
}

func TestReader_Narrowing(t *testing.T) {
	_, r, w := newColumn(t, "INTEGER", 2)
	require.NoError(t, w.Write(0, 200))

	_, err := Read[int8](r, 0)
	require.ErrorIs(t, err, errs.ErrInvalidCast)
	assert.ErrorIs(t, err, conv.ErrOverflow)

	var castErr *errs.InvalidCastError
	require.True(t, errors.As(err, &castErr))
	assert.Equal(t, "INTEGER", castErr.From)
	assert.Equal(t, "int8", castErr.To)
	assert.Equal(t, "col", castErr.Column)

	u8, err := Read[uint8](r, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u8)

	i16, err := Read[int16](r, 0)
	require.NoError(t, err)
	assert.Equal(t, int16(200), i16)

	f, err := Read[float64](r, 0)
	require.NoError(t, err)
	assert.Equal(t, 200.0, f)

	type celsius int16
	c, err := Read[celsius](r, 0)
	require.NoError(t, err)
	assert.Equal(t, celsius(200), c)

	_, err = Read[string](r, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)
}

func TestReader_FloatConversion(t *testing.T) {
	_, r, w := newColumn(t, "DOUBLE", 4)
	require.NoError(t, w.Write(0, 2.5))
	require.NoError(t, w.Write(1, 1e300))

	i, err := Read[int](r, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = Read[float32](r, 1)
	assert.ErrorIs(t, err, conv.ErrOverflow)

	_, err = Read[int64](r, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)
}

func TestReader_Null(t *testing.T) {
	for _, typ := range []string{
		"BOOLEAN", "INTEGER", "HUGEINT", "DOUBLE", "VARCHAR", "BLOB", "VARINT", "DECIMAL(18,3)",
		"UUID", "DATE", "TIMESTAMP", "INTERVAL", "INTEGER[]", "INTEGER[2]", "STRUCT(a INTEGER)", "MAP(VARCHAR, INTEGER)",
	} {
		t.Run(typ, func(t *testing.T) {
			vec, r, w := newColumn(t, typ, 3)
			require.NoError(t, w.WriteNull(0))
			require.NoError(t, w.Write(1, nil))
			require.NoError(t, w.Write(2, (*int32)(nil)))

			for row := 0; row < 3; row++ {
				assert.False(t, vec.IsValid(row))
				v, err := r.Value(row)
				require.NoError(t, err)
				assert.Nil(t, v)

				p, err := Read[*int64](r, row)
				require.NoError(t, err)
				assert.Nil(t, p)

				a, err := Read[any](r, row)
				require.NoError(t, err)
				assert.Nil(t, a)

				_, err = Read[int64](r, row)
				assert.ErrorIs(t, err, errs.ErrInvalidCast)
			}
		})
	}
}

func TestReader_List(t *testing.T) {
	_, r, w := newColumn(t, "INTEGER[]", 4)
	require.NoError(t, w.Write(0, []int32{1, 2, 3}))
	require.NoError(t, w.Write(1, []int{}))
	require.NoError(t, w.WriteNull(2))
	require.NoError(t, w.Write(3, []any{int32(4), nil}))

	v, err := r.Value(0)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2), int32(3)}, v)

	got, err := Read[[]int32](r, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, got)

	wide, err := Read[[]int64](r, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, wide)

	empty, err := Read[[]int32](r, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	null, err := Read[[]int32](r, 2)
	require.NoError(t, err)
	assert.Nil(t, null)

	_, err = Read[[]int32](r, 3)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)

	ptrs, err := Read[[]*int32](r, 3)
	require.NoError(t, err)
	require.Len(t, ptrs, 2)
	require.NotNil(t, ptrs[0])
	assert.Equal(t, int32(4), *ptrs[0])
	assert.Nil(t, ptrs[1])
}

func TestReader_Array(t *testing.T) {
	_, r, w := newColumn(t, "INTEGER[3]", 2)
	require.NoError(t, w.Write(0, []int{1, 2, 3}))
	assert.ErrorIs(t, w.Write(1, []int{1}), errs.ErrInvalidCast)

	arr, err := Read[[3]int32](r, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]int32{1, 2, 3}, arr)

	_, err = Read[[2]int32](r, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)

	v, err := r.Value(0)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2), int32(3)}, v)
}

func TestReader_Struct(t *testing.T) {
	type point struct {
		A     int32
		Label string `duckdb:"b"`
	}

	vec, r, w := newColumn(t, "STRUCT(a INTEGER, b VARCHAR)", 3)
	require.NoError(t, w.Write(0, point{A: 1, Label: "x"}))
	require.NoError(t, w.Write(1, map[string]any{"a": 2}))
	require.NoError(t, w.Write(2, (*point)(nil)))

	v, err := r.Value(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int32(1), "b": "x"}, v)

	p, err := Read[point](r, 0)
	require.NoError(t, err)
	assert.Equal(t, point{A: 1, Label: "x"}, p)

	v, err = r.Value(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int32(2), "b": nil}, v)

	_, err = Read[point](r, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)

	m, err := Read[map[string]any](r, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), m["a"])
	assert.Nil(t, m["b"])

	assert.False(t, vec.IsValid(2))
	for _, child := range vec.Children() {
		assert.False(t, child.IsValid(2))
	}
}

func TestReader_Map(t *testing.T) {
	_, r, w := newColumn(t, "MAP(VARCHAR, INTEGER)", 2)
	require.NoError(t, w.Write(0, map[string]int32{"y": 2, "x": 1}))

	v, err := r.Value(0)
	require.NoError(t, err)
	assert.Equal(t, Map{"x": int32(1), "y": int32(2)}, v)

	m, err := Read[map[string]int64](r, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"x": 1, "y": 2}, m)

	_, err = Read[map[int]int64](r, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)

	t.Run("unhashable key", func(t *testing.T) {
		_, r, w := newColumn(t, "MAP(BLOB, INTEGER)", 1)
		require.NoError(t, w.Write(0, map[string]int{"k": 1}))
		_, err := r.Value(0)
		assert.ErrorIs(t, err, errs.ErrInvalidCast)
	})
}

func TestReader_Decimal(t *testing.T) {
	_, r, w := newColumn(t, "DECIMAL(10,4)", 2)
	require.NoError(t, w.Write(0, 2.3456))

	d, err := Read[decimal.Decimal](r, 0)
	require.NoError(t, err)
	assert.Equal(t, "2.3456", d.String())

	s, err := Read[string](r, 0)
	require.NoError(t, err)
	assert.Equal(t, "2.3456", s)

	f, err := Read[float64](r, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.3456, f, 1e-12)

	i, err := Read[int](r, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	t.Run("hugeint storage", func(t *testing.T) {
		_, r, w := newColumn(t, "DECIMAL(38,10)", 1)
		require.NoError(t, w.Write(0, "12345678901234567890.0123456789"))
		s, err := Read[string](r, 0)
		require.NoError(t, err)
		assert.Equal(t, "12345678901234567890.0123456789", s)
	})

	t.Run("from varchar", func(t *testing.T) {
		_, r, w := newColumn(t, "VARCHAR", 1)
		require.NoError(t, w.Write(0, "-1.25"))
		d, err := Read[decimal.Decimal](r, 0)
		require.NoError(t, err)
		assert.True(t, d.Equal(mustDecimal(t, "-1.25")))
	})
}

func TestReader_Enum(t *testing.T) {
	vec, r, w := newColumn(t, "ENUM('a', 'b')", 2)
	require.NoError(t, w.Write(0, 1))
	s, err := Read[string](r, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", s)

	slot, err := vec.Slot(1)
	require.NoError(t, err)
	slot[0] = 5
	_, err = r.Value(1)
	assert.ErrorIs(t, err, errs.ErrCorruptData)
}

func TestReader_Temporal(t *testing.T) {
	t.Run("time as duration", func(t *testing.T) {
		_, r, w := newColumn(t, "TIME", 1)
		clock := time.Date(2020, 5, 5, 13, 45, 30, 123456000, time.UTC)
		require.NoError(t, w.Write(0, clock))
		d, err := Read[time.Duration](r, 0)
		require.NoError(t, err)
		assert.Equal(t, 13*time.Hour+45*time.Minute+30*time.Second+123456*time.Microsecond, d)
	})

	t.Run("time with time zone", func(t *testing.T) {
		_, r, w := newColumn(t, "TIME WITH TIME ZONE", 1)
		zone := time.FixedZone("", 2*60*60)
		require.NoError(t, w.Write(0, time.Date(1970, 1, 1, 13, 0, 0, 0, zone)))
		tz, err := Read[chunk.TimeTZ](r, 0)
		require.NoError(t, err)
		assert.Equal(t, chunk.TimeTZ{Micros: 13 * 3600 * 1_000_000, Offset: 7200}, tz)

		got, err := Read[time.Time](r, 0)
		require.NoError(t, err)
		_, off := got.Zone()
		assert.Equal(t, 7200, off)
		assert.Equal(t, 13, got.Hour())
	})

	t.Run("pre-epoch date", func(t *testing.T) {
		vec, r, w := newColumn(t, "DATE", 1)
		require.NoError(t, w.Write(0, time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)))
		slot, err := vec.Slot(0)
		require.NoError(t, err)
		assert.Equal(t, int32(-1), int32(chunk.ByteOrder.Uint32(slot)))
		got, err := Read[time.Time](r, 0)
		require.NoError(t, err)
		assert.True(t, time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC).Equal(got), "got %v", got)
	})

	t.Run("microsecond range", func(t *testing.T) {
		far := time.Date(300000, 1, 1, 0, 0, 0, 0, time.UTC)
		for _, typ := range []string{"TIMESTAMP", "TIMESTAMP WITH TIME ZONE"} {
			_, _, w := newColumn(t, typ, 1)
			err := w.Write(0, far)
			require.ErrorIs(t, err, errs.ErrInvalidCast, typ)
			assert.ErrorIs(t, err, conv.ErrOverflow, typ)
		}

		_, r, w := newColumn(t, "TIMESTAMP_MS", 1)
		require.NoError(t, w.Write(0, far))
		got, err := Read[time.Time](r, 0)
		require.NoError(t, err)
		assert.True(t, far.Equal(got), "got %v", got)

		_, _, w = newColumn(t, "TIMESTAMP_MS", 1)
		err = w.Write(0, time.Date(300_000_000, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, conv.ErrOverflow)
	})

	t.Run("time with time zone range", func(t *testing.T) {
		for _, tz := range []chunk.TimeTZ{
			{Micros: -5, Offset: 20 * 3600},
			{Micros: -5},
			{Micros: chunk.MicrosPerDay + 1},
			{Micros: 0, Offset: 20 * 3600},
		} {
			_, _, w := newColumn(t, "TIME WITH TIME ZONE", 1)
			err := w.Write(0, tz)
			require.ErrorIs(t, err, errs.ErrInvalidCast, "%+v", tz)
			assert.ErrorIs(t, err, conv.ErrOverflow, "%+v", tz)
		}

		_, _, w := newColumn(t, "TIME WITH TIME ZONE", 1)
		far := time.Date(1970, 1, 1, 8, 0, 0, 0, time.FixedZone("", 17*3600))
		assert.ErrorIs(t, w.Write(0, far), conv.ErrOverflow)
	})

	t.Run("nanosecond range", func(t *testing.T) {
		_, _, w := newColumn(t, "TIMESTAMP_NS", 1)
		err := w.Write(0, time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, errs.ErrInvalidCast)
	})

	t.Run("wrong host type", func(t *testing.T) {
		_, _, w := newColumn(t, "DATE", 1)
		assert.ErrorIs(t, w.Write(0, "2024-01-01"), errs.ErrInvalidCast)
	})
}

func TestReader_BitsAndBytes(t *testing.T) {
	_, r, w := newColumn(t, "BIT", 1)
	require.NoError(t, w.Write(0, []bool{true, false, true}))

	bits, err := Read[[]bool](r, 0)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, bits)

	s, err := Read[string](r, 0)
	require.NoError(t, err)
	assert.Equal(t, "101", s)
}

func TestReader_Nulls(t *testing.T) {
	_, r, w := newColumn(t, "INTEGER", 10)
	for row := 0; row < 10; row++ {
		if row == 3 || row == 7 {
			require.NoError(t, w.WriteNull(row))
			continue
		}
		require.NoError(t, w.Write(row, row))
	}
	bm, err := r.Nulls(10)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 7}, bm.ToArray())

	_, err = r.Nulls(11)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestReader_Stream(t *testing.T) {
	payload := []byte(strings.Repeat("0123456789", 10))
	_, r, w := newColumn(t, "BLOB", 2)
	require.NoError(t, w.WriteBlob(0, payload))
	require.NoError(t, w.WriteNull(1))

	br, err := r.Stream(0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), br.Size())

	got, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Zero(t, br.Len())

	pos, err := br.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(90), pos)

	buf := make([]byte, 4)
	n, err := br.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(buf[:n]))

	_, err = br.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = br.Seek(1, io.SeekEnd)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)

	null, err := r.Stream(1)
	require.NoError(t, err)
	assert.Nil(t, null)

	viaRead, err := Read[*BlobReader](r, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), viaRead.Size())

	_, ir, _ := newColumn(t, "INTEGER", 1)
	_, err = ir.Stream(0)
	assert.ErrorIs(t, err, errs.ErrInvalidCast)
}

func TestReader_StaleAfterReset(t *testing.T) {
	lt := types.MustPrimitive(types.TypeInteger)
	c, err := chunk.New([]*types.LogicalType{lt}, chunk.WithCapacity(4))
	require.NoError(t, err)
	vec, err := c.Vector(0)
	require.NoError(t, err)

	r, err := NewReader(vec, "n")
	require.NoError(t, err)
	w, err := NewWriter(vec, "n")
	require.NoError(t, err)
	require.NoError(t, w.Write(0, 1))

	require.NoError(t, c.Reset())
	_, err = r.Value(0)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	assert.ErrorIs(t, w.Write(0, 2), errs.ErrInvalidOperation)

	require.NoError(t, r.Rebind())
	require.NoError(t, w.Rebind())
	require.NoError(t, w.Write(0, 2))
	v, err := r.Value(0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	c.Close()
	_, err = r.Value(0)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}
