package duckvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/types"
)

func sumFunc(args []*column.Reader, out *column.Writer, rows int) error {
	for row := range rows {
		var sum int64
		for _, a := range args {
			v, err := column.Read[*int64](a, row)
			if err != nil {
				return err
			}
			if v != nil {
				sum += *v
			}
		}
		if err := out.Write(row, sum); err != nil {
			return err
		}
	}
	return nil
}

func TestScalarFunction(t *testing.T) {
	intType := types.MustPrimitive(types.TypeInteger)
	bigType := types.MustPrimitive(types.TypeBigInt)

	t.Run("VarargsNeedsOneParam", func(t *testing.T) {
		_, err := NewScalarFunction("sum", sumFunc, bigType, true, intType, intType)
		require.ErrorIs(t, err, ErrInvalidOperation)
		_, err = NewScalarFunction("sum", sumFunc, bigType, true)
		require.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("Varargs", func(t *testing.T) {
		f, err := NewScalarFunction("sum", sumFunc, bigType, true, intType)
		require.NoError(t, err)
		assert.True(t, f.Varargs())
		assert.Equal(t, "sum", f.Name())

		in, err := chunk.New([]*types.LogicalType{intType, intType, intType}, chunk.WithCapacity(4))
		require.NoError(t, err)
		defer in.Close()
		for col := range 3 {
			vec, err := in.Vector(col)
			require.NoError(t, err)
			w, err := column.NewWriter(vec, "")
			require.NoError(t, err)
			require.NoError(t, w.Write(0, col+1))
			require.NoError(t, w.WriteNull(1))
		}
		require.NoError(t, in.SetSize(2))

		out, err := chunk.NewVector(bigType, 4)
		require.NoError(t, err)
		require.NoError(t, f.Invoke(in, out))

		r, err := column.NewReader(out, "sum")
		require.NoError(t, err)
		got, err := column.Read[int64](r, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(6), got)
		got, err = column.Read[int64](r, 1)
		require.NoError(t, err)
		assert.Zero(t, got)
	})

	t.Run("Mismatch", func(t *testing.T) {
		f, err := NewScalarFunction("add", sumFunc, bigType, false, intType, intType)
		require.NoError(t, err)
		assert.Len(t, f.Params(), 2)

		one, err := chunk.New([]*types.LogicalType{intType})
		require.NoError(t, err)
		defer one.Close()
		out, err := chunk.NewVector(bigType, chunk.DefaultCapacity)
		require.NoError(t, err)
		require.ErrorIs(t, f.Invoke(one, out), ErrColumnCountMismatch)

		varchar := types.MustPrimitive(types.TypeVarchar)
		mixed, err := chunk.New([]*types.LogicalType{intType, varchar})
		require.NoError(t, err)
		defer mixed.Close()
		require.ErrorIs(t, f.Invoke(mixed, out), ErrInvalidCast)

		wrongOut, err := chunk.NewVector(varchar, chunk.DefaultCapacity)
		require.NoError(t, err)
		two, err := chunk.New([]*types.LogicalType{intType, intType})
		require.NoError(t, err)
		defer two.Close()
		require.ErrorIs(t, f.Invoke(two, wrongOut), ErrInvalidCast)
		require.ErrorIs(t, f.Invoke(nil, out), ErrInvalidOperation)
	})
}
