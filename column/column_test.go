package column

import (
	"math"
	"math/big"
	"reflect"
	"testing"

	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newColumn(t *testing.T, typ string, capacity int) (*chunk.Vector, *Reader, *Writer) {
	t.Helper()
	lt, err := types.Parse(typ)
	require.NoError(t, err)
	vec, err := chunk.NewVector(lt, capacity)
	require.NoError(t, err)
	r, err := NewReader(vec, "col")
	require.NoError(t, err)
	w, err := NewWriter(vec, "col")
	require.NoError(t, err)
	return vec, r, w
}

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	b, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return b
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func reflectValue(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return rv
}

func nan() float64 { return math.NaN() }
