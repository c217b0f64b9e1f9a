package chunk

import (
	"testing"

	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *types.LogicalType {
	t.Helper()
	lt, err := types.Parse(s)
	require.NoError(t, err)
	return lt
}

func TestChunk_Lifecycle(t *testing.T) {
	c, err := New([]*types.LogicalType{mustParse(t, "INTEGER"), mustParse(t, "VARCHAR")})
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, c.Capacity())
	assert.Equal(t, 2, c.ColumnCount())

	require.NoError(t, c.SetSize(10))
	assert.Equal(t, 10, c.Size())
	assert.ErrorIs(t, c.SetSize(DefaultCapacity+1), errs.ErrOutOfRange)

	v, err := c.Vector(1)
	require.NoError(t, err)
	gen := v.Generation()
	require.NoError(t, v.SetNull(3))

	require.NoError(t, c.Reset())
	assert.Equal(t, 0, c.Size())
	assert.NotEqual(t, gen, v.Generation())
	assert.Nil(t, v.Validity())

	_, err = c.Vector(2)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)

	c.Close()
	c.Close()
	assert.True(t, c.Closed())
	assert.True(t, v.Closed())
	_, err = c.Vector(0)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	assert.ErrorIs(t, c.Reset(), errs.ErrInvalidOperation)
	_, err = v.Slot(0)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestChunk_CustomCapacity(t *testing.T) {
	c, err := New([]*types.LogicalType{mustParse(t, "BIGINT")}, WithCapacity(16))
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Vector(0)
	require.NoError(t, err)
	assert.Len(t, v.Data(), 16*8)
	_, err = v.Slot(16)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = v.Slot(-1)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestChunk_ReleasedType(t *testing.T) {
	lt := mustParse(t, "INTEGER")
	require.NoError(t, lt.Release())
	_, err := New([]*types.LogicalType{lt})
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}
