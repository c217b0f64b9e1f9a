package chunk

import (
	"strings"
	"testing"

	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_Validity(t *testing.T) {
	v, err := NewVector(mustParse(t, "INTEGER"), 130)
	require.NoError(t, err)

	assert.Nil(t, v.Validity())
	assert.True(t, v.IsValid(0))
	assert.False(t, v.IsValid(130))

	require.NoError(t, v.SetNull(65))
	require.Len(t, v.Validity(), 3)
	assert.False(t, v.IsValid(65))
	assert.True(t, v.IsValid(64))
	assert.True(t, v.IsValid(66))
	assert.Equal(t, ^uint64(1<<1), v.Validity()[1])

	require.NoError(t, v.SetValid(65))
	assert.True(t, v.IsValid(65))

	assert.ErrorIs(t, v.SetNull(130), errs.ErrOutOfRange)
}

func TestVector_Strings(t *testing.T) {
	v, err := NewVector(mustParse(t, "VARCHAR"), 4)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"inline", "hello"},
		{"inline boundary", "exactly12byt"},
		{"heap", "thirteen byte"},
		{"long", strings.Repeat("duck", 100)},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := i % v.Capacity()
			require.NoError(t, v.SetBytes(row, []byte(tt.in)))
			got, err := v.Bytes(row)
			require.NoError(t, err)
			assert.Equal(t, tt.in, string(got))

			slot, err := v.Slot(row)
			require.NoError(t, err)
			assert.Equal(t, uint32(len(tt.in)), ByteOrder.Uint32(slot[:4]))
			if len(tt.in) > InlineThreshold {
				assert.Equal(t, tt.in[:4], string(slot[4:8]))
				assert.NotZero(t, ByteOrder.Uint64(slot[8:16]))
			}
		})
	}

	t.Run("corrupt heap reference", func(t *testing.T) {
		slot, err := v.Slot(0)
		require.NoError(t, err)
		ByteOrder.PutUint32(slot[:4], 100)
		ByteOrder.PutUint64(slot[8:16], 1<<40)
		_, err = v.Bytes(0)
		assert.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("not a string vector", func(t *testing.T) {
		iv, err := NewVector(mustParse(t, "INTEGER"), 1)
		require.NoError(t, err)
		assert.ErrorIs(t, iv.SetBytes(0, []byte("x")), errs.ErrInvalidOperation)
	})
}

func TestVector_List(t *testing.T) {
	v, err := NewVector(mustParse(t, "INTEGER[]"), 4)
	require.NoError(t, err)
	child := v.Children()[0]
	assert.Equal(t, 4, child.Capacity())

	require.NoError(t, v.ReserveChild(10))
	assert.GreaterOrEqual(t, child.Capacity(), 10)

	require.NoError(t, v.SetListEntry(1, 3, 7))
	require.NoError(t, v.SetListSize(10))
	off, n, err := v.ListEntry(1)
	require.NoError(t, err)
	assert.Equal(t, 3, off)
	assert.Equal(t, 7, n)

	slot, err := v.Slot(2)
	require.NoError(t, err)
	ByteOrder.PutUint64(slot[0:8], 1000)
	ByteOrder.PutUint64(slot[8:16], 1)
	_, _, err = v.ListEntry(2)
	assert.ErrorIs(t, err, errs.ErrCorruptData)

	assert.ErrorIs(t, v.SetListSize(child.Capacity()+1), errs.ErrOutOfRange)
}

func TestVector_ChildGrowthKeepsValidity(t *testing.T) {
	v, err := NewVector(mustParse(t, "STRUCT(a INTEGER, b VARCHAR)[]"), 2)
	require.NoError(t, err)
	child := v.Children()[0]
	require.NoError(t, child.Children()[0].SetNull(1))

	require.NoError(t, v.ReserveChild(100))
	assert.Equal(t, 100, child.Children()[0].Capacity())
	assert.False(t, child.Children()[0].IsValid(1))
	assert.True(t, child.Children()[0].IsValid(99))
}

func TestVector_Array(t *testing.T) {
	v, err := NewVector(mustParse(t, "DOUBLE[3]"), 8)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Width())
	assert.Equal(t, 24, v.Children()[0].Capacity())
	_, err = v.Slot(0)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestVector_ExportImport(t *testing.T) {
	src, err := NewVector(mustParse(t, "VARCHAR[]"), 4)
	require.NoError(t, err)
	require.NoError(t, src.ReserveChild(3))
	child := src.Children()[0]
	require.NoError(t, child.SetBytes(0, []byte("a much longer string value")))
	require.NoError(t, child.SetBytes(1, []byte("b")))
	require.NoError(t, child.SetNull(2))
	require.NoError(t, src.SetListEntry(0, 0, 3))
	require.NoError(t, src.SetListSize(3))
	require.NoError(t, src.SetNull(1))

	state, err := src.Export(2)
	require.NoError(t, err)

	dst, err := NewVector(mustParse(t, "VARCHAR[]"), 1)
	require.NoError(t, err)
	require.NoError(t, dst.Import(state, 2))

	assert.Equal(t, 2, dst.Capacity())
	assert.False(t, dst.IsValid(1))
	off, n, err := dst.ListEntry(0)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, 3, n)

	got, err := dst.Children()[0].Bytes(0)
	require.NoError(t, err)
	assert.Equal(t, "a much longer string value", string(got))
	assert.False(t, dst.Children()[0].IsValid(2))
}
