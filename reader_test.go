package duckvec_test

import (
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/memengine"
)

func TestChunkReader(t *testing.T) {
	_, tbl := newTable(t,
		memengine.Column{Name: "id", Type: "INTEGER"},
		memengine.Column{Name: "payload", Type: "BLOB"},
		memengine.Column{Name: "tags", Type: "INTEGER[]"},
	)
	app, err := duckvec.NewAppender(tbl.Destination())
	require.NoError(t, err)
	for _, vals := range [][]any{
		{1, []byte("hello"), []int32{1, 2, 3}},
		{nil, nil, []int32{}},
		{3, []byte{}, nil},
	} {
		row, err := app.BeginRow()
		require.NoError(t, err)
		for _, v := range vals {
			require.NoError(t, row.Append(v))
		}
		require.NoError(t, row.EndRow())
	}
	require.NoError(t, app.Close())

	err = tbl.Scan(func(r *duckvec.ChunkReader) error {
		assert.Equal(t, 3, r.RowCount())
		assert.Equal(t, 3, r.ColumnCount())

		name, err := r.ColumnName(1)
		require.NoError(t, err)
		assert.Equal(t, "payload", name)
		ord, err := r.Ordinal("tags")
		require.NoError(t, err)
		assert.Equal(t, 2, ord)
		_, err = r.Ordinal("nope")
		require.ErrorIs(t, err, duckvec.ErrOutOfRange)
		typ, err := r.ColumnType(2)
		require.NoError(t, err)
		assert.Equal(t, "INTEGER[]", typ.String())

		null, err := r.IsNull(0, 1)
		require.NoError(t, err)
		assert.True(t, null)

		_, err = r.Value(0, 3)
		require.ErrorIs(t, err, duckvec.ErrOutOfRange)
		_, err = r.Value(5, 0)
		require.ErrorIs(t, err, duckvec.ErrOutOfRange)

		v, err := r.GetValue(0, 0, reflect.TypeOf(int64(0)))
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		_, err = duckvec.ReadValue[int32](r, 0, 1)
		require.ErrorIs(t, err, duckvec.ErrInvalidCast)
		p, err := duckvec.ReadValue[*int32](r, 0, 1)
		require.NoError(t, err)
		assert.Nil(t, p)

		tags, err := duckvec.ReadValue[[]int32](r, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{}, tags)

		stream, err := r.Stream(1, 0)
		require.NoError(t, err)
		data, err := io.ReadAll(stream)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)

		stream, err = r.Stream(1, 1)
		require.NoError(t, err)
		assert.Nil(t, stream)

		_, err = r.Stream(0, 0)
		require.ErrorIs(t, err, duckvec.ErrInvalidCast)

		nulls, err := r.Nulls(2)
		require.NoError(t, err)
		assert.Equal(t, []uint32{2}, nulls.ToArray())

		row, err := r.Row(0)
		require.NoError(t, err)
		assert.Equal(t, []any{int32(1), []byte("hello"), []any{int32(1), int32(2), int32(3)}}, row)
		return nil
	})
	require.NoError(t, err)
}

func TestChunkReaderStale(t *testing.T) {
	_, tbl := newTable(t, memengine.Column{Name: "id", Type: "INTEGER"})
	app, err := duckvec.NewAppender(tbl.Destination(), duckvec.WithChunkCapacity(1))
	require.NoError(t, err)
	for i := range 2 {
		row, err := app.BeginRow()
		require.NoError(t, err)
		require.NoError(t, row.Append(i))
		require.NoError(t, row.EndRow())
	}
	require.NoError(t, app.Close())

	var kept *duckvec.ChunkReader
	err = tbl.Scan(func(r *duckvec.ChunkReader) error {
		kept = r
		return nil
	})
	require.NoError(t, err)

	_, err = kept.Value(0, 0)
	require.ErrorIs(t, err, duckvec.ErrInvalidOperation)
}
