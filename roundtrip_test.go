package duckvec_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/memengine"
	"github.com/hupe1980/duckvec/testutil"
)

var roundTripTypes = []string{
	"BOOLEAN", "TINYINT", "SMALLINT", "INTEGER", "BIGINT",
	"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT",
	"FLOAT", "DOUBLE", "VARCHAR", "BLOB",
	"DECIMAL(4,1)", "DECIMAL(9,3)", "DECIMAL(18,6)", "DECIMAL(38,10)",
	"HUGEINT", "UHUGEINT", "VARINT", "UUID",
	"DATE", "TIME", "TIMETZ", "TIMESTAMP", "TIMESTAMPTZ",
	"TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS", "INTERVAL",
	"ENUM('red', 'green', 'blue')", "BIT",
	"INTEGER[]", "VARCHAR[][]", "DOUBLE[3]",
	"STRUCT(a INTEGER, b VARCHAR[], c STRUCT(d UUID))",
	"MAP(VARCHAR, DECIMAL(9,2))", "MAP(INTEGER, INTEGER[])",
}

func TestRoundTrip(t *testing.T) {
	for _, ct := range []memengine.Compression{memengine.CompressionNone, memengine.CompressionZSTD} {
		t.Run(ct.String(), func(t *testing.T) {
			e := memengine.New(memengine.WithCompression(ct))
			defer e.Close()

			cols := make([]memengine.Column, len(roundTripTypes))
			for i, typ := range roundTripTypes {
				cols[i] = memengine.Column{Name: fmt.Sprintf("c%d", i), Type: typ}
			}
			tbl, err := e.CreateTable("t", cols...)
			require.NoError(t, err)

			rng := testutil.NewRNG(4711)
			want := make([][]any, 3000)
			for i := range want {
				want[i] = rng.Row(tbl.ColumnTypes(), 0.1)
			}

			app, err := duckvec.NewAppender(tbl.Destination(), duckvec.WithChunkCapacity(1024))
			require.NoError(t, err)
			for i, vals := range want {
				row, err := app.BeginRow()
				require.NoError(t, err)
				for col, v := range vals {
					require.NoError(t, row.Append(v), "row %d column %s", i, roundTripTypes[col])
				}
				require.NoError(t, row.EndRow())
			}
			require.NoError(t, app.Close())

			got, err := tbl.Rowset()
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				for col := range want[i] {
					require.True(t, testutil.Equal(want[i][col], got[i][col]),
						"row %d column %s: wrote %#v, read %#v", i, roundTripTypes[col], want[i][col], got[i][col])
				}
			}
		})
	}
}

func TestRNGReset(t *testing.T) {
	rng := testutil.NewRNG(1)
	first := rng.String(20)
	rng.Reset()
	require.Equal(t, first, rng.String(20))
	require.Equal(t, int64(1), rng.Seed())
}
