package codec

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/memengine"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestLineSource(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			input := strings.Join([]string{
				`["id","price","tags"]`,
				`[1, 9.99, ["a"]]`,
				``,
				`{"price": 0.1, "id": 12345678901234567890123}`,
				`{"id": 3}`,
			}, "\n")
			src, err := NewLineSource(strings.NewReader(input), c)
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "price", "tags"}, src.Columns())

			row, err := src.Next()
			require.NoError(t, err)
			assert.Equal(t, int64(1), row[0])
			assert.True(t, decimal.RequireFromString("9.99").Equal(row[1].(decimal.Decimal)))
			assert.Equal(t, []any{"a"}, row[2])

			row, err = src.Next()
			require.NoError(t, err)
			assert.Equal(t, 4, src.Line())
			assert.Equal(t, "12345678901234567890123", row[0].(interface{ String() string }).String())
			assert.Nil(t, row[2])

			row, err = src.Next()
			require.NoError(t, err)
			assert.Equal(t, []any{int64(3), nil, nil}, row)

			_, err = src.Next()
			require.ErrorIs(t, err, io.EOF)
		})
	}

	t.Run("Errors", func(t *testing.T) {
		_, err := NewLineSource(strings.NewReader(""), nil)
		require.Error(t, err)

		src, err := NewLineSource(strings.NewReader(`{"nope": 1}`+"\n"+`42`+"\n"+`{bad`), nil, "id")
		require.NoError(t, err)
		_, err = src.Next()
		require.ErrorContains(t, err, "line 1")
		_, err = src.Next()
		require.ErrorContains(t, err, "line 2")
		_, err = src.Next()
		require.ErrorContains(t, err, "line 3")
	})
}

func TestBulkCopyRoundTrip(t *testing.T) {
	e := memengine.New()
	defer e.Close()
	tbl, err := e.CreateTable("items",
		memengine.Column{Name: "id", Type: "BIGINT"},
		memengine.Column{Name: "price", Type: "DECIMAL(10,2)"},
		memengine.Column{Name: "attrs", Type: "MAP(VARCHAR, INTEGER)"},
	)
	require.NoError(t, err)

	input := `{"id": 1, "price": 9.99, "attrs": {"x": 1}}
{"id": 2, "price": 0.5}
`
	src, err := NewLineSource(strings.NewReader(input), GoJSON{}, "id", "price", "attrs")
	require.NoError(t, err)
	copied, err := duckvec.NewBulkCopy(tbl.Destination()).WriteToServer(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(2), copied)

	var out bytes.Buffer
	err = tbl.Scan(func(r *duckvec.ChunkReader) error {
		_, err := WriteLines(&out, r, JSON{})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"attrs":{"x":1},"id":1,"price":"9.99"}`+"\n"+`{"attrs":null,"id":2,"price":"0.5"}`+"\n",
		out.String())
}

func BenchmarkLineSource(b *testing.B) {
	var buf bytes.Buffer
	for i := range 1000 {
		buf.WriteString(`{"id": `)
		buf.WriteString(strings.Repeat("1", 1+i%9))
		buf.WriteString(`, "title": "hello duckvec", "score": 0.12345, "tags": ["a", "b", "c"]}` + "\n")
	}
	data := buf.Bytes()

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b.Run(c.Name(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				src, err := NewLineSource(bytes.NewReader(data), c, "id", "title", "score", "tags")
				if err != nil {
					b.Fatal(err)
				}
				for {
					if _, err := src.Next(); err != nil {
						if err == io.EOF {
							break
						}
						b.Fatal(err)
					}
				}
			}
		})
	}
}
