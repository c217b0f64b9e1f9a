package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/column"
)

const maxLineSize = 16 << 20

// LineSource reads rows from JSON lines. It implements duckvec.RowSource.
//
// A line holding an array is a positional row; a line holding an object is
// matched to the columns by key, with missing keys read as NULL. Blank lines
// are skipped. Integral numbers become int64 (or *big.Int beyond 64 bits),
// other numbers become decimal.Decimal so DECIMAL columns keep every digit.
type LineSource struct {
	sc      *bufio.Scanner
	codec   Codec
	columns []string
	index   map[string]int
	line    int
}

var _ duckvec.RowSource = (*LineSource)(nil)

// NewLineSource reads rows from r. Without columns the first non-blank line
// must be a JSON array of column names.
func NewLineSource(r io.Reader, c Codec, columns ...string) (*LineSource, error) {
	if c == nil {
		c = Default
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s := &LineSource{sc: sc, codec: c}

	if len(columns) == 0 {
		line, err := s.nextLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("missing column header line")
			}
			return nil, err
		}
		if err := c.Unmarshal(line, &columns); err != nil {
			return nil, fmt.Errorf("line %d: column header: %w", s.line, err)
		}
	}
	s.columns = columns
	s.index = make(map[string]int, len(columns))
	for i, name := range columns {
		s.index[name] = i
	}
	return s, nil
}

// Columns returns the column names.
func (s *LineSource) Columns() []string { return s.columns }

// Line returns the number of the last line read.
func (s *LineSource) Line() int { return s.line }

func (s *LineSource) nextLine() ([]byte, error) {
	for s.sc.Scan() {
		s.line++
		line := bytes.TrimSpace(s.sc.Bytes())
		if len(line) > 0 {
			return line, nil
		}
	}
	if err := s.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Next returns the next row, or io.EOF after the last one.
func (s *LineSource) Next() ([]any, error) {
	line, err := s.nextLine()
	if err != nil {
		return nil, err
	}

	var raw any
	if nd, ok := s.codec.(NumberDecoder); ok {
		err = nd.UnmarshalNumbers(line, &raw)
	} else {
		err = s.codec.Unmarshal(line, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", s.line, err)
	}

	switch v := raw.(type) {
	case []any:
		for i := range v {
			if v[i], err = normalize(v[i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", s.line, err)
			}
		}
		return v, nil
	case map[string]any:
		row := make([]any, len(s.columns))
		for k, val := range v {
			i, ok := s.index[k]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown column %q", s.line, k)
			}
			if row[i], err = normalize(val); err != nil {
				return nil, fmt.Errorf("line %d: %w", s.line, err)
			}
		}
		return row, nil
	default:
		return nil, fmt.Errorf("line %d: expected a JSON array or object, got %T", s.line, raw)
	}
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		if b, ok := new(big.Int).SetString(x.String(), 10); ok {
			return b, nil
		}
		return decimal.NewFromString(x.String())
	case []any:
		for i := range x {
			var err error
			if x[i], err = normalize(x[i]); err != nil {
				return nil, err
			}
		}
		return x, nil
	case map[string]any:
		for k, val := range x {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	}
	return v, nil
}

// WriteLines renders every row of r as one JSON object keyed by column
// name and returns the number of rows written.
func WriteLines(w io.Writer, r *duckvec.ChunkReader, c Codec) (int, error) {
	if c == nil {
		c = Default
	}
	bw := bufio.NewWriter(w)
	for row := range r.RowCount() {
		obj := make(map[string]any, r.ColumnCount())
		for col := range r.ColumnCount() {
			name, err := r.ColumnName(col)
			if err != nil {
				return row, err
			}
			v, err := r.Value(col, row)
			if err != nil {
				return row, err
			}
			obj[name] = jsonValue(v)
		}
		b, err := c.Marshal(obj)
		if err != nil {
			return row, err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return row, err
		}
	}
	return r.RowCount(), bw.Flush()
}

// jsonValue rewrites values JSON cannot hold: maps with non-string keys and
// non-finite floats.
func jsonValue(v any) any {
	switch x := v.(type) {
	case column.Map:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = jsonValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = jsonValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = jsonValue(val)
		}
		return out
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Sprint(x)
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Sprint(x)
		}
	}
	return v
}
