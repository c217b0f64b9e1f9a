// Package codec moves rows between chunks and JSON text.
//
// A Codec encodes one value. LineSource turns JSON lines into rows for
// duckvec.BulkCopy, and WriteLines renders the rows of a chunk as JSON
// lines.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// NumberDecoder is implemented by codecs that can decode JSON numbers
// without going through float64.
type NumberDecoder interface {
	UnmarshalNumbers(data []byte, v any) error
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and samples.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used when none is given.
var Default Codec = GoJSON{}
