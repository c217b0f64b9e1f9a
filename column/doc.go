// Package column reads and writes single vectors.
//
// A Reader turns the slots of one vector into Go values; a Writer packs Go
// values into them. Both are bound to the generation of their vector and fail
// with ErrInvalidOperation once the owning chunk is reset or closed, until
// Rebind is called.
//
// # Reading
//
// Value returns the default Go mapping of a row:
//
//	BOOLEAN                 bool
//	TINYINT..UBIGINT        int8..uint64
//	FLOAT, DOUBLE           float32, float64
//	HUGEINT, UHUGEINT       *big.Int
//	VARINT                  *big.Int
//	DECIMAL                 decimal.Decimal
//	VARCHAR, ENUM           string
//	BLOB                    []byte
//	BIT                     string of '0' and '1'
//	DATE, TIME, TIMESTAMP*  time.Time (UTC)
//	TIME WITH TIME ZONE     time.Time (fixed zone)
//	INTERVAL                chunk.Interval
//	UUID                    uuid.UUID
//	LIST, ARRAY             []any
//	STRUCT                  map[string]any
//	MAP                     Map
//
// Read[T] and Convert produce any other compatible type with checked
// conversions. NULL reads as the zero value of pointer, interface, slice and
// map targets and fails with ErrInvalidCast for every other target.
package column
