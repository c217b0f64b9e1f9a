// Package chunk models the engine's columnar batches.
//
// A Chunk is a set of column vectors with a fixed row capacity (2048 by
// default) and a current size. A Vector owns a data buffer of fixed-width
// slots, an optional validity bitmap, an out-of-line heap for long strings and
// the child vectors of nested types.
//
// # Layout
//
// Buffers follow the engine's in-memory conventions byte for byte, in the
// host's native byte order:
//
//   - validity: []uint64, bit row%64 of word row/64, 1 = valid; nil = all valid
//   - VARCHAR/BLOB/BIT/VARINT: 16-byte header, uint32 length, payloads of up to
//     12 bytes inline, longer ones as a 4-byte prefix plus a heap reference
//   - LIST/MAP: {offset uint64, length uint64} into the single child vector
//   - ARRAY: element i of row r lives at child row r*size+i
//   - STRUCT: one child per field, same row index, no data of its own
//   - HUGEINT: {lower uint64, upper int64}; UUID: HUGEINT with the top bit flipped
//   - INTERVAL: {months int32, days int32, micros int64}
//
// # Lifecycle
//
// Reset empties a chunk for the next batch and Close releases it. Both bump
// the generation of every vector; views bound to an older generation must be
// rebound.
package chunk
