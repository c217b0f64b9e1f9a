// Package arena provides the out-of-line byte heap owned by a vector.
//
// String, blob, bit and varint payloads longer than the inline threshold are
// copied into a Heap and referenced from their 16-byte slot by offset. The heap
// grows by reallocation; offsets stay valid across growth, slices returned by
// Get do not.
//
// # Memory Management
//
// Growth can be charged against a MemoryAcquirer (resource.Controller
// satisfies it). Reset keeps the buffer for reuse by the next batch; Release
// returns the charged memory.
//
// # Safety
//
// All methods return errors instead of panicking. Offset 0 is reserved as the
// null reference and is never handed out.
package arena
