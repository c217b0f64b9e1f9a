// Package conv provides checked numeric conversions.
//
// Every function either returns the exact value in the target width or fails
// with ErrOverflow. Nothing clamps and nothing wraps.
//
// Use cases:
//   - Narrowing a column's storage value to the host type a caller asked for
//   - Narrowing a host value to a column's storage width before it is written
//   - Converting slot offsets and lengths between int and fixed-width types
//
// Floating point sources are rounded half-to-even before the range check, so
// 2.5 narrows to 2 and 3.5 to 4. NaN and infinities never convert to integers.
package conv
