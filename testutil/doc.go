// Package testutil provides seeded random data for tests and benchmarks.
//
// Values are generated in the Go form a column reader returns by default,
// so a value written to a vector and read back compares equal to the
// generated one (see Equal).
//
//	rng := testutil.NewRNG(seed)
//	v := rng.Value(lt, 0.1) // 10% NULLs
//	row := rng.Row(columnTypes, 0)
package testutil
