package duckvec

import (
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/column"
	"github.com/hupe1980/duckvec/internal/errs"
	"github.com/hupe1980/duckvec/types"
)

// ScalarFunc computes one output row per input row. rows is the input
// chunk's size.
type ScalarFunc func(args []*column.Reader, out *column.Writer, rows int) error

// ScalarFunction is a user-defined scalar function over columnar input.
type ScalarFunction struct {
	name    string
	params  []*types.LogicalType
	ret     *types.LogicalType
	varargs bool
	fn      ScalarFunc
}

// NewScalarFunction binds fn. With varargs exactly one parameter type is
// allowed and every input column must have that type.
func NewScalarFunction(name string, fn ScalarFunc, ret *types.LogicalType, varargs bool, params ...*types.LogicalType) (*ScalarFunction, error) {
	if fn == nil {
		return nil, errs.Invalid("scalar function %q has no implementation", name)
	}
	if ret == nil {
		return nil, errs.Invalid("scalar function %q has no return type", name)
	}
	if varargs && len(params) != 1 {
		return nil, errs.Invalid("cannot use varargs with %d parameters", len(params))
	}
	return &ScalarFunction{name: name, params: params, ret: ret, varargs: varargs, fn: fn}, nil
}

// Name returns the function name.
func (f *ScalarFunction) Name() string { return f.name }

// ReturnType returns the result type.
func (f *ScalarFunction) ReturnType() *types.LogicalType { return f.ret }

// Params returns the parameter types.
func (f *ScalarFunction) Params() []*types.LogicalType { return f.params }

// Varargs reports whether the function takes a variable argument count.
func (f *ScalarFunction) Varargs() bool { return f.varargs }

// Invoke binds readers to the input columns and a writer to out, then runs
// the function.
func (f *ScalarFunction) Invoke(input *chunk.Chunk, out *chunk.Vector) error {
	if input == nil || out == nil {
		return errs.Invalid("scalar function %q needs input and output", f.name)
	}
	n := input.ColumnCount()
	if !f.varargs && n != len(f.params) {
		return &ColumnCountMismatchError{Table: f.name, Expected: len(f.params), Actual: n}
	}
	if !out.Type().Equal(f.ret) {
		return errs.NewInvalidCast(out.Type().String(), f.ret.String(), f.name, nil)
	}
	if out.Capacity() < input.Size() {
		return errs.OutOfRange("output vector of %d rows for %d input rows", out.Capacity(), input.Size())
	}

	args := make([]*column.Reader, n)
	for i := range args {
		want := f.params[0]
		if !f.varargs {
			want = f.params[i]
		}
		vec, err := input.Vector(i)
		if err != nil {
			return err
		}
		if !vec.Type().Equal(want) {
			return errs.NewInvalidCast(vec.Type().String(), want.String(), f.name, nil)
		}
		if args[i], err = column.NewReader(vec, ""); err != nil {
			return err
		}
	}
	w, err := column.NewWriter(out, f.name)
	if err != nil {
		return err
	}
	return f.fn(args, w, input.Size())
}
