// Package absexec statically decides which runtime exceptions a method may
// raise by interpreting its bytecode over a sign domain of integers.
//
// Example:
//
//	m := absint.NewMethod("div", []absint.TypeTag{absint.TypeInt, absint.TypeInt},
//		absint.Load(0), absint.Load(1), absint.Binary(absint.Div), absint.Return(absint.TypeInt))
//	res, err := absexec.Analyze(ctx, m, []absexec.Value{absexec.AnyInt(), absexec.AnyInt()}, absexec.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Possible) // [java.lang.ArithmeticException]
package absexec

import (
	"context"
	"fmt"

	absint "github.com/wcbup/Abstract-Interpretation"
)

// Analyze runs m to exhaustion or until opts.MaxRounds rounds have run.
func Analyze(ctx context.Context, m *absint.Method, params []Value, opts Options) (*Result, error) {
	in, err := New(m, params, opts)
	if err != nil {
		return nil, err
	}
	return in.Run(ctx, opts.MaxRounds)
}

// DefaultParameters returns AnyInt for every parameter of m. Only int and
// boolean parameters are modeled.
func DefaultParameters(m *absint.Method) ([]Value, error) {
	params := make([]Value, len(m.Params))
	for i, t := range m.Params {
		switch t {
		case absint.TypeInt:
			params[i] = AnyInt()
		case absint.TypeBoolean:
			params[i] = NonNegative()
		default:
			return nil, fmt.Errorf("%w: parameter %d of %s has type %q", ErrUnsupported, i, m.ID(), t)
		}
	}
	return params, nil
}

// String returns a one-line summary of the result for debugging.
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Result{%s confirmed=%v possible=%v rounds=%d halt=%s terminal=%d}",
		r.Method, r.Confirmed, r.Possible, r.Rounds, r.Halt, r.TerminalCount())
}
