package absexec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	absint "github.com/wcbup/Abstract-Interpretation"
)

var cmpEmpty = cmpopts.EquateEmpty()

// Bytecode below mirrors what javac emits for the Arithmetics test cases;
// instructions after an AssertionError construction are never reached and
// are kept as unmodeled opcodes.

func unmodeled(name string) absint.Instruction {
	return absint.Instruction{Op: absint.OpUnknown, Name: name}
}

func assertionFailure() []absint.Instruction {
	return []absint.Instruction{
		absint.NewObject("java/lang/AssertionError"),
		unmodeled("dup"),
		unmodeled("invoke"),
		unmodeled("throw"),
	}
}

// return 4 / 0;
func alwaysThrows1() *absint.Method {
	return absint.NewMethod("alwaysThrows1", nil,
		absint.Push(4),
		absint.Push(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// int k = 3; k -= k; return i / k;
func alwaysThrows2() *absint.Method {
	return absint.NewMethod("alwaysThrows2", int1,
		absint.Push(3),
		absint.Store(1),
		absint.Load(1),
		absint.Load(1),
		absint.Binary(absint.Sub),
		absint.Store(1),
		absint.Load(0),
		absint.Load(1),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// if (i > 0) { j = 12; } else { i = -i; } return j / i;
func alwaysThrows5() *absint.Method {
	return absint.NewMethod("alwaysThrows5", int2,
		absint.Load(0),
		absint.IfZ(absint.Le, 5),
		absint.Push(12),
		absint.Store(1),
		absint.Goto(8),
		absint.Load(0),
		absint.Negate(),
		absint.Store(0),
		absint.Load(1),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// int i = 3; i--; return 2 / i;
func itDependsOnLattice1() *absint.Method {
	return absint.NewMethod("itDependsOnLattice1", nil,
		absint.Push(3),
		absint.Store(0),
		absint.Incr(0, -1),
		absint.Push(2),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// int i = -1000; i += 2; return 998 / i;
func itDependsOnLattice2() *absint.Method {
	return absint.NewMethod("itDependsOnLattice2", nil,
		absint.Push(-1000),
		absint.Store(0),
		absint.Incr(0, 2),
		absint.Push(998),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// int i = 0; i++; i--; return 998 / i;
func itDependsOnLattice4() *absint.Method {
	return absint.NewMethod("itDependsOnLattice4", nil,
		absint.Push(0),
		absint.Store(0),
		absint.Incr(0, 1),
		absint.Incr(0, -1),
		absint.Push(998),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// int i = 3; return 0 / i;
func neverThrows1() *absint.Method {
	return absint.NewMethod("neverThrows1", nil,
		absint.Push(3),
		absint.Store(0),
		absint.Push(0),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// assert i > 0; return 0 / i;
func neverThrows2() *absint.Method {
	code := []absint.Instruction{
		absint.GetStatic("eu/bogoe/dtu/exceptional/Arithmetics", "$assertionsDisabled"),
		absint.IfZ(absint.Ne, 8),
		absint.Load(0),
		absint.IfZ(absint.Gt, 8),
	}
	code = append(code, assertionFailure()...)
	code = append(code,
		absint.Push(0),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
	return absint.NewMethod("neverThrows2", int1, code...)
}

// assert i > 0 && i < 0; return 0 / i;
func neverThrows4() *absint.Method {
	code := []absint.Instruction{
		absint.GetStatic("eu/bogoe/dtu/exceptional/Arithmetics", "$assertionsDisabled"),
		absint.IfZ(absint.Ne, 11),
		absint.Load(0),
		absint.IfZ(absint.Le, 7),
		absint.Load(0),
		absint.IfZ(absint.Ge, 7),
		absint.Goto(11),
	}
	code = append(code, assertionFailure()...)
	code = append(code,
		absint.Push(0),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
	return absint.NewMethod("neverThrows4", int1, code...)
}

// if (i >= 0) { i++; } else { i = -i; } return j / i;
func neverThrows5() *absint.Method {
	return absint.NewMethod("neverThrows5", int2,
		absint.Load(0),
		absint.IfZ(absint.Lt, 4),
		absint.Incr(0, 1),
		absint.Goto(7),
		absint.Load(0),
		absint.Negate(),
		absint.Store(0),
		absint.Load(1),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

// int i = 3; while (i > 0) { i--; } return i / i;
func speedVsPrecision(start int64) *absint.Method {
	return absint.NewMethod("speedVsPrecision", nil,
		absint.Push(start),
		absint.Store(0),
		absint.Load(0),
		absint.IfZ(absint.Le, 6),
		absint.Incr(0, -1),
		absint.Goto(2),
		absint.Load(0),
		absint.Load(0),
		absint.Binary(absint.Div),
		absint.Return(absint.TypeInt),
	)
}

func TestArithmeticsCases(t *testing.T) {
	arith := []Exception{ArithmeticException}
	tests := []struct {
		name      string
		method    *absint.Method
		confirmed []Exception
		possible  []Exception
		terminal  map[Status]int
	}{
		{"alwaysThrows1", alwaysThrows1(), arith, nil, map[Status]int{Faulted: 1}},
		{"alwaysThrows2", alwaysThrows2(), arith, nil, map[Status]int{Faulted: 1}},
		{"alwaysThrows5", alwaysThrows5(), nil, arith, map[Status]int{Returned: 2}},
		{"itDependsOnLattice1", itDependsOnLattice1(), nil, nil, map[Status]int{Returned: 1}},
		{"itDependsOnLattice2", itDependsOnLattice2(), nil, nil, map[Status]int{Returned: 1}},
		{"itDependsOnLattice4", itDependsOnLattice4(), arith, nil, map[Status]int{Faulted: 1}},
		{"neverThrows1", neverThrows1(), nil, nil, map[Status]int{Returned: 1}},
		{"neverThrows2", neverThrows2(), nil, nil, map[Status]int{Returned: 1, AssertionFailed: 1}},
		{"neverThrows4", neverThrows4(), nil, nil, map[Status]int{AssertionFailed: 2}},
		{"neverThrows5", neverThrows5(), nil, nil, map[Status]int{Returned: 2}},
		{"speedVsPrecision", speedVsPrecision(3), arith, nil, map[Status]int{Faulted: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := DefaultParameters(tt.method)
			if err != nil {
				t.Fatalf("DefaultParameters: %v", err)
			}
			res := analyze(t, tt.method, params, quietOptions())
			if diff := cmp.Diff(tt.confirmed, res.Confirmed, cmpEmpty); diff != "" {
				t.Errorf("confirmed mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.possible, res.Possible, cmpEmpty); diff != "" {
				t.Errorf("possible mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.terminal, res.Terminal); diff != "" {
				t.Errorf("terminal states mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpeedVsPrecision_BudgetTooSmall(t *testing.T) {
	opts := quietOptions()
	opts.MaxRounds = 25
	res := analyze(t, speedVsPrecision(100000), nil, opts)
	if res.Halt != HaltBudget || res.Rounds != 25 {
		t.Fatalf("expected budget halt at 25 rounds, got %s at %d", res.Halt, res.Rounds)
	}
	if len(res.Confirmed) != 0 || len(res.Possible) != 0 {
		t.Errorf("expected no findings before the loop ends, got %v / %v", res.Confirmed, res.Possible)
	}
}

func TestReturnValuesAreCollected(t *testing.T) {
	res := analyze(t, itDependsOnLattice1(), nil, quietOptions())
	if diff := cmp.Diff([]Value{Exact(1)}, res.ReturnValues); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
}
