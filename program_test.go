package absint

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOpcode(t *testing.T) {
	for op := OpPush; op <= OpReturn; op++ {
		if got := ParseOpcode(op.String()); got != op {
			t.Errorf("ParseOpcode(%q) = %v, want %v", op.String(), got, op)
		}
	}
	if got := ParseOpcode("invoke"); got != OpUnknown {
		t.Errorf("ParseOpcode(invoke) = %v, want unknown", got)
	}
}

func TestCondition_NegateAndFlip(t *testing.T) {
	for _, c := range []Condition{Eq, Ne, Gt, Ge, Lt, Le} {
		if c.Negate().Negate() != c {
			t.Errorf("%s: double negation changed the condition", c)
		}
		if c.Flip().Flip() != c {
			t.Errorf("%s: double flip changed the condition", c)
		}
	}
	if Gt.Flip() != Lt || Le.Negate() != Gt {
		t.Error("unexpected flip or negation of ordering relations")
	}
	if Condition("is").Valid() {
		t.Error("reference comparison reported as valid")
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Push(-3), "push -3"},
		{Instruction{Op: OpPush}, "push <non-int>"},
		{Load(1), "load:int 1"},
		{Binary(Rem), "binary:int rem"},
		{Incr(2, -1), "incr 2 by -1"},
		{If(Ge, 7), "if ge 7"},
		{NewObject("java/lang/AssertionError"), "new java/lang/AssertionError"},
		{Return(TypeNone), "return"},
		{Instruction{Name: "invoke"}, "invoke"},
		{Instruction{}, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMethod_Validate(t *testing.T) {
	m := NewMethod("bad", nil,
		Goto(5),
		IfZ(Condition("is"), 0),
		Load(-1),
		Return(TypeNone),
	)
	err := m.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"jump target 5", `unknown condition "is"`, "negative slot -1", "3 errors occurred"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error %q does not mention %q", err, want)
		}
	}

	ok := NewMethod("ok", nil, IfZ(Eq, 1), Return(TypeNone))
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestMethod_Unsupported(t *testing.T) {
	m := NewMethod("m", nil, Push(1), Instruction{Name: "dup"}, Return(TypeInt))
	err := m.Unsupported()
	if err == nil || !strings.Contains(err.Error(), `pc=1: unsupported opcode "dup"`) {
		t.Errorf("unexpected result %v", err)
	}
	if err := NewMethod("n", nil, Return(TypeNone)).Unsupported(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestProgram_Cases(t *testing.T) {
	p := NewProgram()
	mk := func(class, name string, isCase bool) *Method {
		m := NewMethod(name, nil, Return(TypeNone))
		m.Class = class
		if isCase {
			m.Annotations = []string{"java/lang/Deprecated", CaseAnnotation}
		}
		return m
	}
	p.Add(&Class{Name: "B", Methods: map[string]*Method{"z": mk("B", "z", true), "a": mk("B", "a", false)}})
	p.Add(&Class{Name: "A", Methods: map[string]*Method{"y": mk("A", "y", true)}})

	var ids []string
	for _, m := range p.Cases() {
		ids = append(ids, m.ID())
	}
	if diff := cmp.Diff([]string{"A.y", "B.z"}, ids); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "z"}, p.Classes["B"].MethodNames()); diff != "" {
		t.Errorf("method names mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.Method("C", "x"); err == nil {
		t.Error("expected error for unknown class")
	}
	if m, err := p.Method("A", "y"); err != nil || m.ID() != "A.y" {
		t.Errorf("Method(A, y) = %v, %v", m, err)
	}
}
