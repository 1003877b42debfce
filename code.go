package absint

import (
	"fmt"
	"strings"
)

// Opcode identifies the operation of a bytecode instruction.
type Opcode int

const (
	OpUnknown Opcode = iota
	OpPush
	OpLoad
	OpStore
	OpGet
	OpBinary
	OpNegate
	OpIncr
	OpGoto
	OpIf
	OpIfZ
	OpNew
	OpReturn
)

func (op Opcode) String() string {
	switch op {
	case OpUnknown:
		return "unknown"
	case OpPush:
		return "push"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpGet:
		return "get"
	case OpBinary:
		return "binary"
	case OpNegate:
		return "negate"
	case OpIncr:
		return "incr"
	case OpGoto:
		return "goto"
	case OpIf:
		return "if"
	case OpIfZ:
		return "ifz"
	case OpNew:
		return "new"
	case OpReturn:
		return "return"
	default:
		panic(op)
	}
}

// ParseOpcode maps the "opr" tag of a jvm2json instruction to an Opcode.
// Tags that are not modeled return OpUnknown.
func ParseOpcode(s string) Opcode {
	switch s {
	case "push":
		return OpPush
	case "load":
		return OpLoad
	case "store":
		return OpStore
	case "get":
		return OpGet
	case "binary":
		return OpBinary
	case "negate":
		return OpNegate
	case "incr":
		return OpIncr
	case "goto":
		return OpGoto
	case "if":
		return OpIf
	case "ifz":
		return OpIfZ
	case "new":
		return OpNew
	case "return":
		return OpReturn
	default:
		return OpUnknown
	}
}

// IsJump reports whether the opcode sets the program counter itself.
func (op Opcode) IsJump() bool {
	return op == OpGoto || op == OpIf || op == OpIfZ
}

// BinaryOp is the arithmetic operator of a binary instruction.
type BinaryOp string

const (
	Add BinaryOp = "add"
	Sub BinaryOp = "sub"
	Mul BinaryOp = "mul"
	Div BinaryOp = "div"
	Rem BinaryOp = "rem"
)

// Condition is the relation tested by if/ifz.
type Condition string

const (
	Eq Condition = "eq"
	Ne Condition = "ne"
	Gt Condition = "gt"
	Ge Condition = "ge"
	Lt Condition = "lt"
	Le Condition = "le"
)

// Negate returns the relation that holds exactly when c does not.
func (c Condition) Negate() Condition {
	switch c {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Gt:
		return Le
	case Ge:
		return Lt
	case Lt:
		return Ge
	case Le:
		return Gt
	default:
		return c
	}
}

// Flip returns the relation with its operands swapped: a c b == b c.Flip() a.
func (c Condition) Flip() Condition {
	switch c {
	case Gt:
		return Lt
	case Ge:
		return Le
	case Lt:
		return Gt
	case Le:
		return Ge
	default:
		return c
	}
}

// Valid reports whether c is one of the six integer relations.
func (c Condition) Valid() bool {
	switch c {
	case Eq, Ne, Gt, Ge, Lt, Le:
		return true
	}
	return false
}

// TypeTag is the optional primitive type carried by an instruction.
// The empty tag means "none" (for example a void return).
type TypeTag string

const (
	TypeNone    TypeTag = ""
	TypeInt     TypeTag = "int"
	TypeBoolean TypeTag = "boolean"
)

// FieldRef names a field read by a get instruction.
type FieldRef struct {
	Class string
	Name  string
	Type  TypeTag
}

// Instruction is one decoded bytecode operation. Only the fields relevant to
// Op are meaningful.
type Instruction struct {
	Op        Opcode
	Name      string // raw "opr" tag, kept for unknown opcodes
	Type      TypeTag
	Index     int   // local slot for load/store/incr
	Value     int64 // constant for push
	HasValue  bool  // false for non-integer constants such as null
	Amount    int64 // increment for incr
	Target    int   // absolute instruction index for goto/if/ifz
	Operator  BinaryOp
	Condition Condition
	Static    bool
	Field     FieldRef
	Class     string // constructed type for new
}

func (in Instruction) String() string {
	var b strings.Builder
	if in.Op == OpUnknown {
		b.WriteString(in.Name)
		if in.Name == "" {
			b.WriteString("unknown")
		}
		return b.String()
	}
	b.WriteString(in.Op.String())
	switch in.Op {
	case OpPush:
		if in.HasValue {
			fmt.Fprintf(&b, " %d", in.Value)
		} else {
			b.WriteString(" <non-int>")
		}
	case OpLoad, OpStore:
		fmt.Fprintf(&b, ":%s %d", in.Type, in.Index)
	case OpBinary:
		fmt.Fprintf(&b, ":%s %s", in.Type, in.Operator)
	case OpNegate:
		fmt.Fprintf(&b, ":%s", in.Type)
	case OpIncr:
		fmt.Fprintf(&b, " %d by %d", in.Index, in.Amount)
	case OpGoto:
		fmt.Fprintf(&b, " %d", in.Target)
	case OpIf, OpIfZ:
		fmt.Fprintf(&b, " %s %d", in.Condition, in.Target)
	case OpGet:
		fmt.Fprintf(&b, " %s.%s", in.Field.Class, in.Field.Name)
	case OpNew:
		fmt.Fprintf(&b, " %s", in.Class)
	case OpReturn:
		if in.Type != TypeNone {
			fmt.Fprintf(&b, ":%s", in.Type)
		}
	}
	return b.String()
}

// Instruction constructors, used by tests and by hand-assembled methods.

func Push(v int64) Instruction {
	return Instruction{Op: OpPush, Type: TypeInt, Value: v, HasValue: true}
}

func Load(slot int) Instruction {
	return Instruction{Op: OpLoad, Type: TypeInt, Index: slot}
}

func Store(slot int) Instruction {
	return Instruction{Op: OpStore, Type: TypeInt, Index: slot}
}

func Binary(op BinaryOp) Instruction {
	return Instruction{Op: OpBinary, Type: TypeInt, Operator: op}
}

func Negate() Instruction {
	return Instruction{Op: OpNegate, Type: TypeInt}
}

func Incr(slot int, amount int64) Instruction {
	return Instruction{Op: OpIncr, Index: slot, Amount: amount}
}

func Goto(target int) Instruction {
	return Instruction{Op: OpGoto, Target: target}
}

func If(c Condition, target int) Instruction {
	return Instruction{Op: OpIf, Condition: c, Target: target}
}

func IfZ(c Condition, target int) Instruction {
	return Instruction{Op: OpIfZ, Condition: c, Target: target}
}

func GetStatic(class, name string) Instruction {
	return Instruction{Op: OpGet, Static: true, Field: FieldRef{Class: class, Name: name, Type: TypeBoolean}}
}

func NewObject(class string) Instruction {
	return Instruction{Op: OpNew, Class: class}
}

func Return(t TypeTag) Instruction {
	return Instruction{Op: OpReturn, Type: t}
}
