package absexec

import (
	"errors"
	"fmt"

	absint "github.com/wcbup/Abstract-Interpretation"
)

var (
	// ErrDomain reports an operand combination with no arithmetic or
	// comparison rule.
	ErrDomain = errors.New("abstract domain error")

	// ErrUnsupported reports an opcode, field, type or constant the
	// interpreter does not model.
	ErrUnsupported = errors.New("unsupported instruction")
)

// DomainError carries the operation and operands that have no rule.
type DomainError struct {
	Op    string
	Left  Value
	Right Value
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: no rule for %s(%s, %s)", ErrDomain, e.Op, e.Left, e.Right)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// UnsupportedError locates an unmodeled instruction.
type UnsupportedError struct {
	Method string
	PC     int
	Instr  absint.Instruction
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%v at %s pc=%d (%s): %s", ErrUnsupported, e.Method, e.PC, e.Instr, e.Reason)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }
