package absexec

import (
	"fmt"
	"sort"
	"strings"

	absint "github.com/wcbup/Abstract-Interpretation"
)

// Frame is one method activation: sparse locals, operand stack and the
// index of the next instruction.
type Frame struct {
	Method *absint.Method
	PC     int

	locals map[int]Value
	stack  *operandStack
}

// NewFrame creates a frame at pc 0 whose locals are the given arguments,
// slot i holding args[i].
func NewFrame(m *absint.Method, args []Value) *Frame {
	f := &Frame{
		Method: m,
		locals: make(map[int]Value, len(args)),
		stack:  newOperandStack(),
	}
	for i, v := range args {
		f.locals[i] = v
	}
	return f
}

// Local returns the value in slot.
func (f *Frame) Local(slot int) (Value, bool) {
	v, ok := f.locals[slot]
	return v, ok
}

// SetLocal writes slot.
func (f *Frame) SetLocal(slot int, v Value) {
	f.locals[slot] = v
}

// forgetHome drops slot as the home of every value on the operand stack.
// Values pushed before a write to slot describe its old contents.
func (f *Frame) forgetHome(slot int) {
	for i, v := range f.stack.data {
		if v.Home == slot {
			f.stack.data[i] = v.WithoutHome()
		}
	}
}

// Locals returns a copy of the locals.
func (f *Frame) Locals() map[int]Value {
	out := make(map[int]Value, len(f.locals))
	for k, v := range f.locals {
		out[k] = v
	}
	return out
}

// Stack returns a copy of the operand stack, bottom first.
func (f *Frame) Stack() []Value {
	return f.stack.values()
}

// Push pushes v onto the operand stack.
func (f *Frame) Push(v Value) {
	f.stack.push(v)
}

func (f *Frame) pop() (Value, error) {
	return f.stack.pop()
}

// clone copies locals and operand stack; the method is shared because it is
// immutable.
func (f *Frame) clone() *Frame {
	locals := make(map[int]Value, len(f.locals))
	for k, v := range f.locals {
		locals[k] = v
	}
	return &Frame{
		Method: f.Method,
		PC:     f.PC,
		locals: locals,
		stack:  f.stack.clone(),
	}
}

// slots returns the local slot indices in ascending order.
func (f *Frame) slots() []int {
	keys := make([]int, 0, len(f.locals))
	for k := range f.locals {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString("locals={")
	for i, k := range f.slots() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d: %s", k, f.locals[k])
	}
	b.WriteString("} stack=[")
	for i, v := range f.stack.data {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	fmt.Fprintf(&b, "] pc=%d", f.PC)
	return b.String()
}
