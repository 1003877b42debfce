package absexec

import "errors"

var errStackUnderflow = errors.New("operand stack underflow")

// operandStack implements a simple LIFO stack of abstract values.
type operandStack struct {
	data []Value
}

// newOperandStack creates a new operand stack.
func newOperandStack() *operandStack {
	return &operandStack{
		data: make([]Value, 0, 8),
	}
}

// push adds a value to the top of the stack.
func (s *operandStack) push(v Value) {
	s.data = append(s.data, v)
}

// pop removes and returns the top value.
func (s *operandStack) pop() (Value, error) {
	if len(s.data) == 0 {
		return Value{}, errStackUnderflow
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

// empty checks if the stack is empty.
func (s *operandStack) empty() bool {
	return len(s.data) == 0
}

// len returns the number of elements on the stack.
func (s *operandStack) len() int {
	return len(s.data)
}

// clone returns an independent copy. Values hold no references, so copying
// the slice is a deep copy.
func (s *operandStack) clone() *operandStack {
	data := make([]Value, len(s.data), max(cap(s.data), 8))
	copy(data, s.data)
	return &operandStack{data: data}
}

// values returns a copy of the stack contents, bottom first.
func (s *operandStack) values() []Value {
	out := make([]Value, len(s.data))
	copy(out, s.data)
	return out
}
