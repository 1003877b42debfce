// Package absint models JVM methods as ordered instruction sequences, the
// input of the abstract interpreter in package absexec.
package absint

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// CaseAnnotation marks the methods the analysis is run on.
const CaseAnnotation = "dtu/compute/exec/Case"

// Method is an immutable, zero-indexed instruction sequence.
type Method struct {
	Class       string
	Name        string
	Params      []TypeTag
	Returns     TypeTag
	Annotations []string
	Code        []Instruction
}

// NewMethod builds a method from instructions, mostly for tests.
func NewMethod(name string, params []TypeTag, code ...Instruction) *Method {
	return &Method{Name: name, Params: params, Code: code}
}

// ID returns "class.name", or just the name for a method without a class.
func (m *Method) ID() string {
	if m.Class == "" {
		return m.Name
	}
	return m.Class + "." + m.Name
}

// At returns the instruction at pc.
func (m *Method) At(pc int) (Instruction, bool) {
	if pc < 0 || pc >= len(m.Code) {
		return Instruction{}, false
	}
	return m.Code[pc], true
}

// HasAnnotation reports whether the method carries the annotation type.
func (m *Method) HasAnnotation(typ string) bool {
	for _, a := range m.Annotations {
		if a == typ {
			return true
		}
	}
	return false
}

// IsCase reports whether the method is annotated with @Case.
func (m *Method) IsCase() bool {
	return m.HasAnnotation(CaseAnnotation)
}

// Validate checks structural well-formedness: every jump lands inside the
// method and every slot index is non-negative. All problems are reported.
func (m *Method) Validate() error {
	var result *multierror.Error
	for pc, in := range m.Code {
		if in.Op.IsJump() && (in.Target < 0 || in.Target >= len(m.Code)) {
			result = multierror.Append(result, fmt.Errorf("%s pc=%d: jump target %d out of range [0,%d)", m.ID(), pc, in.Target, len(m.Code)))
		}
		switch in.Op {
		case OpLoad, OpStore, OpIncr:
			if in.Index < 0 {
				result = multierror.Append(result, fmt.Errorf("%s pc=%d: negative slot %d", m.ID(), pc, in.Index))
			}
		case OpIf, OpIfZ:
			if !in.Condition.Valid() {
				result = multierror.Append(result, fmt.Errorf("%s pc=%d: unknown condition %q", m.ID(), pc, in.Condition))
			}
		}
	}
	return result.ErrorOrNil()
}

// Unsupported lists every instruction the interpreter does not model. Such
// instructions only fail when reached, so a method may still be analyzable.
func (m *Method) Unsupported() error {
	var result *multierror.Error
	for pc, in := range m.Code {
		if in.Op == OpUnknown {
			result = multierror.Append(result, fmt.Errorf("%s pc=%d: unsupported opcode %q", m.ID(), pc, in.Name))
		}
	}
	return result.ErrorOrNil()
}

// Class is a decoded class file.
type Class struct {
	Name    string
	Methods map[string]*Method
}

// MethodNames returns the names of c's methods in sorted order.
func (c *Class) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program is a set of classes keyed by their internal name
// (for example "eu/bogoe/dtu/exceptional/Arithmetics").
type Program struct {
	Classes map[string]*Class
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{Classes: make(map[string]*Class)}
}

// Add registers a class, replacing any class of the same name.
func (p *Program) Add(c *Class) {
	p.Classes[c.Name] = c
}

// Method resolves class.name.
func (p *Program) Method(class, name string) (*Method, error) {
	c, ok := p.Classes[class]
	if !ok {
		return nil, fmt.Errorf("class %q not found", class)
	}
	m, ok := c.Methods[name]
	if !ok {
		return nil, fmt.Errorf("method %q not found in class %q", name, class)
	}
	return m, nil
}

// Cases returns every @Case method of the program, sorted by ID.
func (p *Program) Cases() []*Method {
	var cases []*Method
	for _, c := range p.Classes {
		for _, m := range c.Methods {
			if m.IsCase() {
				cases = append(cases, m)
			}
		}
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].ID() < cases[j].ID() })
	return cases
}
