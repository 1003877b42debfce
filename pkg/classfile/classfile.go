// Package classfile decodes jvm2json class documents into the absint program
// model.
//
// jvm2json writes plain JSON, which yaml.v3 reads as flow-style YAML. Only the
// instruction fields the interpreter models are decoded; any other opcode is
// kept as absint.OpUnknown with its raw tag so a method that never reaches it
// can still be analyzed.
package classfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	absint "github.com/wcbup/Abstract-Interpretation"
	"gopkg.in/yaml.v3"
)

// ErrNoClasses is returned by LoadDir when a directory holds no class documents.
var ErrNoClasses = errors.New("no class documents found")

type rawClass struct {
	Name    string      `yaml:"name"`
	Methods []rawMethod `yaml:"methods"`
}

type rawMethod struct {
	Name        string          `yaml:"name"`
	Params      []typeRef       `yaml:"params"`
	Returns     typeRef         `yaml:"returns"`
	Annotations []rawAnnotation `yaml:"annotations"`
	Code        *struct {
		Bytecode []rawInstruction `yaml:"bytecode"`
	} `yaml:"code"`
}

type rawAnnotation struct {
	Type string `yaml:"type"`
}

type rawInstruction struct {
	Opr       string    `yaml:"opr"`
	Type      typeRef   `yaml:"type"`
	Index     int       `yaml:"index"`
	Amount    int64     `yaml:"amount"`
	Target    int       `yaml:"target"`
	Operant   string    `yaml:"operant"`
	Condition string    `yaml:"condition"`
	Static    bool      `yaml:"static"`
	Field     *rawField `yaml:"field"`
	Class     string    `yaml:"class"`
	Value     *rawConst `yaml:"value"`
}

type rawField struct {
	Class string  `yaml:"class"`
	Name  string  `yaml:"name"`
	Type  typeRef `yaml:"type"`
}

type rawConst struct {
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// typeRef accepts every spelling of a type jvm2json uses: a bare string
// ("int"), a base type ({"base": "int"}), a reference ({"kind": "class"}),
// a wrapper ({"type": ...}) and null.
type typeRef struct {
	Name string
}

func (t *typeRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			t.Name = ""
			return nil
		}
		t.Name = node.Value
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			switch key {
			case "base":
				t.Name = val.Value
				return nil
			case "type":
				return t.UnmarshalYAML(val)
			case "kind":
				t.Name = val.Value
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: cannot decode type from %s node", node.Line, kindName(node.Kind))
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}

// Decode reads one jvm2json class document.
func Decode(r io.Reader) (*absint.Class, error) {
	var raw rawClass
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding class document: %w", err)
	}
	if raw.Name == "" {
		return nil, errors.New("class document has no name")
	}

	class := &absint.Class{Name: raw.Name, Methods: make(map[string]*absint.Method, len(raw.Methods))}
	var result *multierror.Error
	for _, rm := range raw.Methods {
		m, err := convertMethod(raw.Name, rm)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		class.Methods[m.Name] = m
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("class %s: %w", raw.Name, err)
	}
	return class, nil
}

// DecodeFile reads the class document at path.
func DecodeFile(path string) (*absint.Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadDir decodes every .json document below dir. Problems with individual
// files are collected and returned together.
func LoadDir(dir string) (*absint.Program, error) {
	program := absint.NewProgram()
	var result *multierror.Error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		c, err := DecodeFile(path)
		if err != nil {
			result = multierror.Append(result, err)
			return nil
		}
		program.Add(c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	if len(program.Classes) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoClasses)
	}
	return program, nil
}

func convertMethod(class string, rm rawMethod) (*absint.Method, error) {
	if rm.Name == "" {
		return nil, errors.New("method without a name")
	}
	m := &absint.Method{
		Class:   class,
		Name:    rm.Name,
		Params:  make([]absint.TypeTag, len(rm.Params)),
		Returns: absint.TypeTag(rm.Returns.Name),
	}
	for i, p := range rm.Params {
		m.Params[i] = absint.TypeTag(p.Name)
	}
	for _, a := range rm.Annotations {
		m.Annotations = append(m.Annotations, a.Type)
	}
	if rm.Code == nil {
		// abstract and native methods carry no code
		return m, nil
	}

	m.Code = make([]absint.Instruction, len(rm.Code.Bytecode))
	for pc, ri := range rm.Code.Bytecode {
		in, err := convertInstruction(ri)
		if err != nil {
			return nil, fmt.Errorf("%s pc=%d: %w", m.ID(), pc, err)
		}
		m.Code[pc] = in
	}
	return m, nil
}

func convertInstruction(ri rawInstruction) (absint.Instruction, error) {
	if ri.Opr == "" {
		return absint.Instruction{}, errors.New(`instruction without "opr"`)
	}
	in := absint.Instruction{
		Op:   absint.ParseOpcode(ri.Opr),
		Name: ri.Opr,
		Type: absint.TypeTag(ri.Type.Name),
	}

	switch in.Op {
	case absint.OpPush:
		if ri.Value != nil && ri.Value.Type == "integer" {
			v, ok := toInt64(ri.Value.Value)
			if !ok {
				return in, fmt.Errorf("integer constant %v out of range", ri.Value.Value)
			}
			in.Value, in.HasValue = v, true
			in.Type = absint.TypeInt
		}
	case absint.OpLoad, absint.OpStore:
		in.Index = ri.Index
	case absint.OpIncr:
		in.Index = ri.Index
		in.Amount = ri.Amount
	case absint.OpBinary:
		in.Operator = absint.BinaryOp(ri.Operant)
	case absint.OpGoto:
		in.Target = ri.Target
	case absint.OpIf, absint.OpIfZ:
		in.Condition = absint.Condition(ri.Condition)
		in.Target = ri.Target
		if !in.Condition.Valid() {
			// reference comparisons (is, isnot) are not modeled
			in.Op = absint.OpUnknown
			in.Name = ri.Opr + ":" + ri.Condition
		}
	case absint.OpGet:
		in.Static = ri.Static
		if ri.Field != nil {
			in.Field = absint.FieldRef{Class: ri.Field.Class, Name: ri.Field.Name, Type: absint.TypeTag(ri.Field.Type.Name)}
		}
	case absint.OpNew:
		in.Class = ri.Class
	}
	return in, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > 1<<63-1 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
