package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	absint "github.com/wcbup/Abstract-Interpretation"
)

// Listing writes m's signature followed by one line per instruction.
// Instructions the interpreter does not model are marked with '!':
//
//	   1: ifz            ne 3
//	!  2: throw
func Listing(w io.Writer, m *absint.Method) error {
	var b strings.Builder
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = string(p)
	}
	returns := string(m.Returns)
	if returns == "" {
		returns = "void"
	}
	fmt.Fprintf(&b, "%s(%s) %s", m.ID(), strings.Join(params, ", "), returns)
	if m.IsCase() {
		b.WriteString(" @Case")
	}
	b.WriteByte('\n')

	for pc, in := range m.Code {
		mark := ' '
		if in.Op == absint.OpUnknown {
			mark = '!'
		}
		op, rest := in.String(), ""
		if i := strings.IndexByte(op, ' '); i >= 0 {
			op, rest = op[:i], op[i+1:]
		}
		fmt.Fprintf(&b, "%c%3d: %s %s\n", mark, pc, runewidth.FillRight(op, 14), rest)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
