package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/absexec"
	"github.com/wcbup/Abstract-Interpretation/pkg/classfile"
)

func TestFormatError_Unsupported(t *testing.T) {
	m := absint.NewMethod("calls", nil, absint.Instruction{Name: "invoke"}, absint.Return(absint.TypeNone))
	m.Class = "Calls"
	_, err := absexec.Analyze(context.Background(), m, nil, absexec.Options{})
	require.Error(t, err)

	got := FormatError(err)
	require.Equal(t, `- Unsupported instruction: opcode "invoke"
  Location: Calls.calls pc=0 (invoke)
  How to fix: Only integer arithmetic, branches, assertions and returns are modeled. Choose a method that avoids calls, objects and arrays.
`, got)
}

func TestFormatError_Multi(t *testing.T) {
	var merr *multierror.Error
	merr = multierror.Append(merr, fmt.Errorf("A.json: %w", errors.New("class document has no name")))
	merr = multierror.Append(merr, fmt.Errorf("dir: %w", classfile.ErrNoClasses))

	got := FormatError(fmt.Errorf("loading: %w", merr))
	require.Equal(t, `- A.json: class document has no name
- dir: no class documents found
  How to fix: Convert the compiled classes with jvm2json and point --classes at the output.
`, got)
}

func TestFormatError_Misc(t *testing.T) {
	require.Empty(t, FormatError(nil))
	require.Equal(t, "- Analysis interrupted\n", FormatError(context.Canceled))

	_, err := absexec.DefaultParameters(absint.NewMethod("f", []absint.TypeTag{"float"}))
	require.Contains(t, FormatError(err), "How to fix: Pass --param")
}
