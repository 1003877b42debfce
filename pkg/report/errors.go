package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/hashicorp/go-multierror"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/absexec"
	"github.com/wcbup/Abstract-Interpretation/pkg/classfile"
)

// FormatError turns an error from loading or analysis into a user-facing
// message, one item per underlying problem.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	problems := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		problems = merr.Errors
	}

	var b strings.Builder
	for _, p := range problems {
		msg, loc, hint := classify(p)
		fmt.Fprintf(&b, "- %s\n", msg)
		if loc != "" {
			fmt.Fprintf(&b, "  Location: %s\n", loc)
		}
		if hint != "" {
			fmt.Fprintf(&b, "  How to fix: %s\n", hint)
		}
	}
	return b.String()
}

func classify(err error) (msg, loc, hint string) {
	var ue *absexec.UnsupportedError
	var de *absexec.DomainError
	switch {
	case errors.As(err, &ue):
		return "Unsupported instruction: " + ue.Reason,
			fmt.Sprintf("%s pc=%d (%s)", ue.Method, ue.PC, ue.Instr),
			unsupportedHint(ue.Instr)
	case errors.As(err, &de):
		return fmt.Sprintf("No abstract rule for %s(%s, %s)", de.Op, de.Left, de.Right), "",
			"Rerun with --log-level debug and report the trace."
	case errors.Is(err, absexec.ErrUnsupported):
		return err.Error(), "",
			"Pass --param for each parameter, or analyze methods with int and boolean parameters only."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Analysis interrupted", "", ""
	case errors.Is(err, classfile.ErrNoClasses):
		return err.Error(), "", "Convert the compiled classes with jvm2json and point --classes at the output."
	case errors.Is(err, fs.ErrNotExist):
		return err.Error(), "", "Check the --classes directory."
	default:
		return err.Error(), "", ""
	}
}

func unsupportedHint(in absint.Instruction) string {
	switch in.Op {
	case absint.OpUnknown:
		return "Only integer arithmetic, branches, assertions and returns are modeled. Choose a method that avoids calls, objects and arrays."
	case absint.OpGet:
		return "Only the $assertionsDisabled field is modeled."
	case absint.OpNew:
		return "Only the AssertionError of a failed assert is modeled."
	default:
		return "Only int and boolean values are modeled."
	}
}
