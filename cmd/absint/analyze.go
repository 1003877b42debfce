package main

import (
	"fmt"

	"github.com/spf13/cobra"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/absexec"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "analyze <class> <method>",
		Short: "Analyze one method",
		Long: `Analyze one method and report the exceptions it may raise.

Parameters default to the widest abstraction of their type. Use --param once
per parameter to start from something narrower: any, positive, negative,
nonpositive, nonnegative, nonzero or an integer.`,
		Example: `  absint analyze eu/bogoe/dtu/exceptional/Arithmetics alwaysThrows5
  absint analyze --param positive --param 0 eu/bogoe/dtu/exceptional/Arithmetics alwaysThrows5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.program()
			if err != nil {
				return err
			}
			m, err := program.Method(args[0], args[1])
			if err != nil {
				return err
			}
			values, err := parameters(m, params)
			if err != nil {
				return err
			}
			res, err := absexec.Analyze(cmd.Context(), m, values, a.options(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return a.render(cmd, []*absexec.Result{res})
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "abstract value of the next parameter")
	return cmd
}

// parameters parses one abstraction per parameter of m, or falls back to
// the defaults when none are given.
func parameters(m *absint.Method, raw []string) ([]absexec.Value, error) {
	if len(raw) == 0 {
		return absexec.DefaultParameters(m)
	}
	if len(raw) != len(m.Params) {
		return nil, fmt.Errorf("%s takes %d parameters, got %d", m.ID(), len(m.Params), len(raw))
	}
	values := make([]absexec.Value, len(raw))
	for i, s := range raw {
		v, err := absexec.ParseValue(s)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
