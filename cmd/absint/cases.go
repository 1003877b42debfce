package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/absexec"
	"github.com/wcbup/Abstract-Interpretation/pkg/report"
)

func newCasesCmd(a *app) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "cases [class]",
		Short: "Analyze every @Case method",
		Long: `Analyze every method annotated with @Case, optionally restricted to one
class. Methods the interpreter cannot handle are reported on stderr and
skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.program()
			if err != nil {
				return err
			}
			var cases []*absint.Method
			for _, m := range program.Cases() {
				if len(args) == 0 || m.Class == args[0] {
					cases = append(cases, m)
				}
			}
			if len(cases) == 0 {
				return fmt.Errorf("no @Case methods found")
			}
			if list {
				for _, m := range cases {
					fmt.Fprintln(cmd.OutOrStdout(), m.ID())
				}
				return nil
			}

			warn := color.New(color.FgYellow)
			if a.v.GetBool("no-color") {
				warn.DisableColor()
			}
			opts := a.options(cmd.ErrOrStderr())
			var results []*absexec.Result
			for _, m := range cases {
				res, err := analyzeCase(cmd, m, opts)
				if err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), warn.Sprintf("skipped %s:\n%s", m.ID(), report.FormatError(err)))
					continue
				}
				results = append(results, res)
			}
			return a.render(cmd, results)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "only list the methods")
	return cmd
}

func analyzeCase(cmd *cobra.Command, m *absint.Method, opts absexec.Options) (*absexec.Result, error) {
	params, err := absexec.DefaultParameters(m)
	if err != nil {
		return nil, err
	}
	return absexec.Analyze(cmd.Context(), m, params, opts)
}
