// Command inspect-method prints the decoded bytecode of one jvm2json class
// document, and which instructions the interpreter cannot model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/pkg/classfile"
	"github.com/wcbup/Abstract-Interpretation/pkg/report"
)

func main() {
	var casesOnly bool

	cmd := &cobra.Command{
		Use:   "inspect-method <class.json> [method]...",
		Short: "Print decoded bytecode of a class document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := classfile.DecodeFile(args[0])
			if err != nil {
				return err
			}
			names := args[1:]
			if len(names) == 0 {
				names = c.MethodNames()
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				m, ok := c.Methods[name]
				if !ok {
					fmt.Fprintf(out, "\n=== %s ===\nnot found\n", name)
					continue
				}
				if casesOnly && !m.IsCase() {
					continue
				}
				fmt.Fprintf(out, "\n=== %s ===\n", name)
				if err := report.Listing(out, m); err != nil {
					return err
				}
				printProblems(cmd, m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&casesOnly, "cases", false, "only print @Case methods")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printProblems(cmd *cobra.Command, m *absint.Method) {
	if err := m.Validate(); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "invalid: %v\n", err)
	}
	if err := m.Unsupported(); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%v", err)
	}
}
