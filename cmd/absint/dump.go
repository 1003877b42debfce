package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wcbup/Abstract-Interpretation/pkg/report"
)

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <class> [method]",
		Short: "Print decoded bytecode",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.program()
			if err != nil {
				return err
			}
			if len(args) == 2 {
				m, err := program.Method(args[0], args[1])
				if err != nil {
					return err
				}
				return report.Listing(cmd.OutOrStdout(), m)
			}
			c, ok := program.Classes[args[0]]
			if !ok {
				return fmt.Errorf("class %q not found", args[0])
			}
			for i, name := range c.MethodNames() {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := report.Listing(cmd.OutOrStdout(), c.Methods[name]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
