// Command absint reports which runtime exceptions the methods of a decoded
// Java program may raise.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/wcbup/Abstract-Interpretation/pkg/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, color.RedString(report.FormatError(err)))
		os.Exit(1)
	}
}
