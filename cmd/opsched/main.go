package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/opsched/internal/cmd"
	"github.com/felixgeelhaar/opsched/internal/exitcode"
)

func main() {
	// Cancelling the context lets in-flight items finish and blocks the rest
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nRun cancelled by user")
			exitcode.Exit(exitcode.Interrupted)
		}

		exitcode.Exit(cmd.ReportError(ctx, err))
	}
	exitcode.Exit(exitcode.Success)
}
