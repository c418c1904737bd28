// Command taskmaster is the CLI entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskmaster/cmd"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/store"
	"taskmaster/internal/task"
)

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := cmd.Run(ctx, os.Args[1:]); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "\nInterrupted\n")
			os.Exit(exitcode.Interrupted)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(codeFor(err))
	}
}

// codeFor maps error kinds to exit codes.
func codeFor(err error) int {
	var verr *task.ValidationError
	if errors.As(err, &verr) || errors.Is(err, store.ErrNotFound) {
		return exitcode.UserError
	}
	return exitcode.RuntimeError
}
