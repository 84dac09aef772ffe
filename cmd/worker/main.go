package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mintworks/internal/app/cli"
)

// Worker process entrypoint. Flags after the binary name are passed to the
// "worker" subcommand, e.g. --log-level=debug.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	root.SetArgs(append([]string{"worker"}, os.Args[1:]...))
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
