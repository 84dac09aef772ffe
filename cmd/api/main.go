package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mintworks/internal/app/cli"
)

// API process entrypoint. Flags after the binary name are passed to the
// "api" subcommand, e.g. --log-level=debug.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	root.SetArgs(append([]string{"api"}, os.Args[1:]...))
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
