package cli

import (
	"fmt"

	"mintworks/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

// NewAPICommand creates the api command.
func NewAPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the drop HTTP API",
		Long: `Serve the drop HTTP API.

With STORE_DRIVER=memory the outbox relay also runs inside this process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.BuildAPI(cmd.Context())
			if err != nil {
				return fmt.Errorf("bootstrap api: %w", err)
			}
			defer func() { _ = app.Close() }()
			return app.Run(cmd.Context())
		},
	}
}

// NewWorkerCommand creates the worker command.
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Relay committed drop events from the postgres outbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.BuildWorker(cmd.Context())
			if err != nil {
				return fmt.Errorf("bootstrap worker: %w", err)
			}
			defer func() { _ = app.Close() }()
			return app.Run(cmd.Context())
		},
	}
}
