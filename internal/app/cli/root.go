package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string // "json" | "text"
}

// ValidLogFormats defines the allowed log encodings.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the mintworks command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mintworks",
		Short: "mintworks - capped drop issuance service",
		Long:  "Runs the drop HTTP API, the outbox relay worker, and collection tooling.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.installLogger(cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "json", "log format (json|text)")

	cmd.AddCommand(NewAPICommand())
	cmd.AddCommand(NewWorkerCommand())
	cmd.AddCommand(NewCollectionCommand())

	return cmd
}

func (o *RootOptions) installLogger(w io.Writer) error {
	level, err := parseLevel(o.LogLevel)
	if err != nil {
		return err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch o.LogFormat {
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, handlerOpts)))
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(w, handlerOpts)))
	default:
		return fmt.Errorf("invalid log format %q: must be one of %v", o.LogFormat, ValidLogFormats)
	}
	return nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}
