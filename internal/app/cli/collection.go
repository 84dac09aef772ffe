package cli

import (
	"fmt"

	"mintworks/internal/app/bootstrap"
	"mintworks/internal/platform/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewCollectionCommand creates the collection command, which prints the
// effective collection definition after env and file overlays.
func NewCollectionCommand() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Print the effective collection definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			collection, err := config.LoadCollection(cfg.CollectionFile, config.DefaultCollection(cfg))
			if err != nil {
				return err
			}
			if validate {
				if _, err := bootstrap.CollectionDefinition(collection); err != nil {
					return fmt.Errorf("invalid collection: %w", err)
				}
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(collection); err != nil {
				return fmt.Errorf("encode collection: %w", err)
			}
			return encoder.Close()
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "fail when amounts do not parse")
	return cmd
}
