package cli

import (
	"github.com/compozy/dashscope/pkg/config"
	"github.com/compozy/dashscope/pkg/config/definition"
	"github.com/spf13/cobra"
)

// ConfigCmd groups configuration commands.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := config.ManagerFromContext(cmd.Context())
			cfg := config.FromContext(cmd.Context())
			sources := make(map[string]config.SourceType)
			for _, path := range definition.CreateRegistry().Paths() {
				sources[path] = manager.Service.GetSource(path)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"config":  cfg,
				"sources": sources,
			})
		},
	}
}
