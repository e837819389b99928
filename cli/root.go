package cli

import (
	"github.com/compozy/dashscope/pkg/version"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "dashscope.yaml"
	defaultEnvFile    = ".env"
)

// RootCmd builds the dashscope command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dashscope",
		Short:        "Generate images and videos with DashScope and track their tasks",
		Version:      version.Get().String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to the YAML configuration file")
	flags.String("env-file", defaultEnvFile, "Path to a .env file loaded before configuration")
	flags.Bool("log-source", false, "Report the caller in log records")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
	registerConfigFlags(flags)

	root.AddCommand(
		ImageCmd(),
		VideoCmd(),
		TaskCmd(),
		RunCmd(),
		ConfigCmd(),
	)
	return root
}
