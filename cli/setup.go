package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/dashscope/pkg/config"
	"github.com/compozy/dashscope/pkg/config/definition"
	"github.com/compozy/dashscope/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// registerConfigFlags declares one flag per registry field that has a CLI
// name, using the registry default and help text.
func registerConfigFlags(flags *pflag.FlagSet) {
	registry := definition.CreateRegistry()
	for _, path := range registry.Paths() {
		field, _ := registry.GetField(path)
		if field.CLIFlag == "" {
			continue
		}
		switch def := field.Default.(type) {
		case string:
			flags.String(field.CLIFlag, def, field.Help)
		case int:
			flags.Int(field.CLIFlag, def, field.Help)
		case bool:
			flags.Bool(field.CLIFlag, def, field.Help)
		case time.Duration:
			flags.Duration(field.CLIFlag, def, field.Help)
		}
	}
}

// extractCLIFlags collects the registry-backed flags the user set explicitly.
func extractCLIFlags(cmd *cobra.Command) map[string]any {
	values := make(map[string]any)
	for name := range definition.CreateRegistry().GetCLIFlagMapping() {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		var (
			value any
			err   error
		)
		switch f.Value.Type() {
		case "int":
			value, err = cmd.Flags().GetInt(name)
		case "bool":
			value, err = cmd.Flags().GetBool(name)
		case "duration":
			value, err = cmd.Flags().GetDuration(name)
		default:
			value, err = cmd.Flags().GetString(name)
		}
		if err == nil {
			values[name] = value
		}
	}
	return values
}

// SetupGlobalConfig loads the env file and the layered configuration, then
// stores the config manager and a configured logger in the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	envFile, err := loadEnvFile(cmd)
	if err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, configSources(cmd, configFile)...)
	if err != nil {
		return err
	}
	logSource, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return fmt.Errorf("failed to get log-source flag: %w", err)
	}
	log := logger.SetupLogger(cmd.ErrOrStderr(), cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, logSource)
	log.Debug("Configuration loaded", "config_file", configFile, "env_file", envFile)

	ctx = config.ContextWithManager(ctx, manager)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	return nil
}

// configSources orders sources by precedence: defaults, YAML file,
// environment, then explicitly set flags.
func configSources(cmd *cobra.Command, configFile string) []config.Source {
	sources := []config.Source{config.NewDefaultProvider()}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	sources = append(sources, config.NewEnvProvider())
	if cliFlags := extractCLIFlags(cmd); len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}
	return sources
}
