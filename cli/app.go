package cli

import (
	"context"
	"fmt"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
	"github.com/compozy/dashscope/engine/node"
	"github.com/compozy/dashscope/pkg/config"
	"github.com/compozy/dashscope/pkg/logger"
	"github.com/compozy/dashscope/pkg/version"
	"github.com/spf13/cobra"
)

// app wires configuration into a client, the node registry and the batch
// executor.
type app struct {
	cfg      *config.Config
	registry *node.Registry
	executor *node.Executor
	policy   node.FailurePolicy
	metrics  *metricsServer
}

func newApp(ctx context.Context, cfg *config.Config, metricsAddr string) (*app, error) {
	a := &app{cfg: cfg}
	recorder := dashscope.Nop()
	if metricsAddr != "" {
		metrics, err := startMetricsServer(ctx, metricsAddr)
		if err != nil {
			return nil, err
		}
		a.metrics = metrics
		if recorder, err = dashscope.NewRecorder(metrics.Meter()); err != nil {
			_ = metrics.Shutdown(ctx)
			return nil, fmt.Errorf("failed to register task metrics: %w", err)
		}
	}
	doer := dashscope.NewRestyDoer(ctx, dashscope.TransportConfig{
		Timeout:   cfg.DashScope.RequestTimeout,
		UserAgent: version.UserAgent(cfg.DashScope.UserAgent),
		Debug:     cfg.Runtime.HTTPDebug,
	})
	client := dashscope.NewClient(doer, dashscope.StaticAPIKey(cfg.DashScope.APIKey.Value()), dashscope.ClientConfig{
		BaseURL:          cfg.DashScope.BaseURL,
		TransportRetries: cfg.Polling.TransportRetries,
		RetryBackoff:     cfg.Polling.RetryBackoff,
		Recorder:         recorder,
	})
	a.registry = node.NewRegistry(client, node.Settings{
		ImageInterval:    cfg.Polling.ImageInterval,
		ImageMaxAttempts: cfg.Polling.ImageMaxAttempts,
		VideoInterval:    cfg.Polling.VideoInterval,
		VideoMaxAttempts: cfg.Polling.VideoMaxAttempts,
		MaxWait:          cfg.Polling.MaxWait,
	})
	a.executor = node.NewExecutor(cfg.Batch.Concurrency)
	a.policy = node.Abort
	if cfg.Batch.ContinueOnFail {
		a.policy = node.Continue
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).Warn("Failed to stop metrics server", "error", err)
	}
}

// runNode executes the named node over items and prints the records.
func runNode(cmd *cobra.Command, name node.Name, items []core.Input) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	a, err := newApp(ctx, config.FromContext(ctx), metricsAddr)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	n, err := a.registry.Get(string(name))
	if err != nil {
		return err
	}
	outputs, err := a.executor.Run(ctx, n, items, a.policy)
	if err != nil {
		return err
	}
	return writeRecords(cmd.OutOrStdout(), outputs)
}
