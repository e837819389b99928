package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/compozy/dashscope/pkg/logger"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	meterName       = "github.com/compozy/dashscope"
	metricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

// metricsServer exposes the task instruments on a Prometheus scrape endpoint
// for as long as a command runs.
type metricsServer struct {
	provider *sdkmetric.MeterProvider
	registry *prom.Registry
	server   *http.Server
	addr     string
}

func startMetricsServer(ctx context.Context, addr string) (*metricsServer, error) {
	log := logger.FromContext(ctx)
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to listen on metrics address %s: %w", addr, err)
	}
	s := &metricsServer{
		provider: provider,
		registry: registry,
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		addr:     listener.Addr().String(),
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", "error", err)
		}
	}()
	log.Info("Serving metrics", "addr", s.addr, "path", metricsPath)
	return s, nil
}

func (s *metricsServer) Meter() metric.Meter {
	return s.provider.Meter(meterName)
}

func (s *metricsServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return errors.Join(s.server.Shutdown(ctx), s.provider.Shutdown(ctx))
}
