// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/adimka/admin-console-beta/internal/adapters/http"
	"github.com/adimka/admin-console-beta/internal/adapters/http/handlers"
	"github.com/adimka/admin-console-beta/internal/adapters/http/middleware"

	dirclient "github.com/adimka/admin-console-beta/internal/adapters/clients/directory"
	"github.com/adimka/admin-console-beta/internal/adapters/clients/platformctl"
	"github.com/adimka/admin-console-beta/internal/adapters/platform/settings"
	"github.com/adimka/admin-console-beta/internal/adapters/platform/svcadmin"
	"github.com/adimka/admin-console-beta/internal/app"
	"github.com/adimka/admin-console-beta/internal/configurator"
	"github.com/adimka/admin-console-beta/internal/platform/audit"
	"github.com/adimka/admin-console-beta/internal/platform/config"
	"github.com/adimka/admin-console-beta/internal/platform/health"
	"github.com/adimka/admin-console-beta/internal/platform/httpclient"
	"github.com/adimka/admin-console-beta/internal/platform/logging"
	"github.com/adimka/admin-console-beta/internal/platform/telemetry"
	"github.com/adimka/admin-console-beta/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	controller := do.MustInvoke[*platformctl.Controller](injector)
	registry.Register(controller)

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	// Outbound platform controller client.
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Platform, "platformctl", metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*platformctl.Controller, error) {
		client := do.MustInvoke[*httpclient.Client](i)
		return platformctl.New(client, logger), nil
	})

	// Filesystem-backed stores.
	do.Provide(injector, func(_ do.Injector) (*settings.Store, error) {
		return settings.New(cfg.Stores.SettingsDir, logger)
	})

	do.Provide(injector, func(_ do.Injector) (*svcadmin.Store, error) {
		return svcadmin.New(cfg.Stores.ServicesDir, logger)
	})

	// Application services.
	do.Provide(injector, func(i do.Injector) (app.ConfiguratorFactory, error) {
		controller := do.MustInvoke[*platformctl.Controller](i)
		settingsStore := do.MustInvoke[*settings.Store](i)
		servicesStore := do.MustInvoke[*svcadmin.Store](i)
		return func() *configurator.Configurator {
			return configurator.New(controller, controller, settingsStore, servicesStore, logger)
		}, nil
	})

	do.Provide(injector, func(_ do.Injector) (*audit.Recorder, error) {
		return audit.New(logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.BatchService, error) {
		factory := do.MustInvoke[app.ConfiguratorFactory](i)
		recorder := do.MustInvoke[*audit.Recorder](i)
		return app.NewBatchService(factory, recorder, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.DirectoryService, error) {
		prober := dirclient.New(
			cfg.Directory.DialTimeout,
			cfg.Directory.CircuitBreaker.MaxFailures,
			cfg.Directory.CircuitBreaker.Timeout,
			logger,
		)
		return app.NewDirectoryService(prober, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// HTTP handlers.
	do.Provide(injector, func(i do.Injector) (*handlers.BatchHandler, error) {
		svc := do.MustInvoke[ports.BatchService](i)
		return handlers.NewBatchHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.StateHandler, error) {
		svc := do.MustInvoke[ports.BatchService](i)
		return handlers.NewStateHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.DirectoryHandler, error) {
		svc := do.MustInvoke[ports.DirectoryService](i)
		return handlers.NewDirectoryHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		batchH := do.MustInvoke[*handlers.BatchHandler](i)
		stateH := do.MustInvoke[*handlers.StateHandler](i)
		dirH := do.MustInvoke[*handlers.DirectoryHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(batchH, stateH, dirH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
