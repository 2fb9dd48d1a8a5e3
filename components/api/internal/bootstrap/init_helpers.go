// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/dialect"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libOtel "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/LerianStudio/lib-commons/v3/commons/zap"
)

// warehouseResources holds the warehouse objects created during initialization.
type warehouseResources struct {
	manager *warehouse.Manager
	monitor *warehouse.HealthMonitor
}

// initConfigAndLogger loads configuration from environment variables, validates it,
// and initializes the structured logger.
func initConfigAndLogger() (*Config, log.Logger, error) {
	cfg := &Config{}
	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to load config from env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := zap.InitializeLoggerWithError()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger, nil
}

// initTelemetry initializes OpenTelemetry. The server manager shuts it down on exit.
func initTelemetry(cfg *Config, logger log.Logger) (*libOtel.Telemetry, error) {
	telemetry, err := libOtel.InitializeTelemetryWithError(&libOtel.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return telemetry, nil
}

// initWarehouseMetrics creates the pool instruments.
// With telemetry enabled they are registered on the telemetry MeterProvider and exported
// to the configured collector. Otherwise no-op instruments are returned.
func initWarehouseMetrics(cfg *Config, telemetry *libOtel.Telemetry, logger log.Logger) *warehouse.Metrics {
	if !cfg.EnableTelemetry || telemetry == nil || telemetry.MetricProvider == nil {
		logger.Info("Warehouse metrics: using noop instruments (telemetry disabled)")
		return warehouse.NoopMetrics()
	}

	meter := telemetry.MetricProvider.Meter(cfg.OtelLibraryName)

	m, err := warehouse.NewMetrics(meter)
	if err != nil {
		logger.Errorf("Failed to create warehouse metrics, falling back to noop: %v", err)
		return warehouse.NoopMetrics()
	}

	logger.Info("Warehouse metrics: instruments registered on the telemetry meter provider")

	return m
}

// initWarehouse builds the manager, starts the background health monitor when an interval
// is configured, and returns cleanups for both. An invalid warehouse configuration is not
// fatal here: the service still starts and reports the problem on /ready and /v1/warehouse/config.
func initWarehouse(cfg *Config, logger log.Logger, metrics *warehouse.Metrics) (*warehouseResources, []func(), error) {
	env, err := warehouse.LoadEnvConfig()
	if err != nil {
		return nil, nil, err
	}

	if env.EnvName == "" {
		env.EnvName = cfg.EnvName
	}

	manager := warehouse.NewManager(env, dialect.Factory, logger, warehouse.WithMetrics(metrics))

	resources := &warehouseResources{manager: manager}

	summary, err := manager.PoolConfiguration()
	if err != nil {
		logger.Warnf("Warehouse configuration is invalid, queries will fail until it is fixed: %v", err)
	} else {
		logger.Infof("Warehouse configured: driver=%s account=%s database=%s schema=%s credentials=%s production=%t max=%d",
			summary.Driver, summary.Account, summary.Database, summary.Schema, summary.CredentialSource, summary.Production, summary.MaxSize)

		if summary.HealthCheckIntervalMs > 0 {
			interval := time.Duration(summary.HealthCheckIntervalMs) * time.Millisecond
			resources.monitor = warehouse.NewHealthMonitor(manager, interval, logger)
			resources.monitor.Start()
		}

		if cfg.WarmOnStartup {
			go warmOnStartup(manager, logger)
		}
	}

	cleanups := []func(){
		func() {
			if resources.monitor != nil {
				logger.Info("Cleanup: stopping warehouse health monitor")
				resources.monitor.Stop()
			}
		},
		func() {
			logger.Info("Cleanup: closing warehouse pool")
			manager.Close()
		},
	}

	return resources, cleanups, nil
}

// warmOnStartup creates the pool and runs the one-shot warm-up in the background.
// Failures are logged only; they never stop the service.
func warmOnStartup(manager *warehouse.Manager, logger log.Logger) {
	ctx, cancel := context.WithTimeout(pkg.ContextWithLogger(context.Background(), logger), constant.StartupWarmTimeout)
	defer cancel()

	report := manager.WarmPool(ctx, 0)

	switch {
	case report.Skipped:
		logger.Info("Startup warm-up skipped, pool already warmed")
	case len(report.Failures) > 0:
		logger.Warnf("Startup warm-up finished: %d/%d connection(s) in %dms, %d failure(s)",
			report.Succeeded, report.Requested, report.DurationMs, len(report.Failures))
	default:
		logger.Infof("Startup warm-up finished: %d/%d connection(s) in %dms",
			report.Succeeded, report.Requested, report.DurationMs)
	}
}

// runCleanups runs cleanups in reverse registration order.
func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		if cleanups[i] != nil {
			cleanups[i]()
		}
	}
}
