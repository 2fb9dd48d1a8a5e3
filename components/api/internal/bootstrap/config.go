// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"fmt"
	"strings"

	"github.com/LerianStudio/warehouse-pool/components/api/internal/adapters/http/in"
	"github.com/LerianStudio/warehouse-pool/components/api/internal/services"
	"github.com/LerianStudio/warehouse-pool/pkg"
)

// Config is the top level configuration struct for the diagnostics service.
// Warehouse settings are read separately by warehouse.LoadEnvConfig.
type Config struct {
	EnvName                 string `env:"ENV_NAME"`
	ServerAddress           string `env:"SERVER_ADDRESS"`
	LogLevel                string `env:"LOG_LEVEL"`
	OtelServiceName         string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName         string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion      string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv       string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTelemetry         bool   `env:"ENABLE_TELEMETRY"`
	WarmOnStartup           bool   `env:"WAREHOUSE_WARM_ON_STARTUP"`
}

// Validate checks the service settings and reports every problem at once.
func (cfg *Config) Validate() error {
	var errs []string

	switch {
	case strings.TrimSpace(cfg.ServerAddress) == "":
		errs = append(errs, "SERVER_ADDRESS is required")
	case pkg.ValidateServerAddress(cfg.ServerAddress) == "":
		errs = append(errs, "SERVER_ADDRESS must be in the <host>:<port> format")
	}

	if cfg.EnableTelemetry {
		if cfg.OtelServiceName == "" {
			errs = append(errs, "OTEL_RESOURCE_SERVICE_NAME is required when ENABLE_TELEMETRY is true")
		}

		if cfg.OtelColExporterEndpoint == "" {
			errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when ENABLE_TELEMETRY is true")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// InitServers wires the warehouse manager, the health monitor and the HTTP server.
func InitServers() (*Service, error) {
	cfg, logger, err := initConfigAndLogger()
	if err != nil {
		return nil, err
	}

	telemetry, err := initTelemetry(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := initWarehouseMetrics(cfg, telemetry, logger)

	wh, cleanups, err := initWarehouse(cfg, logger, metrics)
	if err != nil {
		telemetry.ShutdownTelemetry()
		return nil, err
	}

	useCase := &services.UseCase{
		Pool: wh.manager,
	}

	if wh.monitor != nil {
		useCase.Monitor = wh.monitor
	}

	warehouseHandler := &in.WarehouseHandler{
		Service: useCase,
	}

	httpApp := in.NewRoutes(logger, warehouseHandler)
	serverAPI := NewServer(cfg, httpApp, logger, telemetry)

	logger.Infof("Warehouse diagnostics service initialized (env %s, address %s)", cfg.EnvName, cfg.ServerAddress)

	return &Service{
		Server:   serverAPI,
		Logger:   logger,
		cleanups: cleanups,
	}, nil
}
