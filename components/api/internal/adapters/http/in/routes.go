// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"context"
	"time"

	"github.com/LerianStudio/warehouse-pool/components/api/internal/services"
	"github.com/LerianStudio/warehouse-pool/pkg/net/http"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
)

const readinessCheckTimeout = 10 * time.Second

// NewRoutes creates a new fiber router with the warehouse diagnostics routes and middleware.
func NewRoutes(lg log.Logger, warehouseHandler *WarehouseHandler) *fiber.App {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          http.HandleFiberError,
	})

	f.Use(RecoverMiddleware())
	f.Use(otelfiber.Middleware())
	f.Use(SecurityHeaders())
	f.Use(WithRequestContext(lg))
	f.Use(WithAccessLog(lg))

	// Health
	f.Get("/health", healthHandler)

	// Readiness - probes a warehouse connection
	f.Get("/ready", readinessHandler(warehouseHandler.Service))

	// Warehouse routes
	f.Get("/v1/warehouse/pool", warehouseHandler.GetPoolStats)
	f.Get("/v1/warehouse/config", warehouseHandler.GetPoolConfiguration)
	f.Get("/v1/warehouse/circuit-breaker", warehouseHandler.GetCircuitBreaker)
	f.Post("/v1/warehouse/circuit-breaker/reset", warehouseHandler.ResetCircuitBreaker)
	f.Post("/v1/warehouse/warm", http.WithOptionalBody(new(services.WarmPoolInput), warehouseHandler.WarmPool))
	f.Get("/v1/warehouse/ping", warehouseHandler.Ping)

	return f
}

// healthHandler is the liveness probe. No dependency checks.
func healthHandler(c *fiber.Ctx) error {
	return http.OK(c, fiber.Map{"status": "alive"})
}

// dependencyResult represents the health status of a single dependency in the readiness check.
type dependencyResult struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Source  string  `json:"source,omitempty"`
	Circuit string  `json:"circuitBreaker,omitempty"`
	TotalMs float64 `json:"totalMs"`
}

// readinessHandler returns 200 when the warehouse answers the validation query and the
// circuit breaker is not open, 503 otherwise.
func readinessHandler(svc *services.UseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readinessCheckTimeout)
		defer cancel()

		readiness := svc.CheckReadiness(ctx)

		result := &dependencyResult{
			Status:  "ready",
			Source:  readiness.Source,
			Circuit: readiness.CircuitBreaker.State,
			TotalMs: readiness.Health.TotalMs,
		}

		httpStatus := fiber.StatusOK
		overallStatus := "ready"

		if !readiness.Ready() {
			httpStatus = fiber.StatusServiceUnavailable
			overallStatus = "not_ready"
			result.Status = "not_ready"
			result.Message = readiness.Health.Error

			if readiness.CircuitBreaker.IsOpen && result.Message == "" {
				result.Message = "circuit breaker is open"
			}
		}

		return http.JSONResponse(c, httpStatus, fiber.Map{
			"status": overallStatus,
			"dependencies": map[string]*dependencyResult{
				"warehouse": result,
			},
		})
	}
}
