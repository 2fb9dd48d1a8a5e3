// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"github.com/LerianStudio/warehouse-pool/components/api/internal/services"
	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/net/http"

	"github.com/gofiber/fiber/v2"
)

// WarehouseHandler exposes pool introspection and maintenance operations.
type WarehouseHandler struct {
	Service *services.UseCase
}

// GetPoolStats returns the pool counters.
func (h *WarehouseHandler) GetPoolStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	return http.OK(c, h.Service.GetPoolStats(ctx))
}

// GetCircuitBreaker returns the circuit breaker status.
func (h *WarehouseHandler) GetCircuitBreaker(c *fiber.Ctx) error {
	ctx := c.UserContext()

	return http.OK(c, h.Service.GetCircuitBreakerStatus(ctx))
}

// ResetCircuitBreaker forces the circuit breaker closed.
func (h *WarehouseHandler) ResetCircuitBreaker(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := pkg.NewLoggerFromContext(ctx)

	status, err := h.Service.ResetCircuitBreaker(ctx)
	if err != nil {
		logger.Warnf("Circuit breaker reset rejected: %v", err)

		return http.WithError(c, err)
	}

	return http.OK(c, status)
}

// GetPoolConfiguration returns the resolved configuration without secrets.
func (h *WarehouseHandler) GetPoolConfiguration(c *fiber.Ctx) error {
	ctx := c.UserContext()

	summary, err := h.Service.GetPoolConfiguration(ctx)
	if err != nil {
		return http.WithError(c, err)
	}

	return http.OK(c, summary)
}

// WarmPool runs the one-shot warm-up and returns its report.
func (h *WarehouseHandler) WarmPool(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	input, _ := p.(*services.WarmPoolInput)

	report, err := h.Service.WarmPool(ctx, input)
	if err != nil {
		return http.WithError(c, err)
	}

	return http.OK(c, report)
}

// Ping runs the validation query through the retrying execution path.
func (h *WarehouseHandler) Ping(c *fiber.Ctx) error {
	ctx := c.UserContext()

	result, err := h.Service.Ping(ctx, pkg.RequestIDFromContext(ctx))
	if err != nil {
		return http.WithError(c, err)
	}

	return http.OK(c, result)
}
