// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"

	"go.opentelemetry.io/otel/attribute"
)

// GetCircuitBreakerStatus reports the process-wide breaker.
func (uc *UseCase) GetCircuitBreakerStatus(ctx context.Context) warehouse.CircuitBreakerStatus {
	tracer := pkg.NewTracerFromContext(ctx)

	_, span := tracer.Start(ctx, "service.get_circuit_breaker_status")
	defer span.End()

	status := uc.Pool.CircuitBreakerStatus()

	span.SetAttributes(attribute.String("app.warehouse.circuit_state", status.State))

	return status
}

// ResetCircuitBreaker forces the breaker closed and returns its new status.
func (uc *UseCase) ResetCircuitBreaker(ctx context.Context) (warehouse.CircuitBreakerStatus, error) {
	logger := pkg.NewLoggerFromContext(ctx)
	tracer := pkg.NewTracerFromContext(ctx)

	_, span := tracer.Start(ctx, "service.reset_circuit_breaker")
	defer span.End()

	before := uc.Pool.CircuitBreakerStatus()

	if !uc.Pool.ResetCircuitBreaker() {
		return warehouse.CircuitBreakerStatus{}, pkg.ValidateBusinessError(constant.ErrCircuitBreakerNotCreated, "circuit-breaker")
	}

	logger.Warnf("Warehouse circuit breaker manually reset (was %s with %d consecutive failures)",
		before.State, before.ConsecutiveFailures)

	return uc.Pool.CircuitBreakerStatus(), nil
}
