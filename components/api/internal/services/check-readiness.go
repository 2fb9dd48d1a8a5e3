// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
)

const (
	readinessSourceMonitor = "monitor"
	readinessSourceProbe   = "probe"
)

// Readiness is the warehouse readiness verdict and where it came from.
type Readiness struct {
	Health         warehouse.HealthResult         `json:"health"`
	Source         string                         `json:"source"`
	CircuitBreaker warehouse.CircuitBreakerStatus `json:"circuitBreaker"`
}

// Ready reports whether the warehouse can take traffic.
func (r Readiness) Ready() bool {
	return r.Health.Healthy && !r.CircuitBreaker.IsOpen
}

// CheckReadiness uses the background monitor's latest result when one exists and
// probes a connection otherwise.
func (uc *UseCase) CheckReadiness(ctx context.Context) Readiness {
	tracer := pkg.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.check_readiness")
	defer span.End()

	readiness := Readiness{CircuitBreaker: uc.Pool.CircuitBreakerStatus()}

	if uc.Monitor != nil {
		if last, ok := uc.Monitor.LastResult(); ok {
			readiness.Health = last
			readiness.Source = readinessSourceMonitor

			return readiness
		}
	}

	readiness.Health = uc.Pool.CheckConnectionHealth(ctx)
	readiness.Source = readinessSourceProbe

	return readiness
}
