// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"

	libOtel "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
)

// GetPoolStats returns the current pool counters. It never creates the pool.
func (uc *UseCase) GetPoolStats(ctx context.Context) warehouse.PoolStats {
	tracer := pkg.NewTracerFromContext(ctx)

	_, span := tracer.Start(ctx, "service.get_pool_stats")
	defer span.End()

	return uc.Pool.PoolStats()
}

// GetPoolConfiguration returns the resolved configuration without secrets.
func (uc *UseCase) GetPoolConfiguration(ctx context.Context) (warehouse.ConfigurationSummary, error) {
	logger := pkg.NewLoggerFromContext(ctx)
	tracer := pkg.NewTracerFromContext(ctx)

	_, span := tracer.Start(ctx, "service.get_pool_configuration")
	defer span.End()

	summary, err := uc.Pool.PoolConfiguration()
	if err != nil {
		libOtel.HandleSpanError(&span, "Warehouse configuration is invalid", err)

		logger.Errorf("Warehouse configuration is invalid: %v", err)

		return warehouse.ConfigurationSummary{}, err
	}

	return summary, nil
}
