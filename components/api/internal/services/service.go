// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

//go:generate mockgen --destination=pool.mock.go --package=services . WarehousePool,HealthSource

import (
	"context"

	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
)

// WarehousePool is the part of warehouse.Manager the diagnostics API drives.
type WarehousePool interface {
	ExecWithRetry(ctx context.Context, query string, args []any, opts warehouse.ExecOptions) ([]warehouse.Row, error)
	WarmPool(ctx context.Context, count int) warehouse.WarmReport
	CheckConnectionHealth(ctx context.Context) warehouse.HealthResult
	PoolStats() warehouse.PoolStats
	CircuitBreakerStatus() warehouse.CircuitBreakerStatus
	ResetCircuitBreaker() bool
	PoolConfiguration() (warehouse.ConfigurationSummary, error)
}

// HealthSource exposes the last background probe result.
type HealthSource interface {
	LastResult() (warehouse.HealthResult, bool)
}

// UseCase is a struct to implement the services methods
type UseCase struct {
	// Pool is the warehouse connection manager.
	Pool WarehousePool

	// Monitor is the background health monitor. Nil when the periodic probe is disabled.
	Monitor HealthSource
}
