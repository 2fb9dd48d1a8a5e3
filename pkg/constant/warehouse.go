// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

// Supported warehouse drivers.
const (
	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
)

// Development defaults.
const (
	DevPoolMaxSize          = 10
	DevPoolWarmSize         = 2
	DevAcquireTimeoutMs     = 15000
	DevExecuteTimeoutMs     = 120000
	DevInitTimeoutMs        = 10000
	DevWarmTimeoutMs        = 20000
	DevMaxRetries           = 3
	DevTotalRetryTimeMs     = 180000
	DevBaseBackoffMs        = 500
	DevMaxBackoffMs         = 8000
	DevCircuitThreshold     = 5
	DevCircuitResetMs       = 30000
	DevHealthCheckInterval  = 0
	DevWarmEnabled          = false
	DefaultQueryTag         = "mediaplan"
	DefaultSessionTimezone  = "UTC"
	DefaultWarehouseDriver  = DriverSnowflake
	DefaultValidationQuery  = "SELECT 1"
	MaxQueryTagLength       = 64
	DefaultPostgresPort     = "5432"
	DefaultPostgresSSLMode  = "prefer"
	DefaultWarmRequestCount = 0
	MaxWarmRequestCount     = 100
)

// Production defaults.
const (
	ProdPoolMaxSize         = 10
	ProdPoolWarmSize        = 2
	ProdAcquireTimeoutMs    = 8000
	ProdExecuteTimeoutMs    = 60000
	ProdInitTimeoutMs       = 5000
	ProdWarmTimeoutMs       = 10000
	ProdMaxRetries          = 2
	ProdTotalRetryTimeMs    = 90000
	ProdBaseBackoffMs       = 250
	ProdMaxBackoffMs        = 4000
	ProdCircuitThreshold    = 5
	ProdCircuitResetMs      = 30000
	ProdHealthCheckInterval = 60000
	ProdWarmEnabled         = true
)

// Gate and probe bounds that are not user configurable.
const (
	// LateArrivalWindow is how long a timed out acquire may still deliver a connection
	// before the pending native request is cancelled.
	LateArrivalWindow = 30 * time.Second

	// StatementCancelGrace is how long a cancelled statement may take to return
	// before its connection is given up and destroyed.
	StatementCancelGrace = 2 * time.Second

	// HealthCheckAcquireCap and HealthCheckQueryCap cap the health probe timeouts.
	HealthCheckAcquireCap = 5 * time.Second
	HealthCheckQueryCap   = 5 * time.Second

	// HealthCheckRequestID tags health probe log lines.
	HealthCheckRequestID = "health-check"

	// WarmupRequestIDPrefix tags warm-up log lines.
	WarmupRequestIDPrefix = "warmup"
)
