// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

// Query retry configuration
const (
	// BackoffJitterMin and BackoffJitterMax bound the multiplicative jitter applied to every retry delay.
	BackoffJitterMin = 0.5
	BackoffJitterMax = 1.5

	// BackoffFactor is the multiplier applied to the base delay on each successive attempt.
	BackoffFactor = 2
)

// Circuit breaker states as exposed by the diagnostics surface.
const (
	CircuitBreakerStateClosed   = "closed"
	CircuitBreakerStateOpen     = "open"
	CircuitBreakerStateHalfOpen = "half-open"
	CircuitBreakerStateUnknown  = "unknown"
)

// CircuitBreakerName identifies the warehouse breaker in logs and metrics.
const CircuitBreakerName = "warehouse"

// MonitorCheckTimeout bounds a single background health probe.
const MonitorCheckTimeout = 15 * time.Second
