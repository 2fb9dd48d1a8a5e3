// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// HealthResult is the outcome of a single connection probe.
type HealthResult struct {
	Healthy   bool      `json:"healthy"`
	AcquireMs float64   `json:"acquireMs,omitempty"`
	QueryMs   float64   `json:"queryMs,omitempty"`
	TotalMs   float64   `json:"totalMs"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// CheckConnectionHealth acquires a connection and runs the validation query with capped
// timeouts. It never returns an error and never touches the circuit breaker. The probed
// connection is released when healthy and destroyed otherwise.
func (m *Manager) CheckConnectionHealth(ctx context.Context) HealthResult {
	start := time.Now()
	result := HealthResult{CheckedAt: start}

	finish := func(err error) HealthResult {
		result.TotalMs = elapsedMs(start)
		if err != nil {
			result.Healthy = false
			result.Error = err.Error()
		}

		return result
	}

	rt, err := m.active(ctx)
	if err != nil {
		return finish(err)
	}

	acquireStart := time.Now()

	l, err := rt.pool.Acquire(ctx, constant.HealthCheckRequestID, capTimeout(rt.cfg.AcquireTimeout(), m.healthAcquireLimit))
	result.AcquireMs = elapsedMs(acquireStart)

	if err != nil {
		return finish(err)
	}

	queryStart := time.Now()

	_, err = m.execute(ctx, l.Session(), constant.HealthCheckRequestID, validationQuery(rt.driver), nil,
		capTimeout(rt.cfg.ExecuteTimeout(), m.healthQueryLimit), StageHealth)
	result.QueryMs = elapsedMs(queryStart)

	if err != nil {
		rt.pool.Destroy(l, err)
		return finish(err)
	}

	rt.pool.Release(l)

	result.Healthy = true

	return finish(nil)
}

func capTimeout(configured, limit time.Duration) time.Duration {
	if limit > 0 && configured > limit {
		return limit
	}

	return configured
}

func elapsedMs(since time.Time) float64 {
	return float64(time.Since(since)) / float64(time.Millisecond)
}
