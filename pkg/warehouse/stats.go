// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import "github.com/LerianStudio/warehouse-pool/pkg/constant"

// PoolStats is a read-only snapshot of the pool. Before the pool exists every counter is zero.
type PoolStats struct {
	Initialized    bool                 `json:"initialized"`
	Max            int                  `json:"max"`
	Min            int                  `json:"min"`
	Total          int                  `json:"total"`
	Active         int                  `json:"active"`
	Idle           int                  `json:"idle"`
	Pending        int                  `json:"pending"`
	Constructing   int                  `json:"constructing"`
	TotalCreated   int64                `json:"totalCreated"`
	TotalDestroyed int64                `json:"totalDestroyed"`
	Warming        bool                 `json:"warming"`
	Warmed         bool                 `json:"warmed"`
	CircuitBreaker CircuitBreakerStatus `json:"circuitBreaker"`
}

// PoolStats reports pool counters without creating the pool.
func (m *Manager) PoolStats() PoolStats {
	m.mu.Lock()
	pool, cfg := m.pool, m.cfg
	m.mu.Unlock()

	stats := PoolStats{
		Warming:        m.warming.Load(),
		Warmed:         m.warmed.Load(),
		CircuitBreaker: m.CircuitBreakerStatus(),
	}

	if pool == nil {
		return stats
	}

	native := pool.Stat()

	stats.Initialized = true
	stats.Max = cfg.MaxSize
	stats.Min = cfg.MinSize
	stats.Total = int(native.Total)
	stats.Active = int(native.Acquired)
	stats.Idle = int(native.Idle)
	stats.Constructing = int(native.Constructing)
	stats.Pending = int(pool.Pending())
	stats.TotalCreated = pool.Created()
	stats.TotalDestroyed = pool.Destroyed()

	return stats
}

// CircuitBreakerStatus reports the breaker. Before the configuration is resolved the
// breaker does not exist yet and reads as closed.
func (m *Manager) CircuitBreakerStatus() CircuitBreakerStatus {
	cb := m.currentBreaker()
	if cb == nil {
		return CircuitBreakerStatus{State: constant.CircuitBreakerStateClosed}
	}

	return cb.Status()
}

// ResetCircuitBreaker forces the breaker closed. It reports false when no breaker exists yet.
func (m *Manager) ResetCircuitBreaker() bool {
	cb := m.currentBreaker()
	if cb == nil {
		return false
	}

	cb.Reset()

	return true
}

// PoolConfiguration returns the non-secret resolved configuration. It resolves the
// configuration if needed but never creates the pool.
func (m *Manager) PoolConfiguration() (ConfigurationSummary, error) {
	cfg, err := m.configuration()
	if err != nil {
		return ConfigurationSummary{}, err
	}

	return cfg.Summary(), nil
}
