// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// HealthProbe is the part of Manager the monitor needs.
type HealthProbe interface {
	CheckConnectionHealth(ctx context.Context) HealthResult
	CircuitBreakerStatus() CircuitBreakerStatus
}

// HealthMonitor probes the warehouse periodically and logs health transitions.
type HealthMonitor struct {
	probe    HealthProbe
	interval time.Duration
	timeout  time.Duration
	logger   log.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.RWMutex
	last    *HealthResult
	checked int
}

// NewHealthMonitor creates a monitor; it does nothing until Start.
func NewHealthMonitor(probe HealthProbe, interval time.Duration, logger log.Logger) *HealthMonitor {
	return &HealthMonitor{
		probe:    probe,
		interval: interval,
		timeout:  constant.MonitorCheckTimeout,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the probe loop in a separate goroutine.
func (hm *HealthMonitor) Start() {
	hm.wg.Add(1)

	go hm.loop()

	hm.logger.Infof("Warehouse health monitor started - probing every %s", hm.interval)
}

// Stop ends the loop and waits for an in-flight probe. Safe to call more than once.
func (hm *HealthMonitor) Stop() {
	hm.stopOnce.Do(func() {
		close(hm.stopChan)
		hm.wg.Wait()
		hm.logger.Info("Warehouse health monitor stopped")
	})
}

func (hm *HealthMonitor) loop() {
	defer hm.wg.Done()

	ticker := time.NewTicker(hm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hm.check()
		case <-hm.stopChan:
			return
		}
	}
}

func (hm *HealthMonitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), hm.timeout)
	defer cancel()

	result := hm.probe.CheckConnectionHealth(ctx)

	hm.mu.Lock()
	previous := hm.last
	hm.last = &result
	hm.checked++
	hm.mu.Unlock()

	switch {
	case previous == nil || previous.Healthy != result.Healthy:
		if result.Healthy {
			hm.logger.Infof("Warehouse is healthy (acquire %.0fms, query %.0fms)", result.AcquireMs, result.QueryMs)
		} else {
			cb := hm.probe.CircuitBreakerStatus()
			hm.logger.Errorf("Warehouse is unhealthy: %s (circuit breaker %s, %d consecutive failures)",
				result.Error, cb.State, cb.ConsecutiveFailures)
		}
	case !result.Healthy:
		hm.logger.Warnf("Warehouse still unhealthy: %s", result.Error)
	default:
		hm.logger.Debugf("Warehouse health probe ok in %.0fms", result.TotalMs)
	}
}

// LastResult returns the most recent probe result, if any.
func (hm *HealthMonitor) LastResult() (HealthResult, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	if hm.last == nil {
		return HealthResult{}, false
	}

	return *hm.last, true
}

// Checks returns how many probes have run.
func (hm *HealthMonitor) Checks() int {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	return hm.checked
}
