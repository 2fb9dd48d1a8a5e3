// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	healthy atomic.Bool
	calls   atomic.Int32
}

func (p *fakeProbe) CheckConnectionHealth(context.Context) HealthResult {
	p.calls.Add(1)

	r := HealthResult{Healthy: p.healthy.Load(), CheckedAt: time.Now()}
	if !r.Healthy {
		r.Error = "warehouse acquire timeout after 5s (request health-check)"
	}

	return r
}

func (p *fakeProbe) CircuitBreakerStatus() CircuitBreakerStatus {
	return CircuitBreakerStatus{State: "closed"}
}

func TestHealthMonitor_ProbesPeriodically(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{}
	probe.healthy.Store(true)

	hm := NewHealthMonitor(probe, 10*time.Millisecond, &log.NoneLogger{})

	_, ok := hm.LastResult()
	assert.False(t, ok)

	hm.Start()

	assert.Eventually(t, func() bool { return hm.Checks() >= 2 }, time.Second, 5*time.Millisecond)

	last, ok := hm.LastResult()
	require.True(t, ok)
	assert.True(t, last.Healthy)

	probe.healthy.Store(false)

	assert.Eventually(t, func() bool {
		r, _ := hm.LastResult()
		return !r.Healthy
	}, time.Second, 5*time.Millisecond)

	hm.Stop()
	hm.Stop()

	calls := probe.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, probe.calls.Load(), "no probes after Stop")
}
