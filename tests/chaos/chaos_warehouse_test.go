//go:build chaos

// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package chaos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/dialect"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
	"github.com/LerianStudio/warehouse-pool/tests/utils/chaos"
	"github.com/LerianStudio/warehouse-pool/tests/utils/services"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProxiedManager(t *testing.T, overrides ...func(env *warehouse.EnvConfig)) *warehouse.Manager {
	t.Helper()

	mgr := warehouse.NewManager(services.NewWarehouseEnv(proxiedEndpoint, overrides...), dialect.Factory, &log.NoneLogger{})
	t.Cleanup(mgr.Close)

	return mgr
}

func TestChaos_LatencyOpensCircuitBreaker(t *testing.T) {
	restoreProxy(t)

	mgr := newProxiedManager(t, func(env *warehouse.EnvConfig) {
		env.MaxRetries = "0"
		env.ExecuteTimeoutMs = "1000"
		env.CircuitThreshold = "2"
		env.CircuitResetMs = "1500"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report := mgr.WarmPool(ctx, 2)
	require.Equal(t, 2, report.Succeeded, report.Failures)

	require.NoError(t, chaos.InjectLatency(postgresProxy, 2500, 0))

	for i := 0; i < 2; i++ {
		_, err := mgr.ExecWithRetry(ctx, "SELECT 1", nil, warehouse.ExecOptions{})
		require.Error(t, err)
	}

	status := mgr.CircuitBreakerStatus()
	assert.True(t, status.IsOpen)
	assert.Equal(t, constant.CircuitBreakerStateOpen, status.State)

	_, err := mgr.ExecWithRetry(ctx, "SELECT 1", nil, warehouse.ExecOptions{RequestID: "chaos-fast-fail"})

	var queryErr *warehouse.QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, warehouse.KindCircuitOpen, queryErr.Kind)
	assert.Equal(t, 0, queryErr.Attempts)

	require.NoError(t, chaos.RemoveAllToxics(postgresProxy))

	// After the reset window a single trial is let through and closes the breaker.
	assert.Eventually(t, func() bool {
		_, err := mgr.ExecWithRetry(ctx, "SELECT 1", nil, warehouse.ExecOptions{})
		return err == nil
	}, 15*time.Second, 250*time.Millisecond)

	assert.Equal(t, constant.CircuitBreakerStateClosed, mgr.CircuitBreakerStatus().State)
}

func TestChaos_ConnectionCutIsRetried(t *testing.T) {
	restoreProxy(t)

	mgr := newProxiedManager(t, func(env *warehouse.EnvConfig) {
		env.MaxRetries = "6"
		env.BaseBackoffMs = "200"
		env.MaxBackoffMs = "1000"
		env.CircuitThreshold = "5"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report := mgr.WarmPool(ctx, 2)
	require.Equal(t, 2, report.Succeeded, report.Failures)

	require.NoError(t, chaos.DisableProxy(postgresProxy))

	go func() {
		time.Sleep(500 * time.Millisecond)

		_ = chaos.EnableProxy(postgresProxy)
	}()

	rows, err := mgr.ExecWithRetry(ctx, "SELECT 1 AS one", nil, warehouse.ExecOptions{RequestID: "chaos-cut"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows[0]["one"])

	stats := mgr.PoolStats()
	assert.GreaterOrEqual(t, stats.TotalDestroyed, int64(1))
	assert.False(t, stats.CircuitBreaker.IsOpen)
	assert.Zero(t, stats.CircuitBreaker.ConsecutiveFailures)
}

func TestChaos_HealthProbeDoesNotTripBreaker(t *testing.T) {
	restoreProxy(t)

	mgr := newProxiedManager(t, func(env *warehouse.EnvConfig) {
		env.CircuitThreshold = "1"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	require.True(t, mgr.CheckConnectionHealth(ctx).Healthy)

	require.NoError(t, chaos.InjectConnectionLoss(postgresProxy))

	for i := 0; i < 3; i++ {
		result := mgr.CheckConnectionHealth(ctx)
		assert.False(t, result.Healthy)
		assert.NotEmpty(t, result.Error)
	}

	status := mgr.CircuitBreakerStatus()
	assert.False(t, status.IsOpen)
	assert.Zero(t, status.ConsecutiveFailures)
	assert.Zero(t, mgr.PoolStats().Active)
}

func TestChaos_ResetPeerExhaustsRetriesAsTransient(t *testing.T) {
	restoreProxy(t)

	mgr := newProxiedManager(t, func(env *warehouse.EnvConfig) {
		env.MaxRetries = "1"
		env.BaseBackoffMs = "100"
		env.MaxBackoffMs = "500"
		env.CircuitThreshold = "5"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report := mgr.WarmPool(ctx, 1)
	require.Equal(t, 1, report.Succeeded, report.Failures)

	require.NoError(t, chaos.InjectResetPeer(postgresProxy, 0))

	_, err := mgr.ExecWithRetry(ctx, "SELECT 1", nil, warehouse.ExecOptions{RequestID: "chaos-reset"})
	require.Error(t, err)

	var qe *warehouse.QueryError
	require.True(t, errors.As(err, &qe), "expected *QueryError, got %T", err)

	assert.Equal(t, warehouse.KindTransientNetwork, qe.Kind)
	assert.Equal(t, 2, qe.Attempts)
	assert.ErrorIs(t, err, constant.ErrTransientNetwork)
	assert.EqualValues(t, 1, mgr.CircuitBreakerStatus().ConsecutiveFailures)
}
