// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// WarmFailure describes one connection that could not be warmed.
type WarmFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// WarmReport summarizes a warm-up run.
type WarmReport struct {
	Skipped    bool          `json:"skipped"`
	Requested  int           `json:"requested"`
	Succeeded  int           `json:"succeeded"`
	Failures   []WarmFailure `json:"failures,omitempty"`
	DurationMs int64         `json:"durationMs"`
	Warmed     bool          `json:"warmed"`
}

// claimWarmup marks warm-up as initiated. It returns false if it already was.
func (m *Manager) claimWarmup() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.warmInitiated {
		return false
	}

	m.warmInitiated = true

	return true
}

// WarmPool opens, initializes and validates up to count connections, one at a time, so
// that at most one connection is checked out by the warm-up at any moment. It runs at
// most once per manager; later calls return a skipped report. count <= 0 uses the
// configured warm size. Failures are collected in the report, never returned.
func (m *Manager) WarmPool(ctx context.Context, count int) WarmReport {
	m.warmMu.Lock()
	defer m.warmMu.Unlock()

	if m.warmed.Load() {
		return WarmReport{Skipped: true, Warmed: true}
	}

	m.claimWarmup()
	m.warming.Store(true)

	start := time.Now()
	report := WarmReport{Requested: count}

	defer func() {
		m.warming.Store(false)
		m.warmed.Store(true)
	}()

	finish := func() WarmReport {
		report.DurationMs = time.Since(start).Milliseconds()
		report.Warmed = true

		m.logger.Infof("Warehouse warm-up finished: %d/%d connections ready in %dms",
			report.Succeeded, report.Requested, report.DurationMs)

		return report
	}

	rt, err := m.active(ctx)
	if err != nil {
		report.Failures = append(report.Failures, WarmFailure{Index: 0, Error: err.Error()})
		return finish()
	}

	if count <= 0 {
		count = rt.cfg.WarmSize
	}

	if count > rt.cfg.MaxSize {
		count = rt.cfg.MaxSize
	}

	report.Requested = count

	m.logger.Infof("Warming %d warehouse connection(s)", count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, WarmFailure{Index: i, Error: err.Error()})
			break
		}

		if err := m.warmOne(ctx, rt, i); err != nil {
			m.logger.Warnf("Warm-up of connection %d failed: %v", i+1, err)
			report.Failures = append(report.Failures, WarmFailure{Index: i, Error: err.Error()})

			continue
		}

		report.Succeeded++
	}

	return finish()
}

func (m *Manager) warmOne(ctx context.Context, rt activePool, index int) error {
	requestID := fmt.Sprintf("%s-%d", constant.WarmupRequestIDPrefix, index+1)
	timeout := rt.cfg.WarmTimeout()

	if rt.pool.Stat().Total < int32(index+1) {
		if err := rt.pool.Grow(ctx, timeout); err != nil {
			return fmt.Errorf("open connection: %w", err)
		}
	}

	l, err := rt.pool.Acquire(ctx, requestID, timeout)
	if err != nil {
		return err
	}

	if err := m.InitSession(ctx, l.Session(), requestID); err != nil {
		rt.pool.Destroy(l, err)
		return err
	}

	if _, err := m.execute(ctx, l.Session(), requestID, validationQuery(rt.driver), nil, timeout, StageWarm); err != nil {
		rt.pool.Destroy(l, err)
		return err
	}

	rt.pool.Release(l)

	return nil
}

// IsWarmed reports whether a warm-up has completed.
func (m *Manager) IsWarmed() bool { return m.warmed.Load() }

// IsWarming reports whether a warm-up is running.
func (m *Manager) IsWarming() bool { return m.warming.Load() }

func validationQuery(d *Driver) string {
	if d.ValidationQuery != "" {
		return d.ValidationQuery
	}

	return constant.DefaultValidationQuery
}
