// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the warehouse pool OTel instruments.
// All fields are non-nil after NewMetrics or NoopMetrics, so callers record without nil checks.
type Metrics struct {
	// ConnectionsCreated counts physical sessions opened by the pool.
	ConnectionsCreated metric.Int64Counter

	// ConnectionsDestroyed counts physical sessions closed by the pool.
	ConnectionsDestroyed metric.Int64Counter

	// AcquireTimeouts counts acquires that lost the race against their timer.
	AcquireTimeouts metric.Int64Counter

	// LateArrivalsDestroyed counts connections delivered after their acquire had already timed out.
	LateArrivalsDestroyed metric.Int64Counter

	QueryAttempts     metric.Int64Counter
	QueryRetries      metric.Int64Counter
	QueryFailures     metric.Int64Counter
	CircuitRejections metric.Int64Counter

	// QueryDuration records the wall time of successful ExecWithRetry calls, retries included.
	QueryDuration metric.Float64Histogram
}

type instrumentSpec struct {
	name string
	desc string
	unit string
	dst  *metric.Int64Counter
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []instrumentSpec{
		{"warehouse_connections_created_total", "Physical warehouse sessions opened", "{connection}", &m.ConnectionsCreated},
		{"warehouse_connections_destroyed_total", "Physical warehouse sessions closed", "{connection}", &m.ConnectionsDestroyed},
		{"warehouse_acquire_timeouts_total", "Acquires that timed out", "{acquire}", &m.AcquireTimeouts},
		{"warehouse_late_arrivals_destroyed_total", "Connections destroyed after arriving past their acquire timeout", "{connection}", &m.LateArrivalsDestroyed},
		{"warehouse_query_attempts_total", "Query attempts including retries", "{attempt}", &m.QueryAttempts},
		{"warehouse_query_retries_total", "Query retries after a retriable failure", "{retry}", &m.QueryRetries},
		{"warehouse_query_failures_total", "Terminal query failures by kind", "{failure}", &m.QueryFailures},
		{"warehouse_circuit_rejections_total", "Calls rejected by the open circuit breaker", "{call}", &m.CircuitRejections},
	}

	for _, spec := range counters {
		counter, err := meter.Int64Counter(spec.name, metric.WithDescription(spec.desc), metric.WithUnit(spec.unit))
		if err != nil {
			return nil, fmt.Errorf("create %s counter: %w", spec.name, err)
		}

		*spec.dst = counter
	}

	duration, err := meter.Float64Histogram(
		"warehouse_query_duration_ms",
		metric.WithDescription("Wall time of successful warehouse queries including retries"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create warehouse_query_duration_ms histogram: %w", err)
	}

	m.QueryDuration = duration

	return m, nil
}

// NoopMetrics returns instruments backed by the OTel no-op meter.
func NoopMetrics() *Metrics {
	// noop meter never returns errors
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("noop"))

	return m
}

func kindAttr(kind ErrorKind) metric.AddOption {
	return metric.WithAttributes(attribute.String("kind", string(kind)))
}
