// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ExecOptions carries per-call settings.
type ExecOptions struct {
	// RequestID correlates log lines and the session query tag. Falls back to the
	// request id in ctx, then to a fresh uuid.
	RequestID string
}

// ExecWithRetry runs query on a pooled connection under the circuit breaker, retrying
// retriable failures with exponential backoff inside the total retry budget. Any failure
// is returned as a *QueryError.
func (m *Manager) ExecWithRetry(ctx context.Context, query string, args []any, opts ExecOptions) ([]Row, error) {
	requestID := resolveRequestID(ctx, opts.RequestID)

	ctx, span := pkg.NewTracerFromContext(ctx).Start(ctx, "warehouse.exec_with_retry")
	defer span.End()

	span.SetAttributes(attribute.String("warehouse.request_id", requestID))

	cfg, err := m.configuration()
	if err != nil {
		return nil, m.fail(ctx, span, &QueryError{Kind: KindConfiguration, RequestID: requestID, Err: err})
	}

	done, err := m.currentBreaker().Allow()
	if err != nil {
		m.metrics.CircuitRejections.Add(ctx, 1)
		m.logger.Warnf("Circuit breaker is open, rejecting warehouse query (request %s)", requestID)

		return nil, m.fail(ctx, span, &QueryError{Kind: KindCircuitOpen, RequestID: requestID, Err: err})
	}

	backoff := Backoff{Base: cfg.BaseBackoff(), Max: cfg.MaxBackoff(), Jitter: m.jitter}
	budget := cfg.TotalRetryTime()
	start := m.now()

	var lastErr error

	for attempt := 0; ; attempt++ {
		elapsed := m.now().Sub(start)
		if elapsed >= budget {
			done(false)

			cause := lastErr
			if cause == nil {
				cause = fmt.Errorf("total retry budget of %s exhausted", budget)
			}

			return nil, m.fail(ctx, span, &QueryError{
				Kind: KindBudgetExceeded, RequestID: requestID, Attempts: attempt, Elapsed: elapsed, Err: cause,
			})
		}

		m.metrics.QueryAttempts.Add(ctx, 1)
		span.AddEvent("attempt", trace.WithAttributes(attribute.Int("warehouse.attempt", attempt+1)))
		m.debugf("Warehouse attempt %d/%d (request %s)", attempt+1, cfg.MaxRetries+1, requestID)

		rows, err := m.attempt(ctx, requestID, query, args)
		if err == nil {
			done(true)

			total := m.now().Sub(start)
			m.metrics.QueryDuration.Record(ctx, float64(total)/float64(time.Millisecond))
			m.debugf("Warehouse query succeeded after %d attempt(s) in %s (request %s)", attempt+1, total, requestID)

			return rows, nil
		}

		lastErr = err
		kind := Classify(err)

		if !kind.Retriable() || attempt >= cfg.MaxRetries {
			done(false)

			return nil, m.fail(ctx, span, &QueryError{
				Kind: kind, RequestID: requestID, Attempts: attempt + 1, Elapsed: m.now().Sub(start), Err: err,
			})
		}

		delay := backoff.Delay(attempt)

		remaining := budget - m.now().Sub(start)
		if remaining < delay {
			done(false)

			m.logger.Warnf("Not retrying warehouse query: backoff %s exceeds remaining budget %s (request %s)",
				delay, remaining, requestID)

			return nil, m.fail(ctx, span, &QueryError{
				Kind: KindBudgetExceeded, RequestID: requestID, Attempts: attempt + 1, Elapsed: m.now().Sub(start), Err: err,
			})
		}

		m.metrics.QueryRetries.Add(ctx, 1)
		m.logger.Warnf("Warehouse attempt %d failed (%s), retrying in %s (request %s): %v",
			attempt+1, kind, delay.Round(time.Millisecond), requestID, err)

		if err := m.sleep(ctx, delay); err != nil {
			done(false)

			return nil, m.fail(ctx, span, &QueryError{
				Kind: KindCanceled, RequestID: requestID, Attempts: attempt + 1, Elapsed: m.now().Sub(start), Err: err,
			})
		}
	}
}

// attempt performs one acquire, init, execute, release cycle. A connection that failed
// during init or execution is destroyed rather than released.
func (m *Manager) attempt(ctx context.Context, requestID, query string, args []any) ([]Row, error) {
	rt, err := m.active(ctx)
	if err != nil {
		return nil, err
	}

	l, err := rt.pool.Acquire(ctx, requestID, rt.cfg.AcquireTimeout())
	if err != nil {
		return nil, err
	}

	if err := m.InitSession(ctx, l.Session(), requestID); err != nil {
		rt.pool.Destroy(l, err)
		return nil, err
	}

	rows, err := m.execute(ctx, l.Session(), requestID, query, args, rt.cfg.ExecuteTimeout(), StageExecute)
	if err != nil {
		rt.pool.Destroy(l, err)
		return nil, err
	}

	rt.pool.Release(l)

	return rows, nil
}

func (m *Manager) fail(ctx context.Context, span trace.Span, qe *QueryError) error {
	m.metrics.QueryFailures.Add(ctx, 1, kindAttr(qe.Kind))

	span.RecordError(qe)
	span.SetStatus(codes.Error, string(qe.Kind))

	if qe.Kind != KindCircuitOpen {
		m.logger.Errorf("Warehouse query failed: %v", qe)
	}

	return qe
}

func resolveRequestID(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}

	if id := pkg.RequestIDFromContext(ctx); id != "" {
		return id
	}

	return uuid.NewString()
}

// QueryInto runs ExecWithRetry and maps every row through scan.
func QueryInto[T any](ctx context.Context, m *Manager, query string, args []any, opts ExecOptions, scan func(Row) (T, error)) ([]T, error) {
	rows, err := m.ExecWithRetry(ctx, query, args, opts)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))

	for i, row := range rows {
		v, err := scan(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", constant.ErrInvalidScanType, i, err)
		}

		out = append(out, v)
	}

	return out, nil
}

// ColumnAs extracts a typed column value from a row.
func ColumnAs[T any](row Row, column string) (T, error) {
	var zero T

	raw, ok := row[column]
	if !ok {
		return zero, fmt.Errorf("column %q not found", column)
	}

	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("column %q has type %T", column, raw)
	}

	return v, nil
}
