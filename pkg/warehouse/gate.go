// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg"
)

// Lease is a connection handed out by Acquire. It must be given back exactly once,
// through Release or Destroy; later calls are ignored.
type Lease struct {
	res        lease
	requestID  string
	acquiredAt time.Time
	disposed   atomic.Bool
}

// Session returns the leased session.
func (l *Lease) Session() *Session {
	return l.res.Value()
}

type acquireResult struct {
	res lease
	err error
}

// Acquire checks out a connection, raced against timeout. When the timer wins the caller
// gets a *TimeoutError and the still-running native acquire is handed to a disposer that
// destroys whatever it eventually delivers.
func (p *Pool) Acquire(ctx context.Context, requestID string, timeout time.Duration) (*Lease, error) {
	p.pending.Add(1)
	defer p.pending.Add(-1)

	acquireCtx, cancel := context.WithCancel(ctx)
	results := make(chan acquireResult, 1)

	go func() {
		res, err := p.native.Acquire(acquireCtx)
		results <- acquireResult{res: res, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		cancel()

		if r.err != nil {
			return nil, r.err
		}

		return &Lease{res: r.res, requestID: requestID, acquiredAt: time.Now()}, nil
	case <-timer.C:
		p.metrics.AcquireTimeouts.Add(ctx, 1)
		p.logger.Warnf("Acquire timed out after %s (request %s, pending %d)", timeout, requestID, p.pending.Load())

		go p.disposeLate(results, cancel, requestID)

		return nil, &TimeoutError{Stage: StageAcquire, Timeout: timeout, RequestID: requestID}
	case <-ctx.Done():
		go p.disposeLate(results, cancel, requestID)

		return nil, ctx.Err()
	}
}

// disposeLate waits for an abandoned native acquire. Anything it delivers is destroyed,
// never handed out. After the late-arrival window the native acquire is cancelled.
func (p *Pool) disposeLate(results <-chan acquireResult, cancel context.CancelFunc, requestID string) {
	defer cancel()

	window := time.NewTimer(p.lateArrivalWindow)
	defer window.Stop()

	var r acquireResult

	select {
	case r = <-results:
	case <-window.C:
		cancel()

		r = <-results
	}

	if r.res == nil {
		return
	}

	p.metrics.LateArrivalsDestroyed.Add(context.Background(), 1)
	p.logger.Warnf("Connection %d arrived after its acquire timed out (request %s), destroying it",
		r.res.Value().id, requestID)

	p.safely("destroy", requestID, r.res.Destroy)
}

// Release returns the connection to the pool. Failures are logged and never surface.
func (p *Pool) Release(l *Lease) {
	if l == nil || !l.disposed.CompareAndSwap(false, true) {
		return
	}

	p.safely("release", l.requestID, l.res.Release)
}

// Destroy discards the connection instead of returning it. Failures are logged and never surface.
func (p *Pool) Destroy(l *Lease, reason error) {
	if l == nil || !l.disposed.CompareAndSwap(false, true) {
		return
	}

	if reason != nil {
		p.logger.Warnf("Destroying connection %d (request %s): %v", l.Session().id, l.requestID, reason)
	}

	p.safely("destroy", l.requestID, l.res.Destroy)
}

// Grow opens one extra idle connection, bounded by timeout.
func (p *Pool) Grow(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return p.native.CreateResource(ctx)
}

func (p *Pool) safely(op, requestID string, fn func()) {
	pkg.SafeCall(p.logger, fmt.Sprintf("Connection %s (request %s)", op, requestID), fn)
}
