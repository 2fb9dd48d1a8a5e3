// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

var testSessionStatements = []string{"SET TIMEZONE", "SET STATEMENT_TIMEOUT", "SET QUERY_TAG"}

// fakeConn answers session statements with no rows and hands everything else to handler.
type fakeConn struct {
	id      int
	handler func(ctx context.Context, query string) ([]Row, error)

	mu      sync.Mutex
	queries []string
	closed  atomic.Bool
}

func (c *fakeConn) Query(ctx context.Context, query string, _ ...any) ([]Row, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()

	if strings.HasPrefix(query, "SET ") {
		return nil, nil
	}

	if c.handler != nil {
		return c.handler(ctx, query)
	}

	return []Row{{"VALUE": int64(1)}}, nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *fakeConn) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.queries...)
}

// fakeWarehouse dials fakeConns and counts factory calls.
type fakeWarehouse struct {
	handler   func(ctx context.Context, query string) ([]Row, error)
	dialError func(n int) error

	mu           sync.Mutex
	conns        []*fakeConn
	dials        int
	factoryCalls atomic.Int32
	closeCalls   atomic.Int32
}

func (w *fakeWarehouse) Close() error {
	w.closeCalls.Add(1)
	return nil
}

func (w *fakeWarehouse) Dial(_ context.Context) (Conn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dials++

	if w.dialError != nil {
		if err := w.dialError(w.dials); err != nil {
			return nil, err
		}
	}

	c := &fakeConn{id: len(w.conns) + 1, handler: w.handler}
	w.conns = append(w.conns, c)

	return c, nil
}

func (w *fakeWarehouse) Conns() []*fakeConn {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]*fakeConn(nil), w.conns...)
}

func (w *fakeWarehouse) factory() DriverFactory {
	return func(_ context.Context, _ *PoolConfiguration) (*Driver, error) {
		w.factoryCalls.Add(1)

		return &Driver{
			Name:   "fake",
			Dialer: w,
			SessionStatements: func(SessionSettings) []string {
				return testSessionStatements
			},
			ValidationQuery: "SELECT 1",
			Closer:          w,
		}, nil
	}
}

// countQueries counts how often query ran across all connections.
func (w *fakeWarehouse) countQueries(query string) int {
	n := 0

	for _, c := range w.Conns() {
		for _, q := range c.Queries() {
			if q == query {
				n++
			}
		}
	}

	return n
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// recordingSleeper advances the fake clock instead of sleeping.
type recordingSleeper struct {
	clock  *fakeClock
	onCall func(n int)

	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	n := len(s.delays)
	s.mu.Unlock()

	if s.onCall != nil {
		s.onCall(n)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.clock.Advance(d)

	return nil
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]time.Duration(nil), s.delays...)
}

func testEnvConfig() *EnvConfig {
	env := validEnvConfig()
	env.PoolMax = "5"
	env.PoolWarmSize = "2"
	env.AcquireTimeoutMs = "1000"
	env.ExecuteTimeoutMs = "1000"
	env.InitTimeoutMs = "1000"
	env.WarmTimeoutMs = "1000"
	env.MaxRetries = "2"
	env.TotalRetryTimeMs = "60000"
	env.BaseBackoffMs = "100"
	env.MaxBackoffMs = "1000"
	env.CircuitThreshold = "3"
	env.CircuitResetMs = "60000"

	return env
}

type harness struct {
	mgr     *Manager
	wh      *fakeWarehouse
	clock   *fakeClock
	sleeper *recordingSleeper
}

func newHarness(t *testing.T, mutate func(*EnvConfig), opts ...Option) *harness {
	t.Helper()

	env := testEnvConfig()
	if mutate != nil {
		mutate(env)
	}

	h := &harness{wh: &fakeWarehouse{}, clock: newFakeClock()}
	h.sleeper = &recordingSleeper{clock: h.clock}

	base := []Option{
		WithClock(h.clock.Now),
		WithSleeper(h.sleeper.Sleep),
		WithJitter(func() float64 { return 1 }),
		WithCancelGrace(100 * time.Millisecond),
	}

	h.mgr = NewManager(env, h.wh.factory(), &log.NoneLogger{}, append(base, opts...)...)
	t.Cleanup(h.mgr.Close)

	return h
}

var (
	errConnectionReset = errors.New("read tcp 10.0.0.1:443: connection reset by peer")
	errJWTInvalid      = errors.New("390144 (08004): JWT token is invalid")
)

// fakeNativePool is a scriptable native pool for gate tests.
type fakeNativePool struct {
	pool         *Pool
	acquireHook  func(ctx context.Context) error
	releasePanic bool

	mu        sync.Mutex
	idle      []*Session
	total     int32
	acquired  int32
	released  int32
	destroyed int32
}

func (f *fakeNativePool) Acquire(ctx context.Context) (lease, error) {
	if f.acquireHook != nil {
		if err := f.acquireHook(ctx); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var s *Session
	if n := len(f.idle); n > 0 {
		s, f.idle = f.idle[n-1], f.idle[:n-1]
	} else {
		f.total++
		s = newSession(uint64(f.total), &fakeConn{id: int(f.total)})
	}

	f.acquired++

	return &fakeLease{native: f, session: s}, nil
}

func (f *fakeNativePool) CreateResource(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.total++
	f.idle = append(f.idle, newSession(uint64(f.total), &fakeConn{id: int(f.total)}))

	return nil
}

func (f *fakeNativePool) Stat() NativeStat {
	f.mu.Lock()
	defer f.mu.Unlock()

	return NativeStat{Total: f.total, Idle: int32(len(f.idle)), Acquired: f.acquired, Max: 10}
}

func (f *fakeNativePool) Close() {}

func (f *fakeNativePool) counts() (released, destroyed, acquired int32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.released, f.destroyed, f.acquired
}

type fakeLease struct {
	native  *fakeNativePool
	session *Session
}

func (l *fakeLease) Value() *Session { return l.session }

func (l *fakeLease) Release() {
	if l.native.releasePanic {
		panic("release on closed pool")
	}

	l.native.mu.Lock()
	defer l.native.mu.Unlock()

	l.native.acquired--
	l.native.released++
	l.native.idle = append(l.native.idle, l.session)
}

func (l *fakeLease) Destroy() {
	l.native.mu.Lock()
	defer l.native.mu.Unlock()

	l.native.acquired--
	l.native.destroyed++
	l.native.total--
	_ = l.session.conn.Close()
}

func newGatePool(t *testing.T, native *fakeNativePool, lateArrivalWindow time.Duration) *Pool {
	t.Helper()

	cfg := &PoolConfiguration{MaxSize: 10}
	driver := &Driver{Name: "fake", Dialer: &fakeWarehouse{}}

	p, err := newPool(cfg, driver, &log.NoneLogger{}, NoopMetrics(), lateArrivalWindow,
		func(p *Pool, _ int32) (nativePool, error) {
			native.pool = p
			return native, nil
		})
	if err != nil {
		t.Fatalf("newPool: %v", err)
	}

	return p
}
