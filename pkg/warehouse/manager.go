// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"golang.org/x/sync/singleflight"
)

// Manager owns one lazily created warehouse pool together with its circuit breaker and
// warm-up state. Every query goes through ExecWithRetry.
type Manager struct {
	env           *EnvConfig
	driverFactory DriverFactory
	logger        log.Logger
	metrics       *Metrics

	now                func() time.Time
	sleep              func(ctx context.Context, d time.Duration) error
	jitter             func() float64
	nativeFactory      nativePoolFactory
	lateArrivalWindow  time.Duration
	cancelGrace        time.Duration
	healthAcquireLimit time.Duration
	healthQueryLimit   time.Duration

	mu      sync.Mutex
	cfg     *PoolConfiguration
	driver  *Driver
	pool    *Pool
	breaker *CircuitBreaker
	closed  bool
	debug   atomic.Bool

	creating singleflight.Group
	bg       sync.WaitGroup
	bgCtx    context.Context
	bgCancel context.CancelFunc

	warmMu        sync.Mutex
	warmInitiated bool
	warming       atomic.Bool
	warmed        atomic.Bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithMetrics records pool and query metrics on m.
func WithMetrics(metrics *Metrics) Option {
	return func(mgr *Manager) {
		if metrics != nil {
			mgr.metrics = metrics
		}
	}
}

// WithClock replaces the clock used for the retry budget.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Manager) { m.sleep = sleep }
}

// WithJitter replaces the backoff jitter source. It must return a factor in [0.5, 1.5].
func WithJitter(jitter func() float64) Option {
	return func(m *Manager) { m.jitter = jitter }
}

// WithHealthCheckLimits caps the health probe acquire and query timeouts.
func WithHealthCheckLimits(acquire, query time.Duration) Option {
	return func(m *Manager) {
		m.healthAcquireLimit = acquire
		m.healthQueryLimit = query
	}
}

// WithLateArrivalWindow bounds how long an abandoned acquire may still deliver a connection.
func WithLateArrivalWindow(d time.Duration) Option {
	return func(m *Manager) { m.lateArrivalWindow = d }
}

// WithCancelGrace bounds how long a cancelled statement may take to return.
func WithCancelGrace(d time.Duration) Option {
	return func(m *Manager) { m.cancelGrace = d }
}

func withNativePool(factory nativePoolFactory) Option {
	return func(m *Manager) { m.nativeFactory = factory }
}

// NewManager creates a manager. Nothing is validated or dialed until first use.
func NewManager(env *EnvConfig, driverFactory DriverFactory, logger log.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	m := &Manager{
		env:                env,
		driverFactory:      driverFactory,
		logger:             logger,
		metrics:            NoopMetrics(),
		now:                time.Now,
		sleep:              sleepContext,
		jitter:             CryptoJitter,
		nativeFactory:      newPuddlePool,
		lateArrivalWindow:  constant.LateArrivalWindow,
		cancelGrace:        constant.StatementCancelGrace,
		healthAcquireLimit: constant.HealthCheckAcquireCap,
		healthQueryLimit:   constant.HealthCheckQueryCap,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.bgCtx, m.bgCancel = context.WithCancel(context.Background())

	return m
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// configuration resolves and validates the environment once. Failures are not memoized.
func (m *Manager) configuration() (*PoolConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg != nil {
		return m.cfg, nil
	}

	if m.env == nil {
		return nil, &ConfigurationError{Problems: []string{"warehouse configuration is missing"}}
	}

	cfg, err := m.env.Resolve()
	if err != nil {
		return nil, err
	}

	m.cfg = cfg
	m.breaker = NewCircuitBreaker(constant.CircuitBreakerName, uint32(cfg.CircuitBreakerThreshold), cfg.CircuitReset(), m.logger)
	m.debug.Store(cfg.Debug)

	return cfg, nil
}

// Pool returns the memoized pool, creating it on first use. Concurrent first callers share
// one creation. A failed creation is not remembered, so the next call tries again.
func (m *Manager) Pool(ctx context.Context) (*Pool, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, constant.ErrPoolClosed
	}

	if m.pool != nil {
		p := m.pool
		m.mu.Unlock()

		return p, nil
	}
	m.mu.Unlock()

	v, err, _ := m.creating.Do("pool", func() (any, error) {
		return m.createPool(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Pool), nil
}

func (m *Manager) createPool(ctx context.Context) (*Pool, error) {
	m.mu.Lock()
	if m.pool != nil {
		p := m.pool
		m.mu.Unlock()

		return p, nil
	}
	m.mu.Unlock()

	cfg, err := m.configuration()
	if err != nil {
		m.logger.Errorf("Warehouse pool not created: %v", err)
		return nil, err
	}

	if m.driverFactory == nil {
		return nil, &ConfigurationError{Problems: []string{"no warehouse driver factory configured"}}
	}

	driver, err := m.driverFactory(pkg.ContextWithLogger(ctx, m.logger), cfg)
	if err != nil {
		m.logger.Errorf("Warehouse pool not created: %v", err)
		return nil, err
	}

	pool, err := newPool(cfg, driver, m.logger, m.metrics, m.lateArrivalWindow, m.nativeFactory)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		pool.Close()

		return nil, constant.ErrPoolClosed
	}

	m.pool = pool
	m.driver = driver
	m.mu.Unlock()

	m.logger.Infof("Warehouse pool created: driver=%s account=%s max=%d min=%d production=%t",
		cfg.Driver, cfg.Account, cfg.MaxSize, cfg.MinSize, cfg.Production)

	if cfg.ShouldWarmOnCreate() && m.claimWarmup() {
		m.bg.Add(1)

		pkg.GoNamed(m.logger, "warehouse-warmup", func() {
			defer m.bg.Done()

			report := m.WarmPool(m.bgCtx, cfg.WarmSize)
			if len(report.Failures) > 0 {
				m.logger.Warnf("Background warm-up finished with %d failure(s)", len(report.Failures))
			}
		})
	}

	return pool, nil
}

type activePool struct {
	cfg    *PoolConfiguration
	driver *Driver
	pool   *Pool
}

// active returns the configuration, dialect and pool, creating the pool if needed.
func (m *Manager) active(ctx context.Context) (activePool, error) {
	pool, err := m.Pool(ctx)
	if err != nil {
		return activePool{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return activePool{cfg: m.cfg, driver: m.driver, pool: pool}, nil
}

func (m *Manager) currentBreaker() *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.breaker
}

// Close shuts the pool down and waits for background work to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.closed = true
	pool := m.pool
	m.mu.Unlock()

	m.bgCancel()
	m.bg.Wait()

	if pool != nil {
		pool.Close()
		m.logger.Info("Warehouse pool closed")
	}
}

func (m *Manager) debugf(format string, args ...any) {
	if m.debug.Load() {
		m.logger.Debugf(format, args...)
	}
}
