// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/jackc/puddle/v2"
)

// lease is a checked-out native resource.
type lease interface {
	Value() *Session
	Release()
	Destroy()
}

// nativePool is the resource pool underneath the gate.
type nativePool interface {
	Acquire(ctx context.Context) (lease, error)
	CreateResource(ctx context.Context) error
	Stat() NativeStat
	Close()
}

// NativeStat is a snapshot of the native pool counters.
type NativeStat struct {
	Total        int32
	Idle         int32
	Acquired     int32
	Constructing int32
	Max          int32
}

type nativePoolFactory func(p *Pool, maxSize int32) (nativePool, error)

// Pool is the bounded set of warehouse sessions plus the acquire/release gate around it.
type Pool struct {
	native            nativePool
	driver            *Driver
	logger            log.Logger
	metrics           *Metrics
	lateArrivalWindow time.Duration

	pending   atomic.Int64
	created   atomic.Int64
	destroyed atomic.Int64
	nextID    atomic.Uint64
}

func newPool(cfg *PoolConfiguration, driver *Driver, logger log.Logger, metrics *Metrics,
	lateArrivalWindow time.Duration, factory nativePoolFactory,
) (*Pool, error) {
	if driver == nil || driver.Dialer == nil {
		return nil, errors.New("warehouse driver has no dialer")
	}

	p := &Pool{
		driver:            driver,
		logger:            logger,
		metrics:           metrics,
		lateArrivalWindow: lateArrivalWindow,
	}

	native, err := factory(p, int32(cfg.MaxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse pool: %w", err)
	}

	p.native = native

	return p, nil
}

func (p *Pool) construct(ctx context.Context) (*Session, error) {
	conn, err := p.driver.Dialer.Dial(ctx)
	if err != nil {
		p.logger.Warnf("Failed to open %s connection: %v", p.driver.Name, err)
		return nil, err
	}

	s := newSession(p.nextID.Add(1), conn)

	p.created.Add(1)
	p.metrics.ConnectionsCreated.Add(ctx, 1)
	p.logger.Debugf("Opened %s connection %d", p.driver.Name, s.id)

	return s, nil
}

func (p *Pool) destruct(s *Session) {
	if err := s.conn.Close(); err != nil {
		p.logger.Warnf("Failed to close %s connection %d: %v", p.driver.Name, s.id, err)
	}

	p.destroyed.Add(1)
	p.metrics.ConnectionsDestroyed.Add(context.Background(), 1)
	p.logger.Debugf("Closed %s connection %d", p.driver.Name, s.id)
}

// Stat returns the native counters.
func (p *Pool) Stat() NativeStat {
	return p.native.Stat()
}

// Pending is the number of callers currently waiting in Acquire.
func (p *Pool) Pending() int64 { return p.pending.Load() }

// Created is the number of physical connections opened over the pool lifetime.
func (p *Pool) Created() int64 { return p.created.Load() }

// Destroyed is the number of physical connections closed over the pool lifetime.
func (p *Pool) Destroyed() int64 { return p.destroyed.Load() }

// Close destroys idle connections, waits for acquired ones to come back and then
// releases the dialer.
func (p *Pool) Close() {
	p.native.Close()

	if p.driver.Closer == nil {
		return
	}

	if err := p.driver.Closer.Close(); err != nil {
		p.logger.Warnf("Failed to close %s dialer: %v", p.driver.Name, err)
	}
}

type puddlePool struct {
	pool *puddle.Pool[*Session]
}

func newPuddlePool(p *Pool, maxSize int32) (nativePool, error) {
	pool, err := puddle.NewPool(&puddle.Config[*Session]{
		Constructor: p.construct,
		Destructor:  p.destruct,
		MaxSize:     maxSize,
	})
	if err != nil {
		return nil, err
	}

	return &puddlePool{pool: pool}, nil
}

func (pp *puddlePool) Acquire(ctx context.Context) (lease, error) {
	res, err := pp.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, fmt.Errorf("%w: %w", constant.ErrPoolClosed, err)
		}

		return nil, err
	}

	return res, nil
}

func (pp *puddlePool) CreateResource(ctx context.Context) error {
	return pp.pool.CreateResource(ctx)
}

func (pp *puddlePool) Stat() NativeStat {
	s := pp.pool.Stat()

	return NativeStat{
		Total:        s.TotalResources(),
		Idle:         s.IdleResources(),
		Acquired:     s.AcquiredResources(),
		Constructing: s.ConstructingResources(),
		Max:          s.MaxResources(),
	}
}

func (pp *puddlePool) Close() {
	pp.pool.Close()
}
