// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"sync"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/sony/gobreaker"
)

// CircuitBreakerStatus is a point-in-time view of the breaker.
type CircuitBreakerStatus struct {
	State               string `json:"state"`
	IsOpen              bool   `json:"isOpen"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`
	Threshold           uint32 `json:"threshold"`
	TimeSinceOpenMs     int64  `json:"timeSinceOpenMs"`
	TimeUntilResetMs    int64  `json:"timeUntilResetMs"`
}

// CircuitBreaker guards the warehouse: after Threshold consecutive terminal failures it
// rejects calls until the reset window elapses, then lets exactly one trial through.
type CircuitBreaker struct {
	name         string
	threshold    uint32
	resetTimeout time.Duration
	logger       log.Logger

	bmu     sync.RWMutex
	breaker *gobreaker.TwoStepCircuitBreaker

	mu                  sync.Mutex
	consecutiveFailures uint32
	openedAt            time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(name string, threshold uint32, resetTimeout time.Duration, logger log.Logger) *CircuitBreaker {
	if threshold == 0 {
		threshold = 1
	}

	cb := &CircuitBreaker{
		name:         name,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		logger:       logger,
	}

	cb.breaker = gobreaker.NewTwoStepCircuitBreaker(cb.settings())

	return cb
}

func (cb *CircuitBreaker) settings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        cb.name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cb.resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cb.threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cb.logger.Warnf("Circuit Breaker [%s] state changed: %s -> %s", name, from.String(), to.String())

			cb.mu.Lock()
			defer cb.mu.Unlock()

			switch to {
			case gobreaker.StateOpen:
				cb.openedAt = time.Now()
				cb.logger.Errorf("Circuit Breaker [%s] OPENED after %d consecutive failures - warehouse calls will fast-fail for %s",
					name, cb.consecutiveFailures, cb.resetTimeout)
			case gobreaker.StateHalfOpen:
				cb.logger.Infof("Circuit Breaker [%s] HALF-OPEN - allowing one trial call", name)
			case gobreaker.StateClosed:
				cb.openedAt = time.Time{}
				cb.logger.Infof("Circuit Breaker [%s] CLOSED - warehouse is healthy", name)
			}
		},
	}
}

func (cb *CircuitBreaker) current() *gobreaker.TwoStepCircuitBreaker {
	cb.bmu.RLock()
	defer cb.bmu.RUnlock()

	return cb.breaker
}

// Allow asks for permission to run one unit of work. On success the returned callback
// must be called exactly once with the outcome. A rejection returns
// gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
func (cb *CircuitBreaker) Allow() (func(success bool), error) {
	done, err := cb.current().Allow()
	if err != nil {
		return nil, err
	}

	var once sync.Once

	return func(success bool) {
		once.Do(func() {
			cb.record(success)
			done(success)
		})
	}, nil
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		cb.consecutiveFailures = 0
		return
	}

	cb.consecutiveFailures++
}

// State returns the breaker state name.
func (cb *CircuitBreaker) State() string {
	return stateName(cb.current().State())
}

// Status reports state, failure streak and reset timing.
func (cb *CircuitBreaker) Status() CircuitBreakerStatus {
	// State() may itself move open -> half-open and fire OnStateChange, so it runs before cb.mu is taken.
	state := cb.current().State()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		State:               stateName(state),
		IsOpen:              state != gobreaker.StateClosed,
		ConsecutiveFailures: cb.consecutiveFailures,
		Threshold:           cb.threshold,
	}

	if status.IsOpen && !cb.openedAt.IsZero() {
		since := time.Since(cb.openedAt)
		status.TimeSinceOpenMs = since.Milliseconds()

		if remaining := cb.resetTimeout - since; remaining > 0 {
			status.TimeUntilResetMs = remaining.Milliseconds()
		}
	}

	return status
}

// Reset forces the breaker closed and clears the failure streak.
func (cb *CircuitBreaker) Reset() {
	cb.logger.Infof("Manually resetting circuit breaker: %s", cb.name)

	cb.bmu.Lock()
	cb.breaker = gobreaker.NewTwoStepCircuitBreaker(cb.settings())
	cb.bmu.Unlock()

	cb.mu.Lock()
	cb.consecutiveFailures = 0
	cb.openedAt = time.Time{}
	cb.mu.Unlock()
}

func stateName(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return constant.CircuitBreakerStateClosed
	case gobreaker.StateOpen:
		return constant.CircuitBreakerStateOpen
	case gobreaker.StateHalfOpen:
		return constant.CircuitBreakerStateHalfOpen
	default:
		return constant.CircuitBreakerStateUnknown
	}
}
