// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"fmt"
	"strings"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// ErrorKind is the failure taxonomy used for retry decisions and reporting.
type ErrorKind string

const (
	KindConfiguration    ErrorKind = "configuration"
	KindAcquireTimeout   ErrorKind = "acquire_timeout"
	KindExecuteTimeout   ErrorKind = "execute_timeout"
	KindInitTimeout      ErrorKind = "init_timeout"
	KindAuthentication   ErrorKind = "authentication"
	KindTransientNetwork ErrorKind = "transient_network"
	KindCircuitOpen      ErrorKind = "circuit_open"
	KindBudgetExceeded   ErrorKind = "budget_exceeded"
	KindPoolClosed       ErrorKind = "pool_closed"
	KindCanceled         ErrorKind = "canceled"
	KindUnknown          ErrorKind = "unknown"
)

// Retriable reports whether another attempt may succeed.
// Acquire timeouts are retried: a saturated pool frequently frees up within one backoff.
func (k ErrorKind) Retriable() bool {
	switch k {
	case KindAcquireTimeout, KindExecuteTimeout, KindInitTimeout, KindTransientNetwork:
		return true
	default:
		return false
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConfiguration:
		return constant.ErrConfiguration
	case KindAcquireTimeout:
		return constant.ErrAcquireTimeout
	case KindExecuteTimeout:
		return constant.ErrExecuteTimeout
	case KindInitTimeout:
		return constant.ErrInitTimeout
	case KindAuthentication:
		return constant.ErrAuthentication
	case KindTransientNetwork:
		return constant.ErrTransientNetwork
	case KindCircuitOpen:
		return constant.ErrCircuitOpen
	case KindBudgetExceeded:
		return constant.ErrBudgetExceeded
	case KindPoolClosed:
		return constant.ErrPoolClosed
	case KindCanceled:
		return constant.ErrQueryCanceled
	default:
		return constant.ErrQueryFailed
	}
}

// ConfigurationError lists every problem found while resolving the pool configuration.
// It is fatal: no pool is created and no network call is made.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "warehouse configuration invalid: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigurationError) Unwrap() error {
	return constant.ErrConfiguration
}

// Stage names the bounded step that timed out.
type Stage string

const (
	StageAcquire Stage = "acquire"
	StageExecute Stage = "execute"
	StageInit    Stage = "init"
	StageWarm    Stage = "warm"
	StageHealth  Stage = "health"
)

// TimeoutError is returned when a bounded stage exceeds its timeout.
type TimeoutError struct {
	Stage     Stage
	Timeout   time.Duration
	RequestID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("warehouse %s timeout after %s (request %s)", e.Stage, e.Timeout, e.RequestID)
}

func (e *TimeoutError) Unwrap() error {
	switch e.Stage {
	case StageAcquire:
		return constant.ErrAcquireTimeout
	case StageInit:
		return constant.ErrInitTimeout
	case StageWarm:
		return constant.ErrWarmTimeout
	case StageHealth:
		return constant.ErrHealthTimeout
	default:
		return constant.ErrExecuteTimeout
	}
}

// Kind maps the stage onto the error taxonomy.
func (e *TimeoutError) Kind() ErrorKind {
	switch e.Stage {
	case StageAcquire:
		return KindAcquireTimeout
	case StageInit:
		return KindInitTimeout
	default:
		return KindExecuteTimeout
	}
}

// QueryError is the single normalized error ExecWithRetry returns.
// It unwraps to both the kind sentinel and the original cause.
type QueryError struct {
	Kind      ErrorKind
	RequestID string
	Attempts  int
	Elapsed   time.Duration
	Err       error
}

func (e *QueryError) Error() string {
	cause := "no attempt was made"
	if e.Err != nil {
		cause = e.Err.Error()
	}

	return fmt.Sprintf("warehouse query failed (%s) after %d attempt(s) in %s (request %s): %s",
		e.Kind, e.Attempts, e.Elapsed.Round(time.Millisecond), e.RequestID, cause)
}

func (e *QueryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}

	return []error{e.Kind.sentinel(), e.Err}
}
