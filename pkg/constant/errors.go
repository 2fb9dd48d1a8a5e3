// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import (
	"errors"
)

// Standardized warehouse pool errors.
// Typed errors in pkg/warehouse unwrap to one of these so callers can branch with errors.Is.
var (
	ErrConfiguration    = errors.New("WHP-0001")
	ErrAcquireTimeout   = errors.New("WHP-0002")
	ErrExecuteTimeout   = errors.New("WHP-0003")
	ErrInitTimeout      = errors.New("WHP-0004")
	ErrAuthentication   = errors.New("WHP-0005")
	ErrTransientNetwork = errors.New("WHP-0006")
	ErrCircuitOpen      = errors.New("WHP-0007")
	ErrBudgetExceeded   = errors.New("WHP-0008")
	ErrPoolClosed       = errors.New("WHP-0009")
	ErrQueryFailed      = errors.New("WHP-0010")
	ErrQueryCanceled    = errors.New("WHP-0011")
	ErrWarmTimeout      = errors.New("WHP-0012")
	ErrHealthTimeout    = errors.New("WHP-0013")
	ErrUnsupportedKey   = errors.New("WHP-0014")
	ErrInvalidScanType  = errors.New("WHP-0015")
)

// API errors returned by the diagnostics service.
var (
	ErrInternalServer               = errors.New("WHP-0100")
	ErrBadRequest                   = errors.New("WHP-0101")
	ErrMissingFieldsInRequest       = errors.New("WHP-0102")
	ErrUnexpectedFieldsInTheRequest = errors.New("WHP-0103")
	ErrInvalidWarmCount             = errors.New("WHP-0104")
	ErrCircuitBreakerNotCreated     = errors.New("WHP-0105")
)
