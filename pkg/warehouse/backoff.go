// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// jitterResolution is the number of distinct jitter factors CryptoJitter can return.
const jitterResolution = 1 << 30

// Backoff computes retry delays as min(Base * 2^attempt, Max) scaled by a jitter factor.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter func() float64
}

// BaseDelay returns the pre-jitter delay for a zero-based attempt number.
// It never decreases as attempt grows and never exceeds Max.
func (b Backoff) BaseDelay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}

	delay := b.Base

	for i := 0; i < attempt; i++ {
		// delay > Max/factor is delay*factor > Max without the overflow.
		if delay > b.Max/constant.BackoffFactor {
			return b.Max
		}

		delay *= constant.BackoffFactor
	}

	if delay > b.Max {
		return b.Max
	}

	return delay
}

// Delay returns the jittered delay for attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	jitter := b.Jitter
	if jitter == nil {
		jitter = CryptoJitter
	}

	return time.Duration(float64(b.BaseDelay(attempt)) * jitter())
}

// CryptoJitter returns a factor in [0.5, 1.5) using crypto/rand for an unbiased distribution.
func CryptoJitter() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(jitterResolution))
	if err != nil {
		return 1
	}

	spread := constant.BackoffJitterMax - constant.BackoffJitterMin

	return constant.BackoffJitterMin + spread*float64(n.Int64())/jitterResolution
}
