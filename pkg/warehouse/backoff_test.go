// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_BaseDelay(t *testing.T) {
	t.Parallel()

	b := Backoff{Base: 500 * time.Millisecond, Max: 8 * time.Second}

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "first retry uses base", attempt: 0, want: 500 * time.Millisecond},
		{name: "second retry doubles", attempt: 1, want: 1 * time.Second},
		{name: "third retry doubles again", attempt: 2, want: 2 * time.Second},
		{name: "fifth retry reaches cap", attempt: 4, want: 8 * time.Second},
		{name: "beyond cap stays capped", attempt: 5, want: 8 * time.Second},
		{name: "huge attempt does not overflow", attempt: 200, want: 8 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, b.BaseDelay(tt.attempt))
		})
	}
}

func TestBackoff_BaseDelayWithOddCap(t *testing.T) {
	t.Parallel()

	b := Backoff{Base: 3, Max: 7}

	assert.Equal(t, time.Duration(3), b.BaseDelay(0))
	assert.Equal(t, time.Duration(6), b.BaseDelay(1), "doubling below the cap is not clamped early")
	assert.Equal(t, time.Duration(7), b.BaseDelay(2))
	assert.Equal(t, time.Duration(7), b.BaseDelay(3))
}

func TestBackoff_BaseDelayIsNonDecreasing(t *testing.T) {
	t.Parallel()

	b := Backoff{Base: 250 * time.Millisecond, Max: 4 * time.Second}

	prev := time.Duration(0)
	for attempt := 0; attempt < 20; attempt++ {
		d := b.BaseDelay(attempt)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, d, b.Max, "attempt %d", attempt)
		prev = d
	}
}

func TestBackoff_ZeroBase(t *testing.T) {
	t.Parallel()

	b := Backoff{Max: time.Second}
	assert.Equal(t, time.Duration(0), b.Delay(3))
}

func TestBackoff_DelayAppliesJitter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		jitter float64
		want   time.Duration
	}{
		{name: "lower bound halves the delay", jitter: 0.5, want: 500 * time.Millisecond},
		{name: "neutral jitter keeps the delay", jitter: 1.0, want: 1 * time.Second},
		{name: "upper bound adds half", jitter: 1.5, want: 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := Backoff{Base: time.Second, Max: 10 * time.Second, Jitter: func() float64 { return tt.jitter }}
			assert.Equal(t, tt.want, b.Delay(0))
		})
	}
}

func TestCryptoJitter_Range(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		j := CryptoJitter()
		assert.GreaterOrEqual(t, j, 0.5)
		assert.Less(t, j, 1.5)
	}
}
