// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"context"
	"testing"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewLoggerFromContext(t *testing.T) {
	t.Parallel()

	logger := &log.NoneLogger{}

	tests := []struct {
		name     string
		ctx      context.Context
		expected log.Logger
	}{
		{
			name:     "context with logger returns it",
			ctx:      ContextWithLogger(context.Background(), logger),
			expected: logger,
		},
		{
			name: "context with nil logger falls back to NoneLogger",
			ctx: context.WithValue(context.Background(), CustomContextKey, &CustomContextKeyValue{
				Logger: nil,
			}),
		},
		{
			name: "empty context falls back to NoneLogger",
			ctx:  context.Background(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewLoggerFromContext(tt.ctx)
			assert.NotNil(t, got)

			if tt.expected != nil {
				assert.Same(t, tt.expected, got)
				return
			}

			_, isNone := got.(*log.NoneLogger)
			assert.True(t, isNone)
		})
	}
}

func TestNewTracerFromContext(t *testing.T) {
	t.Parallel()

	tracer := noop.NewTracerProvider().Tracer("test")

	ctx := ContextWithTracer(context.Background(), tracer)
	assert.Equal(t, tracer, NewTracerFromContext(ctx))

	assert.NotNil(t, NewTracerFromContext(context.Background()))
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := ContextWithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestContextHelpers_DoNotMutateParent(t *testing.T) {
	t.Parallel()

	logger := &log.NoneLogger{}
	parent := ContextWithLogger(context.Background(), logger)
	child := ContextWithRequestID(parent, "child-request")

	assert.Empty(t, RequestIDFromContext(parent))
	assert.Equal(t, "child-request", RequestIDFromContext(child))
	assert.Same(t, logger, NewLoggerFromContext(child))
}
