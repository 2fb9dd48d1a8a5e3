// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LerianStudio/warehouse-pool/components/api/internal/services"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestApp(t *testing.T, setup func(pool *services.MockWarehousePool)) *fiber.App {
	t.Helper()

	ctrl := gomock.NewController(t)
	pool := services.NewMockWarehousePool(ctrl)

	if setup != nil {
		setup(pool)
	}

	handler := &WarehouseHandler{Service: &services.UseCase{Pool: pool}}

	return NewRoutes(&log.NoneLogger{}, handler)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*stdhttp.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

func TestHealthRoute(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	resp, body := doRequest(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get(constant.RequestIDHeader))
}

func TestReadyRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		health         warehouse.HealthResult
		breaker        warehouse.CircuitBreakerStatus
		expectedStatus int
		expectedBody   string
		expectedMsg    string
	}{
		{
			name:           "ready",
			health:         warehouse.HealthResult{Healthy: true, TotalMs: 4},
			breaker:        warehouse.CircuitBreakerStatus{State: constant.CircuitBreakerStateClosed},
			expectedStatus: stdhttp.StatusOK,
			expectedBody:   "ready",
		},
		{
			name:           "probe failed",
			health:         warehouse.HealthResult{Healthy: false, Error: "connection refused"},
			breaker:        warehouse.CircuitBreakerStatus{State: constant.CircuitBreakerStateClosed},
			expectedStatus: stdhttp.StatusServiceUnavailable,
			expectedBody:   "not_ready",
			expectedMsg:    "connection refused",
		},
		{
			name:           "breaker open",
			health:         warehouse.HealthResult{Healthy: true},
			breaker:        warehouse.CircuitBreakerStatus{State: constant.CircuitBreakerStateOpen, IsOpen: true},
			expectedStatus: stdhttp.StatusServiceUnavailable,
			expectedBody:   "not_ready",
			expectedMsg:    "circuit breaker is open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, func(pool *services.MockWarehousePool) {
				pool.EXPECT().CircuitBreakerStatus().Return(tt.breaker)
				pool.EXPECT().CheckConnectionHealth(gomock.Any()).Return(tt.health)
			})

			resp, body := doRequest(t, app, fiber.MethodGet, "/ready", "", nil)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, tt.expectedBody, body["status"])

			deps, ok := body["dependencies"].(map[string]any)
			require.True(t, ok)

			wh, ok := deps["warehouse"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.expectedBody, wh["status"])

			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, wh["message"])
			}
		})
	}
}

func TestPoolRoute(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, func(pool *services.MockWarehousePool) {
		pool.EXPECT().PoolStats().Return(warehouse.PoolStats{Initialized: true, Max: 10, Total: 3, Idle: 2, Active: 1})
	})

	resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/pool", "", nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["initialized"])
	assert.InDelta(t, 10, body["max"], 0)
	assert.InDelta(t, 3, body["total"], 0)
	assert.Contains(t, body, "circuitBreaker")
}

func TestConfigRoute(t *testing.T) {
	t.Parallel()

	t.Run("resolved", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().PoolConfiguration().Return(warehouse.ConfigurationSummary{Driver: constant.DriverSnowflake, MaxSize: 10, CredentialSource: "path"}, nil)
		})

		resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/config", "", nil)
		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Equal(t, constant.DriverSnowflake, body["driver"])
		assert.NotContains(t, body, "privateKey")
	})

	t.Run("invalid configuration", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().PoolConfiguration().Return(warehouse.ConfigurationSummary{},
				&warehouse.ConfigurationError{Problems: []string{"WAREHOUSE_ACCOUNT is required"}})
		})

		resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/config", "", nil)
		assert.Equal(t, stdhttp.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, constant.ErrConfiguration.Error(), body["code"])
		assert.Contains(t, body["message"], "WAREHOUSE_ACCOUNT is required")
	})
}

func TestCircuitBreakerRoutes(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().CircuitBreakerStatus().Return(warehouse.CircuitBreakerStatus{
				State: constant.CircuitBreakerStateOpen, IsOpen: true, ConsecutiveFailures: 5, Threshold: 5, TimeUntilResetMs: 1200,
			})
		})

		resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/circuit-breaker", "", nil)
		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Equal(t, constant.CircuitBreakerStateOpen, body["state"])
		assert.InDelta(t, 1200, body["timeUntilResetMs"], 0)
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			gomock.InOrder(
				pool.EXPECT().CircuitBreakerStatus().Return(warehouse.CircuitBreakerStatus{State: constant.CircuitBreakerStateOpen, IsOpen: true}),
				pool.EXPECT().ResetCircuitBreaker().Return(true),
				pool.EXPECT().CircuitBreakerStatus().Return(warehouse.CircuitBreakerStatus{State: constant.CircuitBreakerStateClosed}),
			)
		})

		resp, body := doRequest(t, app, fiber.MethodPost, "/v1/warehouse/circuit-breaker/reset", "", nil)
		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Equal(t, constant.CircuitBreakerStateClosed, body["state"])
	})

	t.Run("reset before configuration", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().CircuitBreakerStatus().Return(warehouse.CircuitBreakerStatus{State: constant.CircuitBreakerStateClosed})
			pool.EXPECT().ResetCircuitBreaker().Return(false)
		})

		resp, body := doRequest(t, app, fiber.MethodPost, "/v1/warehouse/circuit-breaker/reset", "", nil)
		assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, constant.ErrCircuitBreakerNotCreated.Error(), body["code"])
	})
}

func TestWarmRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		setup          func(pool *services.MockWarehousePool)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "empty body uses configured size",
			body: "",
			setup: func(pool *services.MockWarehousePool) {
				pool.EXPECT().WarmPool(gomock.Any(), 0).Return(warehouse.WarmReport{Requested: 2, Succeeded: 2, Warmed: true})
			},
			expectedStatus: stdhttp.StatusOK,
		},
		{
			name: "explicit count",
			body: `{"count": 3}`,
			setup: func(pool *services.MockWarehousePool) {
				pool.EXPECT().WarmPool(gomock.Any(), 3).Return(warehouse.WarmReport{Requested: 3, Succeeded: 3, Warmed: true})
			},
			expectedStatus: stdhttp.StatusOK,
		},
		{
			name:           "count above limit",
			body:           `{"count": 101}`,
			expectedStatus: stdhttp.StatusBadRequest,
			expectedCode:   constant.ErrBadRequest.Error(),
		},
		{
			name:           "unknown field",
			body:           `{"count": 1, "force": true}`,
			expectedStatus: stdhttp.StatusBadRequest,
			expectedCode:   constant.ErrUnexpectedFieldsInTheRequest.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, tt.setup)

			resp, body := doRequest(t, app, fiber.MethodPost, "/v1/warehouse/warm", tt.body, nil)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["code"])
			} else {
				assert.Equal(t, true, body["warmed"])
			}
		})
	}
}

func TestPingRoute(t *testing.T) {
	t.Parallel()

	t.Run("request id flows to the warehouse call", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().
				ExecWithRetry(gomock.Any(), constant.DefaultValidationQuery, gomock.Nil(), warehouse.ExecOptions{RequestID: "req-123"}).
				Return([]warehouse.Row{{"?column?": int64(1)}}, nil)
		})

		resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/ping", "", map[string]string{constant.RequestIDHeader: "req-123"})
		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Equal(t, "req-123", body["requestId"])
		assert.Equal(t, "req-123", resp.Header.Get(constant.RequestIDHeader))
	})

	t.Run("circuit open maps to 503", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().ExecWithRetry(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, &warehouse.QueryError{Kind: warehouse.KindCircuitOpen})
		})

		resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/ping", "", nil)
		assert.Equal(t, stdhttp.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, constant.ErrCircuitOpen.Error(), body["code"])
	})

	t.Run("retries exhausted on network maps to 502", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, func(pool *services.MockWarehousePool) {
			pool.EXPECT().ExecWithRetry(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, &warehouse.QueryError{Kind: warehouse.KindTransientNetwork, Attempts: 3})
		})

		resp, body := doRequest(t, app, fiber.MethodGet, "/v1/warehouse/ping", "", nil)
		assert.Equal(t, stdhttp.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, constant.ErrTransientNetwork.Error(), body["code"])
	})
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	resp, _ := doRequest(t, app, fiber.MethodGet, "/v1/unknown", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
}
