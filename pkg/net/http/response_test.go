// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		respond  func(c *fiber.Ctx) error
		expected int
	}{
		{name: "not found", respond: func(c *fiber.Ctx) error { return NotFound(c, "C", "T", "M") }, expected: stdhttp.StatusNotFound},
		{name: "unprocessable", respond: func(c *fiber.Ctx) error { return UnprocessableEntity(c, "C", "T", "M") }, expected: stdhttp.StatusUnprocessableEntity},
		{name: "internal", respond: func(c *fiber.Ctx) error { return InternalServerError(c, "C", "T", "M") }, expected: stdhttp.StatusInternalServerError},
		{name: "bad gateway", respond: func(c *fiber.Ctx) error { return BadGateway(c, "C", "T", "M") }, expected: stdhttp.StatusBadGateway},
		{name: "unavailable", respond: func(c *fiber.Ctx) error { return ServiceUnavailable(c, "C", "T", "M") }, expected: stdhttp.StatusServiceUnavailable},
		{name: "gateway timeout", respond: func(c *fiber.Ctx) error { return GatewayTimeout(c, "C", "T", "M") }, expected: stdhttp.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := fiber.New()
			app.Get("/test", tt.respond)

			resp, err := app.Test(httptest.NewRequest(stdhttp.MethodGet, "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, map[string]string{"code": "C", "title": "T", "message": "M"}, body)
		})
	}
}

func TestSuccessResponses(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return OK(c, fiber.Map{"status": "ok"}) })
	app.Get("/accepted", func(c *fiber.Ctx) error { return Accepted(c, fiber.Map{"status": "queued"}) })
	app.Get("/custom", func(c *fiber.Ctx) error { return JSONResponse(c, stdhttp.StatusTeapot, fiber.Map{"status": "tea"}) })

	for path, status := range map[string]int{"/ok": 200, "/accepted": 202, "/custom": 418} {
		resp, err := app.Test(httptest.NewRequest(stdhttp.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
		assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))
	}
}
