// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/net/http"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.opentelemetry.io/otel"
)

// SecurityHeaders returns a Fiber middleware that sets standard HTTP security
// headers on every response.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "0")

		return c.Next()
	}
}

// RecoverMiddleware returns a Fiber middleware that recovers from panics
// inside handlers. It delegates to Fiber's built-in recover middleware.
func RecoverMiddleware() fiber.Handler {
	return recover.New()
}

// WithRequestContext seeds the request context with the logger, the global tracer and the
// request id, and echoes the request id back in the response.
func WithRequestContext(logger log.Logger) fiber.Handler {
	tracer := otel.Tracer(constant.ApplicationName)

	return func(c *fiber.Ctx) error {
		requestID := http.GetRequestID(c)

		ctx := pkg.ContextWithLogger(c.UserContext(), logger)
		ctx = pkg.ContextWithTracer(ctx, tracer)
		ctx = pkg.ContextWithRequestID(ctx, requestID)

		c.SetUserContext(ctx)
		c.Set(constant.RequestIDHeader, requestID)

		return c.Next()
	}
}

// WithAccessLog logs one line per request once the handler chain has finished.
func WithAccessLog(logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.Infof("%s %s -> %d in %s (request %s)",
			c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start).Round(time.Millisecond),
			pkg.RequestIDFromContext(c.UserContext()))

		return err
	}
}
