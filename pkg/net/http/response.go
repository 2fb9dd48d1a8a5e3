// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"github.com/LerianStudio/warehouse-pool/pkg"

	"github.com/gofiber/fiber/v2"
)

// OK sends an HTTP 200 OK response with a custom body.
func OK(c *fiber.Ctx, s any) error {
	return c.Status(fiber.StatusOK).JSON(s)
}

// Accepted sends an HTTP 202 Accepted response with a custom body.
func Accepted(c *fiber.Ctx, s any) error {
	return c.Status(fiber.StatusAccepted).JSON(s)
}

// BadRequest sends an HTTP 400 Bad Request response with a custom body.
func BadRequest(c *fiber.Ctx, s any) error {
	return c.Status(fiber.StatusBadRequest).JSON(s)
}

// NotFound sends an HTTP 404 Not Found response with a custom code, title and message.
func NotFound(c *fiber.Ctx, code, title, message string) error {
	return JSONResponseError(c, fiber.StatusNotFound, pkg.ResponseError{Code: code, Title: title, Message: message})
}

// UnprocessableEntity sends an HTTP 422 Unprocessable Entity response with a custom code, title and message.
func UnprocessableEntity(c *fiber.Ctx, code, title, message string) error {
	return JSONResponseError(c, fiber.StatusUnprocessableEntity, pkg.ResponseError{Code: code, Title: title, Message: message})
}

// InternalServerError sends an HTTP 500 Internal Server Error response.
func InternalServerError(c *fiber.Ctx, code, title, message string) error {
	return JSONResponseError(c, fiber.StatusInternalServerError, pkg.ResponseError{Code: code, Title: title, Message: message})
}

// BadGateway sends an HTTP 502 Bad Gateway response.
func BadGateway(c *fiber.Ctx, code, title, message string) error {
	return JSONResponseError(c, fiber.StatusBadGateway, pkg.ResponseError{Code: code, Title: title, Message: message})
}

// ServiceUnavailable sends an HTTP 503 Service Unavailable response.
func ServiceUnavailable(c *fiber.Ctx, code, title, message string) error {
	return JSONResponseError(c, fiber.StatusServiceUnavailable, pkg.ResponseError{Code: code, Title: title, Message: message})
}

// GatewayTimeout sends an HTTP 504 Gateway Timeout response.
func GatewayTimeout(c *fiber.Ctx, code, title, message string) error {
	return JSONResponseError(c, fiber.StatusGatewayTimeout, pkg.ResponseError{Code: code, Title: title, Message: message})
}

// JSONResponse sends body with the given status.
func JSONResponse(c *fiber.Ctx, status int, body any) error {
	return c.Status(status).JSON(body)
}

// JSONResponseError sends a JSON formatted error response.
func JSONResponseError(c *fiber.Ctx, status int, err pkg.ResponseError) error {
	return c.Status(status).JSON(err)
}
