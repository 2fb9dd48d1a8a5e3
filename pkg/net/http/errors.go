// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"errors"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// WithError maps err to the matching HTTP response. Warehouse sentinels are translated
// through pkg.ValidateBusinessError first; anything unmapped becomes a 500.
func WithError(c *fiber.Ctx, err error) error {
	switch e := pkg.ValidateBusinessError(err, "").(type) {
	case pkg.ValidationError:
		return BadRequest(c, pkg.ValidationKnownFieldsError{
			Code:    e.Code,
			Title:   e.Title,
			Message: e.Message,
		})
	case pkg.ValidationKnownFieldsError, pkg.ValidationUnknownFieldsError:
		return BadRequest(c, e)
	case pkg.ServiceUnavailableError:
		return ServiceUnavailable(c, e.Code, e.Title, e.Message)
	case pkg.GatewayTimeoutError:
		return GatewayTimeout(c, e.Code, e.Title, e.Message)
	case pkg.BadGatewayError:
		return BadGateway(c, e.Code, e.Title, e.Message)
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := constant.ErrBadRequest
			if fe.Code >= fiber.StatusInternalServerError {
				code = constant.ErrInternalServer
			}

			return JSONResponseError(c, fe.Code, pkg.ResponseError{
				Code:    code.Error(),
				Title:   utils.StatusMessage(fe.Code),
				Message: fe.Message,
			})
		}

		var iErr pkg.InternalServerError

		_ = errors.As(pkg.ValidateInternalError(err, ""), &iErr)

		return InternalServerError(c, iErr.Code, iErr.Title, iErr.Message)
	}
}

// HandleFiberError is the fiber.Config ErrorHandler for the diagnostics API.
func HandleFiberError(c *fiber.Ctx, err error) error {
	return WithError(c, err)
}
