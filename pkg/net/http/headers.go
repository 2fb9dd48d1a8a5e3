// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"strings"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxRequestIDLength bounds caller supplied request ids before they reach log lines and query tags.
const maxRequestIDLength = 128

// GetRequestID returns the caller supplied request id, or a fresh uuid when absent or too long.
func GetRequestID(c *fiber.Ctx) string {
	requestID := strings.TrimSpace(c.Get(constant.RequestIDHeader))
	if requestID == "" || len(requestID) > maxRequestIDLength {
		return uuid.NewString()
	}

	return requestID
}
