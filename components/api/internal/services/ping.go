// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"

	libOtel "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PingResult describes a validation query run through the full retry path.
type PingResult struct {
	RequestID  string `json:"requestId"`
	Rows       int    `json:"rows"`
	DurationMs int64  `json:"durationMs"`
}

// Ping runs the validation query through ExecWithRetry, so it goes through the breaker,
// retries and session initialization exactly like application queries.
func (uc *UseCase) Ping(ctx context.Context, requestID string) (*PingResult, error) {
	logger := pkg.NewLoggerFromContext(ctx)
	tracer := pkg.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.ping")
	defer span.End()

	span.SetAttributes(attribute.String("app.request.request_id", requestID))

	start := time.Now()

	rows, err := uc.Pool.ExecWithRetry(ctx, constant.DefaultValidationQuery, nil, warehouse.ExecOptions{RequestID: requestID})
	if err != nil {
		libOtel.HandleSpanError(&span, "Warehouse ping failed", err)

		logger.Errorf("Warehouse ping failed (request %s): %v", requestID, err)

		return nil, err
	}

	return &PingResult{
		RequestID:  requestID,
		Rows:       len(rows),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
