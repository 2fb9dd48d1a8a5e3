// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"

	"go.opentelemetry.io/otel/attribute"
)

// WarmPoolInput is the optional body of a warm request. A missing count uses the configured warm size.
type WarmPoolInput struct {
	Count *int `json:"count,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// WarmPool runs the one-shot warm-up. Repeated calls return a skipped report.
func (uc *UseCase) WarmPool(ctx context.Context, input *WarmPoolInput) (warehouse.WarmReport, error) {
	logger := pkg.NewLoggerFromContext(ctx)
	tracer := pkg.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.warm_pool")
	defer span.End()

	count := constant.DefaultWarmRequestCount
	if input != nil && input.Count != nil {
		count = *input.Count
	}

	if count < 0 || count > constant.MaxWarmRequestCount {
		return warehouse.WarmReport{}, pkg.ValidateBusinessError(constant.ErrInvalidWarmCount, "warm", constant.MaxWarmRequestCount)
	}

	span.SetAttributes(attribute.Int("app.warehouse.warm_count", count))

	report := uc.Pool.WarmPool(ctx, count)

	if report.Skipped {
		logger.Infof("Warehouse warm-up already ran, skipping")
	} else if len(report.Failures) > 0 {
		logger.Warnf("Warehouse warm-up finished with %d failure(s)", len(report.Failures))
	}

	return report, nil
}
