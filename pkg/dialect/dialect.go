// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

// Package dialect selects the warehouse driver named by the configuration.
package dialect

import (
	"context"
	"fmt"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/postgres"
	"github.com/LerianStudio/warehouse-pool/pkg/snowflake"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
)

var factories = map[string]warehouse.DriverFactory{
	constant.DriverSnowflake: snowflake.NewDriver,
	constant.DriverPostgres:  postgres.NewDriver,
}

// Factory builds the driver for cfg.Driver.
func Factory(ctx context.Context, cfg *warehouse.PoolConfiguration) (*warehouse.Driver, error) {
	factory, ok := factories[cfg.Driver]
	if !ok {
		return nil, &warehouse.ConfigurationError{
			Problems: []string{fmt.Sprintf("WAREHOUSE_DRIVER %q is not supported", cfg.Driver)},
		}
	}

	return factory(ctx, cfg)
}
