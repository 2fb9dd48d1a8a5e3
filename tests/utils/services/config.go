// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
	"github.com/LerianStudio/warehouse-pool/tests/utils"
	"github.com/LerianStudio/warehouse-pool/tests/utils/containers"
)

// Endpoint identifies the database a pool under test should reach.
type Endpoint struct {
	Address  string
	User     string
	Password string
	Database string
	Schema   string
}

// EndpointFromContainer returns the direct endpoint of a PostgreSQL container.
func EndpointFromContainer(pg *containers.PostgresContainer) Endpoint {
	return Endpoint{
		Address:  pg.Address(),
		User:     pg.User,
		Password: pg.Password,
		Database: pg.Database,
		Schema:   pg.Schema,
	}
}

// EndpointFromEnvironment returns the endpoint of pre-provisioned infrastructure.
func EndpointFromEnvironment(env utils.Environment) Endpoint {
	return Endpoint{
		Address:  env.PostgresAddress,
		User:     env.PostgresUser,
		Password: env.PostgresPassword,
		Database: env.PostgresDatabase,
		Schema:   containers.PostgresSchema,
	}
}

// WithAddress returns a copy of e pointing at address, used to route through Toxiproxy.
func (e Endpoint) WithAddress(address string) Endpoint {
	e.Address = address
	return e
}

// NewWarehouseEnv builds a PostgreSQL warehouse configuration with bounds short enough
// for tests. overrides can adjust any field afterwards.
func NewWarehouseEnv(e Endpoint, overrides ...func(env *warehouse.EnvConfig)) *warehouse.EnvConfig {
	env := &warehouse.EnvConfig{
		EnvName:    "test",
		Production: "false",
		Driver:     constant.DriverPostgres,
		Account:    e.Address,
		User:       e.User,
		Database:   e.Database,
		Schema:     e.Schema,
		PrivateKey: e.Password,

		PoolMax:          "4",
		PoolWarmSize:     "2",
		AcquireTimeoutMs: "2000",
		ExecuteTimeoutMs: "3000",
		InitTimeoutMs:    "2000",
		WarmTimeoutMs:    "5000",
		MaxRetries:       "2",
		TotalRetryTimeMs: "20000",
		BaseBackoffMs:    "50",
		MaxBackoffMs:     "200",
		CircuitThreshold: "2",
		CircuitResetMs:   "1000",
		HealthIntervalMs: "0",
		WarmEnabled:      "false",
		QueryTag:         "warehouse-it",
		Timezone:         "UTC",
	}

	for _, override := range overrides {
		override(env)
	}

	return env
}
