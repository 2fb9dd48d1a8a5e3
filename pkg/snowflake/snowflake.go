// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

// Package snowflake is the Snowflake dialect of the warehouse pool: key-pair (JWT)
// authentication and ALTER SESSION based session setup.
package snowflake

import (
	"context"
	"crypto/rsa"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/sqlconn"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
	sf "github.com/snowflakedb/gosnowflake"
)

const loginTimeout = 30 * time.Second

// NewDriver builds the Snowflake dialect. It parses the private key but performs no
// network I/O; connections are only opened when the pool dials.
func NewDriver(_ context.Context, cfg *warehouse.PoolConfiguration) (*warehouse.Driver, error) {
	key, err := ResolvePrivateKey(cfg.PrivateKey, cfg.PrivateKeyPath)
	if err != nil {
		return nil, &warehouse.ConfigurationError{
			Problems: []string{fmt.Sprintf("%s could not be used: %v", credentialSetting(cfg), err)},
		}
	}

	dialer := sqlconn.New(sf.NewConnector(sf.SnowflakeDriver{}, *Config(cfg, key)))

	return &warehouse.Driver{
		Name:              constant.DriverSnowflake,
		Dialer:            dialer,
		SessionStatements: SessionStatements,
		ValidationQuery:   constant.DefaultValidationQuery,
		Closer:            dialer,
	}, nil
}

// Config maps the pool configuration onto a gosnowflake configuration.
func Config(cfg *warehouse.PoolConfiguration, key *rsa.PrivateKey) *sf.Config {
	return &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Role:          cfg.Role,
		Warehouse:     cfg.Warehouse,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Authenticator: sf.AuthTypeJwt,
		PrivateKey:    key,
		LoginTimeout:  loginTimeout,
		Application:   constant.ApplicationName,
	}
}

// SessionStatements returns the ALTER SESSION statements applied to every new connection.
func SessionStatements(s warehouse.SessionSettings) []string {
	seconds := int64(math.Ceil(s.StatementTimeout.Seconds()))

	return []string{
		fmt.Sprintf("ALTER SESSION SET TIMEZONE = %s", quote(s.Timezone)),
		fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d", seconds),
		fmt.Sprintf("ALTER SESSION SET QUERY_TAG = %s", quote(s.QueryTag)),
	}
}

func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `''`)

	return "'" + v + "'"
}

func credentialSetting(cfg *warehouse.PoolConfiguration) string {
	if strings.TrimSpace(cfg.PrivateKey) != "" {
		return "WAREHOUSE_PRIVATE_KEY"
	}

	return "WAREHOUSE_PRIVATE_KEY_PATH"
}
