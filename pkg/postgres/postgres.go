// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

// Package postgres is the PostgreSQL dialect of the warehouse pool. It serves local
// development and integration tests against a real database.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/LerianStudio/warehouse-pool/pkg"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/LerianStudio/warehouse-pool/pkg/sqlconn"
	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// NewDriver builds the PostgreSQL dialect. WAREHOUSE_ACCOUNT is host[:port] and the
// credential settings carry the password, inline or from a file.
func NewDriver(ctx context.Context, cfg *warehouse.PoolConfiguration) (*warehouse.Driver, error) {
	password, err := resolvePassword(cfg.PrivateKey, cfg.PrivateKeyPath)
	if err != nil {
		return nil, &warehouse.ConfigurationError{Problems: []string{err.Error()}}
	}

	dsn := ConnectionString(cfg, password)

	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, &warehouse.ConfigurationError{
			Problems: []string{fmt.Sprintf("invalid postgres connection settings for %s", pkg.RedactConnectionString(dsn))},
		}
	}

	pkg.NewLoggerFromContext(ctx).Infof("Using PostgreSQL warehouse at %s", pkg.RedactConnectionString(dsn))

	dialer := sqlconn.New(stdlib.GetConnector(*connCfg))

	return &warehouse.Driver{
		Name:              constant.DriverPostgres,
		Dialer:            dialer,
		SessionStatements: sessionStatements(cfg.Role),
		ValidationQuery:   constant.DefaultValidationQuery,
		Closer:            dialer,
	}, nil
}

// ConnectionString builds the pgx URL for cfg.
func ConnectionString(cfg *warehouse.PoolConfiguration, password string) string {
	host := cfg.Account
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, constant.DefaultPostgresPort)
	}

	query := url.Values{}
	query.Set("sslmode", constant.DefaultPostgresSSLMode)
	query.Set("search_path", cfg.Schema)
	query.Set("application_name", constant.ApplicationName)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, password),
		Host:     host,
		Path:     "/" + cfg.Database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

func sessionStatements(role string) func(warehouse.SessionSettings) []string {
	return func(s warehouse.SessionSettings) []string {
		statements := []string{
			"SET TIME ZONE " + pq.QuoteLiteral(s.Timezone),
			fmt.Sprintf("SET statement_timeout = %d", s.StatementTimeout.Milliseconds()),
			"SET application_name = " + pq.QuoteLiteral(s.QueryTag),
		}

		if role != "" {
			statements = append(statements, "SET ROLE "+pgx.Identifier{role}.Sanitize())
		}

		return statements
	}
}

func resolvePassword(inline, path string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}

	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("WAREHOUSE_PRIVATE_KEY or WAREHOUSE_PRIVATE_KEY_PATH is required")
	}

	b, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("WAREHOUSE_PRIVATE_KEY_PATH could not be read: %w", err)
	}

	return strings.TrimRight(string(b), "\r\n"), nil
}
