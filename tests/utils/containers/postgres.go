// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresUser     = "warehouse"
	PostgresPassword = "warehouse-pass"
	PostgresDatabase = "analytics"
	PostgresSchema   = "public"

	// PostgresAlias is the container name on the test network, used as Toxiproxy upstream.
	PostgresAlias = "postgres"

	postgresPort nat.Port = "5432/tcp"
)

// PostgresContainer wraps a PostgreSQL testcontainer with connection info.
type PostgresContainer struct {
	testcontainers.Container
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// Address returns the host-accessible host:port of the database.
func (p *PostgresContainer) Address() string {
	return fmt.Sprintf("%s:%s", p.Host, p.Port)
}

// StartPostgres creates and starts a PostgreSQL container.
func StartPostgres(ctx context.Context, networkName, image string) (*PostgresContainer, error) {
	if image == "" {
		image = "postgres:17-alpine"
	}

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_USER":     PostgresUser,
			"POSTGRES_PASSWORD": PostgresPassword,
			"POSTGRES_DB":       PostgresDatabase,
		},
		Networks: []string{networkName},
		NetworkAliases: map[string][]string{
			networkName: {PostgresAlias},
		},
		// The entrypoint restarts the server once after init, so the message appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithDeadline(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get postgres host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get postgres port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		Host:      host,
		Port:      mappedPort.Port(),
		User:      PostgresUser,
		Password:  PostgresPassword,
		Database:  PostgresDatabase,
		Schema:    PostgresSchema,
	}, nil
}

// Restart stops and starts the PostgreSQL container.
func (p *PostgresContainer) Restart(ctx context.Context, delay time.Duration) error {
	timeout := 10 * time.Second

	if err := p.Stop(ctx, &timeout); err != nil {
		return fmt.Errorf("stop postgres: %w", err)
	}

	if delay > 0 {
		time.Sleep(delay)
	}

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}

	return nil
}
