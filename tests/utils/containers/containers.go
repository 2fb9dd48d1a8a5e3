// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LerianStudio/warehouse-pool/tests/utils/chaos"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
)

// TestInfrastructure holds all test containers and provides connection information.
type TestInfrastructure struct {
	Postgres  *PostgresContainer
	Toxiproxy *chaos.ToxiproxyInfrastructure

	network     *testcontainers.DockerNetwork
	networkName string
	mu          sync.Mutex
}

const defaultStartTimeoutSeconds = 120

// InfrastructureConfig holds configuration for container startup.
type InfrastructureConfig struct {
	PostgresImage string
	StartTimeout  time.Duration
}

// DefaultConfig returns default configuration for test infrastructure.
func DefaultConfig() *InfrastructureConfig {
	return &InfrastructureConfig{
		PostgresImage: "postgres:17-alpine",
		StartTimeout:  defaultStartTimeoutSeconds * time.Second,
	}
}

// StartInfrastructure starts all required containers for testing.
func StartInfrastructure(ctx context.Context) (*TestInfrastructure, error) {
	return StartInfrastructureWithConfig(ctx, DefaultConfig())
}

// StartInfrastructureWithConfig starts all containers with custom configuration.
func StartInfrastructureWithConfig(ctx context.Context, cfg *InfrastructureConfig) (*TestInfrastructure, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StartTimeout)
	defer cancel()

	net, err := network.New(ctx,
		network.WithDriver("bridge"),
	)
	if err != nil {
		return nil, fmt.Errorf("create network: %w", err)
	}

	infra := &TestInfrastructure{
		network:     net,
		networkName: net.Name,
	}

	postgres, err := StartPostgres(ctx, infra.networkName, cfg.PostgresImage)
	if err != nil {
		_ = infra.Stop(context.Background())
		return nil, fmt.Errorf("postgres: %w", err)
	}

	infra.Postgres = postgres

	return infra, nil
}

// Stop terminates all containers and cleans up resources.
func (i *TestInfrastructure) Stop(ctx context.Context) error {
	var errs []error

	// Terminate Toxiproxy first (it depends on other containers)
	if i.Toxiproxy != nil {
		if err := i.Toxiproxy.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("toxiproxy terminate: %w", err))
		}
	}

	if i.Postgres != nil {
		if err := i.Postgres.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres terminate: %w", err))
		}
	}

	if i.network != nil {
		if err := i.network.Remove(ctx); err != nil {
			errs = append(errs, fmt.Errorf("network remove: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}

// StartToxiproxy starts a Toxiproxy container on the test network and creates the
// PostgreSQL proxy. The pool should connect through ToxiproxyEndpoint when chaos testing.
func (i *TestInfrastructure) StartToxiproxy(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	toxi, err := chaos.StartToxiproxy(ctx, i.networkName)
	if err != nil {
		return fmt.Errorf("start toxiproxy: %w", err)
	}

	i.Toxiproxy = toxi

	if i.Postgres != nil {
		_, err := toxi.CreateProxy(chaos.ProxyConfig{
			Name:     chaos.ProxyNamePostgres,
			Listen:   fmt.Sprintf("0.0.0.0:%s", chaos.PostgresProxyPort),
			Upstream: fmt.Sprintf("%s:5432", PostgresAlias),
		})
		if err != nil {
			return fmt.Errorf("create postgres proxy: %w", err)
		}
	}

	return nil
}

// ToxiproxyEndpoint returns the host-accessible host:port that routes to name through Toxiproxy.
func (i *TestInfrastructure) ToxiproxyEndpoint(ctx context.Context, name string) (string, error) {
	if i.Toxiproxy == nil {
		return "", fmt.Errorf("toxiproxy not started")
	}

	containerPort, ok := chaos.ProxyPorts[name]
	if !ok {
		return "", fmt.Errorf("unknown proxy %s", name)
	}

	if _, ok := i.Toxiproxy.Proxies[name]; !ok {
		return "", fmt.Errorf("proxy %s not created", name)
	}

	mapped, err := i.Toxiproxy.Container.MappedPort(ctx, nat.Port(containerPort+"/tcp"))
	if err != nil {
		return "", fmt.Errorf("get mapped port for %s: %w", name, err)
	}

	return fmt.Sprintf("%s:%s", i.Toxiproxy.Host, mapped.Port()), nil
}
