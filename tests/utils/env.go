// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package utils

import (
	"os"
	"strconv"
	"time"
)

// Environment controls how the integration and chaos suites find their infrastructure.
type Environment struct {
	// UseExistingInfra skips testcontainers and targets PostgresAddress directly.
	UseExistingInfra bool
	PostgresAddress  string
	PostgresUser     string
	PostgresPassword string
	PostgresDatabase string
	StartTimeout     time.Duration
}

// LoadEnvironment reads the suite settings from the environment.
func LoadEnvironment() Environment {
	timeoutStr := getenvDefault("TEST_START_TIMEOUT_SECS", "180")

	secs, _ := strconv.Atoi(timeoutStr)
	if secs <= 0 {
		secs = 180
	}

	return Environment{
		UseExistingInfra: getenvDefault("USE_EXISTING_INFRA", "false") == "true",
		PostgresAddress:  getenvDefault("TEST_POSTGRES_ADDRESS", "127.0.0.1:5432"),
		PostgresUser:     getenvDefault("TEST_POSTGRES_USER", "warehouse"),
		PostgresPassword: getenvDefault("TEST_POSTGRES_PASSWORD", "warehouse-pass"),
		PostgresDatabase: getenvDefault("TEST_POSTGRES_DATABASE", "analytics"),
		StartTimeout:     time.Duration(secs) * time.Second,
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
