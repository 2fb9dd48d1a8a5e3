// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"testing"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Parallel()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	server := NewServer(&Config{ServerAddress: "127.0.0.1:4010"}, app, &log.NoneLogger{}, nil)

	assert.Equal(t, "127.0.0.1:4010", server.ServerAddress())
	assert.Same(t, app, server.app)
	assert.Nil(t, server.telemetry)
}

func TestServer_RunWithoutAppFails(t *testing.T) {
	t.Parallel()

	server := NewServer(&Config{ServerAddress: "127.0.0.1:4010"}, nil, &log.NoneLogger{}, nil)

	err := server.Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diagnostics server on 127.0.0.1:4010")
}

func TestRunCleanups_ReverseOrder(t *testing.T) {
	t.Parallel()

	var order []int

	runCleanups([]func(){
		func() { order = append(order, 1) },
		nil,
		func() { order = append(order, 3) },
	})

	assert.Equal(t, []int{3, 1}, order)
}
