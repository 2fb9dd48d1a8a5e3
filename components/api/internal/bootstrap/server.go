// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"fmt"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libOtel "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libServer "github.com/LerianStudio/lib-commons/v3/commons/server"
	"github.com/gofiber/fiber/v2"
)

// Server represents the http server for the diagnostics service.
type Server struct {
	app           *fiber.App
	serverAddress string
	logger        log.Logger
	telemetry     *libOtel.Telemetry
}

// ServerAddress returns is a convenience method to return the server address.
func (s *Server) ServerAddress() string {
	return s.serverAddress
}

// NewServer creates an instance of Server.
func NewServer(cfg *Config, app *fiber.App, logger log.Logger, telemetry *libOtel.Telemetry) *Server {
	return &Server{
		app:           app,
		serverAddress: cfg.ServerAddress,
		logger:        logger,
		telemetry:     telemetry,
	}
}

// Run serves until SIGINT/SIGTERM, then shuts the server and the telemetry providers down.
func (s *Server) Run(_ *libCommons.Launcher) error {
	s.logger.Infof("Diagnostics server listening on %s", s.ServerAddress())

	err := libServer.NewServerManager(nil, s.telemetry, s.logger).
		WithHTTPServer(s.app, s.ServerAddress()).
		StartWithGracefulShutdownWithError()
	if err != nil {
		return fmt.Errorf("diagnostics server on %s: %w", s.ServerAddress(), err)
	}

	return nil
}
