// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

// Service is the application glue where we put all top-level components to be used.
type Service struct {
	*Server
	log.Logger
	cleanups []func()
}

// Run starts the application.
// This is the only necessary code to run an app in the main.go
func (app *Service) Run() {
	libCommons.NewLauncher(
		libCommons.WithLogger(app.Logger),
		libCommons.RunApp("HTTP Service", app.Server),
	).Run()

	app.Info("Starting graceful shutdown...")

	runCleanups(app.cleanups)

	app.Info("Graceful shutdown complete")
}
