// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"

	"github.com/LerianStudio/warehouse-pool/components/api/internal/bootstrap"
)

func main() {
	libCommons.InitLocalEnvConfig()

	svc, err := bootstrap.InitServers()
	if err != nil {
		// The structured logger is created inside InitServers, so stderr is all we have here.
		fmt.Fprintf(os.Stderr, "Failed to initialize warehouse diagnostics service: %v\n", err)
		os.Exit(1)
	}

	svc.Run()
}
