// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

const ApplicationName = "warehouse-pool"

// RedactPlaceholder is the replacement value for masked credentials in connection strings.
const RedactPlaceholder = "REDACTED"

// ProductionEnvName is the ENV_NAME value that selects production defaults.
const ProductionEnvName = "production"

// RequestIDHeader carries the caller supplied request id on the diagnostics API.
const RequestIDHeader = "X-Request-Id"

// StartupWarmTimeout bounds the optional warm-up triggered at service start.
const StartupWarmTimeout = 2 * time.Minute
