// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"regexp"
	"strconv"
	"strings"
)

var serverAddressPattern = regexp.MustCompile(`^([^:]+):(\d+)$`)

// ValidateServerAddress checks if the value matches the pattern <some-address>:<some-port>
// with a port in 1-65535 and returns the value if it does.
func ValidateServerAddress(value string) string {
	matches := serverAddressPattern.FindStringSubmatch(strings.TrimSpace(value))
	if matches == nil {
		return ""
	}

	port, err := strconv.Atoi(matches[2])
	if err != nil || port < 1 || port > 65535 {
		return ""
	}

	return value
}
