// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"regexp"
	"strings"
	"syscall"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/sony/gobreaker"
)

var authSignatures = []string{
	"authentication",
	"authenticate",
	"unauthorized",
	"not authorized",
	"forbidden",
	"permission denied",
	"insufficient privileges",
	"access denied",
	"credential",
	"jwt",
	"oauth",
	"private key",
	"incorrect username or password",
	"invalid user",
	"role \"",
}

// 401/403 only count as auth failures next to an HTTP status marker.
var authStatusCode = regexp.MustCompile(`\b(?:http(?:/[\d.]+)?|status(?: code)?)[\s:=]*(?:401|403)\b|\b(?:401 unauthorized|403 forbidden)\b`)

var acquireTimeoutSignatures = []string{
	"acquire timeout",
	"timed out acquiring",
	"resourcerequest timed out",
	"pool acquire",
}

var networkSignatures = []string{
	"econnreset",
	"connection reset",
	"etimedout",
	"timed out",
	"timeout",
	"enotfound",
	"no such host",
	"getaddrinfo",
	"eai_again",
	"econnrefused",
	"connection refused",
	"broken pipe",
	"unexpected eof",
	"bad connection",
	"network is unreachable",
	"connection closed",
	"already in progress",
}

// Classify maps an error onto the failure taxonomy.
// Typed errors win; message signatures are the fallback for opaque driver errors.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var (
		cfgErr     *ConfigurationError
		timeoutErr *TimeoutError
		queryErr   *QueryError
	)

	switch {
	case errors.As(err, &queryErr):
		return queryErr.Kind
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &timeoutErr):
		return timeoutErr.Kind()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, constant.ErrCircuitOpen):
		return KindCircuitOpen
	case errors.Is(err, constant.ErrPoolClosed):
		return KindPoolClosed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}

	msg := strings.ToLower(err.Error())

	if isAuthMessage(msg) {
		return KindAuthentication
	}

	if containsAny(msg, acquireTimeoutSignatures) {
		return KindAcquireTimeout
	}

	if isNetworkError(err) || containsAny(msg, networkSignatures) || isDNSFailure(msg) {
		return KindTransientNetwork
	}

	return KindUnknown
}

// IsRetriable reports whether ExecWithRetry would try again after err.
func IsRetriable(err error) bool {
	return Classify(err).Retriable()
}

func isAuthMessage(msg string) bool {
	return containsAny(msg, authSignatures) || authStatusCode.MatchString(msg)
}

// isDNSFailure matches resolver errors such as "dial tcp: lookup host on 10.0.0.2:53: server misbehaving".
func isDNSFailure(msg string) bool {
	return strings.Contains(msg, "lookup ") && containsAny(msg, dnsFailureMarkers)
}

var dnsFailureMarkers = []string{"dial tcp", "no such host", "server misbehaving", "name resolution"}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

func containsAny(msg string, signatures []string) bool {
	for _, s := range signatures {
		if strings.Contains(msg, s) {
			return true
		}
	}

	return false
}
