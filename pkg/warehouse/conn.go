// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

//go:generate mockgen --destination=conn.mock.go --package=warehouse . Conn,Dialer

import (
	"context"
	"io"
	"time"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Conn is a single physical warehouse session.
type Conn interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Close() error
}

// Dialer opens physical sessions.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// SessionSettings are the per-session parameters applied once after a connection is opened.
type SessionSettings struct {
	Timezone         string
	StatementTimeout time.Duration
	QueryTag         string
}

// Driver bundles what the manager needs from a warehouse dialect.
type Driver struct {
	Name              string
	Dialer            Dialer
	SessionStatements func(SessionSettings) []string
	ValidationQuery   string
	// Closer, when set, releases dialer resources once the pool is closed.
	Closer io.Closer
}

// DriverFactory builds the dialect for a resolved configuration. It must not perform network I/O.
type DriverFactory func(ctx context.Context, cfg *PoolConfiguration) (*Driver, error)

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context) (Conn, error) {
	return f(ctx)
}
