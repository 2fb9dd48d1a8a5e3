// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LerianStudio/warehouse-pool/pkg/constant"
)

// Session wraps one physical connection together with its initialization state.
// A session is only touched by the caller currently holding its lease.
type Session struct {
	id          uint64
	conn        Conn
	initialized bool
	createdAt   time.Time
}

func newSession(id uint64, conn Conn) *Session {
	return &Session{id: id, conn: conn, createdAt: time.Now()}
}

// ID is the pool-local sequence number of the physical connection.
func (s *Session) ID() uint64 { return s.id }

// Initialized reports whether the session statements already ran on this connection.
func (s *Session) Initialized() bool { return s.initialized }

// CreatedAt is when the physical connection was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// InitSession applies timezone, statement timeout and query tag exactly once per physical
// connection. Each statement is bounded by the init timeout; the session is only marked
// initialized after every statement succeeded.
func (m *Manager) InitSession(ctx context.Context, s *Session, requestID string) error {
	if s.initialized {
		return nil
	}

	rt, err := m.active(ctx)
	if err != nil {
		return err
	}

	var statements []string
	if rt.driver.SessionStatements != nil {
		statements = rt.driver.SessionStatements(SessionSettings{
			Timezone:         rt.cfg.Timezone,
			StatementTimeout: rt.cfg.ExecuteTimeout(),
			QueryTag:         queryTag(rt.cfg.QueryTag, requestID),
		})
	}

	for i, stmt := range statements {
		m.debugf("Init statement %d/%d on connection %d (request %s)", i+1, len(statements), s.id, requestID)

		if _, err := m.execute(ctx, s, requestID, stmt, nil, rt.cfg.InitTimeout(), StageInit); err != nil {
			m.logger.Warnf("Session init failed on connection %d (request %s): %v", s.id, requestID, err)
			return fmt.Errorf("session init statement %d failed: %w", i+1, err)
		}
	}

	s.initialized = true

	m.debugf("Session initialized on connection %d (request %s)", s.id, requestID)

	return nil
}

// queryTag joins prefix and request id, drops invalid UTF-8 and truncates on a rune
// boundary so the tag is always a valid session value.
func queryTag(prefix, requestID string) string {
	tag := prefix
	if requestID != "" {
		tag = prefix + ":" + requestID
	}

	tag = strings.ToValidUTF8(tag, "")

	if len(tag) > constant.MaxQueryTagLength {
		n := constant.MaxQueryTagLength
		for n > 0 && !utf8.RuneStart(tag[n]) {
			n--
		}

		tag = tag[:n]
	}

	return tag
}

type queryResult struct {
	rows []Row
	err  error
}

// execute runs one statement bounded by timeout. The statement runs in its own goroutine
// raced against a timer and ctx; when the statement loses, its context is cancelled and
// it gets a short grace period to return before the caller is answered. The caller must
// destroy the connection on any error.
func (m *Manager) execute(ctx context.Context, s *Session, requestID, query string, args []any, timeout time.Duration, stage Stage) ([]Row, error) {
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan queryResult, 1)

	go func() {
		rows, err := s.conn.Query(execCtx, query, args...)
		results <- queryResult{rows: rows, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		return r.rows, r.err
	case <-timer.C:
		cancel()
		m.awaitCancellation(results, s, requestID)

		return nil, &TimeoutError{Stage: stage, Timeout: timeout, RequestID: requestID}
	case <-ctx.Done():
		cancel()
		m.awaitCancellation(results, s, requestID)

		return nil, ctx.Err()
	}
}

func (m *Manager) awaitCancellation(results <-chan queryResult, s *Session, requestID string) {
	grace := time.NewTimer(m.cancelGrace)
	defer grace.Stop()

	select {
	case <-results:
	case <-grace.C:
		m.logger.Warnf("Statement on connection %d did not stop within %s after cancellation (request %s)",
			s.id, m.cancelGrace, requestID)
	}
}
