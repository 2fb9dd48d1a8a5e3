// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var mockSessionStatements = []string{"ALTER SESSION TZ", "ALTER SESSION TIMEOUT", "ALTER SESSION TAG"}

type settingsRecorder struct {
	mu       sync.Mutex
	settings []SessionSettings
}

func (r *settingsRecorder) statements(s SessionSettings) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = append(r.settings, s)

	return mockSessionStatements
}

func (r *settingsRecorder) last() SessionSettings {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.settings[len(r.settings)-1]
}

// newMockSession leases one session whose connection is conn.
func newMockSession(t *testing.T, conn *MockConn, rec *settingsRecorder) (*Manager, *Pool, *Lease) {
	t.Helper()

	ctrl := gomock.NewController(t)
	dialer := NewMockDialer(ctrl)
	dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil).Times(1)
	conn.EXPECT().Close().Return(nil).AnyTimes()

	factory := func(context.Context, *PoolConfiguration) (*Driver, error) {
		return &Driver{Name: "mock", Dialer: dialer, SessionStatements: rec.statements}, nil
	}

	mgr := NewManager(testEnvConfig(), factory, &log.NoneLogger{}, WithCancelGrace(100*time.Millisecond))
	t.Cleanup(mgr.Close)

	pool, err := mgr.Pool(context.Background())
	require.NoError(t, err)

	l, err := pool.Acquire(context.Background(), "lease", time.Second)
	require.NoError(t, err)

	t.Cleanup(func() { pool.Release(l) })

	return mgr, pool, l
}

func TestInitSession_RunsStatementsOnce(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)
	rec := &settingsRecorder{}

	gomock.InOrder(
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TZ").Return(nil, nil),
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TIMEOUT").Return(nil, nil),
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TAG").Return(nil, nil),
	)

	mgr, _, l := newMockSession(t, conn, rec)

	require.NoError(t, mgr.InitSession(context.Background(), l.Session(), "req-init"))
	assert.True(t, l.Session().Initialized())

	require.NoError(t, mgr.InitSession(context.Background(), l.Session(), "req-other"),
		"an initialized session runs nothing")

	settings := rec.last()
	assert.Equal(t, "UTC", settings.Timezone)
	assert.Equal(t, time.Second, settings.StatementTimeout)
	assert.Equal(t, "mediaplan:req-init", settings.QueryTag)
}

func TestInitSession_FailureLeavesSessionUninitialized(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)
	rec := &settingsRecorder{}

	boom := errors.New("Object 'UNKNOWN_WH' does not exist")

	gomock.InOrder(
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TZ").Return(nil, nil),
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TIMEOUT").Return(nil, boom),
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TZ").Return(nil, nil),
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TIMEOUT").Return(nil, nil),
		conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TAG").Return(nil, nil),
	)

	mgr, _, l := newMockSession(t, conn, rec)

	err := mgr.InitSession(context.Background(), l.Session(), "req-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "session init statement 2 failed")
	assert.False(t, l.Session().Initialized())

	require.NoError(t, mgr.InitSession(context.Background(), l.Session(), "req-2"))
	assert.True(t, l.Session().Initialized())
}

func TestInitSession_StatementTimeout(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)
	rec := &settingsRecorder{}

	cancelled := make(chan struct{})

	conn.EXPECT().Query(gomock.Any(), "ALTER SESSION TZ").
		DoAndReturn(func(ctx context.Context, _ string, _ ...any) ([]Row, error) {
			<-ctx.Done()
			close(cancelled)

			return nil, ctx.Err()
		})

	mgr, _, l := newMockSession(t, conn, rec)

	start := time.Now()
	err := mgr.InitSession(context.Background(), l.Session(), "req-slow")
	require.Error(t, err)

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StageInit, te.Stage)
	assert.Equal(t, KindInitTimeout, Classify(err))
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
	assert.False(t, l.Session().Initialized())

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		require.Fail(t, "timed out statement must observe cancellation")
	}
}

func TestQueryTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prefix    string
		requestID string
		want      string
	}{
		{name: "prefix and request id", prefix: "mediaplan", requestID: "abc", want: "mediaplan:abc"},
		{name: "no request id", prefix: "mediaplan", want: "mediaplan"},
		{name: "truncated", prefix: "mediaplan", requestID: strings.Repeat("x", 80), want: ("mediaplan:" + strings.Repeat("x", 80))[:64]},
		{name: "truncated on rune boundary", prefix: "mediaplanx", requestID: strings.Repeat("é", 41), want: "mediaplanx:" + strings.Repeat("é", 26)},
		{name: "invalid utf-8 dropped", prefix: "mediaplan", requestID: "req\xff\xfe-1", want: "mediaplan:req-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := queryTag(tt.prefix, tt.requestID)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), 64)
		})
	}
}
