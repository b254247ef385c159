package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/realtime"
)

type fakeSessionAPI struct {
	mu        sync.Mutex
	createErr error
	creates   int
	ends      []models.RealtimeSessionEnd
	endIDs    []string
}

func (f *fakeSessionAPI) CreateRealtimeSession(_ context.Context, req models.RealtimeSessionRequest) (*models.RealtimeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.RealtimeSession{ID: "rs-1", ClientSecret: "ek", Voice: "alloy", Instructions: "session default"}, nil
}

func (f *fakeSessionAPI) EndRealtimeSession(_ context.Context, id string, end models.RealtimeSessionEnd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endIDs = append(f.endIDs, id)
	f.ends = append(f.ends, end)
	return nil
}

func (f *fakeSessionAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

type fakeConn struct {
	mu     sync.Mutex
	sent   []any
	events chan realtime.ServerEvent
	once   sync.Once
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan realtime.ServerEvent, 8)}
}

func (c *fakeConn) Send(_ context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return realtime.ErrConnClosed
	}
	c.sent = append(c.sent, v)
	return nil
}

func (c *fakeConn) Events() <-chan realtime.ServerEvent { return c.events }

func (c *fakeConn) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.events)
	})
	return nil
}

func (c *fakeConn) sentMessages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

type fakeConnector struct {
	mu    sync.Mutex
	err   error
	conns []*fakeConn
	calls int
}

func (f *fakeConnector) Connect(context.Context, *models.RealtimeSession) (realtime.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c := newFakeConn()
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeConnector) last() *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[len(f.conns)-1]
}

func newTestService(t *testing.T, api *fakeSessionAPI, conn *fakeConnector, clock *fakeClock) *Service {
	t.Helper()
	s := NewService(api, conn, Config{FailureThreshold: 2, Cooldown: time.Minute, Now: clock.Now})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestService_StartConfiguresSession(t *testing.T) {
	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	s := newTestService(t, api, conn, newFakeClock())

	require.NoError(t, s.StartSession(context.Background(), StartOptions{Instructions: "Only Spanish"}))

	st := s.State()
	assert.Equal(t, SessionConnected, st.Session)
	assert.Equal(t, "rs-1", st.SessionID)
	assert.Equal(t, StateClosed, st.Breaker)
	assert.Equal(t, []any{realtime.SessionUpdate("Only Spanish", "alloy")}, conn.last().sentMessages())
}

func TestService_StartIsIdempotent(t *testing.T) {
	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	s := newTestService(t, api, conn, newFakeClock())
	ctx := context.Background()

	require.NoError(t, s.StartSession(ctx, StartOptions{}))
	require.NoError(t, s.StartSession(ctx, StartOptions{}))

	assert.Equal(t, 1, api.createCount())
}

func TestService_StopReportsDuration(t *testing.T) {
	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	clock := newFakeClock()
	s := newTestService(t, api, conn, clock)
	ctx := context.Background()

	require.NoError(t, s.StartSession(ctx, StartOptions{}))
	clock.Advance(95 * time.Second)
	require.NoError(t, s.StopSession(ctx))

	assert.Equal(t, SessionIdle, s.State().Session)
	assert.Equal(t, []string{"rs-1"}, api.endIDs)
	assert.Equal(t, []models.RealtimeSessionEnd{{DurationSeconds: 95}}, api.ends)

	require.NoError(t, s.StopSession(ctx))
	assert.Len(t, api.ends, 1)
}

func TestService_BreakerOpensAfterFailedStarts(t *testing.T) {
	api := &fakeSessionAPI{createErr: errors.New("backend down")}
	conn := &fakeConnector{}
	clock := newFakeClock()
	s := newTestService(t, api, conn, clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := s.StartSession(ctx, StartOptions{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, SessionFailed, s.State().Session)
	assert.Equal(t, StateOpen, s.State().Breaker)

	err := s.StartSession(ctx, StartOptions{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, api.createCount())

	api.mu.Lock()
	api.createErr = nil
	api.mu.Unlock()
	clock.Advance(time.Minute)

	require.NoError(t, s.StartSession(ctx, StartOptions{}))
	assert.Equal(t, SessionConnected, s.State().Session)
	assert.Equal(t, StateClosed, s.State().Breaker)
}

func TestService_ConnectFailureEndsRemoteSession(t *testing.T) {
	api := &fakeSessionAPI{}
	conn := &fakeConnector{err: errors.New("dial refused")}
	s := newTestService(t, api, conn, newFakeClock())

	err := s.StartSession(context.Background(), StartOptions{})

	require.Error(t, err)
	assert.Equal(t, SessionFailed, s.State().Session)
	assert.Equal(t, []string{"rs-1"}, api.endIDs)
}

func TestService_SendText(t *testing.T) {
	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	s := newTestService(t, api, conn, newFakeClock())
	ctx := context.Background()

	assert.ErrorIs(t, s.SendText(ctx, "hola"), ErrNoSession)

	require.NoError(t, s.StartSession(ctx, StartOptions{}))
	assert.ErrorIs(t, s.SendText(ctx, "  "), ErrEmptyText)
	require.NoError(t, s.SendText(ctx, "hola"))

	sent := conn.last().sentMessages()
	require.Len(t, sent, 3)
	assert.Equal(t, realtime.UserText("hola"), sent[1])
	assert.Equal(t, realtime.ResponseCreate(), sent[2])
}

func TestService_ForwardsEvents(t *testing.T) {
	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	s := newTestService(t, api, conn, newFakeClock())

	require.NoError(t, s.StartSession(context.Background(), StartOptions{}))
	conn.last().events <- realtime.ServerEvent{Type: "response.text.delta", Delta: "Hola"}

	select {
	case ev := <-s.Events():
		assert.Equal(t, "Hola", ev.Delta)
	case <-time.After(2 * time.Second):
		t.Fatal("event not forwarded")
	}
}

func TestService_LostConnectionMarksFailedAndRestarts(t *testing.T) {
	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	s := newTestService(t, api, conn, newFakeClock())
	ctx := context.Background()

	require.NoError(t, s.StartSession(ctx, StartOptions{}))
	_ = conn.last().Close()

	require.Eventually(t, func() bool { return s.State().Session == SessionFailed }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.StartSession(ctx, StartOptions{}))
	assert.Equal(t, SessionConnected, s.State().Session)
	assert.Equal(t, 2, api.createCount())
	assert.Len(t, api.endIDs, 1)
}

func TestService_CloseReleasesGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	api, conn := &fakeSessionAPI{}, &fakeConnector{}
	s := NewService(api, conn, Config{})
	require.NoError(t, s.StartSession(context.Background(), StartOptions{}))

	require.NoError(t, s.Close())
	_, open := <-s.Events()
	assert.False(t, open)
	assert.ErrorIs(t, s.StartSession(context.Background(), StartOptions{}), ErrQueueClosed)
	assert.Len(t, api.endIDs, 1)
}

func TestService_MonitorStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewService(&fakeSessionAPI{}, &fakeConnector{}, Config{})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Monitor(ctx, time.Millisecond)
		close(done)
	}()

	require.NoError(t, s.StartSession(context.Background(), StartOptions{}))
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
