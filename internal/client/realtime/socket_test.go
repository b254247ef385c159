package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
)

// fakeSocketServer speaks just enough Engine.IO/Socket.IO to drive Socket.
type fakeSocketServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	reject   string

	mu      sync.Mutex
	writeMu sync.Mutex
	conns   []*websocket.Conn
	joins   []string

	received chan string
}

func newFakeSocketServer(t *testing.T) *fakeSocketServer {
	t.Helper()
	fs := &fakeSocketServer{received: make(chan string, 64)}
	fs.srv = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeSocketServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != socketPath || r.URL.Query().Get("EIO") != "4" {
		http.NotFound(w, r)
		return
	}
	conn, err := fs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	fs.mu.Lock()
	fs.conns = append(fs.conns, conn)
	fs.mu.Unlock()

	fs.send(conn, `0{"sid":"engine","pingInterval":25000,"pingTimeout":20000}`)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg := string(data)
		switch {
		case strings.HasPrefix(msg, "40"):
			nsp := msg[2:strings.IndexByte(msg, ',')]
			fs.mu.Lock()
			fs.joins = append(fs.joins, msg)
			reject := fs.reject
			fs.mu.Unlock()
			if reject != "" {
				fs.send(conn, "44"+nsp+`,{"message":"`+reject+`"}`)
			} else {
				fs.send(conn, "40"+nsp+`,{"sid":"s"}`)
			}
		default:
			select {
			case fs.received <- msg:
			default:
			}
		}
	}
}

func (fs *fakeSocketServer) send(conn *websocket.Conn, msg string) {
	fs.writeMu.Lock()
	defer fs.writeMu.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// push writes msg to the most recent connection.
func (fs *fakeSocketServer) push(msg string) {
	fs.mu.Lock()
	conn := fs.conns[len(fs.conns)-1]
	fs.mu.Unlock()
	fs.send(conn, msg)
}

func (fs *fakeSocketServer) dropLatest() {
	fs.mu.Lock()
	conn := fs.conns[len(fs.conns)-1]
	fs.mu.Unlock()
	_ = conn.Close()
}

func (fs *fakeSocketServer) joinCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.joins)
}

func (fs *fakeSocketServer) expect(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-fs.received:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("server received nothing")
		return ""
	}
}

func newTestSocket(fs *fakeSocketServer, nsps ...string) *Socket {
	return NewSocket(SocketConfig{
		URL:        fs.srv.URL,
		Namespaces: nsps,
		Token:      func(context.Context) (string, error) { return "tok-1", nil },
		NewBackOff: func() backoff.BackOff { return backoff.NewConstantBackOff(10 * time.Millisecond) },
		Metrics:    metrics.NewCollector("test"),
	})
}

func TestSocket_ConnectJoinsNamespacesWithToken(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor, NamespaceRealtime)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, SocketConnected, s.State())

	fs.mu.Lock()
	joins := append([]string(nil), fs.joins...)
	fs.mu.Unlock()
	assert.Equal(t, []string{
		`40/tutor,{"token":"tok-1"}`,
		`40/realtime,{"token":"tok-1"}`,
	}, joins)
}

func TestSocket_DispatchesEventsByNamespace(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor, NamespaceRealtime)
	t.Cleanup(func() { _ = s.Close() })

	got := make(chan json.RawMessage, 1)
	s.On(NamespaceTutor, "reply", func(p json.RawMessage) { got <- p })
	s.On(NamespaceRealtime, "reply", func(json.RawMessage) { t.Error("wrong namespace dispatched") })

	require.NoError(t, s.Connect(context.Background()))
	fs.push(`42/tutor,["reply",{"text":"hola"}]`)

	select {
	case p := <-got:
		assert.JSONEq(t, `{"text":"hola"}`, string(p))
	case <-time.After(2 * time.Second):
		t.Fatal("event not dispatched")
	}
}

func TestSocket_OffRemovesHandlers(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor)
	t.Cleanup(func() { _ = s.Close() })

	stale := make(chan json.RawMessage, 1)
	s.On(NamespaceTutor, "reply", func(p json.RawMessage) { stale <- p })
	s.Off(NamespaceTutor, "reply")
	s.Off(NamespaceRealtime, "never-registered")

	got := make(chan json.RawMessage, 1)
	s.On(NamespaceTutor, "reply", func(p json.RawMessage) { got <- p })

	require.NoError(t, s.Connect(context.Background()))
	fs.push(`42/tutor,["reply",{"text":"hola"}]`)

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("event not dispatched")
	}
	assert.Empty(t, stale, "removed handler must not run")
}

func TestSocket_Emit(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Emit(context.Background(), NamespaceTutor, "message", map[string]string{"text": "hi"}))

	assert.Equal(t, `42/tutor,["message",{"text":"hi"}]`, fs.expect(t))
}

func TestSocket_AnswersPing(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Connect(context.Background()))
	fs.push("2")

	assert.Equal(t, "3", fs.expect(t))
}

func TestSocket_EmitBeforeConnect(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor)

	err := s.Emit(context.Background(), NamespaceTutor, "message", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSocket_RejectedJoin(t *testing.T) {
	fs := newFakeSocketServer(t)
	fs.mu.Lock()
	fs.reject = "unauthorized"
	fs.mu.Unlock()
	s := newTestSocket(fs, NamespaceTutor)

	err := s.Connect(context.Background())

	var ce *ConnectError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, NamespaceTutor, ce.Namespace)
	assert.Equal(t, "unauthorized", ce.Message)
	assert.Equal(t, SocketDisconnected, s.State())
}

func TestSocket_ReconnectsAndRejoins(t *testing.T) {
	fs := newFakeSocketServer(t)
	s := newTestSocket(fs, NamespaceTutor)
	t.Cleanup(func() { _ = s.Close() })

	got := make(chan json.RawMessage, 1)
	s.On(NamespaceTutor, "reply", func(p json.RawMessage) { got <- p })

	require.NoError(t, s.Connect(context.Background()))
	require.Equal(t, 1, fs.joinCount())

	fs.dropLatest()

	require.Eventually(t, func() bool { return fs.joinCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return s.State() == SocketConnected }, 2*time.Second, 10*time.Millisecond)

	fs.push(`42/tutor,["reply",{"n":2}]`)
	select {
	case p := <-got:
		assert.JSONEq(t, `{"n":2}`, string(p))
	case <-time.After(2 * time.Second):
		t.Fatal("event after reconnect not dispatched")
	}
}

func TestSocket_CloseStopsGoroutines(t *testing.T) {
	fs := newFakeSocketServer(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestSocket(fs, NamespaceTutor)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Close())

	assert.Equal(t, SocketClosed, s.State())
	assert.ErrorIs(t, s.Connect(context.Background()), ErrSocketClosed)
	assert.NoError(t, s.Close())
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:3000", "ws://localhost:3000/socket.io/?EIO=4&transport=websocket"},
		{"https://api.example.com/", "wss://api.example.com/socket.io/?EIO=4&transport=websocket"},
		{"ws://127.0.0.1:3000", "ws://127.0.0.1:3000/socket.io/?EIO=4&transport=websocket"},
	}
	for _, tc := range tests {
		got, err := socketURL(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := socketURL("ftp://example.com")
	assert.Error(t, err)
}
