// Package realtime holds the client's WebSocket transports: a Socket.IO
// namespace client for the backend's /tutor and /realtime channels, and a
// connector for the OpenAI Realtime API.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const (
	NamespaceTutor    = "/tutor"
	NamespaceRealtime = "/realtime"

	socketPath = "/socket.io/"
)

var (
	ErrNotConnected = errors.New("socket is not connected")
	ErrSocketClosed = errors.New("socket is closed")
)

// ConnectError is a namespace join rejected by the server.
type ConnectError struct {
	Namespace string
	Message   string
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %s", e.Namespace, e.Message)
}

// Handler receives the first argument of an event. It runs on the socket's
// read goroutine and must not block.
type Handler func(payload json.RawMessage)

// SocketState is reported to the logger on change.
type SocketState string

const (
	SocketDisconnected SocketState = "disconnected"
	SocketConnecting   SocketState = "connecting"
	SocketConnected    SocketState = "connected"
	SocketReconnecting SocketState = "reconnecting"
	SocketClosed       SocketState = "closed"
)

type SocketConfig struct {
	// URL is the server base, e.g. https://api.lingua.example. http(s) is
	// mapped to ws(s).
	URL        string
	Namespaces []string
	// Token returns the bearer token sent with every namespace join.
	Token func(ctx context.Context) (string, error)

	// NewBackOff builds the reconnect policy. Defaults to exponential
	// backoff from 500ms to 30s without an overall limit.
	NewBackOff       func() backoff.BackOff
	HandshakeTimeout time.Duration
	Logger           logging.Logger
	Metrics          *metrics.Collector
}

// Socket is a Socket.IO v4 client over a single WebSocket. Namespaces are
// joined on connect and rejoined after every reconnect.
type Socket struct {
	cfg    SocketConfig
	dialer *websocket.Dialer
	logger logging.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	state    SocketState
	handlers map[string]map[string][]Handler

	writeMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSocket(cfg SocketConfig) *Socket {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		}
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.Token == nil {
		cfg.Token = func(context.Context) (string, error) { return "", nil }
	}
	return &Socket{
		cfg:      cfg,
		dialer:   &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout, Proxy: http.ProxyFromEnvironment},
		logger:   cfg.Logger.With("component", "socket"),
		state:    SocketDisconnected,
		handlers: make(map[string]map[string][]Handler),
	}
}

// On registers h for event on namespace nsp. Handlers may be added at any
// time.
func (s *Socket) On(nsp, event string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[nsp] == nil {
		s.handlers[nsp] = make(map[string][]Handler)
	}
	s.handlers[nsp][event] = append(s.handlers[nsp][event], h)
}

// Off removes every handler registered for event on namespace nsp.
func (s *Socket) Off(nsp, event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers[nsp], event)
}

func (s *Socket) State() SocketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials, joins every configured namespace and starts the read loop.
// After a successful Connect, dropped connections are re-established in the
// background until Close.
func (s *Socket) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case SocketClosed:
		s.mu.Unlock()
		return ErrSocketClosed
	case SocketDisconnected:
	default:
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.setState(ctx, SocketConnecting)
	conn, err := s.dialAndJoin(ctx)
	if err != nil {
		s.setState(ctx, SocketDisconnected)
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.state == SocketClosed {
		s.mu.Unlock()
		cancel()
		_ = conn.Close()
		return ErrSocketClosed
	}
	s.conn = conn
	s.cancel = cancel
	s.mu.Unlock()
	s.setState(ctx, SocketConnected)

	s.wg.Add(1)
	go s.run(loopCtx, conn)
	return nil
}

// Emit sends event with payload on namespace nsp.
func (s *Socket) Emit(ctx context.Context, nsp, event string, payload any) error {
	msg, err := encodeEvent(nsp, event, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return s.write(ctx, conn, msg)
}

// Close stops reconnection and closes the connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.state == SocketClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = SocketClosed
	conn, cancel := s.conn, s.cancel
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if conn != nil {
		s.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = conn.Close()
	}
	s.wg.Wait()
	s.logger.Info(context.Background(), "socket state changed", "state", SocketClosed)
	return err
}

func (s *Socket) run(ctx context.Context, conn *websocket.Conn) {
	defer s.wg.Done()

	for {
		err := s.readLoop(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "socket connection lost", "error", err)
		s.setState(ctx, SocketReconnecting)

		conn = s.reconnect(ctx)
		if conn == nil {
			return
		}
	}
}

func (s *Socket) reconnect(ctx context.Context) *websocket.Conn {
	var conn *websocket.Conn
	op := func() error {
		s.cfg.Metrics.RecordSocketReconnect()
		c, err := s.dialAndJoin(ctx)
		if err != nil {
			var ce *ConnectError
			if errors.As(err, &ce) {
				return backoff.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(s.cfg.NewBackOff(), ctx))
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(ctx, "socket reconnect abandoned", "error", err)
			s.mu.Lock()
			s.conn = nil
			s.mu.Unlock()
			s.setState(ctx, SocketDisconnected)
		}
		return nil
	}

	s.mu.Lock()
	if s.state == SocketClosed {
		s.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()
	s.setState(ctx, SocketConnected)
	return conn
}

func (s *Socket) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		msg := string(data)
		if msg == "" {
			continue
		}

		switch msg[0] {
		case enginePing:
			if err := s.write(ctx, conn, string(enginePong)); err != nil {
				return err
			}
		case engineClose:
			return errors.New("server closed the engine session")
		case engineMessage:
			s.handlePacket(ctx, msg[1:])
		}
	}
}

func (s *Socket) handlePacket(ctx context.Context, raw string) {
	p, err := decodePacket(raw)
	if err != nil {
		s.logger.Debug(ctx, "dropping malformed packet", "error", err)
		return
	}

	switch p.Type {
	case packetEvent:
		name, arg, err := eventArgs(p.Data)
		if err != nil {
			s.logger.Debug(ctx, "dropping malformed event", "namespace", p.Namespace)
			return
		}
		s.dispatch(p.Namespace, name, arg)
	case packetConnectError:
		s.logger.Warn(ctx, "namespace rejected", "namespace", p.Namespace, "message", gjson.GetBytes(p.Data, "message").String())
	case packetDisconnect:
		s.logger.Info(ctx, "namespace disconnected by server", "namespace", p.Namespace)
	}
}

func (s *Socket) dispatch(nsp, event string, arg json.RawMessage) {
	s.mu.Lock()
	hs := append([]Handler(nil), s.handlers[nsp][event]...)
	s.mu.Unlock()

	for _, h := range hs {
		h(arg)
	}
}

// dialAndJoin opens the engine session and joins all namespaces.
func (s *Socket) dialAndJoin(ctx context.Context) (*websocket.Conn, error) {
	u, err := socketURL(s.cfg.URL)
	if err != nil {
		return nil, err
	}

	conn, _, err := s.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	if err := s.handshake(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (s *Socket) handshake(ctx context.Context, conn *websocket.Conn) error {
	deadline := time.Now().Add(s.cfg.HandshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	_, open, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	if len(open) == 0 || open[0] != engineOpen {
		return fmt.Errorf("%w: expected open, got %q", errMalformedPacket, open)
	}

	token, err := s.cfg.Token(ctx)
	if err != nil {
		return fmt.Errorf("socket token: %w", err)
	}
	auth, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return err
	}

	for _, nsp := range s.cfg.Namespaces {
		if err := s.write(ctx, conn, encodePacket(packetConnect, nsp, auth)); err != nil {
			return fmt.Errorf("join %s: %w", nsp, err)
		}
		if err := awaitJoin(conn, nsp); err != nil {
			return err
		}
	}
	return nil
}

// awaitJoin reads until the server acknowledges or rejects nsp, answering
// pings on the way.
func awaitJoin(conn *websocket.Conn, nsp string) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("join %s: %w", nsp, err)
		}
		msg := string(data)
		if msg == "" {
			continue
		}
		if msg[0] == enginePing {
			if err := conn.WriteMessage(websocket.TextMessage, []byte{enginePong}); err != nil {
				return err
			}
			continue
		}
		if msg[0] != engineMessage {
			continue
		}
		p, err := decodePacket(msg[1:])
		if err != nil || p.Namespace != normalizeNamespace(nsp) {
			continue
		}
		switch p.Type {
		case packetConnect:
			return nil
		case packetConnectError:
			m := gjson.GetBytes(p.Data, "message").String()
			if m == "" {
				m = string(p.Data)
			}
			return &ConnectError{Namespace: nsp, Message: m}
		}
	}
}

func (s *Socket) write(ctx context.Context, conn *websocket.Conn, msg string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (s *Socket) setState(ctx context.Context, st SocketState) {
	s.mu.Lock()
	if s.state == st || s.state == SocketClosed {
		s.mu.Unlock()
		return
	}
	s.state = st
	s.mu.Unlock()
	s.logger.Info(ctx, "socket state changed", "state", st)
}

func normalizeNamespace(nsp string) string {
	if nsp == "" {
		return "/"
	}
	return nsp
}

// socketURL maps a server base URL to its Engine.IO WebSocket endpoint.
func socketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("socket url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("socket url: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + socketPath
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}
