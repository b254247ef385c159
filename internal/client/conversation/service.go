package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/realtime"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

var (
	ErrNoSession = errors.New("no active realtime session")
	ErrEmptyText = errors.New("message text is empty")
)

// SessionAPI is the part of the backend that mints and closes realtime
// sessions.
type SessionAPI interface {
	CreateRealtimeSession(ctx context.Context, req models.RealtimeSessionRequest) (*models.RealtimeSession, error)
	EndRealtimeSession(ctx context.Context, sessionID string, end models.RealtimeSessionEnd) error
}

type Connector interface {
	Connect(ctx context.Context, session *models.RealtimeSession) (realtime.Conn, error)
}

type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionConnecting SessionState = "connecting"
	SessionConnected  SessionState = "connected"
	SessionStopping   SessionState = "stopping"
	SessionFailed     SessionState = "failed"
)

type StartOptions struct {
	Topic        string
	Voice        string
	Instructions string
}

// Status is a point-in-time view of the service.
type Status struct {
	Session   SessionState
	Breaker   State
	SessionID string
}

type Config struct {
	FailureThreshold int
	Cooldown         time.Duration
	Logger           logging.Logger
	Metrics          *metrics.Collector
	Now              func() time.Time
}

// Service owns at most one realtime session. Start and stop run on a
// single-worker queue, so they never overlap; starts go through the breaker.
type Service struct {
	api       SessionAPI
	connector Connector
	breaker   *Breaker
	queue     *Queue
	logger    logging.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   SessionState
	session *models.RealtimeSession
	conn    realtime.Conn
	started time.Time
	stop    chan struct{}
	fwd     sync.WaitGroup

	events    chan realtime.ServerEvent
	closeOnce sync.Once
}

func NewService(api SessionAPI, connector Connector, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger.With("component", "conversation")

	s := &Service{
		api:       api,
		connector: connector,
		queue:     NewQueue(),
		logger:    logger,
		now:       cfg.Now,
		state:     SessionIdle,
		events:    make(chan realtime.ServerEvent, 64),
	}
	s.breaker = NewBreaker(BreakerConfig{
		Name:             "realtime",
		FailureThreshold: cfg.FailureThreshold,
		Cooldown:         cfg.Cooldown,
		Now:              cfg.Now,
		Metrics:          cfg.Metrics,
		OnStateChange: func(from, to State) {
			logger.Warn(context.Background(), "breaker state changed", "from", from, "to", to)
		},
	})
	return s
}

// StartSession connects a new realtime session. It is a no-op while a
// session is connected.
func (s *Service) StartSession(ctx context.Context, opts StartOptions) error {
	return s.queue.Submit(ctx, func(ctx context.Context) error {
		s.mu.Lock()
		if s.state == SessionConnected {
			s.mu.Unlock()
			return nil
		}
		prev := s.state
		s.mu.Unlock()

		// A failed session may still hold a dead connection.
		s.teardown(ctx)

		s.setState(SessionConnecting)
		err := s.breaker.Execute(ctx, func(ctx context.Context) error {
			return s.start(ctx, opts)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrCircuitOpen):
			s.setState(prev)
		default:
			s.setState(SessionFailed)
		}
		return err
	})
}

func (s *Service) start(ctx context.Context, opts StartOptions) error {
	sess, err := s.api.CreateRealtimeSession(ctx, models.RealtimeSessionRequest{
		Topic:        opts.Topic,
		Voice:        opts.Voice,
		Instructions: opts.Instructions,
	})
	if err != nil {
		return fmt.Errorf("create realtime session: %w", err)
	}

	conn, err := s.connector.Connect(ctx, sess)
	if err != nil {
		s.endRemote(ctx, sess.ID, 0)
		return fmt.Errorf("connect realtime session: %w", err)
	}

	instructions := firstNonEmpty(opts.Instructions, sess.Instructions)
	voice := firstNonEmpty(opts.Voice, sess.Voice)
	if instructions != "" || voice != "" {
		if err := conn.Send(ctx, realtime.SessionUpdate(instructions, voice)); err != nil {
			_ = conn.Close()
			s.endRemote(ctx, sess.ID, 0)
			return fmt.Errorf("configure realtime session: %w", err)
		}
	}

	stop := make(chan struct{})
	s.mu.Lock()
	s.session = sess
	s.conn = conn
	s.started = s.now()
	s.stop = stop
	s.state = SessionConnected
	s.mu.Unlock()

	s.fwd.Add(1)
	go s.forward(conn, stop)

	s.logger.Info(ctx, "realtime session started", "session_id", sess.ID)
	return nil
}

// StopSession closes the active session and reports its duration to the
// backend. It is a no-op when idle.
func (s *Service) StopSession(ctx context.Context) error {
	return s.queue.Submit(ctx, func(ctx context.Context) error {
		s.teardown(ctx)
		return nil
	})
}

// teardown must run on the queue, or after the queue is closed.
func (s *Service) teardown(ctx context.Context) {
	s.mu.Lock()
	conn, sess, stop, started := s.conn, s.session, s.stop, s.started
	if conn == nil {
		if s.state == SessionFailed {
			s.state = SessionIdle
		}
		s.mu.Unlock()
		return
	}
	s.state = SessionStopping
	s.mu.Unlock()

	close(stop)
	if err := conn.Close(); err != nil {
		s.logger.Debug(ctx, "closing realtime connection", "error", err)
	}
	s.fwd.Wait()

	s.endRemote(ctx, sess.ID, s.now().Sub(started))

	s.mu.Lock()
	s.conn = nil
	s.session = nil
	s.stop = nil
	s.state = SessionIdle
	s.mu.Unlock()

	s.logger.Info(ctx, "realtime session stopped", "session_id", sess.ID)
}

// endRemote is best-effort.
func (s *Service) endRemote(ctx context.Context, id string, d time.Duration) {
	if id == "" {
		return
	}
	end := models.RealtimeSessionEnd{DurationSeconds: int(d.Seconds())}
	if err := s.api.EndRealtimeSession(ctx, id, end); err != nil {
		s.logger.Warn(ctx, "failed to end realtime session", "session_id", id, "error", err)
	}
}

// forward copies conn's events to the service channel until conn ends or
// stop is closed. A connection that ends on its own marks the session failed.
func (s *Service) forward(conn realtime.Conn, stop <-chan struct{}) {
	defer s.fwd.Done()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-conn.Events():
			if !ok {
				s.mu.Lock()
				if s.conn == conn && s.state == SessionConnected {
					s.state = SessionFailed
				}
				s.mu.Unlock()
				return
			}
			select {
			case s.events <- ev:
			case <-stop:
				return
			}
		}
	}
}

// SendText sends a user message and asks for a response.
func (s *Service) SendText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	s.mu.Lock()
	conn, state := s.conn, s.state
	s.mu.Unlock()
	if conn == nil || state != SessionConnected {
		return ErrNoSession
	}

	if err := conn.Send(ctx, realtime.UserText(text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if err := conn.Send(ctx, realtime.ResponseCreate()); err != nil {
		return fmt.Errorf("request response: %w", err)
	}
	return nil
}

// Events delivers server events of every session. It is closed by Close.
func (s *Service) Events() <-chan realtime.ServerEvent { return s.events }

func (s *Service) State() Status {
	s.mu.Lock()
	st := Status{Session: s.state}
	if s.session != nil {
		st.SessionID = s.session.ID
	}
	s.mu.Unlock()
	st.Breaker = s.breaker.State()
	return st
}

func (s *Service) Breaker() *Breaker { return s.breaker }

// Close stops any active session and the queue worker.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.queue.Close()
		s.teardown(context.Background())
		close(s.events)
	})
	return nil
}

func (s *Service) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
