package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const (
	DefaultRealtimeURL   = "wss://api.openai.com/v1/realtime"
	DefaultRealtimeModel = "gpt-4o-realtime-preview"

	eventBuffer = 64
)

var ErrConnClosed = errors.New("realtime connection closed")

// ServerEvent is one message from the realtime API. Delta and Transcript
// are lifted out of the common text and audio transcript events.
type ServerEvent struct {
	Type       string
	Delta      string
	Transcript string
	Raw        json.RawMessage
}

// Conn is a live realtime session.
type Conn interface {
	Send(ctx context.Context, v any) error
	Events() <-chan ServerEvent
	Close() error
}

// OpenAIConnector opens realtime sessions with the ephemeral key minted by
// the backend.
type OpenAIConnector struct {
	url    string
	model  string
	dialer *websocket.Dialer
	logger logging.Logger
}

func NewOpenAIConnector(baseURL, model string, logger logging.Logger) *OpenAIConnector {
	if baseURL == "" {
		baseURL = DefaultRealtimeURL
	}
	if model == "" {
		model = DefaultRealtimeModel
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &OpenAIConnector{
		url:    baseURL,
		model:  model,
		dialer: &websocket.Dialer{HandshakeTimeout: 15 * time.Second, Proxy: http.ProxyFromEnvironment},
		logger: logger.With("component", "realtime"),
	}
}

func (c *OpenAIConnector) Connect(ctx context.Context, session *models.RealtimeSession) (Conn, error) {
	if session == nil || session.ClientSecret == "" {
		return nil, errors.New("realtime session has no client secret")
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("realtime url: %w", err)
	}
	model := session.Model
	if model == "" {
		model = c.model
	}
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+session.ClientSecret)
	h.Set("OpenAI-Beta", "realtime=v1")

	ws, resp, err := c.dialer.DialContext(ctx, u.String(), h)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime dial: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("realtime dial: %w", err)
	}

	conn := &wsConn{
		ws:     ws,
		events: make(chan ServerEvent, eventBuffer),
		done:   make(chan struct{}),
		logger: c.logger.With("session_id", session.ID),
	}
	conn.wg.Add(1)
	go conn.readLoop()
	return conn, nil
}

type wsConn struct {
	ws     *websocket.Conn
	events chan ServerEvent
	logger logging.Logger

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func (c *wsConn) Events() <-chan ServerEvent { return c.events }

func (c *wsConn) Send(ctx context.Context, v any) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode realtime event: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if d, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(d)
	} else {
		_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
		c.wg.Wait()
	})
	return err
}

// readLoop closes events when the connection ends.
func (c *wsConn) readLoop() {
	defer c.wg.Done()
	defer close(c.events)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn(context.Background(), "realtime connection lost", "error", err)
			}
			return
		}

		ev, ok := parseServerEvent(data)
		if !ok {
			c.logger.Debug(context.Background(), "dropping malformed realtime event")
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

func parseServerEvent(data []byte) (ServerEvent, bool) {
	if !gjson.ValidBytes(data) {
		return ServerEvent{}, false
	}
	res := gjson.ParseBytes(data)
	typ := res.Get("type").String()
	if typ == "" {
		return ServerEvent{}, false
	}
	return ServerEvent{
		Type:       typ,
		Delta:      res.Get("delta").String(),
		Transcript: res.Get("transcript").String(),
		Raw:        json.RawMessage(data),
	}, true
}

// SessionUpdate configures instructions and voice for the session.
func SessionUpdate(instructions, voice string) map[string]any {
	session := map[string]any{}
	if instructions != "" {
		session["instructions"] = instructions
	}
	if voice != "" {
		session["voice"] = voice
	}
	return map[string]any{"type": "session.update", "session": session}
}

// UserText adds a user text message to the conversation.
func UserText(text string) map[string]any {
	return map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	}
}

func ResponseCreate() map[string]any {
	return map[string]any{"type": "response.create"}
}
