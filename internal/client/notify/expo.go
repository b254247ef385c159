package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const ExpoPushURL = "https://exp.host/--/api/v2/push/send"

// ExpoNotifier sends push notifications through the Expo push service to a
// single device token.
type ExpoNotifier struct {
	endpoint string
	token    string
	http     *http.Client
}

type ExpoOption func(*ExpoNotifier)

func WithEndpoint(url string) ExpoOption {
	return func(e *ExpoNotifier) { e.endpoint = url }
}

func WithExpoHTTPClient(hc *http.Client) ExpoOption {
	return func(e *ExpoNotifier) { e.http = hc }
}

func NewExpoNotifier(token string, opts ...ExpoOption) *ExpoNotifier {
	e := &ExpoNotifier{
		endpoint: ExpoPushURL,
		token:    token,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type expoMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
	Sound string         `json:"sound,omitempty"`
}

func (e *ExpoNotifier) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(expoMessage{To: e.token, Title: n.Title, Body: n.Body, Data: n.Data, Sound: "default"})
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push rejected: %s - %s", resp.Status, string(respBody))
	}

	// A ticket is either {"data":{...}} or {"data":[{...}]} for batches.
	ticket := gjson.GetBytes(respBody, "data")
	if ticket.IsArray() {
		ticket = ticket.Get("0")
	}
	if ticket.Get("status").String() == "error" {
		return fmt.Errorf("push ticket error: %s", ticket.Get("message").String())
	}
	return nil
}
