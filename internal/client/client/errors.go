package client

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	msgTimeout = "Request timed out. Please check your connection and try again."
	msgNetwork = "Network error. Please check your internet connection."
)

var (
	ErrTimeout      = errors.New(msgTimeout)
	ErrNetwork      = errors.New(msgNetwork)
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("server unavailable")
)

// APIError is the normalized failure of a REST call. Status is zero when no
// response was received.
type APIError struct {
	Status  int
	Message string

	kind error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.kind }

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func newStatusError(status int, body []byte) *APIError {
	return NewStatusError(status, extractMessage(status, body))
}

// NewStatusError builds the error HTTPClient returns for an HTTP failure
// status, classified for errors.Is.
func NewStatusError(status int, message string) *APIError {
	e := &APIError{Status: status, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
	case status >= 500:
		e.kind = ErrUnavailable
	}
	return e
}

const maxMessageLen = 512

// extractMessage picks the most specific human-readable message from a
// failed response body. Markup bodies, usually proxy error pages, give way
// to the status text.
func extractMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))

	if trimmed != "" && gjson.Valid(trimmed) {
		r := gjson.Parse(trimmed)
		if r.IsObject() {
			if m := r.Get("message"); m.Type == gjson.String && m.Str != "" {
				return m.Str
			}
			if m := r.Get("error"); m.Type == gjson.String && m.Str != "" {
				return m.Str
			}
		}
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	} else if trimmed != "" && !strings.HasPrefix(trimmed, "<") {
		if len(trimmed) > maxMessageLen {
			trimmed = trimmed[:maxMessageLen]
		}
		return trimmed
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}
