package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/tokens"
	"github.com/dmitrijs2005/lingua/internal/common"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodySize    = 10 << 20
)

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	tokens      tokens.Store
	logger      logging.Logger
	metrics     *metrics.Collector
	autoRefresh bool

	refreshMu sync.Mutex
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithAutoRefresh makes a 401 on an authenticated call rotate the token pair
// through /auth/refresh and replay the call once. Off by default: session
// refresh belongs to the auth service.
func WithAutoRefresh(on bool) Option {
	return func(c *HTTPClient) { c.autoRefresh = on }
}

// NewHTTPClient returns a client for the backend at baseURL (scheme and host,
// without the /api/v1 prefix). store may be nil for anonymous use.
func NewHTTPClient(baseURL string, store tokens.Store, opts ...Option) *HTTPClient {
	if store == nil {
		store = tokens.NewMemoryStore()
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + common.APIVersionPrefix,
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  store,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call describes one REST request. route is the path template used as the
// metrics label; path is the concrete path.
type call struct {
	method string
	route  string
	path   string
	body   any
	out    any

	anonymous bool
}

func (c *HTTPClient) do(ctx context.Context, rc call) error {
	pair, err := c.tokens.Load(ctx)
	if err != nil {
		c.logger.Warn(ctx, "failed to load tokens", "error", err)
		pair = nil
	}

	err = c.send(ctx, rc, pair)
	if err == nil || !c.autoRefresh || rc.anonymous || !errors.Is(err, ErrUnauthorized) {
		return err
	}
	if pair == nil || pair.RefreshToken == "" {
		return err
	}

	fresh, rerr := c.refreshAfter(ctx, pair)
	if rerr != nil {
		c.logger.Warn(ctx, "token refresh failed", "error", rerr)
		return err
	}
	return c.send(ctx, rc, fresh)
}

// refreshAfter rotates tokens unless another caller already replaced stale.
func (c *HTTPClient) refreshAfter(ctx context.Context, stale *models.TokenPair) (*models.TokenPair, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, err := c.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, common.ErrNotLoggedIn
	}
	if current.AccessToken != stale.AccessToken {
		return current, nil
	}

	resp, err := c.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return nil, err
	}
	next := models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}
	if err := c.tokens.Save(ctx, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (c *HTTPClient) send(ctx context.Context, rc call, pair *models.TokenPair) error {
	start := time.Now()
	err := c.roundTrip(ctx, rc, pair)
	c.metrics.RecordAPIRequest(rc.method, rc.route, outcomeOf(err), time.Since(start))
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, rc call, pair *models.TokenPair) error {
	var reader io.Reader
	if rc.body != nil {
		b, err := json.Marshal(rc.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, requestID)
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !rc.anonymous && pair != nil && pair.AccessToken != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+pair.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed", "method", rc.method, "path", rc.path, "request_id", requestID, "error", err)
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(ctx, err) {
			return &APIError{Message: msgTimeout, kind: ErrTimeout}
		}
		return &APIError{Status: resp.StatusCode, Message: err.Error(), kind: ErrNetwork}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newStatusError(resp.StatusCode, body)
		c.logger.Debug(ctx, "request rejected",
			"method", rc.method, "path", rc.path, "status", resp.StatusCode, "request_id", requestID, "message", apiErr.Message)
		return apiErr
	}

	if rc.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(body), rc.out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", rc.method, rc.route, err)
	}
	return nil
}

// unwrapData returns the "data" member of an envelope object, or body as is.
func unwrapData(body []byte) []byte {
	r := gjson.ParseBytes(body)
	if !r.IsObject() {
		return body
	}
	if d := r.Get("data"); d.Exists() {
		return []byte(d.Raw)
	}
	return body
}

func transportError(ctx context.Context, err error) *APIError {
	if isTimeout(ctx, err) {
		return &APIError{Message: msgTimeout, kind: ErrTimeout}
	}
	if ctx.Err() != nil {
		return &APIError{Message: ctx.Err().Error(), kind: ctx.Err()}
	}
	return &APIError{Message: msgNetwork, kind: ErrNetwork}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, ErrUnavailable):
		return metrics.OutcomeServerError
	case StatusOf(err) >= 400:
		return metrics.OutcomeClientError
	default:
		return metrics.OutcomeNetwork
	}
}
