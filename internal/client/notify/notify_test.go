package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
)

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestExpoNotifier_SendsMessage(t *testing.T) {
	var got expoMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"ticket-1"}}`))
	}))
	defer srv.Close()

	n := NewExpoNotifier("ExponentPushToken[abc]", WithEndpoint(srv.URL))
	err := n.Notify(context.Background(), Notification{
		Title: "Achievement unlocked",
		Body:  "First Steps",
		Data:  map[string]any{"achievementId": "a1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ExponentPushToken[abc]", got.To)
	assert.Equal(t, "Achievement unlocked", got.Title)
	assert.Equal(t, "First Steps", got.Body)
	assert.Equal(t, "a1", got.Data["achievementId"])
}

func TestExpoNotifier_TicketError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"status":"error","message":"DeviceNotRegistered"}]}`))
	}))
	defer srv.Close()

	err := NewExpoNotifier("t", WithEndpoint(srv.URL)).Notify(context.Background(), Notification{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeviceNotRegistered")
}

func TestExpoNotifier_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewExpoNotifier("t", WithEndpoint(srv.URL)).Notify(context.Background(), Notification{Title: "x"})
	require.Error(t, err)
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}

	err := Multi{a, b}.Notify(context.Background(), Notification{Title: "t"})
	require.ErrorIs(t, err, boom)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestCounted(t *testing.T) {
	m := metrics.NewCollector("test")
	n := Counted("log", NewLogNotifier(nil), m)

	require.NoError(t, n.Notify(context.Background(), Notification{Title: "t"}))

	c, err := testutil.GatherAndCount(m.Registry(), "test_notify_sent_total")
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}
