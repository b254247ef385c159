package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/notify"
	cacherepo "github.com/dmitrijs2005/lingua/internal/client/repositories/cache"
	"github.com/dmitrijs2005/lingua/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lingua/internal/client/tokens"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	api   *client.HTTPClient
	cache *cache.Cache
	meta  metadata.Repository
	store *tokens.MemoryStore
	clock *clock
}

// backend routes /api/v1 paths to handlers; the handler set can be swapped
// between calls.
type backend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]*atomic.Int32
}

func (b *backend) set(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes["/api/v1"+path] = h
	if b.hits["/api/v1"+path] == nil {
		b.hits["/api/v1"+path] = &atomic.Int32{}
	}
}

func (b *backend) count(path string) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h := b.hits["/api/v1"+path]; h != nil {
		return h.Load()
	}
	return 0
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	h := b.routes[r.URL.Path]
	hits := b.hits[r.URL.Path]
	b.mu.Unlock()
	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	hits.Add(1)
	h(w, r)
}

func setup(t *testing.T) (*env, *backend) {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := &backend{routes: map[string]http.HandlerFunc{}, hits: map[string]*atomic.Int32{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	clk := &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	store := tokens.NewMemoryStore()
	require.NoError(t, store.Save(ctx, models.TokenPair{AccessToken: "acc", RefreshToken: "ref"}))

	return &env{
		api:   client.NewHTTPClient(srv.URL, store),
		cache: cache.New(cacherepo.NewSQLiteRepository(db), cache.WithClock(clk.Now)),
		meta:  metadata.NewSQLiteRepository(db),
		store: store,
		clock: clk,
	}, b
}

func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			_ = json.NewEncoder(w).Encode(v)
		}
	}
}

type recorder struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}
