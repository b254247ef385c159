package cli

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/client/config"
	"github.com/dmitrijs2005/lingua/internal/client/conversation"
	"github.com/dmitrijs2005/lingua/internal/client/metrics"
	"github.com/dmitrijs2005/lingua/internal/client/notify"
	"github.com/dmitrijs2005/lingua/internal/client/realtime"
	cacherepo "github.com/dmitrijs2005/lingua/internal/client/repositories/cache"
	"github.com/dmitrijs2005/lingua/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lingua/internal/client/services"
	"github.com/dmitrijs2005/lingua/internal/client/tokens"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

// App holds the wired client: storage, API, services and transports.
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Collector
	db      *sql.DB
	tokens  tokens.Store
	cache   *cache.Cache

	auth          services.AuthService
	achievements  *services.AchievementService
	curriculum    *services.CurriculumService
	progress      *services.ProgressService
	games         *services.GameService
	subscriptions *services.SubscriptionService
	tutor         *services.TutorService
	conversation  *conversation.Service
	socket        *realtime.Socket
}

// NewApp opens the local database and builds every component from cfg.
// Logs go to logOut.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	m := metrics.NewCollector("lingua")

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	store := tokens.NewSQLiteStore(db, cfg.StorageSecret)
	meta := metadata.NewSQLiteRepository(db)
	c := cache.New(cacherepo.NewSQLiteRepository(db),
		cache.WithTTL(cfg.CacheTTL),
		cache.WithLogger(logger),
		cache.WithMetrics(m),
	)

	api := client.NewHTTPClient(cfg.APIBaseURL, store,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
		client.WithMetrics(m),
		client.WithAutoRefresh(cfg.AutoRefresh),
	)

	var notifier notify.Notifier = notify.Counted("log", notify.NewLogNotifier(logger), m)
	if cfg.PushToken != "" {
		notifier = notify.Multi{
			notifier,
			notify.Counted("expo", notify.NewExpoNotifier(cfg.PushToken), m),
		}
	}

	conv := conversation.NewService(api,
		realtime.NewOpenAIConnector(cfg.RealtimeURL, cfg.RealtimeModel, logger),
		conversation.Config{
			FailureThreshold: cfg.BreakerThreshold,
			Cooldown:         cfg.BreakerCooldown,
			Logger:           logger,
			Metrics:          m,
		})

	socket := realtime.NewSocket(realtime.SocketConfig{
		URL:        cfg.SocketURL,
		Namespaces: []string{realtime.NamespaceTutor, realtime.NamespaceRealtime},
		Token:      accessToken(store),
		Logger:     logger,
		Metrics:    m,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		metrics:       m,
		db:            db,
		tokens:        store,
		cache:         c,
		auth:          services.NewAuthService(api, store, c, logger),
		achievements:  services.NewAchievementService(api, c, meta, notifier, logger),
		curriculum:    services.NewCurriculumService(api, c, logger),
		progress:      services.NewProgressService(api, logger),
		games:         services.NewGameService(api, c, logger),
		subscriptions: services.NewSubscriptionService(api, c, logger),
		tutor:         services.NewTutorService(api, logger),
		conversation:  conv,
		socket:        socket,
	}, nil
}

func accessToken(store tokens.Store) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		pair, err := store.Load(ctx)
		if err != nil {
			return "", err
		}
		if pair == nil {
			return "", nil
		}
		return pair.AccessToken, nil
	}
}

// ServeMetrics exposes the collector on cfg.MetricsAddr until ctx ends. It
// does nothing when no address is configured.
func (a *App) ServeMetrics(ctx context.Context) {
	if a.cfg.MetricsAddr == "" {
		return
	}
	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           a.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		a.logger.Info(ctx, "serving metrics", "addr", a.cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server failed", "error", err)
		}
	}()
}

// Close releases transports and the database.
func (a *App) Close() error {
	var errs []error
	if a.conversation != nil {
		errs = append(errs, a.conversation.Close())
	}
	if a.socket != nil {
		errs = append(errs, a.socket.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
