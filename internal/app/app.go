package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	apphttp "github.com/yungbote/contacts-backend/internal/http"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Router   *gin.Engine
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	server       *apphttp.Server
	shutdownOtel func(context.Context) error
}

// New loads configuration and wires every dependency. Resources acquired
// before a failure are released before New returns.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading configuration...")
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	shutdownOtel := observability.InitOTel(ctx, log, cfg.otel())

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = shutdownOtel(context.WithoutCancel(ctx))
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, clients, metrics)
	if err != nil {
		clients.Close(log)
		_ = shutdownOtel(context.WithoutCancel(ctx))
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, clients)
	router := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:      log,
		Cfg:      cfg,
		Router:   router,
		Clients:  clients,
		Services: serviceset,
		Metrics:  metrics,
		server: apphttp.NewServer(apphttp.ServerConfig{
			Addr:              cfg.HTTP.Addr,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
			ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
		}, log, router),
		shutdownOtel: shutdownOtel,
	}, nil
}

// Run serves HTTP and samples pool metrics until ctx is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Metrics != nil {
		a.Metrics.StartPostgresCollector(gctx, a.Clients.Postgres.Pool(), a.Cfg.Metrics.ScrapeInterval)
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, a.Cfg.Metrics.ScrapeInterval)
	}

	g.Go(func() error {
		return a.server.Run(gctx)
	})
	return g.Wait()
}

// Close flushes traces and closes clients. Safe to call once after Run.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Clients.Close(a.Log)
	a.Log.Sync()
}
