package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fox-studio/site/internal/config"
	"github.com/fox-studio/site/internal/middleware"
	"github.com/fox-studio/site/internal/modules/offline"
	pkgcron "github.com/fox-studio/site/internal/pkg/cron"
	pkgredis "github.com/fox-studio/site/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	redis   *pkgredis.Client
	logger  *zap.Logger
	sched   *pkgcron.Scheduler
	offline *offline.Handler
	cancel  context.CancelFunc
}

// New initializes the application: settings → redis → router → routes.
// Redis is only dialed when the config asks for it.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	applyRuntimeSettings(cfg, logger)

	var rc *pkgredis.Client
	if cfg.UsesRedis() {
		var err error
		rc, err = pkgredis.Connect(ctx, cfg.Redis.RedisURLValue())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.OptionalAuth())

	a := &App{
		cfg:    cfg,
		router: router,
		redis:  rc,
		logger: logger,
		sched:  pkgcron.New(logger),
		cancel: func() {},
	}
	if err := a.registerRoutes(); err != nil {
		_ = rc.Close()
		return nil, err
	}
	registerCronJobs(a.sched, a.offline)
	return a, nil
}

// Boot installs the offline worker and starts background jobs. A failed
// install is logged and retried by the ensure_worker job; the edge proxies
// straight to the origin until a worker is active.
func (a *App) Boot(ctx context.Context) {
	if err := a.offline.Boot(ctx); err != nil {
		a.logger.Warn("offline worker install failed, serving without cache", zap.Error(err))
	}
	jobCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(jobCtx)
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes redis.
func (a *App) Shutdown() {
	a.cancel()
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis failed", zap.Error(err))
	}
}
