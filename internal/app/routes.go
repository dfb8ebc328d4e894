package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fox-studio/site/internal/middleware"
	"github.com/fox-studio/site/internal/modules/article"
	"github.com/fox-studio/site/internal/modules/auth"
	"github.com/fox-studio/site/internal/modules/blocks"
	"github.com/fox-studio/site/internal/modules/health"
	"github.com/fox-studio/site/internal/modules/newsletter"
	"github.com/fox-studio/site/internal/modules/offline"
	pkgmail "github.com/fox-studio/site/internal/pkg/mail"
	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	adminTokenTTL  = 7 * 24 * time.Hour
	pageCacheTTL   = 15 * time.Second
	idempotenceTTL = 60 * time.Second
	originTimeout  = 30 * time.Second
)

func (a *App) registerRoutes() error {
	r := a.router
	cfg := a.cfg
	rdb := a.redis.Raw()
	authMW := middleware.Auth()

	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	root := r.Group("")
	renderer := blocks.NewRenderer(a.logger.Named("blocks"))
	articles := article.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	origin, err := offline.OriginURL(cfg.Origin.URL)
	if err != nil {
		return fmt.Errorf("origin url: %w", err)
	}
	opts := offline.Options{
		Version:        cfg.Cache.Version,
		Manifest:       cfg.Cache.Manifest,
		APIPrefix:      cfg.Cache.APIPrefix,
		OfflinePage:    cfg.Cache.OfflinePage,
		Origin:         origin,
		WaitForMessage: cfg.Cache.WaitForMessage,
	}
	offlineLogger := a.logger.Named("offline")
	network := offline.NewHTTPNetwork(origin, &http.Client{Timeout: originTimeout})
	reg := offline.NewRegistration(offlineLogger)
	a.offline = offline.NewHandler(reg, cacheStorage(cfg, rdb), network, opts, offlineLogger)
	a.offline.RegisterRoutes(root, authMW)

	pageCache := middleware.HTTPCache(rdb, middleware.HTTPCacheOptions{
		TTL:             pageCacheTTL,
		EnableCDNHeader: true,
		Disable:         cfg.IsDev(),
	})
	article.NewHandler(articles, renderer, rdb, article.DocumentOptions{SiteName: cfg.Site.Name}, a.logger.Named("article")).
		OnUnavailable(a.offline.ServeOfflinePage).
		RegisterRoutes(root, authMW, pageCache)

	loginLimiter := middleware.RateLimit(rdb, middleware.RateLimitOptions{
		Max:    5,
		Window: time.Minute,
		Prefix: "fox:rate_limit:login:",
		Logger: a.logger,
	})
	authSvc := auth.NewService(cfg.Admin.PasswordHash, adminTokenTTL)
	auth.NewHandler(authSvc, !cfg.IsDev(), a.logger.Named("auth")).RegisterRoutes(root, authMW, loginLimiter)

	sender := pkgmail.New(pkgmail.BuildMailConfig(cfg.Mail))
	composer := newsletter.NewComposer(renderer, cfg.Site.Name, cfg.Site.URL)
	newsletterSvc := newsletter.NewService(composer, articles, sender, sender.Enabled(), a.logger.Named("newsletter"))
	newsletter.NewHandler(newsletterSvc).RegisterRoutes(root, authMW, middleware.Idempotence(rdb, idempotenceTTL))

	health.NewHandler(reg, rdb, a.sched, sender, cfg.Site.Name).RegisterRoutes(root, authMW)

	// Everything no local route claims goes through the worker, then the origin.
	r.NoRoute(a.offline.Edge(), offline.OriginProxy(origin, offlineLogger))
	return nil
}
