package app

import (
	"net/url"
	"strings"

	"github.com/fox-studio/site/internal/config"
	"github.com/fox-studio/site/internal/middleware"
	"github.com/fox-studio/site/internal/modules/offline"
	"github.com/gin-contrib/cors"
)

// corsConfig exposes the cache headers so the site can show where a
// response came from. Development allows any origin.
func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.IdempotenceHeader},
		ExposeHeaders:    []string{"Content-Length", offline.CacheHeader, middleware.PageCacheHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		AllowOriginFunc:  func(string) bool { return true },
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		c.AllowOriginFunc = allowOrigins(cfg.AllowedOrigins)
	}
	return c
}

func allowOrigins(patterns []string) func(string) bool {
	return func(origin string) bool {
		host := originHost(origin)
		for _, pattern := range patterns {
			if matchOrigin(strings.TrimSpace(pattern), host) {
				return true
			}
		}
		return false
	}
}

// originHost returns the host[:port] of an origin header value.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOrigin supports exact hosts, "*.example.com" subdomains and "host:*" ports.
func matchOrigin(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
