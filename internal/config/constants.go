package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultSiteName   = "Fox Studio"

	defaultOriginURL      = "http://127.0.0.1:5173"
	defaultBackendURL     = "http://127.0.0.1:8000/api"
	defaultBackendTimeout = 10 * time.Second

	defaultCacheVersion     = 1
	defaultCacheDriver      = CacheDriverMemory
	defaultCacheAPIPrefix   = "/api/"
	defaultCacheOfflinePage = "/offline.html"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultMailPort = 465
)

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// defaultPrecacheManifest lists the same-origin paths stored on worker install.
var defaultPrecacheManifest = []string{
	"/",
	"/index.html",
	"/offline.html",
	"/manifest.json",
	"/favicon.ico",
	"/icons/icon-192x192.png",
}
