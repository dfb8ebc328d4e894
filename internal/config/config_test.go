package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil, "empty.yml")
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "Fox Studio", cfg.Site.Name)
	assert.Equal(t, 1, cfg.Cache.Version)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, "/api/", cfg.Cache.APIPrefix)
	assert.Equal(t, "/offline.html", cfg.Cache.OfflinePage)
	assert.Equal(t, defaultPrecacheManifest, cfg.Cache.Manifest)
	assert.Equal(t, defaultBackendTimeout, cfg.Backend.Timeout)
	assert.False(t, cfg.UsesRedis())
}

func TestParseOverrides(t *testing.T) {
	content := []byte(`
port: 8080
env: Production
site:
  name: Fox Notes
  url: https://fox.example.com/
origin:
  url: https://origin.example.com/
backend:
  url: https://api.example.com/v1/
  timeout: 3s
cache:
  version: 4
  driver: REDIS
  api_prefix: api
  manifest: ["/", "index.html", "/", " "]
  wait_for_message: true
redis:
  host: cache.internal
  port: 6380
  db: 2
`)
	cfg, err := Parse(content, "test.yml")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "Fox Notes", cfg.Site.Name)
	assert.Equal(t, "https://fox.example.com", cfg.Site.URL)
	assert.Equal(t, "https://origin.example.com", cfg.Origin.URL)
	assert.Equal(t, "https://api.example.com/v1", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 4, cfg.Cache.Version)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, "/api/", cfg.Cache.APIPrefix)
	assert.Equal(t, []string{"/", "/index.html"}, cfg.Cache.Manifest)
	assert.True(t, cfg.Cache.WaitForMessage)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, "redis://cache.internal:6380/2", cfg.Redis.RedisURLValue())
}

func TestParseLegacyFlatKeys(t *testing.T) {
	cfg, err := Parse([]byte("origin_url: http://localhost:3000\ncache_version: 7\nredis_url: redis://r:6379/1\n"), "flat.yml")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Origin.URL)
	assert.Equal(t, 7, cfg.Cache.Version)
	assert.Equal(t, "redis://r:6379/1", cfg.Redis.RedisURLValue())
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "nope: 1\n",
		"port":           "port: 70000\n",
		"cache version":  "cache:\n  version: 0\n",
		"cache driver":   "cache:\n  driver: disk\n",
		"origin":         "origin:\n  url: ftp://files\n",
		"backend":        "backend:\n  url: not a url\n",
		"timeout format": "backend:\n  timeout: soon\n",
		"site url":       "site:\n  url: fox.example\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), "bad.yml")
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}
