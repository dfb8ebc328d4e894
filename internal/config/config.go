package config

import (
	"bytes"
	"fmt"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath and applies it on top of the defaults.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	return Parse(content, path)
}

// Parse decodes YAML config content. name is only used in error messages.
func Parse(content []byte, name string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", name, err)
		}
	}

	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", name, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", name, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Site: SiteConfig{
			Name: defaultSiteName,
		},
		Origin: OriginConfig{
			URL: defaultOriginURL,
		},
		Backend: BackendConfig{
			URL:     defaultBackendURL,
			Timeout: defaultBackendTimeout,
		},
		Cache: CacheConfig{
			Version:     defaultCacheVersion,
			Driver:      defaultCacheDriver,
			APIPrefix:   defaultCacheAPIPrefix,
			OfflinePage: defaultCacheOfflinePage,
			Manifest:    append([]string(nil), defaultPrecacheManifest...),
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Mail: MailConfig{
			Port: defaultMailPort,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	cfg.Env = normalizeEnv(cfg.Env)
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}

	if v := strings.TrimSpace(raw.Site.Name); v != "" {
		cfg.Site.Name = v
	}
	if v := strings.TrimSpace(raw.Site.URL); v != "" {
		cfg.Site.URL = strings.TrimRight(v, "/")
	}

	if v := strings.TrimSpace(raw.Origin.URL); v != "" {
		cfg.Origin.URL = v
	}
	if v := strings.TrimSpace(raw.OriginURL); v != "" {
		cfg.Origin.URL = v
	}
	cfg.Origin.URL = strings.TrimRight(cfg.Origin.URL, "/")

	if v := strings.TrimSpace(raw.Backend.URL); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(raw.BackendURL); v != "" {
		cfg.Backend.URL = v
	}
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	if v := strings.TrimSpace(raw.Backend.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("backend.timeout: %w", err)
		}
		cfg.Backend.Timeout = d
	}

	cfg.Cache = applyRawCacheConfig(cfg.Cache, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)

	if v := strings.TrimSpace(raw.Admin.PasswordHash); v != "" {
		cfg.Admin.PasswordHash = v
	}
	cfg.Mail = applyRawMailConfig(cfg.Mail, raw.Mail)
	return nil
}

func applyRawCacheConfig(current CacheConfig, raw rawAppConfig) CacheConfig {
	if raw.Cache.Version != nil {
		current.Version = *raw.Cache.Version
	}
	if raw.CacheVersion != nil {
		current.Version = *raw.CacheVersion
	}
	if v := strings.TrimSpace(raw.Cache.Driver); v != "" {
		current.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Cache.APIPrefix); v != "" {
		current.APIPrefix = v
	}
	if v := strings.TrimSpace(raw.Cache.OfflinePage); v != "" {
		current.OfflinePage = v
	}
	if raw.Cache.Manifest != nil {
		current.Manifest = normalizeManifest(raw.Cache.Manifest)
	}
	if raw.Cache.WaitForMessage != nil {
		current.WaitForMessage = *raw.Cache.WaitForMessage
	}
	current.APIPrefix = normalizePathPrefix(current.APIPrefix)
	current.OfflinePage = normalizePath(current.OfflinePage)
	return current
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		current.Host = v
	}
	if raw.Redis.Port != 0 {
		current.Port = raw.Redis.Port
	}
	if raw.Redis.Password != "" {
		current.Password = raw.Redis.Password
	}
	if raw.Redis.DB != nil {
		current.DB = *raw.Redis.DB
	}
	return current
}

func applyRawMailConfig(current MailConfig, raw rawMail) MailConfig {
	if raw.Enable != nil {
		current.Enable = *raw.Enable
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		current.Host = v
	}
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		current.User = v
	}
	if raw.Pass != "" {
		current.Pass = raw.Pass
	}
	if v := strings.TrimSpace(raw.From); v != "" {
		current.From = v
	}
	if v := strings.TrimSpace(raw.ReplyTo); v != "" {
		current.ReplyTo = v
	}
	if v := strings.TrimSpace(raw.ResendKey); v != "" {
		current.ResendKey = v
	}
	return current
}

func validate(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if err := validateHTTPURL("origin.url", cfg.Origin.URL); err != nil {
		return err
	}
	if err := validateHTTPURL("backend.url", cfg.Backend.URL); err != nil {
		return err
	}
	if cfg.Site.URL != "" {
		if err := validateHTTPURL("site.url", cfg.Site.URL); err != nil {
			return err
		}
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend.timeout %s, expected > 0", cfg.Backend.Timeout)
	}
	if cfg.Cache.Version < 1 {
		return fmt.Errorf("invalid cache.version %d, expected >= 1", cfg.Cache.Version)
	}
	switch cfg.Cache.Driver {
	case CacheDriverMemory, CacheDriverRedis:
	default:
		return fmt.Errorf("invalid cache.driver %q, expected %q or %q", cfg.Cache.Driver, CacheDriverMemory, CacheDriverRedis)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", cfg.Redis.Port)
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := neturl.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q, expected an absolute http(s) url", field, raw)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// UsesRedis reports whether any component needs a redis connection.
func (c *AppConfig) UsesRedis() bool {
	return c.Cache.Driver == CacheDriverRedis || strings.TrimSpace(c.Redis.URL) != ""
}

// RedisURLValue returns the redis url, building one from host/port/db when not set.
func (c RedisRuntimeConfig) RedisURLValue() string {
	if v := strings.TrimSpace(c.URL); v != "" {
		return v
	}
	u := neturl.URL{
		Scheme: "redis",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
