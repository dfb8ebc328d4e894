package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production"
	AllowedOrigins []string           `yaml:"allowed_origins"`
	JWTSecret      string             `yaml:"jwt_secret"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	Site           SiteConfig         `yaml:"site"`
	Origin         OriginConfig       `yaml:"origin"`
	Backend        BackendConfig      `yaml:"backend"`
	Cache          CacheConfig        `yaml:"cache"`
	Redis          RedisRuntimeConfig `yaml:"redis"`
	Admin          AdminConfig        `yaml:"admin"`
	Mail           MailConfig         `yaml:"mail"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

// SiteConfig names the public site in page titles and newsletters.
type SiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// OriginConfig points at the server that hosts the built site bundle and
// answers the requests the offline worker sends to the network.
type OriginConfig struct {
	URL string `yaml:"url"`
}

// BackendConfig points at the content API that serves articles.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	Version     int      `yaml:"version"`
	Driver      string   `yaml:"driver"` // "memory" | "redis"
	APIPrefix   string   `yaml:"api_prefix"`
	OfflinePage string   `yaml:"offline_page"`
	Manifest    []string `yaml:"manifest"`
	// WaitForMessage keeps a new cache version waiting until a SKIP_WAITING
	// message or an admin bump promotes it.
	WaitForMessage bool `yaml:"wait_for_message"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AdminConfig struct {
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

type MailConfig struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	ResendKey string `yaml:"resend_key"`
}

type rawAppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"`
	NodeEnv        string         `yaml:"node_env"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	JWTSecret      string         `yaml:"jwt_secret"`
	Paths          rawPathsConfig `yaml:"paths"`
	LogDir         string         `yaml:"log_dir"`
	Site           rawSite        `yaml:"site"`
	Origin         rawOrigin      `yaml:"origin"`
	OriginURL      string         `yaml:"origin_url"`
	Backend        rawBackend     `yaml:"backend"`
	BackendURL     string         `yaml:"backend_url"`
	Cache          rawCache       `yaml:"cache"`
	CacheVersion   *int           `yaml:"cache_version"`
	Redis          rawRedis       `yaml:"redis"`
	RedisURL       string         `yaml:"redis_url"`
	Admin          rawAdmin       `yaml:"admin"`
	Mail           rawMail        `yaml:"mail"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawSite struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type rawOrigin struct {
	URL string `yaml:"url"`
}

type rawBackend struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type rawCache struct {
	Version        *int     `yaml:"version"`
	Driver         string   `yaml:"driver"`
	APIPrefix      string   `yaml:"api_prefix"`
	OfflinePage    string   `yaml:"offline_page"`
	Manifest       []string `yaml:"manifest"`
	WaitForMessage *bool    `yaml:"wait_for_message"`
}

type rawRedis struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
}

type rawAdmin struct {
	PasswordHash string `yaml:"password_hash"`
}

type rawMail struct {
	Enable    *bool  `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	ResendKey string `yaml:"resend_key"`
}
