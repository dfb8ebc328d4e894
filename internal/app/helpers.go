package app

import (
	"os"
	"strings"

	"github.com/fox-studio/site/internal/config"
	"github.com/fox-studio/site/internal/modules/offline"
	jwtpkg "github.com/fox-studio/site/internal/pkg/jwt"
	"github.com/fox-studio/site/internal/pkg/nativelog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	_ = os.Setenv(nativelog.EnvLogDir, cfg.LogDir())

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
	if strings.TrimSpace(cfg.Admin.PasswordHash) == "" {
		logger.Warn("admin.password_hash is empty, admin login is disabled")
	}
}

// cacheStorage picks the offline cache backend named by cache.driver.
func cacheStorage(cfg *config.AppConfig, rdb *redis.Client) offline.Storage {
	if cfg.Cache.Driver == config.CacheDriverRedis && rdb != nil {
		return offline.NewRedisStorage(rdb, offline.DefaultRedisPrefix)
	}
	return offline.NewMemoryStorage()
}
