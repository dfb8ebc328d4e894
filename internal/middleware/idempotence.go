package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotenceHeader     = "x-idempotence"
	idempotencePrefix     = "fox:idempotence:"
	defaultIdempotenceTTL = 60 * time.Second
	maxIdempotenceBody    = 1 << 20
)

// Idempotence rejects a repeated POST or PUT while the first is in flight and
// for ttl after it succeeded. Requests are keyed by the x-idempotence header
// or, failing that, by a hash of method, URL, body and caller.
func Idempotence(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = defaultIdempotenceTTL
	}
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut:
		default:
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := idempotencePrefix + key
		ctx := c.Request.Context()

		ok, err := rdb.SetNX(ctx, redisKey, "0", ttl).Result()
		if err != nil {
			c.Next()
			return
		}
		if !ok {
			msg := "The same request already succeeded; try again later"
			if val, err := rdb.Get(ctx, redisKey).Result(); err == nil && val == "0" {
				msg = "The same request is still being processed"
			} else if err != nil && !errors.Is(err, redis.Nil) {
				c.Next()
				return
			}
			response.Error(c, http.StatusConflict, msg)
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

// resolveIdempotenceKey returns the idempotence key for the current request.
func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(IdempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotenceBody))
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	ua := c.Request.UserAgent()
	ip := c.ClientIP()
	authToken := extractToken(c)

	if len(body) == 0 && ua == "" && ip == "" && authToken == "" {
		return "", nil
	}

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" + ua + "|" + ip + "|" + authToken
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
