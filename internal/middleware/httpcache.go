package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	PageCachePrefix           = "fox:page-cache:"
	PageCacheHeader           = "x-fox-page-cache"
	defaultHTTPCacheTTL       = 15 * time.Second
	defaultHTTPCacheMaxBody   = 1 << 20 // 1 MiB
	staleWhileRevalidateValue = 60
)

type HTTPCacheOptions struct {
	TTL             time.Duration
	EnableCDNHeader bool
	Disable         bool
	SkipPaths       []string
	MaxBodyBytes    int
}

type cachedHTTPResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.body)+len(data) > w.maxBodyBytes {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

func normalizeHTTPCacheOptions(opts HTTPCacheOptions) HTTPCacheOptions {
	if opts.TTL <= 0 {
		opts.TTL = defaultHTTPCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultHTTPCacheMaxBody
	}
	return opts
}

// HTTPCache stores anonymous 200 GET responses in redis for a short TTL and
// answers repeat requests from there. Hits carry an ETag and honor
// If-None-Match.
func HTTPCache(rdb *redis.Client, opts HTTPCacheOptions) gin.HandlerFunc {
	options := normalizeHTTPCacheOptions(opts)
	return func(c *gin.Context) {
		if options.Disable || rdb == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if shouldSkipCachePath(path, options.SkipPaths) || hasBypassTimestamp(c) {
			c.Next()
			return
		}

		if IsAuthenticated(c) {
			setPrivateCacheHeader(c.Writer)
			c.Next()
			return
		}

		cacheKey := PageCachePrefix + c.Request.URL.RequestURI()
		if payload, ok := readCachedResponse(c.Request.Context(), rdb, cacheKey); ok {
			c.Header(PageCacheHeader, "hit")
			setCacheHeader(c.Writer, payload.Status, int(options.TTL/time.Second), options)
			if payload.ETag != "" {
				c.Header("ETag", payload.ETag)
				if etagMatches(c.GetHeader("If-None-Match"), payload.ETag) {
					c.AbortWithStatus(http.StatusNotModified)
					return
				}
			}
			c.Data(payload.Status, payload.ContentType, payload.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{
			ResponseWriter: c.Writer,
			maxBodyBytes:   options.MaxBodyBytes,
		}
		c.Writer = buffer
		c.Header(PageCacheHeader, "miss")
		c.Next()

		status := c.Writer.Status()
		if status <= 0 {
			status = http.StatusOK
		}
		if !isCacheableResponse(status, c.Writer.Header()) || buffer.overflow || len(buffer.body) == 0 {
			return
		}

		sum := sha256.Sum256(buffer.body)
		payload := cachedHTTPResponse{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			ETag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return
		}
		_ = rdb.Set(c.Request.Context(), cacheKey, raw, options.TTL).Err()
	}
}

// PurgeHTTPCache deletes every cached page and returns how many were removed.
func PurgeHTTPCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, PageCachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func readCachedResponse(ctx context.Context, rdb *redis.Client, cacheKey string) (cachedHTTPResponse, bool) {
	raw, err := rdb.Get(ctx, cacheKey).Bytes()
	if err != nil || len(raw) == 0 {
		return cachedHTTPResponse{}, false
	}
	var payload cachedHTTPResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return cachedHTTPResponse{}, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "text/html; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return cachedHTTPResponse{}, false
	}
	payload.Body = body
	return payload, true
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(candidate), "W/"))
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func shouldSkipCachePath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		p := strings.TrimSpace(pattern)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func hasBypassTimestamp(c *gin.Context) bool {
	query := c.Request.URL.Query()
	for _, key := range []string{"ts", "timestamp", "_t", "t"} {
		if strings.TrimSpace(query.Get(key)) != "" {
			return true
		}
	}
	return false
}

func isCacheableResponse(status int, headers http.Header) bool {
	if status != http.StatusOK {
		return false
	}
	cacheControl := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cacheControl, "no-cache") &&
		!strings.Contains(cacheControl, "no-store") &&
		!strings.Contains(cacheControl, "private")
}

func setPrivateCacheHeader(w gin.ResponseWriter) {
	cacheValue := "private, max-age=0, no-cache, no-store, must-revalidate"
	w.Header().Set("cdn-cache-control", cacheValue)
	w.Header().Set("cache-control", cacheValue)
}

func setCacheHeader(w gin.ResponseWriter, status, ttlSeconds int, opts HTTPCacheOptions) {
	if status != http.StatusOK || !opts.EnableCDNHeader {
		return
	}
	if ttlSeconds <= 0 {
		ttlSeconds = int(defaultHTTPCacheTTL / time.Second)
	}
	cacheValue := "max-age=" + strconv.Itoa(ttlSeconds) + ", stale-while-revalidate=" + strconv.Itoa(staleWhileRevalidateValue)
	w.Header().Set("cdn-cache-control", cacheValue)
	if w.Header().Get("cache-control") == "" {
		w.Header().Set("cache-control", "s-maxage="+strconv.Itoa(ttlSeconds)+", stale-while-revalidate="+strconv.Itoa(staleWhileRevalidateValue))
	}
}
