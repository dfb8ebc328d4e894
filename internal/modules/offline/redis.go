package offline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the cache storage keys.
const DefaultRedisPrefix = "fox:cachestorage:"

// RedisStorage keeps each store in a redis hash keyed by request URL. Store
// names live in a sorted set scored by creation time.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStorage(rdb *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{rdb: rdb, prefix: prefix}
}

type cachedResponse struct {
	Status     int                 `json:"status"`
	Header     map[string][]string `json:"header,omitempty"`
	BodyBase64 string              `json:"body_base64"`
	Type       ResponseType        `json:"type"`
	URL        string              `json:"url,omitempty"`
}

func (s *RedisStorage) namesKey() string           { return s.prefix + "names" }
func (s *RedisStorage) storeKey(name string) string { return s.prefix + "store:" + name }

func (s *RedisStorage) Open(ctx context.Context, name string) (Store, error) {
	err := s.rdb.ZAddNX(ctx, s.namesKey(), redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: name,
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("open cache store %q: %w", name, err)
	}
	return &redisStore{rdb: s.rdb, key: s.storeKey(name)}, nil
}

func (s *RedisStorage) Keys(ctx context.Context) ([]string, error) {
	names, err := s.rdb.ZRange(ctx, s.namesKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list cache stores: %w", err)
	}
	return names, nil
}

func (s *RedisStorage) Delete(ctx context.Context, name string) (bool, error) {
	pipe := s.rdb.TxPipeline()
	removed := pipe.ZRem(ctx, s.namesKey(), name)
	pipe.Del(ctx, s.storeKey(name))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete cache store %q: %w", name, err)
	}
	return removed.Val() > 0, nil
}

type redisStore struct {
	rdb *redis.Client
	key string
}

func (s *redisStore) Match(ctx context.Context, req *Request) (*Response, bool, error) {
	if req.Method != http.MethodGet {
		return nil, false, nil
	}
	raw, err := s.rdb.HGet(ctx, s.key, req.CacheKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var payload cachedResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("decode cached response: %w", err)
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached body: %w", err)
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	return &Response{
		Status: payload.Status,
		Header: http.Header(payload.Header).Clone(),
		Body:   body,
		Type:   payload.Type,
		URL:    payload.URL,
	}, true, nil
}

func (s *redisStore) Put(ctx context.Context, req *Request, resp *Response) error {
	if req.Method != http.MethodGet {
		return ErrNotCacheable
	}
	raw, err := json.Marshal(cachedResponse{
		Status:     resp.Status,
		Header:     resp.Header,
		BodyBase64: base64.StdEncoding.EncodeToString(resp.Body),
		Type:       resp.Type,
		URL:        resp.URL,
	})
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, s.key, req.CacheKey(), raw).Err()
}
