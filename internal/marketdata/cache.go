package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// CachingHistory decorates a HistorySource with Redis caching. A nil client bypasses the cache.
type CachingHistory struct {
	inner     interfaces.HistorySource
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

// NewCachingHistory defaults ttl to 6 hours and namespace to "history".
func NewCachingHistory(rdb *redis.Client, ttl time.Duration, inner interfaces.HistorySource, namespace string) *CachingHistory {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if namespace == "" {
		namespace = "history"
	}
	return &CachingHistory{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace, now: time.Now}
}

func (c *CachingHistory) History(ctx context.Context, symbol string) ([]types.RawBar, error) {
	if c.rdb == nil {
		return c.inner.History(ctx, symbol)
	}

	key := c.cacheKey(symbol)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []types.RawBar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.History(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// cacheKey includes the calendar day.
func (c *CachingHistory) cacheKey(symbol string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(symbol), c.now().Format(time.DateOnly))
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
