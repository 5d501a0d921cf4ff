package products

import (
	"context"
	"encoding/json"
	"time"

	redisclient "github.com/angelmondragon/webmarket/pkg/redis"
)

const listCacheTTL = 5 * time.Minute

// listCache is the redis surface used to cache the catalog list.
type listCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

func (s *service) cachedList(ctx context.Context) ([]ProductSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey("products", "list"))
	if err != nil {
		if !redisclient.IsNil(err) {
			s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "products.cache_read_failed")
		}
		return nil, false
	}
	var out []ProductSummary
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *service) storeList(ctx context.Context, list []ProductSummary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey("products", "list"), raw, listCacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "products.cache_write_failed")
	}
}

func (s *service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CacheKey("products", "list")); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "products.cache_invalidate_failed")
	}
}
