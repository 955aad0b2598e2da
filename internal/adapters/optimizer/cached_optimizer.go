package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bus-route-viewer/internal/normalize"
	"bus-route-viewer/internal/platform/obs"
	"bus-route-viewer/internal/ports"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKeyPrefix = "busroute:optimize:"

// CachedOptimizer decorates a RouteOptimizer with a response cache keyed by
// route number. Only 2xx responses without an error field are stored;
// failures always reach the optimizer again. Cache errors never fail a lookup.
type CachedOptimizer struct {
	next  ports.RouteOptimizer
	cache cache.CacheInterface[string]
	ttl   time.Duration
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// NewRedisCache builds a string cache backed by client.
func NewRedisCache(client *redis.Client, ttl time.Duration) cache.CacheInterface[string] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))
	return cache.New[string](redisStore)
}

func NewCachedOptimizer(next ports.RouteOptimizer, c cache.CacheInterface[string], ttl time.Duration) *CachedOptimizer {
	return &CachedOptimizer{next: next, cache: c, ttl: ttl}
}

// cacheKey matches route numbers the way the optimizer does: trimmed and
// upper-cased.
func cacheKey(routeNo string) string {
	return cacheKeyPrefix + strings.ToUpper(strings.TrimSpace(routeNo))
}

func (c *CachedOptimizer) Optimize(ctx context.Context, routeNo string) (_ ports.RawResponse, err error) {
	defer obs.Time(ctx, "optimizer.cache.Optimize")(&err)

	key := cacheKey(routeNo)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var hit cachedResponse
		if err := json.Unmarshal([]byte(raw), &hit); err == nil {
			return ports.RawResponse{StatusCode: hit.Status, Body: []byte(hit.Body)}, nil
		}
		log.Warn().Str("key", key).Msg("discarding unreadable cache entry")
	} else if !errors.Is(err, store.NotFound{}) {
		log.Warn().Err(err).Str("key", key).Msg("optimizer cache read failed")
	}

	resp, err := c.next.Optimize(ctx, routeNo)
	if err != nil {
		return ports.RawResponse{}, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 && !normalize.ReportsError(resp.Body) {
		if err := c.put(ctx, key, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("optimizer cache write failed")
		}
	}

	return resp, nil
}

func (c *CachedOptimizer) put(ctx context.Context, key string, resp ports.RawResponse) error {
	payload, err := json.Marshal(cachedResponse{Status: resp.StatusCode, Body: string(resp.Body)})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.cache.Set(ctx, key, string(payload), store.WithExpiration(c.ttl))
}

// Probe always reaches the optimizer; liveness is never cached.
func (c *CachedOptimizer) Probe(ctx context.Context) error {
	prober, ok := c.next.(ports.LivenessProber)
	if !ok {
		return errors.New("probe: optimizer does not support liveness checks")
	}
	return prober.Probe(ctx)
}
