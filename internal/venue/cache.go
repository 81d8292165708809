// internal/venue/cache.go
package venue

import (
	"context"
	"encoding/json"
	"time"

	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/models"

	"github.com/redis/go-redis/v9"
)

const activeVenuesKey = "venues:active"

// CachedCatalog puts a Redis cache-aside layer in front of another reader.
// Redis failures degrade to a direct read.
type CachedCatalog struct {
	next   CatalogReader
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCatalog(next CatalogReader, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedCatalog {
	return &CachedCatalog{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "venue-cache"}),
	}
}

func (c *CachedCatalog) ListActive(ctx context.Context) ([]models.Venue, error) {
	val, err := c.redis.Get(ctx, activeVenuesKey).Result()
	switch {
	case err == nil:
		var venues []models.Venue
		if jsonErr := json.Unmarshal([]byte(val), &venues); jsonErr == nil {
			metrics.CatalogCache.WithLabelValues("hit").Inc()
			return venues, nil
		}
		c.logger.Warn("discarding corrupt venue cache entry", nil)
		metrics.CatalogCache.WithLabelValues("error").Inc()
	case err == redis.Nil:
		metrics.CatalogCache.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("venue cache read failed", map[string]interface{}{"error": err.Error()})
		metrics.CatalogCache.WithLabelValues("error").Inc()
	}

	venues, err := c.next.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	// An empty catalog is not cached so newly activated venues show up at once.
	if len(venues) == 0 {
		return venues, nil
	}

	data, err := json.Marshal(venues)
	if err != nil {
		return venues, nil
	}
	if err := c.redis.Set(ctx, activeVenuesKey, string(data), c.ttl).Err(); err != nil {
		c.logger.Warn("venue cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return venues, nil
}
