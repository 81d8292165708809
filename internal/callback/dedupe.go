// internal/callback/dedupe.go
package callback

import (
	"context"
	"time"

	"venue-routing/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "callback:seen:"

// Deduper remembers callback query ids across instances so a redelivered
// press is handled once. It only saves work; the claim still arbitrates.
type Deduper struct {
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewDeduper(client *redis.Client, ttl time.Duration, log logger.Logger) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Deduper{
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "callback-deduper"}),
	}
}

// First reports whether this is the first sighting of callbackID. Redis
// failures fail open.
func (d *Deduper) First(ctx context.Context, callbackID string) bool {
	if d == nil || d.redis == nil || callbackID == "" {
		return true
	}

	ok, err := d.redis.SetNX(ctx, dedupeKeyPrefix+callbackID, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("callback dedupe unavailable", map[string]interface{}{
			"callbackId": callbackID,
			"error":      err,
		})
		return true
	}
	return ok
}
