package fx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/logging"
)

type provider interface {
	Rate(ctx context.Context, source, dest domain.Currency) (decimal.Decimal, error)
}

// CachedProvider keeps quotes in Redis in front of a live provider. Cache
// trouble is never fatal: a miss or a Redis error falls through to the
// provider, and a failed store is only logged.
type CachedProvider struct {
	provider provider
	rdb      *redis.Client
	ttl      time.Duration
}

func NewCachedProvider(p provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{provider: p, rdb: rdb, ttl: ttl}
}

func rateKey(source, dest domain.Currency) string {
	return "fx:rate:" + string(source) + ":" + string(dest)
}

func (c *CachedProvider) Rate(ctx context.Context, source, dest domain.Currency) (decimal.Decimal, error) {
	log := logging.FromContext(ctx)
	key := rateKey(source, dest)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return rate, nil
		}
		log.Warn("discarding unparseable cached rate", "key", key, "value", cached)
	} else if err != redis.Nil {
		log.Warn("rate cache read failed", "key", key, "error", err)
	}

	rate, err := c.provider.Rate(ctx, source, dest)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.rdb.Set(ctx, key, rate.String(), c.ttl).Err(); err != nil {
		log.Warn("rate cache write failed", "key", key, "error", err)
	}
	return rate, nil
}
