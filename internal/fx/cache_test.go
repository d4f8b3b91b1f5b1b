package fx

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/f4y/internal/domain"
)

type staticProvider struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *staticProvider) Rate(_ context.Context, _, _ domain.Currency) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.rate, nil
}

// An unreachable Redis must degrade to a pass-through, not break quoting.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
}

func TestCachedRate_FallsThroughWhenRedisIsDown(t *testing.T) {
	upstream := &staticProvider{rate: decimal.RequireFromString("0.79")}
	cached := NewCachedProvider(upstream, unreachableRedis(), time.Minute)

	rate, err := cached.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyGBP)
	require.NoError(t, err)

	assert.True(t, rate.Equal(decimal.RequireFromString("0.79")))
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedRate_PropagatesProviderFailure(t *testing.T) {
	upstream := &staticProvider{err: domain.ErrRateUnavailable}
	cached := NewCachedProvider(upstream, unreachableRedis(), time.Minute)

	_, err := cached.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyGBP)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRateKey(t *testing.T) {
	assert.Equal(t, "fx:rate:USD:EUR", rateKey(domain.CurrencyUSD, domain.CurrencyEUR))
}
