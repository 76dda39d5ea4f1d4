package rates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const redisKeyPrefix = "exchange_rate:"

// RedisStore is the subset of the go-redis client used by the shared cache.
type RedisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// redisCachingProvider shares looked-up rates between service instances.
// Redis failures degrade to a direct upstream call.
type redisCachingProvider struct {
	store  RedisStore
	ttl    time.Duration
	next   Provider
	logger *zap.Logger
}

// NewRedisCachingProvider returns p unchanged when store is nil or ttl is not
// positive.
func NewRedisCachingProvider(store RedisStore, ttl time.Duration, p Provider, logger *zap.Logger) Provider {
	if store == nil || ttl <= 0 {
		return p
	}
	return &redisCachingProvider{
		store:  store,
		ttl:    ttl,
		next:   p,
		logger: logger,
	}
}

func (p *redisCachingProvider) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := redisKeyPrefix + strings.ToUpper(from) + "/" + strings.ToUpper(to)

	cached, err := p.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return rate, nil
		}
		p.logger.Warn("Ignoring malformed cached exchange rate", zap.String("key", key), zap.Error(parseErr))
	case !errors.Is(err, redis.Nil):
		p.logger.Warn("Failed to read exchange rate from redis", zap.String("key", key), zap.Error(err))
	}

	rate, err := p.next.ExchangeRate(ctx, from, to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := p.store.Set(ctx, key, rate.String(), p.ttl).Err(); err != nil {
		p.logger.Warn("Failed to store exchange rate in redis", zap.String("key", key), zap.Error(err))
	}
	return rate, nil
}
