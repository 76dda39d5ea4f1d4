package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	setCall int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCall++
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisCachingProvider_StoresAndReusesRate(t *testing.T) {
	store := newFakeRedis()
	underlying := &countingProvider{rate: decimal.RequireFromString("4.1234")}
	p := NewRedisCachingProvider(store, time.Minute, underlying, zap.NewNop())

	rate, err := p.ExchangeRate(context.Background(), "usd", "pln")
	require.NoError(t, err)
	assert.Equal(t, "4.1234", rate.String())
	assert.Equal(t, "4.1234", store.values["exchange_rate:USD/PLN"])
	assert.Equal(t, time.Minute, store.ttls["exchange_rate:USD/PLN"])

	rate, err = p.ExchangeRate(context.Background(), "USD", "PLN")
	require.NoError(t, err)
	assert.Equal(t, "4.1234", rate.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlying.count))
}

func TestRedisCachingProvider_FallsBackWhenRedisFails(t *testing.T) {
	store := newFakeRedis()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	underlying := &countingProvider{rate: decimal.RequireFromString("0.25")}
	p := NewRedisCachingProvider(store, time.Minute, underlying, zap.NewNop())

	for i := 0; i < 2; i++ {
		rate, err := p.ExchangeRate(context.Background(), "PLN", "USD")
		require.NoError(t, err)
		assert.Equal(t, "0.25", rate.String())
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&underlying.count))
	assert.Equal(t, 2, store.setCall)
}

func TestRedisCachingProvider_IgnoresMalformedValue(t *testing.T) {
	store := newFakeRedis()
	store.values["exchange_rate:EUR/PLN"] = "not-a-number"
	underlying := &countingProvider{rate: decimal.RequireFromString("4.3")}
	p := NewRedisCachingProvider(store, time.Minute, underlying, zap.NewNop())

	rate, err := p.ExchangeRate(context.Background(), "EUR", "PLN")
	require.NoError(t, err)
	assert.Equal(t, "4.3", rate.String())
	assert.Equal(t, "4.3", store.values["exchange_rate:EUR/PLN"])
}

func TestRedisCachingProvider_DoesNotCacheErrors(t *testing.T) {
	store := newFakeRedis()
	underlying := &countingProvider{err: ErrRateNotFound}
	p := NewRedisCachingProvider(store, time.Minute, underlying, zap.NewNop())

	_, err := p.ExchangeRate(context.Background(), "PLN", "XYZ")
	assert.ErrorIs(t, err, ErrRateNotFound)
	assert.Empty(t, store.values)
	assert.Zero(t, store.setCall)
}

func TestNewRedisCachingProvider_Disabled(t *testing.T) {
	underlying := &countingProvider{}
	assert.Same(t, Provider(underlying), NewRedisCachingProvider(nil, time.Minute, underlying, zap.NewNop()))
	assert.Same(t, Provider(underlying), NewRedisCachingProvider(newFakeRedis(), 0, underlying, zap.NewNop()))
}
