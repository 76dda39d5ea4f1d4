package rates

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// cachingProvider decorates a Provider with a per-pair cache of rates.
// Concurrent misses for the same pair share one upstream call.
type cachingProvider struct {
	next Provider
	ttl  time.Duration
	now  func() time.Time

	lock  sync.RWMutex
	cache map[string]cachedRate

	group singleflight.Group
}

type cachedRate struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// NewCachingProvider returns p unchanged when ttl is not positive.
func NewCachingProvider(ttl time.Duration, p Provider) Provider {
	if ttl <= 0 {
		return p
	}
	return &cachingProvider{
		next:  p,
		ttl:   ttl,
		now:   time.Now,
		cache: map[string]cachedRate{},
	}
}

func (p *cachingProvider) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := strings.ToUpper(from) + "/" + strings.ToUpper(to)

	p.lock.RLock()
	entry, ok := p.cache[key]
	p.lock.RUnlock()
	if ok && p.now().Before(entry.expiresAt) {
		return entry.rate, nil
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		rate, err := p.next.ExchangeRate(ctx, from, to)
		if err != nil {
			return nil, err
		}
		p.lock.Lock()
		p.cache[key] = cachedRate{rate: rate, expiresAt: p.now().Add(p.ttl)}
		p.lock.Unlock()
		return rate, nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return v.(decimal.Decimal), nil
}
