package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// loggingProvider decorates a Provider with logging
type loggingProvider struct {
	logger *zap.Logger
	next   Provider
}

func NewLoggingProvider(logger *zap.Logger, p Provider) Provider {
	return &loggingProvider{
		logger: logger,
		next:   p,
	}
}

func (p *loggingProvider) ExchangeRate(ctx context.Context, from, to string) (rate decimal.Decimal, err error) {
	defer func(begin time.Time) {
		fields := []zap.Field{
			zap.String("method", "exchange_rate"),
			zap.String("from", from),
			zap.String("to", to),
			zap.Stringer("rate", rate),
			zap.Duration("took", time.Since(begin)),
		}
		if err != nil {
			p.logger.Warn("exchange rate lookup failed", append(fields, zap.Error(err))...)
			return
		}
		p.logger.Info("exchange rate lookup", fields...)
	}(time.Now())
	return p.next.ExchangeRate(ctx, from, to)
}
