package rates

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracingProvider struct {
	tracer trace.Tracer
	next   Provider
}

// NewTracingProvider records a span around every lookup made through p.
func NewTracingProvider(tracer trace.Tracer, p Provider) Provider {
	return &tracingProvider{tracer: tracer, next: p}
}

func (p *tracingProvider) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	ctx, span := p.tracer.Start(ctx, "rates.ExchangeRate", trace.WithAttributes(
		attribute.String("exchange.from", strings.ToUpper(from)),
		attribute.String("exchange.to", strings.ToUpper(to)),
	))
	defer span.End()

	rate, err := p.next.ExchangeRate(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return decimal.Decimal{}, err
	}
	span.SetAttributes(attribute.String("exchange.rate", rate.String()))
	return rate, nil
}
