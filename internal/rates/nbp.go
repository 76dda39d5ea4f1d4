package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNBPURLTemplate = "https://api.nbp.pl/api/exchangerates/rates/a/{currencyCode}/?format=json"

	// NBP publishes mid rates against the zloty.
	baseCurrency   = "PLN"
	crossRateScale = 4
)

// NBPClient reads table A mid rates from the National Bank of Poland API
// and derives cross rates through PLN.
type NBPClient struct {
	urlTemplate string
	client      *http.Client
	logger      *zap.Logger
}

func NewNBPClient(urlTemplate string, timeout time.Duration, logger *zap.Logger) *NBPClient {
	if urlTemplate == "" {
		urlTemplate = DefaultNBPURLTemplate
	}
	return &NBPClient{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

func (c *NBPClient) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if strings.EqualFold(from, to) {
		return decimal.NewFromInt(1), nil
	}

	var fromMid, toMid decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fromMid, err = c.mid(gctx, from)
		return err
	})
	g.Go(func() (err error) {
		toMid, err = c.mid(gctx, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return decimal.Decimal{}, err
	}

	return fromMid.DivRound(toMid, crossRateScale), nil
}

func (c *NBPClient) mid(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == baseCurrency {
		return decimal.NewFromInt(1), nil
	}

	type response struct {
		Rates []struct {
			Mid decimal.Decimal `json:"mid"`
		} `json:"rates"`
	}

	url := strings.ReplaceAll(c.urlTemplate, "{currencyCode}", strings.ToLower(code))
	c.logger.Debug("loading NBP mid rate", zap.String("currency", code), zap.String("url", url))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("building http request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	httpResponse, err := c.client.Do(request)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("requesting %s rate: %w", code, err)
	}
	defer httpResponse.Body.Close()

	switch {
	case httpResponse.StatusCode == http.StatusNotFound:
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrRateNotFound, code)
	case httpResponse.StatusCode != http.StatusOK:
		return decimal.Decimal{}, fmt.Errorf("requesting %s rate: unexpected status %d", code, httpResponse.StatusCode)
	}

	var body response
	if err := json.NewDecoder(httpResponse.Body).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decoding %s rate: %w", code, err)
	}
	if len(body.Rates) == 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: %s has no published rates", ErrRateNotFound, code)
	}
	mid := body.Rates[0].Mid
	if !mid.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s rate: non-positive mid %s", code, mid)
	}
	return mid, nil
}
