// Package currency converts between the assistant's supported currencies
// using daily rates from the Central Bank of Uzbekistan, with a built-in
// fallback table for offline operation.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/ovozpay/nlu-engine/pkg/metrics"
	"github.com/ovozpay/nlu-engine/pkg/money"
)

// DefaultRatesURL is the CBU daily exchange rate feed.
const DefaultRatesURL = "https://cbu.uz/ru/arkhiv-kursov-valyut/json/"

// fallbackRates hold som per one unit of each currency. Used until the
// first successful fetch and whenever the feed is unreachable.
var fallbackRates = map[string]decimal.Decimal{
	money.UZS: decimal.NewFromInt(1),
	money.USD: decimal.NewFromInt(12300),
	money.EUR: decimal.NewFromInt(13500),
	money.RUB: decimal.NewFromInt(135),
}

// Config holds currency service configuration.
type Config struct {
	RatesURL string
	CacheTTL time.Duration
	// RequestsPerMin caps outbound calls to the rate feed.
	RequestsPerMin int
}

// Service fetches and caches exchange rates and performs conversions.
// All conversions go through UZS as the base currency.
type Service struct {
	client  *http.Client
	logger  *slog.Logger
	url     string
	ttl     time.Duration
	limiter *rate.Limiter

	mu        sync.RWMutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewService creates a currency service.
func NewService(cfg Config, logger *slog.Logger) *Service {
	url := cfg.RatesURL
	if url == "" {
		url = DefaultRatesURL
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 10
	}

	return &Service{
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		url:     url,
		ttl:     ttl,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

// cbuRate is one entry of the CBU JSON feed.
type cbuRate struct {
	Ccy  string `json:"Ccy"`
	Rate string `json:"Rate"`
}

// Rates returns the current rate table (som per unit). The cached table is
// reused within the TTL; on fetch failure the last known rates or the
// fallback table are returned.
func (s *Service) Rates(ctx context.Context) map[string]decimal.Decimal {
	s.mu.RLock()
	if s.rates != nil && time.Since(s.fetchedAt) < s.ttl {
		defer s.mu.RUnlock()
		return s.rates
	}
	s.mu.RUnlock()

	fetched, err := s.fetch(ctx)
	if err != nil {
		metrics.RecordRateFetch("error")
		s.logger.Warn("rate fetch failed, using fallback rates", slog.Any("error", err))
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.rates != nil {
			return s.rates
		}
		return fallbackRates
	}
	metrics.RecordRateFetch("ok")

	s.mu.Lock()
	s.rates = fetched
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return fetched
}

// fetch retrieves fresh rates from the feed.
func (s *Service) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate feed request limit reached")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var entries []cbuRate
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed: %w", err)
	}

	rates := map[string]decimal.Decimal{
		money.UZS: decimal.NewFromInt(1),
	}
	for _, e := range entries {
		r, err := decimal.NewFromString(e.Rate)
		if err != nil || !r.IsPositive() {
			continue
		}
		switch e.Ccy {
		case money.USD, money.EUR, money.RUB:
			rates[e.Ccy] = r
		}
	}

	if len(rates) < 2 {
		return nil, fmt.Errorf("rate feed contained no usable rates")
	}

	s.logger.Debug("exchange rates refreshed",
		slog.Int("currencies", len(rates)),
	)
	return rates, nil
}

// Convert converts an amount between currencies through the UZS base.
// The result is rounded to two decimal places.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	rates := s.Rates(ctx)
	fromRate, ok := rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("unsupported currency: %s", from)
	}
	toRate, ok := rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("unsupported currency: %s", to)
	}

	inSom := amount.Mul(fromRate)
	return inSom.Div(toRate).Round(2), nil
}

// ConvertMoney converts a Money value to the target currency.
func (s *Service) ConvertMoney(ctx context.Context, m *money.Money, to string) (*money.Money, error) {
	converted, err := s.Convert(ctx, m.ToDecimal(), m.Currency(), to)
	if err != nil {
		return nil, err
	}
	return money.NewFromDecimal(converted, to), nil
}

// Supported reports whether the code is one of the assistant's currencies.
func Supported(code string) bool {
	switch code {
	case money.UZS, money.USD, money.EUR, money.RUB:
		return true
	}
	return false
}
