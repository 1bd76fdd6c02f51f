// Package provider holds the HTTP clients for the upstream data
// sources: CoinGecko for price/OHLC and taapi.io for pre-computed
// indicators.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"candlewatch/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches spot quotes and OHLC candles. The demo API
// key is optional; without it the public endpoints apply their lower
// rate limits.
type CoinGeckoProvider struct {
	tracer  trace.Tracer
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		tracer:  tracer,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: coinGeckoBaseURL,
		apiKey:  os.Getenv("COINGECKO_API_KEY"),
	}
}

// GetPrice returns the current quote for a supported symbol. Fails with
// UnsupportedSymbolError before any network call for unknown symbols.
func (p *CoinGeckoProvider) GetPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.get-price")
	defer span.End()

	cfg, ok := domain.GetCryptoConfig(symbol)
	if !ok {
		return nil, &domain.UnsupportedSymbolError{Symbol: symbol}
	}

	params := url.Values{
		"ids":                     {cfg.CoinGeckoID},
		"vs_currencies":           {"usd"},
		"include_market_cap":      {"true"},
		"include_24hr_vol":        {"true"},
		"include_24hr_change":     {"true"},
		"include_last_updated_at": {"true"},
	}

	var body map[string]struct {
		USD           float64 `json:"usd"`
		USDMarketCap  float64 `json:"usd_market_cap"`
		USD24hVol     float64 `json:"usd_24h_vol"`
		USD24hChange  float64 `json:"usd_24h_change"`
		LastUpdatedAt int64   `json:"last_updated_at"`
	}
	if err := p.getJSON(ctx, "/simple/price", params, &body); err != nil {
		return nil, fmt.Errorf("coingecko price for %s: %w", cfg.Symbol, err)
	}

	entry, ok := body[cfg.CoinGeckoID]
	if !ok {
		return nil, fmt.Errorf("coingecko price for %s: empty response", cfg.Symbol)
	}

	return &domain.PriceQuote{
		Symbol:           cfg.Symbol,
		Price:            entry.USD,
		Change24h:        entry.USD * entry.USD24hChange / 100,
		ChangePercent24h: entry.USD24hChange,
		MarketCap:        entry.USDMarketCap,
		Volume24h:        entry.USD24hVol,
		AsOf:             time.Unix(entry.LastUpdatedAt, 0).UTC(),
	}, nil
}

// GetOHLC returns candles for one of the supported day spans. The
// upstream payload is [[ts_ms, open, high, low, close], ...].
func (p *CoinGeckoProvider) GetOHLC(ctx context.Context, symbol string, days int) ([]domain.Candle, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.get-ohlc")
	defer span.End()

	cfg, ok := domain.GetCryptoConfig(symbol)
	if !ok {
		return nil, &domain.UnsupportedSymbolError{Symbol: symbol}
	}
	if !domain.IsValidOHLCDays(days) {
		return nil, fmt.Errorf("unsupported ohlc span: %d days", days)
	}

	params := url.Values{
		"vs_currency": {"usd"},
		"days":        {fmt.Sprintf("%d", days)},
	}

	var rows [][]float64
	endpoint := fmt.Sprintf("/coins/%s/ohlc", cfg.CoinGeckoID)
	if err := p.getJSON(ctx, endpoint, params, &rows); err != nil {
		return nil, fmt.Errorf("coingecko ohlc for %s: %w", cfg.Symbol, err)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, domain.Candle{
			Timestamp: time.UnixMilli(int64(row[0])).UTC(),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
		})
	}
	return candles, nil
}

func (p *CoinGeckoProvider) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimitExceeded
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
