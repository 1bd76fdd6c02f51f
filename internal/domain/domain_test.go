package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestGetCryptoConfigResolvesSymbolAndSlug(t *testing.T) {
	cases := []struct {
		identifier string
		wantSymbol string
	}{
		{"BTC", "BTC"},
		{"btc", "BTC"},
		{" eth ", "ETH"},
		{"bitcoin", "BTC"},
		{"POLYGON", "MATIC"},
		{"xrp", "XRP"},
	}
	for _, tc := range cases {
		cfg, ok := GetCryptoConfig(tc.identifier)
		if !ok || cfg.Symbol != tc.wantSymbol {
			t.Fatalf("GetCryptoConfig(%q) = (%+v, %v), want %s", tc.identifier, cfg, ok, tc.wantSymbol)
		}
	}
	if _, ok := GetCryptoConfig("FAKE"); ok {
		t.Fatal("unknown identifier must not resolve")
	}
}

func TestSupportedSymbolsMatchConfigTable(t *testing.T) {
	if len(SupportedSymbols) != len(SupportedCryptos) {
		t.Fatalf("ordered list has %d entries, table has %d", len(SupportedSymbols), len(SupportedCryptos))
	}
	for _, symbol := range SupportedSymbols {
		if _, ok := SupportedCryptos[symbol]; !ok {
			t.Fatalf("%s missing from the config table", symbol)
		}
	}
}

func TestCryptoConfigDerivedIdentifiers(t *testing.T) {
	cfg, _ := GetCryptoConfig("BTC")
	if cfg.TradingPair() != "BTC/USDT" {
		t.Fatalf("tradingPair = %s", cfg.TradingPair())
	}
	if cfg.SourceURL() != "https://www.coingecko.com/en/coins/bitcoin" {
		t.Fatalf("sourceURL = %s", cfg.SourceURL())
	}
}

func TestIsValidOHLCDays(t *testing.T) {
	for _, d := range OHLCDays {
		if !IsValidOHLCDays(d) {
			t.Fatalf("%d must be a valid span", d)
		}
	}
	for _, d := range []int{0, 2, 31, 366} {
		if IsValidOHLCDays(d) {
			t.Fatalf("%d must not be a valid span", d)
		}
	}
}

func TestSignalVoteSides(t *testing.T) {
	bullish := []Signal{SignalBuy, SignalOversold, SignalBullish, SignalAccumulation, SignalBuyingPressure}
	bearish := []Signal{SignalSell, SignalOverbought, SignalBearish, SignalDistribution, SignalSellingPressure}
	neither := []Signal{SignalNeutral, SignalHighVolatility, SignalLowVolatility, SignalNotApplicable}

	for _, s := range bullish {
		if !s.IsBullish() || s.IsBearish() {
			t.Fatalf("%s must count as bullish only", s)
		}
	}
	for _, s := range bearish {
		if !s.IsBearish() || s.IsBullish() {
			t.Fatalf("%s must count as bearish only", s)
		}
	}
	for _, s := range neither {
		if s.IsBullish() || s.IsBearish() {
			t.Fatalf("%s must abstain from the vote", s)
		}
	}
}

func TestIndicatorPayloadFloat(t *testing.T) {
	payload := IndicatorPayload{
		"plain":  64000.5,
		"number": json.Number("42"),
		"text":   "not a number",
	}

	if v, ok := payload.Float("plain"); !ok || v != 64000.5 {
		t.Fatalf("plain = (%v, %v)", v, ok)
	}
	if v, ok := payload.Float("number"); !ok || v != 42 {
		t.Fatalf("number = (%v, %v)", v, ok)
	}
	if _, ok := payload.Float("text"); ok {
		t.Fatal("a string field must not read as a float")
	}
	if _, ok := payload.Float("missing"); ok {
		t.Fatal("a missing field must not read as a float")
	}
	if !IndicatorPayload(nil).Empty() || !(IndicatorPayload{}).Empty() {
		t.Fatal("nil and empty payloads must both report empty")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	fetchErr := &IndicatorFetchError{Indicator: "rsi", Err: cause}
	if !errors.Is(fetchErr, cause) {
		t.Fatal("IndicatorFetchError must unwrap to its cause")
	}

	persistErr := &PersistError{Err: cause}
	if !errors.Is(persistErr, cause) {
		t.Fatal("PersistError must unwrap to its cause")
	}

	insufficient := &InsufficientDataError{Need: 50, Got: 12}
	if insufficient.Error() != "insufficient data: need at least 50 candles, got 12" {
		t.Fatalf("unexpected message: %s", insufficient.Error())
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	record := TechnicalAnalysisRecord{
		Symbol:    "BTC",
		ScrapedAt: time.Unix(1700000000, 0).UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{
		"symbol", "price", "priceChange", "priceChangePercent", "summary",
		"technicalIndicators", "movingAverages", "pivotPoints",
		"sourceUrl", "scrapedAt", "metadata",
	} {
		if _, ok := raw[field]; !ok {
			t.Fatalf("record JSON missing field %q", field)
		}
	}
}
