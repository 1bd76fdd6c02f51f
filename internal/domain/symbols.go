package domain

import "strings"

// CryptoConfig maps a trading symbol to the identifiers the upstream
// sources use for it.
type CryptoConfig struct {
	Symbol      string
	Name        string
	CoinGeckoID string
	Slug        string
}

// SourceURL is the public page the record points back to.
func (c CryptoConfig) SourceURL() string {
	return "https://www.coingecko.com/en/coins/" + c.Slug
}

// TradingPair is the quoted pair used by the remote indicator API.
func (c CryptoConfig) TradingPair() string {
	return c.Symbol + "/USDT"
}

var SupportedCryptos = map[string]CryptoConfig{
	"BTC":   {Symbol: "BTC", Name: "Bitcoin", CoinGeckoID: "bitcoin", Slug: "bitcoin"},
	"ETH":   {Symbol: "ETH", Name: "Ethereum", CoinGeckoID: "ethereum", Slug: "ethereum"},
	"ADA":   {Symbol: "ADA", Name: "Cardano", CoinGeckoID: "cardano", Slug: "cardano"},
	"SOL":   {Symbol: "SOL", Name: "Solana", CoinGeckoID: "solana", Slug: "solana"},
	"DOT":   {Symbol: "DOT", Name: "Polkadot", CoinGeckoID: "polkadot", Slug: "polkadot"},
	"LINK":  {Symbol: "LINK", Name: "Chainlink", CoinGeckoID: "chainlink", Slug: "chainlink"},
	"MATIC": {Symbol: "MATIC", Name: "Polygon", CoinGeckoID: "matic-network", Slug: "polygon"},
	"LTC":   {Symbol: "LTC", Name: "Litecoin", CoinGeckoID: "litecoin", Slug: "litecoin"},
	"XRP":   {Symbol: "XRP", Name: "XRP", CoinGeckoID: "ripple", Slug: "xrp"},
	"DOGE":  {Symbol: "DOGE", Name: "Dogecoin", CoinGeckoID: "dogecoin", Slug: "dogecoin"},
}

// SupportedSymbols lists the symbols in a stable order for sweeps and
// API responses.
var SupportedSymbols = []string{"BTC", "ETH", "ADA", "SOL", "DOT", "LINK", "MATIC", "LTC", "XRP", "DOGE"}

// OHLCDays are the candle spans the price provider accepts.
var OHLCDays = []int{1, 7, 14, 30, 90, 180, 365}

func IsValidOHLCDays(days int) bool {
	for _, d := range OHLCDays {
		if d == days {
			return true
		}
	}
	return false
}

// GetCryptoConfig resolves a symbol or slug, case-insensitively.
func GetCryptoConfig(identifier string) (CryptoConfig, bool) {
	if cfg, ok := SupportedCryptos[strings.ToUpper(strings.TrimSpace(identifier))]; ok {
		return cfg, true
	}
	lower := strings.ToLower(strings.TrimSpace(identifier))
	for _, cfg := range SupportedCryptos {
		if cfg.Slug == lower {
			return cfg, true
		}
	}
	return CryptoConfig{}, false
}

func IsSupportedSymbol(identifier string) bool {
	_, ok := GetCryptoConfig(identifier)
	return ok
}
