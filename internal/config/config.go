package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"candlewatch/internal/domain"
)

type Config struct {
	TaapiAPIKey      string
	CoinGeckoAPIKey  string
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	// Acquisition defaults.
	Source   string // "local" or "taapi"
	Exchange string
	Interval string
	OHLCDays int
	Symbols  []string

	// Remote-path quota handling. The free tier allows roughly one
	// request per 15s; 18s leaves a safety margin.
	RateLimitDelaySecs int
	MaxRetries         int
	RetryDelaySecs     int

	// Sweep scheduling.
	PollSecs           int
	SymbolCooldownSecs int
}

func Load() *Config {
	cfg := &Config{
		TaapiAPIKey:      os.Getenv("TAAPI_API_KEY"),
		CoinGeckoAPIKey:  os.Getenv("COINGECKO_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}

	cfg.Source = strings.ToLower(strings.TrimSpace(os.Getenv("ANALYSIS_SOURCE")))
	if cfg.Source == "" {
		cfg.Source = "local"
	}
	if cfg.Source != "local" && cfg.Source != "taapi" {
		log.Printf("Warning: unsupported ANALYSIS_SOURCE=%q, defaulting to local", cfg.Source)
		cfg.Source = "local"
	}
	if cfg.Source == "taapi" && cfg.TaapiAPIKey == "" {
		log.Println("Warning: TAAPI_API_KEY not set, remote acquisition will fail")
	}

	cfg.Exchange = strings.TrimSpace(os.Getenv("ANALYSIS_EXCHANGE"))
	if cfg.Exchange == "" {
		cfg.Exchange = "binance"
	}

	cfg.Interval = strings.TrimSpace(os.Getenv("ANALYSIS_INTERVAL"))
	if cfg.Interval == "" {
		cfg.Interval = "1h"
	}

	cfg.OHLCDays = 30
	if v := strings.TrimSpace(os.Getenv("OHLC_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && domain.IsValidOHLCDays(n) {
			cfg.OHLCDays = n
		} else {
			log.Printf("Warning: invalid OHLC_DAYS=%q, keeping %d", v, cfg.OHLCDays)
		}
	}

	cfg.Symbols = parseSymbols(os.Getenv("ANALYSIS_SYMBOLS"))

	cfg.RateLimitDelaySecs = 18
	if v := strings.TrimSpace(os.Getenv("TAAPI_RATE_LIMIT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimitDelaySecs = n
		}
	}

	cfg.MaxRetries = 5
	if v := strings.TrimSpace(os.Getenv("TAAPI_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	cfg.RetryDelaySecs = 30
	if v := strings.TrimSpace(os.Getenv("TAAPI_RETRY_DELAY_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RetryDelaySecs = n
		}
	}

	cfg.PollSecs = 3600
	if v := strings.TrimSpace(os.Getenv("ANALYSIS_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollSecs = n
		}
	}

	cfg.SymbolCooldownSecs = 60
	if v := strings.TrimSpace(os.Getenv("SYMBOL_COOLDOWN_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SymbolCooldownSecs = n
		}
	}

	return cfg
}

func parseSymbols(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return domain.SupportedSymbols
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		symbol := strings.ToUpper(strings.TrimSpace(part))
		if symbol == "" {
			continue
		}
		if !domain.IsSupportedSymbol(symbol) {
			log.Printf("Warning: skipping unsupported symbol %q", symbol)
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	if len(out) == 0 {
		return domain.SupportedSymbols
	}
	return out
}
