package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"candlewatch/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type AnalysisQuerier interface {
	Latest(ctx context.Context, symbol string, limit int) ([]*domain.TechnicalAnalysisRecord, error)
	ComputeFromOHLC(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error)
	Chart(ctx context.Context, symbol string) ([]byte, error)
}

// StartTelegramBot wires the chat commands and starts long polling in a
// goroutine. Returns nil when no token is configured.
func StartTelegramBot(token string, analysisService AnalysisQuerier) *tele.Bot {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/symbols", func(c tele.Context) error {
		return c.Send("Supported symbols: " + strings.Join(domain.SupportedSymbols, ", "))
	})

	b.Handle("/ta", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /ta BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if !domain.IsSupportedSymbol(symbol) {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}

		records, err := analysisService.Latest(context.Background(), symbol, 1)
		if err != nil {
			return c.Send(fmt.Sprintf("Error looking up %s: %v", symbol, err))
		}
		if len(records) == 0 {
			return c.Send(fmt.Sprintf("No analysis stored for %s yet. Try /refresh %s.", symbol, symbol))
		}
		return c.Send(formatRecord(records[0]))
	})

	b.Handle("/refresh", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /refresh BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if !domain.IsSupportedSymbol(symbol) {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}

		_ = c.Notify(tele.Typing)
		record, err := analysisService.ComputeFromOHLC(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error refreshing %s: %v", symbol, err))
		}
		return c.Send(formatRecord(record))
	})

	b.Handle("/chart", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /chart BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if !domain.IsSupportedSymbol(symbol) {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}

		_ = c.Notify(tele.UploadingPhoto)
		image, err := analysisService.Chart(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error rendering chart for %s: %v", symbol, err))
		}
		photo := &tele.Photo{
			File:    tele.FromReader(bytes.NewReader(image)),
			Caption: symbol + " candles with EMA(20)/EMA(50) and pivots",
		}
		return c.Send(photo)
	})

	log.Println("Telegram bot started")
	go b.Start()
	return b
}

func formatRecord(r *domain.TechnicalAnalysisRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s $%.2f (%+.2f%%)\n", r.Symbol, r.Price, r.PriceChangePercent)
	fmt.Fprintf(&sb, "Overall: %s | Indicators: %s | MAs: %s\n",
		r.Summary.Overall, r.Summary.TechnicalIndicators, r.Summary.MovingAverages)

	for _, ind := range r.TechnicalIndicators {
		if ind.Value != nil {
			fmt.Fprintf(&sb, "%s: %.2f (%s)\n", ind.Name, *ind.Value, ind.Signal)
		} else {
			fmt.Fprintf(&sb, "%s: %s\n", ind.Name, ind.Signal)
		}
	}
	for _, ma := range r.MovingAverages {
		fmt.Fprintf(&sb, "%s: %.2f (%s)\n", ma.Name, ma.Value, ma.Signal)
	}

	fmt.Fprintf(&sb, "Source: %s at %s", r.Metadata.Provider, r.ScrapedAt.UTC().Format(time.RFC822))
	return sb.String()
}
