package bot

import (
	"strings"
	"testing"
	"time"

	"candlewatch/internal/domain"
)

func TestStartTelegramBotWithoutToken(t *testing.T) {
	if b := StartTelegramBot("", nil); b != nil {
		t.Fatal("expected nil bot when no token is configured")
	}
}

func TestFormatRecord(t *testing.T) {
	value := 42.5
	record := &domain.TechnicalAnalysisRecord{
		Symbol:             "BTC",
		Price:              65000,
		PriceChangePercent: -1.25,
		Summary: domain.SummaryTriplet{
			Overall:             domain.SummaryNeutral,
			TechnicalIndicators: domain.SummaryBuy,
			MovingAverages:      domain.SummarySell,
		},
		TechnicalIndicators: []domain.IndicatorResult{
			{Name: "RSI(14)", Signal: domain.SignalNeutral, Value: &value},
			{Name: "SuperTrend", Signal: domain.SignalNotApplicable},
		},
		MovingAverages: []domain.MovingAverageResult{
			{Name: "MA20", Value: 64000, Signal: domain.SignalBuy},
		},
		ScrapedAt: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Metadata:  domain.Metadata{Provider: "coingecko+local"},
	}

	msg := formatRecord(record)

	for _, want := range []string{
		"BTC $65000.00 (-1.25%)",
		"Overall: Neutral | Indicators: Buy | MAs: Sell",
		"RSI(14): 42.50 (Neutral)",
		"SuperTrend: N/A",
		"MA20: 64000.00 (Buy)",
		"coingecko+local",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
