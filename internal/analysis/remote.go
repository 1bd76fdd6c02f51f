package analysis

import (
	"fmt"
	"time"

	"candlewatch/internal/domain"
)

// BuildRemoteRecord assembles the canonical record from a fetch
// outcome. Keys that came back empty are simply omitted from the
// indicator list; a fully-empty outcome still yields a valid record
// whose metadata explains itself.
func BuildRemoteRecord(
	cfg domain.CryptoConfig,
	quote *domain.PriceQuote,
	outcome FetchOutcome,
	exchange, interval string,
	now time.Time,
) *domain.TechnicalAnalysisRecord {
	price, priceChange, priceChangePercent := remotePrice(quote, outcome)

	indicators := buildRemoteIndicators(outcome, price)
	movingAverages := buildRemoteMovingAverages(outcome, price)

	summary := UnionVotePolicy{}.Summarize(indicatorSignals(indicators), maSignals(movingAverages))

	var errs map[string]string
	if len(outcome.Errors) > 0 {
		errs = outcome.Errors
	}

	return &domain.TechnicalAnalysisRecord{
		Symbol:              cfg.Symbol,
		Price:               price,
		PriceChange:         priceChange,
		PriceChangePercent:  priceChangePercent,
		Summary:             summary,
		TechnicalIndicators: indicators,
		MovingAverages:      movingAverages,
		// Pivot levels are not exposed on the upstream free tier.
		PivotPoints: []domain.PivotSet{},
		SourceURL:   fmt.Sprintf("https://www.%s.com/trade/%s_USDT", exchange, cfg.Symbol),
		ScrapedAt:   now.UTC(),
		Metadata: domain.Metadata{
			Provider:        "taapi.io",
			Exchange:        exchange,
			Interval:        interval,
			SuccessCount:    outcome.SuccessCount(),
			TotalIndicators: outcome.Total,
			SuccessRatio:    outcome.SuccessRatio(),
			Errors:          errs,
		},
	}
}

// remotePrice prefers the price collaborator's quote, falling back to
// the close carried on the indicator payloads when the quote is
// unavailable.
func remotePrice(quote *domain.PriceQuote, outcome FetchOutcome) (price, change, changePercent float64) {
	if quote != nil {
		return quote.Price, quote.Change24h, quote.ChangePercent24h
	}
	for _, key := range []string{"rsi", "bbands"} {
		if close, ok := outcome.Values[key].Float("close"); ok {
			return close, 0, 0
		}
	}
	return 0, 0, 0
}

func buildRemoteIndicators(outcome FetchOutcome, price float64) []domain.IndicatorResult {
	out := make([]domain.IndicatorResult, 0, 9)

	if v, ok := outcome.Values["rsi"].Float("value"); ok {
		out = append(out, domain.ScalarIndicator(NameRSI, v, classifyRSIRemote(v)))
	}

	if macd, ok := outcome.Values["macd"].Float("valueMACD"); ok {
		signal, _ := outcome.Values["macd"].Float("valueMACDSignal")
		histogram, _ := outcome.Values["macd"].Float("valueMACDHist")
		out = append(out, domain.MACDIndicator(NameMACD, macd, histogram, classifyMACD(macd, signal)))
	}

	if upper, ok := outcome.Values["bbands"].Float("valueUpperBand"); ok {
		middle, _ := outcome.Values["bbands"].Float("valueMiddleBand")
		lower, _ := outcome.Values["bbands"].Float("valueLowerBand")
		ref := price
		if close, ok := outcome.Values["bbands"].Float("close"); ok {
			ref = close
		}
		out = append(out, domain.BandIndicator(NameBollinger, upper, middle, lower, classifyBollinger(ref, upper, lower)))
	}

	if v, ok := outcome.Values["obv"].Float("value"); ok {
		out = append(out, domain.ScalarIndicator(NameOBV, v, classifyOBVRemote(v)))
	}

	if k, ok := outcome.Values["stochrsi"].Float("valueFastK"); ok {
		out = append(out, domain.ScalarIndicator(NameStochRSI, k, classifyStochRSIRemote(k)))
	} else if k, ok := outcome.Values["stochrsi"].Float("valueK"); ok {
		out = append(out, domain.ScalarIndicator(NameStochRSI, k, classifyStochRSIRemote(k)))
	}

	if v, ok := outcome.Values["atr"].Float("value"); ok {
		out = append(out, domain.ScalarIndicator(NameATR, v, classifyATR(v, price)))
	}

	if v, ok := outcome.Values["vwap"].Float("value"); ok {
		out = append(out, domain.ScalarIndicator(NameVWAP, v, classifyVWAP(price, v)))
	}

	if v, ok := outcome.Values["supertrend"].Float("value"); ok {
		uptrend := true
		if advice, ok := outcome.Values["supertrend"].String("valueAdvice"); ok {
			uptrend = advice == "long"
		} else if trend, ok := outcome.Values["supertrend"].Float("trend"); ok {
			uptrend = trend == 1
		}
		signal, trend := classifySuperTrend(uptrend)
		out = append(out, domain.TrendIndicator(NameSuperTrend, v, signal, trend))
	}

	if v, ok := outcome.Values["cmf"].Float("value"); ok {
		out = append(out, domain.ScalarIndicator(NameCMF, v, classifyCMF(v)))
	}

	return out
}

func buildRemoteMovingAverages(outcome FetchOutcome, price float64) []domain.MovingAverageResult {
	out := make([]domain.MovingAverageResult, 0, len(maPeriods))
	for _, period := range maPeriods {
		key := fmt.Sprintf("ema%d", period)
		v, ok := outcome.Values[key].Float("value")
		if !ok {
			continue
		}
		out = append(out, domain.MovingAverageResult{
			Name:   maName(period),
			Period: period,
			Type:   domain.MAExponential,
			Value:  v,
			Signal: classifyMA(price, v),
		})
	}
	return out
}

func maName(period int) string { return fmt.Sprintf("MA%d", period) }
