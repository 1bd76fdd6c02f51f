package analysis

import (
	"math"
	"sort"
	"time"

	"candlewatch/internal/domain"
	"candlewatch/internal/indicator"
)

// Canonical display names, in the order the record lists them.
const (
	NameRSI        = "RSI(14)"
	NameMACD       = "MACD(12,26)"
	NameBollinger  = "Bollinger Bands(20,2)"
	NameOBV        = "OBV"
	NameStochRSI   = "StochRSI"
	NameATR        = "ATR(14)"
	NameVWAP       = "VWAP"
	NameSuperTrend = "SuperTrend"
	NameCMF        = "CMF(20)"
)

const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bollingerPeriod  = 20
	bollingerStdDevs = 2.0
	stochRSIWindow   = 14
	stochRSISmooth   = 3
	atrPeriod        = 14
	vwapWindow       = 14
	cmfPeriod        = 20

	// volumeProxyScale synthesizes a volume figure from candle range
	// when true traded volume is unavailable. It is an approximation,
	// not market volume; records computed with it carry
	// metadata.syntheticVolume=true.
	volumeProxyScale = 1000.0
)

var maPeriods = []int{20, 50, 200}

// Engine is the local acquisition path: a deterministic computation of
// the full indicator set from an OHLC series.
type Engine struct {
	now    func() time.Time
	policy SummaryPolicy
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now, policy: AgreementPolicy{}}
}

// ComputeFromOHLC builds the canonical record from at least
// domain.MinCandles candles. Identical input yields an identical record
// apart from scrapedAt. Indicators whose inputs are degenerate (e.g.
// VWAP over a zero-volume window) are omitted rather than zero-filled;
// SuperTrend, which has no local formula, is emitted as an explicit
// N/A marker.
func (e *Engine) ComputeFromOHLC(symbol string, candles []domain.Candle) (*domain.TechnicalAnalysisRecord, error) {
	if len(candles) < domain.MinCandles {
		return nil, &domain.InsufficientDataError{Need: domain.MinCandles, Got: len(candles)}
	}

	sorted := make([]domain.Candle, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	n := len(sorted)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range sorted {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		volumes[i] = (c.High - c.Low) * c.Close * volumeProxyScale
	}

	price := closes[n-1]
	prevClose := closes[n-2]
	priceChange := price - prevClose
	priceChangePercent := 0.0
	if prevClose != 0 {
		priceChangePercent = priceChange / prevClose * 100
	}

	indicators := e.computeIndicators(highs, lows, closes, volumes, price)
	movingAverages := computeMovingAverages(closes, price)
	pivots := []domain.PivotSet{classicPivotSet(sorted[n-2])}

	summary := e.policy.Summarize(indicatorSignals(indicators), maSignals(movingAverages))

	cfg, ok := domain.GetCryptoConfig(symbol)
	sourceURL := "https://www.coingecko.com/en/coins/" + symbol
	if ok {
		symbol = cfg.Symbol
		sourceURL = cfg.SourceURL()
	}

	return &domain.TechnicalAnalysisRecord{
		Symbol:              symbol,
		Price:               price,
		PriceChange:         priceChange,
		PriceChangePercent:  priceChangePercent,
		Summary:             summary,
		TechnicalIndicators: indicators,
		MovingAverages:      movingAverages,
		PivotPoints:         pivots,
		SourceURL:           sourceURL,
		ScrapedAt:           e.now().UTC(),
		Metadata: domain.Metadata{
			Provider:        "coingecko+local",
			DataPoints:      n,
			SyntheticVolume: true,
		},
	}, nil
}

func (e *Engine) computeIndicators(highs, lows, closes, volumes []float64, price float64) []domain.IndicatorResult {
	out := make([]domain.IndicatorResult, 0, 9)
	n := len(closes)

	if rsi := last(indicator.RSISeries(closes, rsiPeriod)); !math.IsNaN(rsi) {
		out = append(out, domain.ScalarIndicator(NameRSI, rsi, classifyRSI(rsi)))
	}

	macdLine, signalLine := indicator.MACDSeries(closes, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	macdVal, sigVal := macdLine[n-1], signalLine[n-1]
	out = append(out, domain.MACDIndicator(NameMACD, macdVal, macdVal-sigVal, classifyMACD(macdVal, sigVal)))

	mean, std := indicator.MeanStd(closes[n-bollingerPeriod:])
	upper := mean + bollingerStdDevs*std
	lower := mean - bollingerStdDevs*std
	out = append(out, domain.BandIndicator(NameBollinger, upper, mean, lower, classifyBollinger(price, upper, lower)))

	obv := indicator.OBVSeries(closes, volumes)
	out = append(out, domain.ScalarIndicator(NameOBV, obv[n-1], classifyOBV(obv[n-1], obv[n-2])))

	if k := last(indicator.StochRSIK(closes, stochRSIWindow, stochRSISmooth)); !math.IsNaN(k) {
		scaled := k * 100
		out = append(out, domain.ScalarIndicator(NameStochRSI, scaled, classifyStochRSI(scaled)))
	}

	if atr := last(indicator.ATRSeries(highs, lows, closes, atrPeriod)); !math.IsNaN(atr) {
		out = append(out, domain.ScalarIndicator(NameATR, atr, classifyATR(atr, price)))
	}

	if vwap := indicator.VWAP(highs, lows, closes, volumes, vwapWindow); !math.IsNaN(vwap) {
		out = append(out, domain.ScalarIndicator(NameVWAP, vwap, classifyVWAP(price, vwap)))
	}

	// SuperTrend has no local formula; the slot carries an explicit
	// not-applicable marker so consumers can tell it apart from a
	// fetch failure.
	out = append(out, domain.TrendIndicator(NameSuperTrend, 0, domain.SignalNotApplicable, "N/A"))

	if cmf := indicator.CMF(highs, lows, closes, volumes, cmfPeriod); !math.IsNaN(cmf) {
		out = append(out, domain.ScalarIndicator(NameCMF, cmf, classifyCMF(cmf)))
	}

	return out
}

func computeMovingAverages(closes []float64, price float64) []domain.MovingAverageResult {
	out := make([]domain.MovingAverageResult, 0, len(maPeriods))
	for _, period := range maPeriods {
		ema := last(indicator.EMASeries(closes, period))
		out = append(out, domain.MovingAverageResult{
			Name:   maName(period),
			Period: period,
			Type:   domain.MAExponential,
			Value:  ema,
			Signal: classifyMA(price, ema),
		})
	}
	return out
}

func classicPivotSet(prev domain.Candle) domain.PivotSet {
	levels := indicator.ClassicPivot(prev.High, prev.Low, prev.Close)
	return domain.PivotSet{
		Type:  domain.PivotClassic,
		Pivot: levels.Pivot,
		R1:    levels.R1,
		R2:    levels.R2,
		R3:    levels.R3,
		S1:    levels.S1,
		S2:    levels.S2,
		S3:    levels.S3,
	}
}

func indicatorSignals(indicators []domain.IndicatorResult) []domain.Signal {
	signals := make([]domain.Signal, len(indicators))
	for i := range indicators {
		signals[i] = indicators[i].Signal
	}
	return signals
}

func maSignals(mas []domain.MovingAverageResult) []domain.Signal {
	signals := make([]domain.Signal, len(mas))
	for i := range mas {
		signals[i] = mas[i].Signal
	}
	return signals
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
