package domain

import "time"

// Candle is a single OHLC bar. True traded volume is not part of the
// CoinGecko OHLC payload, so volume-dependent indicators work from a
// synthetic proxy derived at computation time.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// PriceQuote is a point-in-time market quote for a symbol.
type PriceQuote struct {
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	Change24h        float64   `json:"priceChange24h"`
	ChangePercent24h float64   `json:"priceChangePercent24h"`
	MarketCap        float64   `json:"marketCap"`
	Volume24h        float64   `json:"volume24h"`
	AsOf             time.Time `json:"asOf"`
}

type Signal string

const (
	SignalBuy             Signal = "Buy"
	SignalSell            Signal = "Sell"
	SignalNeutral         Signal = "Neutral"
	SignalOverbought      Signal = "Overbought"
	SignalOversold        Signal = "Oversold"
	SignalAccumulation    Signal = "Accumulation"
	SignalDistribution    Signal = "Distribution"
	SignalHighVolatility  Signal = "High Volatility"
	SignalLowVolatility   Signal = "Low Volatility"
	SignalBullish         Signal = "Bullish"
	SignalBearish         Signal = "Bearish"
	SignalBuyingPressure  Signal = "Buying Pressure"
	SignalSellingPressure Signal = "Selling Pressure"
	SignalNotApplicable   Signal = "N/A"
)

// IsBullish reports whether the signal counts toward the buy side of a
// summary vote. The local path emits the richer vocabulary; the remote
// path sticks to Buy/Sell/Neutral. Both funnel through the same sets.
func (s Signal) IsBullish() bool {
	switch s {
	case SignalBuy, SignalOversold, SignalBullish, SignalAccumulation, SignalBuyingPressure:
		return true
	}
	return false
}

func (s Signal) IsBearish() bool {
	switch s {
	case SignalSell, SignalOverbought, SignalBearish, SignalDistribution, SignalSellingPressure:
		return true
	}
	return false
}

type SummaryLabel string

const (
	SummaryStrongBuy  SummaryLabel = "Strong Buy"
	SummaryBuy        SummaryLabel = "Buy"
	SummaryNeutral    SummaryLabel = "Neutral"
	SummarySell       SummaryLabel = "Sell"
	SummaryStrongSell SummaryLabel = "Strong Sell"
)

func (l SummaryLabel) Bullish() bool { return l == SummaryBuy || l == SummaryStrongBuy }

func (l SummaryLabel) Bearish() bool { return l == SummarySell || l == SummaryStrongSell }

// SummaryTriplet is the three-way verdict attached to every record.
type SummaryTriplet struct {
	Overall             SummaryLabel `json:"overall"`
	TechnicalIndicators SummaryLabel `json:"technicalIndicators"`
	MovingAverages      SummaryLabel `json:"movingAverages"`
}

// IndicatorKind discriminates the shape of an IndicatorResult. Exactly
// one shape is populated per entry; use the constructors below rather
// than building literals.
type IndicatorKind string

const (
	KindScalar IndicatorKind = "scalar"
	KindBand   IndicatorKind = "band"
	KindMACD   IndicatorKind = "macd"
	KindTrend  IndicatorKind = "trend"
)

type IndicatorResult struct {
	Name      string        `json:"name"`
	Kind      IndicatorKind `json:"kind"`
	Signal    Signal        `json:"signal"`
	Value     *float64      `json:"value,omitempty"`
	Histogram *float64      `json:"histogram,omitempty"`
	Upper     *float64      `json:"upper,omitempty"`
	Middle    *float64      `json:"middle,omitempty"`
	Lower     *float64      `json:"lower,omitempty"`
	Trend     string        `json:"trend,omitempty"`
}

func ScalarIndicator(name string, value float64, signal Signal) IndicatorResult {
	return IndicatorResult{Name: name, Kind: KindScalar, Signal: signal, Value: &value}
}

func BandIndicator(name string, upper, middle, lower float64, signal Signal) IndicatorResult {
	return IndicatorResult{Name: name, Kind: KindBand, Signal: signal, Upper: &upper, Middle: &middle, Lower: &lower}
}

func MACDIndicator(name string, value, histogram float64, signal Signal) IndicatorResult {
	return IndicatorResult{Name: name, Kind: KindMACD, Signal: signal, Value: &value, Histogram: &histogram}
}

func TrendIndicator(name string, value float64, signal Signal, trend string) IndicatorResult {
	return IndicatorResult{Name: name, Kind: KindTrend, Signal: signal, Value: &value, Trend: trend}
}

type MAType string

const (
	MASimple      MAType = "Simple"
	MAExponential MAType = "Exponential"
)

type MovingAverageResult struct {
	Name   string  `json:"name"`
	Period int     `json:"period"`
	Type   MAType  `json:"type"`
	Value  float64 `json:"value"`
	Signal Signal  `json:"signal"`
}

type PivotMethod string

const (
	PivotClassic   PivotMethod = "Classic"
	PivotFibonacci PivotMethod = "Fibonacci"
	PivotCamarilla PivotMethod = "Camarilla"
	PivotWoodie    PivotMethod = "Woodie"
)

type PivotSet struct {
	Type  PivotMethod `json:"type"`
	Pivot float64     `json:"pivot"`
	R1    float64     `json:"r1"`
	R2    float64     `json:"r2"`
	R3    float64     `json:"r3"`
	S1    float64     `json:"s1"`
	S2    float64     `json:"s2"`
	S3    float64     `json:"s3"`
}

// Metadata describes how a record was produced. SuccessCount/Ratio and
// Errors are populated by the remote path only; DataPoints and
// SyntheticVolume by the local path only.
type Metadata struct {
	Provider        string            `json:"provider"`
	Exchange        string            `json:"exchange,omitempty"`
	Interval        string            `json:"interval,omitempty"`
	DataPoints      int               `json:"dataPoints,omitempty"`
	SyntheticVolume bool              `json:"syntheticVolume,omitempty"`
	SuccessCount    int               `json:"successCount,omitempty"`
	TotalIndicators int               `json:"totalIndicators,omitempty"`
	SuccessRatio    float64           `json:"successRatio,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
}

// TechnicalAnalysisRecord is the canonical output of both acquisition
// paths. It is assembled once per cycle and never mutated afterwards.
type TechnicalAnalysisRecord struct {
	Symbol              string                `json:"symbol"`
	Price               float64               `json:"price"`
	PriceChange         float64               `json:"priceChange"`
	PriceChangePercent  float64               `json:"priceChangePercent"`
	Summary             SummaryTriplet        `json:"summary"`
	TechnicalIndicators []IndicatorResult     `json:"technicalIndicators"`
	MovingAverages      []MovingAverageResult `json:"movingAverages"`
	PivotPoints         []PivotSet            `json:"pivotPoints"`
	SourceURL           string                `json:"sourceUrl"`
	ScrapedAt           time.Time             `json:"scrapedAt"`
	Metadata            Metadata              `json:"metadata"`
}
