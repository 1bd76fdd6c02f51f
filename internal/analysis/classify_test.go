package analysis

import (
	"testing"

	"candlewatch/internal/domain"
)

func TestClassifyRSIVocabulariesDiffer(t *testing.T) {
	cases := []struct {
		value      float64
		wantLocal  domain.Signal
		wantRemote domain.Signal
	}{
		{25, domain.SignalOversold, domain.SignalBuy},
		{50, domain.SignalNeutral, domain.SignalNeutral},
		{75, domain.SignalOverbought, domain.SignalSell},
		{30, domain.SignalNeutral, domain.SignalNeutral},
		{70, domain.SignalNeutral, domain.SignalNeutral},
	}
	for _, tc := range cases {
		if got := classifyRSI(tc.value); got != tc.wantLocal {
			t.Errorf("classifyRSI(%v) = %s, want %s", tc.value, got, tc.wantLocal)
		}
		if got := classifyRSIRemote(tc.value); got != tc.wantRemote {
			t.Errorf("classifyRSIRemote(%v) = %s, want %s", tc.value, got, tc.wantRemote)
		}
	}
}

func TestClassifyMACD(t *testing.T) {
	if got := classifyMACD(1.5, 1.0); got != domain.SignalBuy {
		t.Fatalf("line above signal = %s, want Buy", got)
	}
	if got := classifyMACD(1.0, 1.0); got != domain.SignalSell {
		t.Fatalf("line at signal = %s, want Sell", got)
	}
}

func TestClassifyBollingerUsesInclusiveBands(t *testing.T) {
	if got := classifyBollinger(110, 110, 90); got != domain.SignalOverbought {
		t.Fatalf("price at upper band = %s, want Overbought", got)
	}
	if got := classifyBollinger(90, 110, 90); got != domain.SignalOversold {
		t.Fatalf("price at lower band = %s, want Oversold", got)
	}
	if got := classifyBollinger(100, 110, 90); got != domain.SignalNeutral {
		t.Fatalf("price inside bands = %s, want Neutral", got)
	}
}

func TestClassifyOBV(t *testing.T) {
	if got := classifyOBV(110, 100); got != domain.SignalAccumulation {
		t.Fatalf("rising OBV = %s, want Accumulation", got)
	}
	if got := classifyOBV(100, 100); got != domain.SignalDistribution {
		t.Fatalf("flat OBV = %s, want Distribution", got)
	}
	if got := classifyOBVRemote(-5); got != domain.SignalDistribution {
		t.Fatalf("negative cumulative OBV = %s, want Distribution", got)
	}
}

func TestClassifyATRVolatilityThreshold(t *testing.T) {
	if got := classifyATR(2.1, 100); got != domain.SignalHighVolatility {
		t.Fatalf("ATR above 2%% = %s, want High Volatility", got)
	}
	if got := classifyATR(2.0, 100); got != domain.SignalLowVolatility {
		t.Fatalf("ATR at 2%% = %s, want Low Volatility", got)
	}
}

func TestClassifyVWAPAndCMF(t *testing.T) {
	if got := classifyVWAP(101, 100); got != domain.SignalBullish {
		t.Fatalf("price above VWAP = %s, want Bullish", got)
	}
	if got := classifyVWAP(100, 100); got != domain.SignalBearish {
		t.Fatalf("price at VWAP = %s, want Bearish", got)
	}
	if got := classifyCMF(0.05); got != domain.SignalBuyingPressure {
		t.Fatalf("positive CMF = %s, want Buying Pressure", got)
	}
	if got := classifyCMF(0); got != domain.SignalSellingPressure {
		t.Fatalf("zero CMF = %s, want Selling Pressure", got)
	}
}

func TestClassifySuperTrend(t *testing.T) {
	signal, trend := classifySuperTrend(true)
	if signal != domain.SignalBuy || trend != "Uptrend" {
		t.Fatalf("uptrend = (%s, %s)", signal, trend)
	}
	signal, trend = classifySuperTrend(false)
	if signal != domain.SignalSell || trend != "Downtrend" {
		t.Fatalf("downtrend = (%s, %s)", signal, trend)
	}
}
