// Package analysis turns raw indicator values into the canonical
// technical-analysis record. It hosts both acquisition paths: the local
// OHLC computation engine and the remote fetch orchestrator.
package analysis

import "candlewatch/internal/domain"

// The two paths intentionally speak different signal vocabularies. The
// local engine uses the richer per-indicator labels; the remote path
// collapses the threshold oscillators to plain Buy/Sell/Neutral, the
// way the upstream API's consumers read them. Both feed the same vote
// counting via Signal.IsBullish/IsBearish.

func classifyRSI(value float64) domain.Signal {
	switch {
	case value > 70:
		return domain.SignalOverbought
	case value < 30:
		return domain.SignalOversold
	default:
		return domain.SignalNeutral
	}
}

func classifyRSIRemote(value float64) domain.Signal {
	switch {
	case value < 30:
		return domain.SignalBuy
	case value > 70:
		return domain.SignalSell
	default:
		return domain.SignalNeutral
	}
}

func classifyMACD(macdLine, signalLine float64) domain.Signal {
	if macdLine > signalLine {
		return domain.SignalBuy
	}
	return domain.SignalSell
}

func classifyBollinger(price, upper, lower float64) domain.Signal {
	switch {
	case price >= upper:
		return domain.SignalOverbought
	case price <= lower:
		return domain.SignalOversold
	default:
		return domain.SignalNeutral
	}
}

func classifyOBV(current, previous float64) domain.Signal {
	if current > previous {
		return domain.SignalAccumulation
	}
	return domain.SignalDistribution
}

// classifyOBVRemote only sees the cumulative value, not its
// predecessor, so the sign stands in for direction.
func classifyOBVRemote(value float64) domain.Signal {
	if value > 0 {
		return domain.SignalAccumulation
	}
	return domain.SignalDistribution
}

func classifyStochRSI(k float64) domain.Signal {
	switch {
	case k > 80:
		return domain.SignalOverbought
	case k < 20:
		return domain.SignalOversold
	default:
		return domain.SignalNeutral
	}
}

func classifyStochRSIRemote(k float64) domain.Signal {
	switch {
	case k < 20:
		return domain.SignalBuy
	case k > 80:
		return domain.SignalSell
	default:
		return domain.SignalNeutral
	}
}

// classifyATR flags volatility above 2% of the current close.
func classifyATR(atr, close float64) domain.Signal {
	if atr > close*0.02 {
		return domain.SignalHighVolatility
	}
	return domain.SignalLowVolatility
}

func classifyVWAP(price, vwap float64) domain.Signal {
	if price > vwap {
		return domain.SignalBullish
	}
	return domain.SignalBearish
}

func classifyCMF(value float64) domain.Signal {
	if value > 0 {
		return domain.SignalBuyingPressure
	}
	return domain.SignalSellingPressure
}

func classifyMA(price, ma float64) domain.Signal {
	if price > ma {
		return domain.SignalBuy
	}
	return domain.SignalSell
}

func classifySuperTrend(uptrend bool) (domain.Signal, string) {
	if uptrend {
		return domain.SignalBuy, "Uptrend"
	}
	return domain.SignalSell, "Downtrend"
}
