// Package indicator holds the pure rolling-window math shared by the
// local computation path. All functions are deterministic over plain
// float slices; values that cannot be computed yet are NaN.
package indicator

import "math"

// EMASeries seeds from the first value and applies the standard
// alpha = 2/(period+1) recursion.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// SMASeries is a simple rolling mean; the first period-1 slots are NaN.
func SMASeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RSISeries uses Wilder smoothing with an SMA seed. A window with no
// movement in either direction reads as 50: no directional pressure,
// rather than the degenerate 100 a naive avgLoss==0 shortcut gives.
func RSISeries(closes []float64, period int) []float64 {
	series := make([]float64, len(closes))
	for i := range series {
		series[i] = math.NaN()
	}
	if len(closes) <= period {
		return series
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	series[period] = rsiFromAvg(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		series[i] = rsiFromAvg(avgGain, avgLoss)
	}
	return series
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACDSeries returns the MACD line and its signal line.
func MACDSeries(values []float64, fast, slow, signal int) (macdLine, signalLine []float64) {
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)
	macdLine = make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine = EMASeries(macdLine, signal)
	return macdLine, signalLine
}

// StochRSIK returns the smoothed %K series on a 0-1 scale. A window
// where RSI never moves is read as the 0.5 midpoint.
func StochRSIK(closes []float64, window, smoothK int) []float64 {
	rsi := RSISeries(closes, window)
	stoch := make([]float64, len(rsi))
	for i := range stoch {
		stoch[i] = math.NaN()
	}
	for i := range rsi {
		if i < window || math.IsNaN(rsi[i]) {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		complete := true
		for j := i - window + 1; j <= i; j++ {
			if j < 0 || math.IsNaN(rsi[j]) {
				complete = false
				break
			}
			lo = math.Min(lo, rsi[j])
			hi = math.Max(hi, rsi[j])
		}
		if !complete {
			continue
		}
		if hi == lo {
			stoch[i] = 0.5
			continue
		}
		stoch[i] = (rsi[i] - lo) / (hi - lo)
	}
	return smoothNaN(stoch, smoothK)
}

// smoothNaN applies a simple moving average over the trailing non-NaN
// run, leaving the NaN head intact.
func smoothNaN(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := range values {
		if math.IsNaN(values[i]) {
			continue
		}
		var sum float64
		count := 0
		for j := i; j >= 0 && j > i-period; j-- {
			if math.IsNaN(values[j]) {
				break
			}
			sum += values[j]
			count++
		}
		if count == period {
			out[i] = sum / float64(count)
		}
	}
	return out
}

// ATRSeries is the Wilder-smoothed average true range.
func ATRSeries(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n <= period {
		return out
	}

	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	out[period] = atr
	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}
	return out
}

// OBVSeries accumulates volume in the direction of the close-to-close
// move. An unchanged close counts toward accumulation, matching the
// reference implementations this engine is checked against.
func OBVSeries(closes, volumes []float64) []float64 {
	if len(closes) == 0 {
		return nil
	}
	out := make([]float64, len(closes))
	out[0] = volumes[0]
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1] + volumes[i]
		}
	}
	return out
}

// VWAP is the volume-weighted average of the typical price over the
// trailing window. Returns NaN when the window carries no volume.
func VWAP(highs, lows, closes, volumes []float64, window int) float64 {
	n := len(closes)
	if n == 0 {
		return math.NaN()
	}
	start := n - window
	if start < 0 {
		start = 0
	}
	var pv, vol float64
	for i := start; i < n; i++ {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		pv += tp * volumes[i]
		vol += volumes[i]
	}
	if vol == 0 {
		return math.NaN()
	}
	return pv / vol
}

// CMF is the Chaikin Money Flow over the trailing window. Candles with
// no range contribute zero money-flow volume; a window with no volume
// at all is NaN.
func CMF(highs, lows, closes, volumes []float64, window int) float64 {
	n := len(closes)
	if n < window {
		return math.NaN()
	}
	var mfv, vol float64
	for i := n - window; i < n; i++ {
		if spread := highs[i] - lows[i]; spread > 0 {
			multiplier := ((closes[i] - lows[i]) - (highs[i] - closes[i])) / spread
			mfv += multiplier * volumes[i]
		}
		vol += volumes[i]
	}
	if vol == 0 {
		return math.NaN()
	}
	return mfv / vol
}

// MeanStd returns the population mean and standard deviation.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) == 1 {
		return mean, 0
	}
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
