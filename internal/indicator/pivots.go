package indicator

// PivotLevels are support/resistance levels derived from a prior
// completed candle.
type PivotLevels struct {
	Pivot float64
	R1    float64
	R2    float64
	R3    float64
	S1    float64
	S2    float64
	S3    float64
}

// ClassicPivot computes the classic floor-trader pivots from the
// previous candle's high, low and close.
func ClassicPivot(high, low, close float64) PivotLevels {
	p := (high + low + close) / 3
	return PivotLevels{
		Pivot: p,
		R1:    2*p - low,
		R2:    p + (high - low),
		R3:    high + 2*(p-low),
		S1:    2*p - high,
		S2:    p - (high - low),
		S3:    low - 2*(high-p),
	}
}
