package chart

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"candlewatch/internal/domain"
)

func TestRenderAnalysisChart(t *testing.T) {
	renderer := NewRenderer()
	candles := buildTestCandles(160)
	record := &domain.TechnicalAnalysisRecord{
		Symbol: "BTC",
		PivotPoints: []domain.PivotSet{
			{Type: domain.PivotClassic, Pivot: 50000, R1: 50400, S1: 49600},
		},
	}

	data, err := renderer.RenderAnalysisChart(candles, record)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty image bytes")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != defaultChartWidth || bounds.Dy() != defaultChartHeight {
		t.Fatalf("unexpected dimensions %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderAnalysisChartWithoutRecord(t *testing.T) {
	renderer := NewRenderer()
	data, err := renderer.RenderAnalysisChart(buildTestCandles(60), nil)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty image bytes")
	}
}

func TestRenderAnalysisChartRejectsTooFewCandles(t *testing.T) {
	renderer := NewRenderer()
	if _, err := renderer.RenderAnalysisChart(buildTestCandles(1), nil); err == nil {
		t.Fatal("expected error for a single candle")
	}
}

func buildTestCandles(count int) []domain.Candle {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, 0, count)
	price := 50000.0
	for i := 0; i < count; i++ {
		step := float64((i%9)-4) * 18
		open := price
		close := price + step
		high := maxFloat(open, close) + 22
		low := minFloat(open, close) - 20
		out = append(out, domain.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
		})
		price = close
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
