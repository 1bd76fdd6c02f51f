package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sort"

	"candlewatch/internal/domain"
	"candlewatch/internal/indicator"
)

const (
	defaultChartWidth  = 960
	defaultChartHeight = 640
	maxChartCandles    = 120
)

var (
	colBackground = color.RGBA{R: 250, G: 252, B: 255, A: 255}
	colGrid       = color.RGBA{R: 225, G: 232, B: 240, A: 255}
	colBull       = color.RGBA{R: 18, G: 140, B: 126, A: 255}
	colBear       = color.RGBA{R: 210, G: 61, B: 87, A: 255}
	colWick       = color.RGBA{R: 58, G: 64, B: 90, A: 255}
	colEMAFast    = color.RGBA{R: 62, G: 106, B: 214, A: 255}
	colEMASlow    = color.RGBA{R: 255, G: 149, B: 0, A: 255}
	colPivot      = color.RGBA{R: 104, G: 122, B: 146, A: 255}
	colRSI        = color.RGBA{R: 62, G: 106, B: 214, A: 255}
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderAnalysisChart draws the recent candles with EMA(20)/EMA(50)
// overlays and the record's classic pivot levels, plus an RSI(14) panel
// below. Returns an encoded PNG.
func (r *Renderer) RenderAnalysisChart(candles []domain.Candle, record *domain.TechnicalAnalysisRecord) ([]byte, error) {
	series := sortedCopy(candles)
	if len(series) < 2 {
		return nil, fmt.Errorf("need at least 2 candles to render chart")
	}

	closes := extractCloses(series)
	emaFast := indicator.EMASeries(closes, 20)
	emaSlow := indicator.EMASeries(closes, 50)
	rsi := indicator.RSISeries(closes, 14)

	if len(series) > maxChartCandles {
		cut := len(series) - maxChartCandles
		series = series[cut:]
		emaFast = emaFast[cut:]
		emaSlow = emaSlow[cut:]
		rsi = rsi[cut:]
	}

	img := image.NewRGBA(image.Rect(0, 0, defaultChartWidth, defaultChartHeight))
	fillRect(img, img.Bounds(), colBackground)

	mainRect := image.Rect(60, 20, defaultChartWidth-20, (defaultChartHeight*72)/100)
	auxRect := image.Rect(60, mainRect.Max.Y+16, defaultChartWidth-20, defaultChartHeight-30)
	drawGrid(img, mainRect, 8, 6)
	drawGrid(img, auxRect, 8, 3)

	minPrice, maxPrice := priceBounds(series)
	if record != nil {
		minPrice, maxPrice = widenForPivots(minPrice, maxPrice, record.PivotPoints)
	}

	drawCandles(img, mainRect, series, minPrice, maxPrice)
	drawSeries(img, mainRect, emaFast, minPrice, maxPrice, colEMAFast)
	drawSeries(img, mainRect, emaSlow, minPrice, maxPrice, colEMASlow)
	if record != nil {
		drawPivotLevels(img, mainRect, record.PivotPoints, minPrice, maxPrice)
	}

	drawHorizontalValueLine(img, auxRect, 30, 0, 100, colPivot)
	drawHorizontalValueLine(img, auxRect, 70, 0, 100, colPivot)
	drawSeries(img, auxRect, rsi, 0, 100, colRSI)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedCopy(in []domain.Candle) []domain.Candle {
	out := make([]domain.Candle, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func priceBounds(candles []domain.Candle) (float64, float64) {
	minPrice := candles[0].Low
	maxPrice := candles[0].High
	for _, c := range candles {
		if c.Low < minPrice {
			minPrice = c.Low
		}
		if c.High > maxPrice {
			maxPrice = c.High
		}
	}
	if maxPrice <= minPrice {
		maxPrice = minPrice + 1
	}
	return minPrice, maxPrice
}

// widenForPivots extends the price range so S1/R1 stay visible, but
// never to the point that far levels squash the candles.
func widenForPivots(minPrice, maxPrice float64, pivots []domain.PivotSet) (float64, float64) {
	span := maxPrice - minPrice
	for _, p := range pivots {
		for _, level := range []float64{p.S1, p.R1} {
			if level > minPrice-span && level < minPrice {
				minPrice = level
			}
			if level < maxPrice+span && level > maxPrice {
				maxPrice = level
			}
		}
	}
	return minPrice, maxPrice
}

func drawCandles(img *image.RGBA, rect image.Rectangle, candles []domain.Candle, minPrice, maxPrice float64) {
	candleWidth := maxInt(3, (rect.Dx()-10)/len(candles)-1)
	for i, c := range candles {
		x := mapIndexToX(i, len(candles), rect)
		highY := mapValueToY(c.High, minPrice, maxPrice, rect)
		lowY := mapValueToY(c.Low, minPrice, maxPrice, rect)
		drawLine(img, x, highY, x, lowY, colWick)

		openY := mapValueToY(c.Open, minPrice, maxPrice, rect)
		closeY := mapValueToY(c.Close, minPrice, maxPrice, rect)
		top := minInt(openY, closeY)
		bottom := maxInt(openY, closeY)
		if bottom-top < 2 {
			bottom = top + 2
		}

		bodyRect := image.Rect(x-candleWidth/2, top, x+candleWidth/2+1, bottom+1)
		bodyColor := colBull
		if c.Close < c.Open {
			bodyColor = colBear
		}
		fillRect(img, bodyRect, bodyColor)
	}
}

func drawPivotLevels(img *image.RGBA, rect image.Rectangle, pivots []domain.PivotSet, minPrice, maxPrice float64) {
	for _, p := range pivots {
		for _, level := range []float64{p.Pivot, p.R1, p.S1} {
			if level < minPrice || level > maxPrice {
				continue
			}
			drawHorizontalValueLine(img, rect, level, minPrice, maxPrice, colPivot)
		}
	}
}

func drawSeries(img *image.RGBA, rect image.Rectangle, series []float64, minV, maxV float64, col color.RGBA) {
	lastX, lastY := -1, -1
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			lastX, lastY = -1, -1
			continue
		}
		x := mapIndexToX(i, len(series), rect)
		y := mapValueToY(v, minV, maxV, rect)
		if lastX >= 0 {
			drawLine(img, lastX, lastY, x, y, col)
		}
		lastX, lastY = x, y
	}
}

func drawGrid(img *image.RGBA, rect image.Rectangle, verticalLines, horizontalLines int) {
	for i := 0; i <= verticalLines; i++ {
		x := rect.Min.X + (rect.Dx()*i)/maxInt(1, verticalLines)
		drawLine(img, x, rect.Min.Y, x, rect.Max.Y, colGrid)
	}
	for i := 0; i <= horizontalLines; i++ {
		y := rect.Min.Y + (rect.Dy()*i)/maxInt(1, horizontalLines)
		drawLine(img, rect.Min.X, y, rect.Max.X, y, colGrid)
	}
}

func drawHorizontalValueLine(img *image.RGBA, rect image.Rectangle, value, minV, maxV float64, col color.RGBA) {
	y := mapValueToY(value, minV, maxV, rect)
	drawLine(img, rect.Min.X, y, rect.Max.X, y, col)
}

func mapIndexToX(idx, total int, rect image.Rectangle) int {
	if total <= 1 {
		return rect.Min.X
	}
	return rect.Min.X + (idx*(rect.Dx()-1))/(total-1)
}

func mapValueToY(value, minV, maxV float64, rect image.Rectangle) int {
	if maxV <= minV {
		return rect.Max.Y
	}
	ratio := (value - minV) / (maxV - minV)
	ratio = math.Max(0, math.Min(1, ratio))
	return rect.Max.Y - int(ratio*float64(rect.Dy()-1))
}

func extractCloses(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	r := rect.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
