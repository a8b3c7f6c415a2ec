package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	png "image/png"
	"io"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mjanssen/SupportTicketAnalytics/src/analysis"
	"github.com/mjanssen/SupportTicketAnalytics/src/tickets"
)

// chartSize computes a chart size based on the current window width so charts
// use the available X-axis space.
func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return 900, 300
	}
	sz := state.window.Canvas().Size()
	w := int(sz.Width*0.70) - 12
	if w < 700 {
		w = 700
	}
	h := int(float32(w) * 0.35)
	if h < 260 {
		h = 260
	}
	if h > 480 {
		h = 480
	}
	return w, h
}

func redrawCharts(state *uiState) {
	if img := renderCSATChart(state); img != nil {
		state.csatImgCanvas.Image = img
		state.csatImgCanvas.Refresh()
	}
	if img := renderChannelChart(state); img != nil {
		state.channelImgCanvas.Image = img
		state.channelImgCanvas.Refresh()
	}
	if img := renderTrendChart(state); img != nil {
		state.trendImgCanvas.Image = img
		state.trendImgCanvas.Refresh()
	}
}

// scoreDistribution tallies rows per CSAT score value, ascending by score.
func scoreDistribution(rows []tickets.Ticket) ([]string, []int) {
	return analysis.CountBy(rows, func(t tickets.Ticket) string {
		return fmt.Sprintf("%g", t.CSAT)
	})
}

func renderCSATChart(state *uiState) image.Image {
	labels, counts := scoreDistribution(state.filtered)
	img := renderBarChart(state, "CSAT Score Distribution", labels, intsToFloats(counts))
	if state.showHints {
		return drawHint(img, "Hint: CSAT distribution. A left-heavy shape means many unhappy customers.")
	}
	return img
}

func renderChannelChart(state *uiState) image.Image {
	labels, counts := analysis.CountBy(state.filtered, func(t tickets.Ticket) string { return t.Channel })
	img := renderBarChart(state, "Tickets by Channel", labels, intsToFloats(counts))
	if state.showHints {
		return drawHint(img, "Hint: volume per intake channel under the current filters.")
	}
	return img
}

// renderGroupMeansChart draws the per-group mean CSAT bars for the comparison
// tab; a guarded (insufficient/degenerate-empty) result renders blank.
func renderGroupMeansChart(state *uiState, c analysis.Comparison) image.Image {
	cw, chh := chartSize(state)
	if c.Insufficient || math.IsNaN(c.MeanA) || math.IsNaN(c.MeanB) {
		return blank(cw, chh)
	}
	bars := []chart.Value{
		{Label: c.LabelA, Value: c.MeanA},
		{Label: c.LabelB, Value: c.MeanB},
	}
	ch := chart.BarChart{
		Title:      "Mean CSAT by Group",
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		Width:      cw,
		Height:     chh,
		BarWidth:   80,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 5},
		},
		Bars: bars,
	}
	img := renderToImage(state, ch.Render, "group means")
	if state.showHints {
		return drawHint(img, "Hint: bar heights are group mean CSAT; the verdict above is the Welch test.")
	}
	return img
}

func renderBarChart(state *uiState, title string, labels []string, values []float64) image.Image {
	cw, chh := chartSize(state)
	if len(labels) == 0 {
		return blank(cw, chh)
	}
	maxY := 0.0
	bars := make([]chart.Value, len(labels))
	for i := range labels {
		bars[i] = chart.Value{Label: labels[i], Value: values[i]}
		if values[i] > maxY {
			maxY = values[i]
		}
	}
	if maxY <= 0 {
		maxY = 1
	}
	_, nMax := niceAxisBounds(0, maxY)
	barWidth := (cw - 100) / (2 * len(bars))
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 120 {
		barWidth = 120
	}
	ch := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		Width:      cw,
		Height:     chh,
		BarWidth:   barWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: nMax},
		},
		Bars: bars,
	}
	return renderToImage(state, ch.Render, title)
}

func renderTrendChart(state *uiState) image.Image {
	cw, chh := chartSize(state)
	counts := analysis.DailyCounts(state.filtered)
	if len(counts) == 0 {
		return blank(cw, chh)
	}
	times := make([]time.Time, len(counts))
	ys := make([]float64, len(counts))
	maxY := 0.0
	for i, c := range counts {
		d, err := time.Parse("2006-01-02", c.Day)
		if err != nil {
			tickets.Errorf("viewer: bad day key %q: %v", c.Day, err)
			return blank(cw, chh)
		}
		times[i] = d
		ys[i] = float64(c.Count)
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	// go-chart needs at least two X values; pad a lone day by one
	if len(times) == 1 {
		times = append(times, times[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	_, nMax := niceAxisBounds(0, maxY)
	ch := chart.Chart{
		Title:      "Daily Ticket Trend",
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 48}},
		Width:      cw,
		Height:     chh,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Tickets",
			Range: &chart.ContinuousRange{Min: 0, Max: nMax},
			Ticks: niceTicks(0, nMax, 6),
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Tickets", XValues: times, YValues: ys},
		},
	}
	img := renderToImage(state, ch.Render, "daily trend")
	if state.showHints {
		return drawHint(img, "Hint: spikes usually follow incidents or product launches.")
	}
	return img
}

// renderToImage renders a chart to PNG and decodes it back, falling back to a
// blank image so the UI still updates visibly on render errors.
func renderToImage(state *uiState, render func(chart.RendererProvider, io.Writer) error, what string) image.Image {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		cw, chh := chartSize(state)
		tickets.Warnf("viewer: %s chart render error: %v; showing blank fallback", what, err)
		return blank(cw, chh)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		cw, chh := chartSize(state)
		tickets.Warnf("viewer: %s chart decode error: %v; showing blank fallback", what, err)
		return blank(cw, chh)
	}
	return img
}

func intsToFloats(ns []int) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = float64(n)
	}
	return out
}

// niceAxisBounds pads [min, max] and rounds to increments based on the span's
// order of magnitude.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	if pad <= 0 {
		pad = 1
	}
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	if min >= 0 && a < 0 {
		a = 0
	}
	return a, b
}

// niceTicks generates up to n tick marks between [min, max] using nice steps.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= end+bestStep/2; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 18, G: 18, B: 18, A: 255})
		}
	}
	return img
}

// drawHint draws a small caption onto the image near the bottom-left.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
