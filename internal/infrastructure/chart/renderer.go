package chart

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var (
	barColor    = drawing.ColorFromHex("72BCD4")
	medianColor = drawing.Color{R: 0x2C, G: 0x3E, B: 0x50, A: 255}
)

// Renderer draws dashboard charts with go-chart.
type Renderer struct {
	format Format
	width  int
	height int
	logger logger.Logger
}

func NewRenderer(format Format, width, height int) (*Renderer, error) {
	if format != FormatSVG && format != FormatPNG {
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	return &Renderer{
		format: format,
		width:  width,
		height: height,
		logger: logger.Component("chart_renderer"),
	}, nil
}

func (r *Renderer) ContentType() string {
	if r.format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (r *Renderer) provider() gochart.RendererProvider {
	if r.format == FormatPNG {
		return gochart.PNG
	}
	return gochart.SVG
}

func (r *Renderer) Render(w io.Writer, data entities.ChartData, distribution []entities.DistributionSummary) error {
	if len(data.Result.Groups) == 0 {
		return fmt.Errorf("chart %s has no groups", data.Name)
	}

	var err error
	switch data.Kind {
	case entities.ChartKindBar:
		err = r.renderBar(w, data)
	case entities.ChartKindLine:
		err = r.renderLine(w, data)
	case entities.ChartKindDistribution:
		if len(distribution) == 0 {
			err = r.renderBar(w, data)
		} else {
			err = r.renderBox(w, data, distribution)
		}
	default:
		err = fmt.Errorf("unsupported chart kind %q", data.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to render chart %s: %w", data.Name, err)
	}

	r.logger.Debugf("Rendered %s chart %s with %d groups", data.Kind, data.Name, len(data.Result.Groups))
	return nil
}

func (r *Renderer) renderBar(w io.Writer, data entities.ChartData) error {
	style := gochart.Style{
		FillColor:   barColor,
		StrokeColor: barColor,
		StrokeWidth: 1,
	}

	bars := make([]gochart.Value, len(data.Result.Groups))
	for i, g := range data.Result.Groups {
		bars[i] = gochart.Value{Value: g.Value, Label: g.Label, Style: style}
	}

	bc := gochart.BarChart{
		Title:      data.Title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth(r.width, len(bars)),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Name:  data.YLabel,
			Range: &gochart.ContinuousRange{Min: 0, Max: upperBound(data.Result.Values())},
		},
		Bars: bars,
	}

	return bc.Render(r.provider(), w)
}

func (r *Renderer) renderLine(w io.Writer, data entities.ChartData) error {
	groups := append([]entities.GroupValue(nil), data.Result.Groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	xs := make([]float64, len(groups))
	ys := make([]float64, len(groups))
	ticks := make([]gochart.Tick, len(groups))
	for i, g := range groups {
		xs[i] = float64(g.Key)
		ys[i] = g.Value
		ticks[i] = gochart.Tick{Value: float64(g.Key), Label: g.Label}
	}

	minX, maxX := xs[0], xs[len(xs)-1]
	if data.Result.GroupBy == entities.ColumnHour {
		minX, maxX = 0, 23
	}
	if minX == maxX {
		minX, maxX = minX-1, maxX+1
	}

	c := gochart.Chart{
		Title:      data.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  data.XLabel,
			Range: &gochart.ContinuousRange{Min: minX, Max: maxX},
			Ticks: spanTicks(ticks, minX, maxX),
		},
		YAxis: gochart.YAxis{
			Name:  data.YLabel,
			Range: &gochart.ContinuousRange{Min: 0, Max: upperBound(data.Result.Values())},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    data.YLabel,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: barColor,
					StrokeWidth: 2,
					DotColor:    barColor,
					DotWidth:    3,
				},
			},
		},
	}

	return c.Render(r.provider(), w)
}

// renderBox draws one box per group: a whisker from min to max, a thick
// segment from Q1 to Q3 and a tick at the median.
func (r *Renderer) renderBox(w io.Writer, data entities.ChartData, distribution []entities.DistributionSummary) error {
	series := make([]gochart.Series, 0, len(distribution)*3)
	ticks := make([]gochart.Tick, len(distribution))
	maxValue := 0.0

	boxWidth := float64(barWidth(r.width, len(distribution)))
	for i, d := range distribution {
		x := float64(i)
		ticks[i] = gochart.Tick{Value: x, Label: d.Label}
		maxValue = math.Max(maxValue, d.Max)

		series = append(series,
			gochart.ContinuousSeries{
				Name:    d.Label + " range",
				XValues: []float64{x, x},
				YValues: []float64{d.Min, d.Max},
				Style:   gochart.Style{StrokeColor: medianColor, StrokeWidth: 1},
			},
			gochart.ContinuousSeries{
				Name:    d.Label + " quartiles",
				XValues: []float64{x, x},
				YValues: []float64{d.Q1, d.Q3},
				Style:   gochart.Style{StrokeColor: barColor, StrokeWidth: boxWidth},
			},
			gochart.ContinuousSeries{
				Name:    d.Label + " median",
				XValues: []float64{x - 0.2, x + 0.2},
				YValues: []float64{d.Median, d.Median},
				Style:   gochart.Style{StrokeColor: medianColor, StrokeWidth: 2},
			},
		)
	}

	minX, maxX := -0.5, float64(len(distribution))-0.5
	c := gochart.Chart{
		Title:      data.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  data.XLabel,
			Range: &gochart.ContinuousRange{Min: minX, Max: maxX},
			Ticks: spanTicks(ticks, minX, maxX),
		},
		YAxis: gochart.YAxis{
			Name:  data.YLabel,
			Range: &gochart.ContinuousRange{Min: 0, Max: upperBound([]float64{maxValue})},
		},
		Series: series,
	}

	return c.Render(r.provider(), w)
}

// spanTicks pads sorted ticks with unlabelled ones at lo and hi. go-chart
// takes the x-range from explicit ticks, so a lone tick would collapse it.
func spanTicks(ticks []gochart.Tick, lo, hi float64) []gochart.Tick {
	out := make([]gochart.Tick, 0, len(ticks)+2)
	if len(ticks) == 0 || ticks[0].Value > lo {
		out = append(out, gochart.Tick{Value: lo})
	}
	out = append(out, ticks...)
	if len(ticks) == 0 || ticks[len(ticks)-1].Value < hi {
		out = append(out, gochart.Tick{Value: hi})
	}
	return out
}

func upperBound(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	if top <= 0 {
		return 1
	}
	return top * 1.1
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 40
	}
	w := width / (bars * 2)
	if w > 80 {
		return 80
	}
	if w < 10 {
		return 10
	}
	return w
}
