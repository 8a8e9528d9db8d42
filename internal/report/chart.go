package report

import (
	"fmt"
	"image/color"
	"math"

	"github.com/jgoulah/powerchart/internal/aggregate"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Fixed chart text
const (
	ChartTitle  = "Power Usage"
	YAxisLabel  = "Usage (kWh)"
	LegendTitle = "Power Flow"
)

// ChartOptions controls chart layout
type ChartOptions struct {
	XLabel   string
	Decimals int
	Width    vg.Length
	Height   vg.Length
}

// NewChart builds a grouped bar chart: one group per bucket, one bar per flow,
// each bar labeled with its value.
func NewChart(table *aggregate.Table, opts ChartOptions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ChartTitle
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = YAxisLabel
	p.Y.Min = 0
	p.Legend.Top = true

	if table.Empty() {
		return p, nil
	}

	names := make([]string, len(table.Buckets))
	for i, b := range table.Buckets {
		names[i] = b.Label
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	width := barWidth(opts.Width, len(table.Buckets), len(table.Flows))
	format := fmt.Sprintf("%%.%df", max(opts.Decimals, 0))
	labelStyle := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(7)),
		XAlign:  text.XCenter,
		YAlign:  text.YBottom,
		Handler: plot.DefaultTextHandler,
	}

	p.Legend.Add(LegendTitle)
	for i, flow := range table.Flows {
		values := make(plotter.Values, len(table.Buckets))
		present := make([]bool, len(table.Buckets))
		for j, b := range table.Buckets {
			if v, ok := b.Value(flow); ok {
				values[j] = v.InexactFloat64()
				present[j] = true
			}
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, fmt.Errorf("building bars for %s: %w", flow, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(len(table.Flows)-1)/2) * width

		p.Add(bars, &barLabels{
			values:  values,
			present: present,
			offset:  bars.Offset,
			format:  format,
			style:   labelStyle,
		})
		p.Legend.Add(flow, bars)
	}

	return p, nil
}

// SaveChart renders the table and writes it to path; the format follows the extension
func SaveChart(path string, table *aggregate.Table, opts ChartOptions) error {
	p, err := NewChart(table, opts)
	if err != nil {
		return err
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}

	return nil
}

// barWidth splits 80% of each group's share of the plot width between its bars
func barWidth(plotWidth vg.Length, groups, bars int) vg.Length {
	if groups == 0 || bars == 0 {
		return vg.Points(10)
	}
	usable := float64(plotWidth) * 0.8
	w := usable / float64(groups) * 0.8 / float64(bars)
	return vg.Length(math.Max(1, math.Min(w, 40)))
}

// barLabels draws the value of every bar just above (or below, if negative) its end
type barLabels struct {
	values  plotter.Values
	present []bool
	offset  vg.Length
	format  string
	style   text.Style
}

// Plot implements plot.Plotter
func (l *barLabels) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pad := vg.Points(2)

	for i, v := range l.values {
		if !l.present[i] {
			continue
		}
		sty := l.style
		pt := vg.Point{X: trX(float64(i)) + l.offset, Y: trY(v) + pad}
		if v < 0 {
			sty.YAlign = text.YTop
			pt.Y = trY(v) - pad
		}
		c.FillText(sty, pt, fmt.Sprintf(l.format, v))
	}
}

// DataRange leaves headroom above the tallest bar for its label
func (l *barLabels) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmax = float64(len(l.values) - 1)
	for _, v := range l.values {
		ymin = math.Min(ymin, v)
		ymax = math.Max(ymax, v)
	}
	return 0, xmax, ymin * 1.1, ymax * 1.1
}
