// Package plotting renders the diagnostic figures: global parameter maps,
// point time series, electron-density profiles and year-long trend panels.
// All rendering goes through gonum/plot and is written as PNG.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/heliolab/iri-lab-apps/internal/ndarray"
)

// Line colors shared across tools.
var (
	ColorBlue    = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	ColorRed     = color.NRGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	ColorGreen   = color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	ColorMagenta = color.NRGBA{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff}
)

var (
	lineBlue  = ColorBlue
	lineRed   = ColorRed
	lineGreen = ColorGreen
	bandBlue  = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x99}
	bandRed   = color.NRGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0x99}
	bandGreen = color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0x99}
)

// mapGrid adapts a lat/lon field to plotter.GridXYZ.
type mapGrid struct {
	x, y []float64
	z    *ndarray.Array // [len(y), len(x)]
}

func (g mapGrid) Dims() (int, int)   { return len(g.x), len(g.y) }
func (g mapGrid) X(c int) float64    { return g.x[c] }
func (g mapGrid) Y(r int) float64    { return g.y[r] }
func (g mapGrid) Z(c, r int) float64 { return g.z.At(r, c) }

// Heatmap renders a 2-D field over the given axes and saves it as PNG.
// values must have len(yAxis)*len(xAxis) entries in row-major y order.
func Heatmap(path string, xAxis, yAxis, values []float64, title, xLabel, yLabel string) error {
	z, err := ndarray.New([]int{len(yAxis), len(xAxis)}, values)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	hm := plotter.NewHeatMap(mapGrid{x: xAxis, y: yAxis, z: z}, palette.Heat(20, 1))
	p.Add(hm)

	return p.Save(12*vg.Inch, 8*vg.Inch, path)
}

// PanelSeries is one line panel of a multi-panel figure.
type PanelSeries struct {
	Title  string
	YLabel string
	Values []float64
	Color  color.Color
	LogY   bool
}

// TimeSeriesPanel renders a 2x2 grid of hourly series sharing the same
// hour axis, with a figure-level title.
func TimeSeriesPanel(path string, hours []float64, panels [4]PanelSeries, suptitle string) error {
	plots := make([][]*plot.Plot, 2)
	for r := 0; r < 2; r++ {
		plots[r] = make([]*plot.Plot, 2)
		for c := 0; c < 2; c++ {
			ps := panels[r*2+c]
			p := plot.New()
			p.Title.Text = ps.Title
			if r == 0 && c == 0 && suptitle != "" {
				p.Title.Text = suptitle + "\n" + ps.Title
			}
			p.X.Label.Text = "Hour (UTC)"
			p.Y.Label.Text = ps.YLabel

			if ps.LogY {
				p.Y.Scale = plot.LogScale{}
				p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
			}

			line, err := newLine(hours, ps.Values, ps.LogY)
			if err != nil {
				return err
			}
			line.LineStyle.Color = ps.Color
			line.LineStyle.Width = vg.Points(2)
			p.Add(plotter.NewGrid(), line)
			plots[r][c] = p
		}
	}
	return savePanels(path, plots, 15*vg.Inch, 10*vg.Inch)
}

// YearPoint is one day of a year trend panel.
type YearPoint struct {
	Date time.Time
	F107 float64
	NmF2 float64
	Min  float64
	Max  float64
}

// YearDailyPlot renders the two stacked year panels at daily resolution:
// F10.7 input with model reference lines on top, and NmF2 with per-day
// bands colored by position against the model envelope below.
func YearDailyPlot(path string, points []YearPoint, title string, refMin, refMax float64) error {
	top, err := fluxPanel(points, refMin, refMax)
	if err != nil {
		return err
	}
	top.Title.Text = title

	bottom := plot.New()
	bottom.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	bottom.X.Label.Text = "Time"
	bottom.Y.Label.Text = "NmF2"
	bottom.Add(plotter.NewGrid())

	for i := 0; i < len(points)-1; i++ {
		pt := points[i]
		if math.IsNaN(pt.NmF2) || math.IsNaN(pt.Min) || math.IsNaN(pt.Max) {
			continue
		}
		var c color.Color
		var lo, hi float64
		switch {
		case pt.NmF2 < pt.Min:
			c, lo, hi = bandBlue, pt.NmF2, pt.Min
		case pt.NmF2 > pt.Max:
			c, lo, hi = bandRed, pt.Max, pt.NmF2
		default:
			c, lo, hi = bandGreen, pt.Min, pt.Max
		}
		x0 := float64(pt.Date.Unix())
		x1 := float64(points[i+1].Date.Unix())
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: x0, Y: lo}, {X: x1, Y: lo}, {X: x1, Y: hi}, {X: x0, Y: hi},
		})
		if err != nil {
			return err
		}
		poly.Color = c
		poly.LineStyle.Width = 0
		bottom.Add(poly)
	}

	// Thin output trace over the bands.
	xy := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if math.IsNaN(pt.NmF2) {
			continue
		}
		xy = append(xy, plotter.XY{X: float64(pt.Date.Unix()), Y: pt.NmF2})
	}
	if line, err := plotter.NewLine(xy); err == nil {
		line.LineStyle.Width = vg.Points(0.5)
		bottom.Add(line)
	}

	addBandLegend(bottom)
	return savePanels(path, [][]*plot.Plot{{top}, {bottom}}, 14*vg.Inch, 8*vg.Inch)
}

// YearMonthlyPlot renders the two stacked year panels with a continuous
// model envelope band and the interpolated output on top of it.
func YearMonthlyPlot(path string, points []YearPoint, title string, refMin, refMax float64) error {
	top, err := fluxPanel(points, refMin, refMax)
	if err != nil {
		return err
	}
	top.Title.Text = title

	bottom := plot.New()
	bottom.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	bottom.X.Label.Text = "Time"
	bottom.Y.Label.Text = "NmF2"
	bottom.Add(plotter.NewGrid())

	// Envelope polygon: max curve out, min curve back.
	var band plotter.XYs
	for _, pt := range points {
		if math.IsNaN(pt.Max) {
			continue
		}
		band = append(band, plotter.XY{X: float64(pt.Date.Unix()), Y: pt.Max})
	}
	for i := len(points) - 1; i >= 0; i-- {
		if math.IsNaN(points[i].Min) {
			continue
		}
		band = append(band, plotter.XY{X: float64(points[i].Date.Unix()), Y: points[i].Min})
	}
	if len(band) > 2 {
		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return err
		}
		poly.Color = bandBlue
		poly.LineStyle.Width = 0
		bottom.Add(poly)
	}

	xy := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if math.IsNaN(pt.NmF2) {
			continue
		}
		xy = append(xy, plotter.XY{X: float64(pt.Date.Unix()), Y: pt.NmF2})
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return err
	}
	line.LineStyle.Color = lineGreen
	line.LineStyle.Width = vg.Points(1.5)
	bottom.Add(line)
	bottom.Legend.Add("Output", line)
	bottom.Legend.Top = true

	return savePanels(path, [][]*plot.Plot{{top}, {bottom}}, 12*vg.Inch, 8*vg.Inch)
}

func fluxPanel(points []YearPoint, refMin, refMax float64) (*plot.Plot, error) {
	p := plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Y.Label.Text = "F10.7"
	p.Y.Min = 50
	p.Y.Max = 250
	p.Add(plotter.NewGrid())

	if len(points) == 0 {
		return nil, fmt.Errorf("no data points for year panel")
	}
	x0 := float64(points[0].Date.Unix())
	x1 := float64(points[len(points)-1].Date.Unix())

	minLine, err := plotter.NewLine(plotter.XYs{{X: x0, Y: refMin}, {X: x1, Y: refMin}})
	if err != nil {
		return nil, err
	}
	minLine.LineStyle.Color = lineBlue
	maxLine, err := plotter.NewLine(plotter.XYs{{X: x0, Y: refMax}, {X: x1, Y: refMax}})
	if err != nil {
		return nil, err
	}
	maxLine.LineStyle.Color = lineRed

	xy := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if math.IsNaN(pt.F107) {
			continue
		}
		xy = append(xy, plotter.XY{X: float64(pt.Date.Unix()), Y: pt.F107})
	}
	flux, err := plotter.NewLine(xy)
	if err != nil {
		return nil, err
	}
	flux.LineStyle.Color = lineGreen
	flux.LineStyle.Width = vg.Points(1.5)

	p.Add(minLine, maxLine, flux)
	p.Legend.Add("Model Min", minLine)
	p.Legend.Add("Model Max", maxLine)
	p.Legend.Add("User Input", flux)
	p.Legend.Top = true
	return p, nil
}

func addBandLegend(p *plot.Plot) {
	for _, e := range []struct {
		name string
		c    color.Color
	}{
		{"Model Min", bandBlue},
		{"Model Max", bandRed},
		{"Output", bandGreen},
	} {
		box, err := plotter.NewPolygon(plotter.XYs{{X: 0, Y: 0}})
		if err != nil {
			continue
		}
		box.Color = e.c
		p.Legend.Add(e.name, box)
	}
	p.Legend.Top = true
}

// ProfilePlot renders the two profile panels: the vertical density profile
// at one hour (log density against altitude) and, when a time/altitude
// cross-section is available, the density evolution heatmap.
func ProfilePlot(path string, profile, alts []float64, cross *ndarray.Array, hours []float64, locName string, hour int) error {
	left := plot.New()
	left.Title.Text = fmt.Sprintf("Electron Density Profile\n%s at %02d:00 UTC", locName, hour)
	left.X.Label.Text = "Electron Density (el/cm3)"
	left.Y.Label.Text = "Altitude (km)"
	left.X.Scale = plot.LogScale{}
	left.X.Tick.Marker = plot.LogTicks{Prec: -1}
	left.Add(plotter.NewGrid())

	xy := make(plotter.XYs, 0, len(profile))
	for i, v := range profile {
		if v <= 0 { // log axis
			v = 1
		}
		xy = append(xy, plotter.XY{X: v, Y: alts[i]})
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return err
	}
	line.LineStyle.Color = lineBlue
	line.LineStyle.Width = vg.Points(2)
	left.Add(line)

	right := plot.New()
	right.Title.Text = fmt.Sprintf("Electron Density vs Time\n%s", locName)
	right.X.Label.Text = "Hour (UTC)"
	right.Y.Label.Text = "Altitude (km)"
	if cross != nil {
		hm := plotter.NewHeatMap(mapGrid{x: hours, y: alts, z: cross}, palette.Heat(20, 1))
		right.Add(hm)
	}

	return savePanels(path, [][]*plot.Plot{{left, right}}, 15*vg.Inch, 8*vg.Inch)
}

func newLine(x, y []float64, logY bool) (*plotter.Line, error) {
	xy := make(plotter.XYs, 0, len(x))
	for i := range x {
		v := y[i]
		if math.IsNaN(v) {
			continue
		}
		if logY && v <= 0 {
			v = 1
		}
		xy = append(xy, plotter.XY{X: x[i], Y: v})
	}
	return plotter.NewLine(xy)
}

// savePanels tiles the plot matrix onto one PNG canvas.
func savePanels(path string, plots [][]*plot.Plot, w, h vg.Length) error {
	img := vgimg.New(w, h)
	dc := draw.New(img)

	rows := len(plots)
	cols := 0
	for _, r := range plots {
		if len(r) > cols {
			cols = len(r)
		}
	}
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
