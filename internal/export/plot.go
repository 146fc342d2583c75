// Package export renders step-size histories as image files.
package export

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/dtgrowth/internal/sim"
)

var ErrNoSteps = errors.New("export: no steps to plot")

type PlotOptions struct {
	Title    string
	Width    vg.Length
	Height   vg.Length
	LogScale bool
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Title:  "step size",
		Width:  8 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// DTPlot builds a plot of dt against time. Steps that landed on a knot and
// steps that needed cutbacks are marked.
func DTPlot(steps []sim.StepRecord, opts PlotOptions) (*plot.Plot, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "dt"
	if opts.LogScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	pts := make(plotter.XYs, len(steps))
	var knots, cutbacks plotter.XYs
	for i, s := range steps {
		pts[i].X = s.Time
		pts[i].Y = s.DT
		if s.OnKnot {
			knots = append(knots, pts[i])
		}
		if s.Cutbacks > 0 {
			cutbacks = append(cutbacks, pts[i])
		}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 0, G: 150, B: 200, A: 255}
	p.Add(line)
	p.Legend.Add("dt", line)

	if len(knots) > 0 {
		sc, err := plotter.NewScatter(knots)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = color.RGBA{R: 0, G: 180, B: 80, A: 255}
		p.Add(sc)
		p.Legend.Add("knot", sc)
	}

	if len(cutbacks) > 0 {
		sc, err := plotter.NewScatter(cutbacks)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Color = color.RGBA{R: 220, G: 50, B: 50, A: 255}
		p.Add(sc)
		p.Legend.Add("cutback", sc)
	}

	return p, nil
}

// SaveDTPlot writes the plot to path; the format follows the extension
// (.png, .svg, .pdf, ...).
func SaveDTPlot(steps []sim.StepRecord, path string, opts PlotOptions) error {
	p, err := DTPlot(steps, opts)
	if err != nil {
		return err
	}
	return p.Save(opts.Width, opts.Height, path)
}
