// Package plot renders a checkpoint's histogram with its normal
// approximation overlaid.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nvandessel/galton/internal/datfile"
)

// ErrNoData is returned when the sim file has no rows.
var ErrNoData = errors.New("plot: no histogram data")

// Options sizes the rendered image. A zero HeightCM derives the height
// from the width.
type Options struct {
	WidthCM  float64
	HeightCM float64
}

// DefaultName returns the image file name for a checkpoint, e.g. plot_h5_b1000.png.
func DefaultName(height int, trials int64) string {
	return fmt.Sprintf("plot_h%d_b%d.png", height, trials)
}

// Histogram fills a unit-bin histogram centred on each row.
func Histogram(rows []datfile.SimRow) *hbook.H1D {
	n := len(rows)
	h := hbook.NewH1D(n, -0.5, float64(n)-0.5)
	for _, r := range rows {
		h.Fill(float64(r.Row), float64(r.Count))
	}
	return h
}

// Render reads the sim and normal files for (height, trials) from dir and
// saves the plot to outPath. The image format follows outPath's extension.
func Render(dir string, height int, trials int64, outPath string, opts Options) error {
	rows, err := datfile.ReadSim(datfile.Path(dir, datfile.KindSim, height, trials))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", datfile.Name(datfile.KindSim, height, trials), ErrNoData)
	}
	curve, err := datfile.ReadNormal(datfile.Path(dir, datfile.KindNormal, height, trials))
	if err != nil {
		return err
	}

	p := hplot.New()
	p.Title.Text = fmt.Sprintf("Galton board, height %d, %d balls", height, trials)
	p.X.Label.Text = "row"
	p.Y.Label.Text = "balls"

	hh := hplot.NewH1D(Histogram(rows))
	hh.FillColor = color.NRGBA{R: 120, G: 160, B: 220, A: 255}
	hh.LineStyle.Color = color.NRGBA{B: 255, A: 255}
	p.Add(hh, hplot.NewGrid())
	p.Legend.Add("simulation", hh)

	// Height 0 has no normal curve.
	if len(curve) > 0 {
		xys := make(plotter.XYs, len(curve))
		for i, pt := range curve {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("normal curve: %w", err)
		}
		line.LineStyle.Color = color.NRGBA{R: 220, A: 255}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("normal", line)
	}
	p.Legend.Top = true

	w, h := size(opts)
	if err := p.Save(w, h, outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	return nil
}

func size(opts Options) (vg.Length, vg.Length) {
	w := opts.WidthCM
	if w <= 0 {
		w = 16
	}
	h := opts.HeightCM
	if h <= 0 {
		h = w / math.Phi
	}
	return vg.Length(w) * vg.Centimeter, vg.Length(h) * vg.Centimeter
}
