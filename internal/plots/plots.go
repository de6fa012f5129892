// Public domain.

// Package plots renders S-curves, summary distributions and the mask map of
// a module as PNG files.
package plots

import (
	"fmt"
	"image/color"
	"os"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

var fitColor = color.RGBA{R: 200, A: 255}

// SCurves plots the data points of all live channels of a chip with the
// fitted curves of validly fitted channels overlaid.
func SCurves(fn string, chip int, hs *vfatmap.ChannelArray[*scurve.Histogram], rs *vfatmap.ChannelArray[scurve.Result]) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("VFAT %d S-curves", chip)
	p.X.Label.Text = "injected charge (DAC)"
	p.Y.Label.Text = "hits"
	p.X.Min, p.X.Max = 0, scurve.NBins-1
	for ch, h := range hs {
		if h == nil || !h.Alive() {
			continue
		}
		x, y := h.Points()
		pts := make(plotter.XYs, len(x))
		for i := range x {
			pts[i].X, pts[i].Y = x[i], y[i]
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("chip %d channel %d: %w", chip, ch, err)
		}
		s.GlyphStyle.Radius = vg.Points(.5)
		p.Add(s)
		if r := rs[ch]; r.Valid {
			f := plotter.NewFunction(r.Params.Eval)
			f.Color = fitColor
			f.Width = vg.Points(.5)
			p.Add(f)
		}
	}
	return p.Save(width, height, fn)
}

// Distribution plots a histogram of values.  Empty input draws nothing and
// is not an error.
func Distribution(fn, title, xlabel string, values []float64, bins int) error {
	if len(values) == 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "channels"
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(width, height, fn)
}

// MaskMap returns a chip × channel histogram of the mask reason bits.
func MaskMap(cs *vfatmap.ModuleArray[mask.Channel]) *hbook.H2D {
	h := hbook.NewH2D(vfatmap.NChips, -.5, vfatmap.NChips-.5,
		vfatmap.NChannels, -.5, vfatmap.NChannels-.5)
	h.Ann["name"] = "maskMap"
	for chip := range cs {
		for ch, c := range cs[chip] {
			h.Fill(float64(chip), float64(ch), float64(c.Reason))
		}
	}
	return h
}

// HeatMap draws a 2-dim histogram with a color bar.
func HeatMap(fn, title, xlabel, ylabel string, h *hbook.H2D) error {
	const barWidth = 50
	img := vgimg.New(width, height)
	dc := draw.New(img)
	dc0 := draw.Crop(dc, 0, -barWidth-20, 0, 0)
	dc1 := draw.Crop(dc, width-barWidth, 0, 0, 0)

	_, _, zmin, zmax := minmax(h.GridXYZ())
	if zmax <= zmin {
		zmax = zmin + 1
	}
	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(zmin)
	colorMap.SetMax(zmax)
	heatMap := plotter.NewHeatMap(h.GridXYZ(), colorMap.Palette(256))
	heatMap.Min, heatMap.Max = zmin, zmax

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(heatMap)
	p.Draw(dc0)

	p = plot.New()
	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	p.Add(colorBar)
	p.HideX()
	p.Y.Padding = 0
	p.Draw(dc1)

	w, err := os.Create(fn)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func minmax(g plotter.GridXYZ) (c, r int, min, max float64) {
	c, r = g.Dims()
	if c == 0 || r == 0 {
		return
	}
	min, max = g.Z(0, 0), g.Z(0, 0)
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			if z < min {
				min = z
			}
			if z > max {
				max = z
			}
		}
	}
	return
}
