// Public domain.

package scurve

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// NBins is the number of stimulus values, 0 through 255.  Histogram bins are
// centred on the integer stimulus values.
const NBins = 256

// Histogram accumulates hit counts against stimulus for one channel.
type Histogram struct {
	h     *hbook.H1D
	alive bool
}

// NewHistogram returns an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{h: hbook.NewH1D(NBins, -.5, NBins-.5)}
}

// Fill adds hits at the given stimulus.  Any call marks the channel alive,
// even one with zero hits.  Stimulus values outside 0..255 land in the
// histogram outflow bins and do not take part in the fit.
func (h *Histogram) Fill(stimulus, hits int) {
	h.alive = true
	h.h.Fill(float64(stimulus), float64(hits))
}

// Alive reports whether any sample was ever seen for the channel.
func (h *Histogram) Alive() bool { return h.alive }

// Total is the sum of hit counts over the in-range bins.
func (h *Histogram) Total() float64 {
	var t float64
	for i := range h.h.Binning.Bins {
		t += h.h.Binning.Bins[i].SumW()
	}
	return t
}

// Hits returns the accumulated hit count at a stimulus value.
func (h *Histogram) Hits(stimulus int) float64 {
	return h.h.Value(stimulus)
}

// Points returns stimulus and hit count for each sampled bin.  Stimulus
// values the scan stepped over are left out, not taken as zero hits.
func (h *Histogram) Points() (x, y []float64) {
	bins := h.h.Binning.Bins
	for i := range bins {
		if bins[i].Entries() == 0 {
			continue
		}
		x = append(x, bins[i].XMid())
		y = append(y, bins[i].SumW())
	}
	return
}

// SaturationCount sums hit counts over bins with stimulus strictly greater
// than boundary.
func (h *Histogram) SaturationCount(boundary float64) int {
	var s float64
	for i := range h.h.Binning.Bins {
		if b := &h.h.Binning.Bins[i]; b.XMid() > boundary {
			s += b.SumW()
		}
	}
	return int(math.Round(s))
}

// H1D exposes the underlying histogram for plotting and file output.
func (h *Histogram) H1D() *hbook.H1D { return h.h }
