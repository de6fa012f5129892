// Public domain.

package scurve

import "math"

// Bounds limits each fit parameter to a closed interval.
type Bounds struct {
	Min, Max Params
}

// DefaultBounds are the physical limits of the parameters in DAC units.
var DefaultBounds = Bounds{
	Min: Params{Threshold: .01, Noise: 0, Pedestal: 0},
	Max: Params{Threshold: 300, Noise: 100, Pedestal: 300},
}

// Clip projects p into b.
func (b Bounds) Clip(p Params) Params {
	return Params{
		Threshold: clip(p.Threshold, b.Min.Threshold, b.Max.Threshold),
		Noise:     clip(p.Noise, b.Min.Noise, b.Max.Noise),
		Pedestal:  clip(p.Pedestal, b.Min.Pedestal, b.Max.Pedestal),
	}
}

// inside reports, per parameter, whether p lies within b.  Outside, the
// clipped model does not depend on the parameter.
func (b Bounds) inside(p Params) (thr, noise, ped bool) {
	return within(p.Threshold, b.Min.Threshold, b.Max.Threshold),
		within(p.Noise, b.Min.Noise, b.Max.Noise),
		within(p.Pedestal, b.Min.Pedestal, b.Max.Pedestal)
}

// NoiseSeed draws a starting noise value from a normal distribution,
// redrawing values outside the noise bounds.  After redrawCap failed draws
// the last draw is clipped into bounds, so it always returns.
func (b Bounds) NoiseSeed(rnd Rand, mean, std float64, redrawCap int) float64 {
	v := mean
	for i := 0; i <= redrawCap; i++ {
		v = mean + std*rnd.NormFloat64()
		if within(v, b.Min.Noise, b.Max.Noise) {
			return v
		}
	}
	return clip(v, b.Min.Noise, b.Max.Noise)
}

func within(v, lo, hi float64) bool { return v >= lo && v <= hi }

func clip(v, lo, hi float64) float64 {
	// NaN goes to the lower bound
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
