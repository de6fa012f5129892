// Public domain.

package scurve

import "math"

// Amplitude is the fixed half height of the S-curve.  The model ranges from
// 0 to 2*Amplitude, the hit count of a fully efficient channel.
const Amplitude = 500

// Params are the free parameters of the S-curve model.
type Params struct {
	Threshold float64
	Noise     float64
	Pedestal  float64 // stimulus below which the response is flat
}

func (p Params) slice() []float64 { return []float64{p.Threshold, p.Noise, p.Pedestal} }

func paramsOf(s []float64) Params { return Params{s[0], s[1], s[2]} }

// noise values below this are evaluated as this, keeping the erf argument
// finite at x == threshold.
const noiseFloor = 1e-6

// Eval computes the model at stimulus x:
//
//	A·erf((max(ped, x) − thr) / (√2·noise)) + A
func (p Params) Eval(x float64) float64 {
	return Amplitude*math.Erf(p.arg(x)) + Amplitude
}

func (p Params) arg(x float64) float64 {
	return (math.Max(p.Pedestal, x) - p.Threshold) /
		(math.Sqrt2 * math.Max(p.Noise, noiseFloor))
}

// EffPedestal is the fraction of full response the model gives below the
// pedestal crossover.
func (p Params) EffPedestal() float64 {
	return p.Eval(p.Pedestal) / (2 * Amplitude)
}

// grad computes the partial derivatives of Eval with respect to threshold,
// noise and pedestal at x.
func (p Params) grad(x float64) (dThr, dNoise, dPed float64) {
	n := math.Max(p.Noise, noiseFloor)
	u := p.arg(x)
	dfdu := Amplitude * 2 / math.SqrtPi * math.Exp(-u*u)
	dThr = -dfdu / (math.Sqrt2 * n)
	if p.Noise > noiseFloor {
		dNoise = -dfdu * u / n
	}
	if x < p.Pedestal {
		dPed = dfdu / (math.Sqrt2 * n)
	}
	return
}
