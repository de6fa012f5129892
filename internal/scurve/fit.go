// Public domain.

package scurve

import (
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// channelFit is the workspace for fitting one channel.  x and y are the
// histogram points, w the inverse of the per-point uncertainty √max(y, 1),
// so the sum of squared residuals is the chi-square.
type channelFit struct {
	x, y, w []float64
	empty   bool
	bounds  Bounds
}

func newChannelFit(h *Histogram, b Bounds) *channelFit {
	x, y := h.Points()
	w := make([]float64, len(y))
	for i, yi := range y {
		w[i] = 1 / math.Sqrt(math.Max(yi, 1))
	}
	return &channelFit{x: x, y: y, w: w, empty: h.Total() == 0, bounds: b}
}

// residuals evaluates the model at the parameters projected into bounds.
func (c *channelFit) residuals(dst, param []float64) {
	p := c.bounds.Clip(paramsOf(param))
	for i, x := range c.x {
		dst[i] = (p.Eval(x) - c.y[i]) * c.w[i]
	}
}

func (c *channelFit) jacobian(dst *mat.Dense, param []float64) {
	raw := paramsOf(param)
	p := c.bounds.Clip(raw)
	inThr, inNoise, inPed := c.bounds.inside(raw)
	for i, x := range c.x {
		dThr, dNoise, dPed := p.grad(x)
		if !inThr {
			dThr = 0
		}
		if !inNoise {
			dNoise = 0
		}
		if !inPed {
			dPed = 0
		}
		dst.Set(i, 0, dThr*c.w[i])
		dst.Set(i, 1, dNoise*c.w[i])
		dst.Set(i, 2, dPed*c.w[i])
	}
}

func (c *channelFit) chi2(p Params) float64 {
	r := make([]float64, len(c.x))
	c.residuals(r, p.slice())
	var s float64
	for _, ri := range r {
		s += ri * ri
	}
	return s
}

// LM tuning.  See lm.LMProblem.
const (
	lmTau  = 1e-3
	lmEps1 = 1e-8
	lmEps2 = 1e-10
)

// eval runs one Levenberg-Marquardt fit from start.  A failed solve, which lm
// reports by panicking, comes back as a non-converged trial.
func (c *channelFit) eval(start Params, iterations int) (t Trial) {
	t.Params = start
	t.Empty = c.empty
	t.NDF = len(c.x) - 3
	defer func() {
		if x := recover(); x != nil {
			t.Converged = false
			t.Chi2 = math.Inf(1)
		}
	}()
	res, err := lm.LM(lm.LMProblem{
		Dim:        3,
		Size:       len(c.x),
		Func:       c.residuals,
		Jac:        c.jacobian,
		InitParams: start.slice(),
		Tau:        lmTau,
		Eps1:       lmEps1,
		Eps2:       lmEps2,
	}, &lm.Settings{Iterations: iterations, ObjectiveTol: 1e-16})
	if err != nil {
		t.Chi2 = math.Inf(1)
		return
	}
	t.Params = c.bounds.Clip(paramsOf(res.X))
	t.Converged = res.Status == optimize.StepConvergence
	t.Chi2 = c.chi2(t.Params)
	return
}
