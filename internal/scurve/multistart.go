// Public domain.

package scurve

import "math"

// Trial is the outcome of one fit from one starting point.
type Trial struct {
	Params
	Chi2      float64
	NDF       int
	Converged bool
	Empty     bool // the sample had no hits
}

// ValidTrial is the default validity predicate: the fit converged on a
// non-empty sample with a finite positive chi-square and positive degrees of
// freedom.
func ValidTrial(t Trial) bool {
	return t.Converged && !t.Empty && t.NDF > 0 &&
		t.Chi2 > 0 && !math.IsInf(t.Chi2, 0) && !math.IsNaN(t.Chi2)
}

// MultiStart runs a bounded series of trial fits from scheduled starting
// points and keeps the valid trial with the lowest chi-square.
type MultiStart struct {
	Trials   int                // maximum number of trials
	Accept   float64            // stop early once the best chi-square is below this
	Schedule func(i int) Params // starting point of trial i
	Valid    func(Trial) bool   // ValidTrial if nil
}

// Run calls eval for each scheduled start.  It returns the best valid trial,
// whether any trial was valid, and the number of trials run.
func (m *MultiStart) Run(eval func(start Params) Trial) (best Trial, ok bool, n int) {
	valid := m.Valid
	if valid == nil {
		valid = ValidTrial
	}
	best.Chi2 = math.MaxFloat64
	for n < m.Trials {
		t := eval(m.Schedule(n))
		n++
		if !valid(t) {
			continue
		}
		if t.Chi2 < best.Chi2 {
			best = t
			ok = true
		}
		if best.Chi2 < m.Accept {
			break
		}
	}
	if !ok {
		best = Trial{}
	}
	return
}

// seedSchedule is the standard schedule: threshold and pedestal seeds step
// up by 8 with the trial index so early trials probe low values, and the
// noise seed is drawn at random.
func (f *Fitter) seedSchedule(rnd Rand) func(int) Params {
	return func(i int) Params {
		s := float64(8 + 8*i)
		return Params{
			Threshold: s,
			Noise: f.Bounds.NoiseSeed(rnd,
				f.NoiseMean, f.NoiseStd, f.RedrawCap),
			Pedestal: s,
		}
	}
}
