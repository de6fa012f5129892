// Public domain.

// Package scurve fits channel S-curves, hit count against injected charge,
// to an error function model.  Each channel is fitted by a bounded series of
// Levenberg-Marquardt trial fits from different starting points.
package scurve

import (
	"github.com/go-logr/logr"

	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// Rand is the random source for noise seeds.  It is satisfied by
// *golang.org/x/exp/rand.Rand.  Seeding per chip keeps results independent
// of the order chips are fitted in.
type Rand interface {
	NormFloat64() float64
	Seed(uint64)
}

// Config holds fit parameters.
type Config struct {
	Trials      int     // maximum trial fits per channel
	AcceptChi2  float64 // stop trials once the best chi-square is below this
	NoiseMean   float64 // noise seed distribution
	NoiseStd    float64
	RedrawCap   int     // noise seed redraws before clipping
	SatBoundary float64 // saturation counts stimulus strictly above this
	Iterations  int     // LM iteration limit per trial
	Bounds      Bounds
}

// DefaultConfig returns the standard fit parameters.
func DefaultConfig() Config {
	return Config{
		Trials:      25,
		AcceptChi2:  50,
		NoiseMean:   10,
		NoiseStd:    5,
		RedrawCap:   100,
		SatBoundary: 250,
		Iterations:  200,
		Bounds:      DefaultBounds,
	}
}

// Result is the fit result for one channel.  Parameters are meaningful
// only when Valid is true.  Alive false means no samples were seen at all
// and no fit was attempted.  Silent means samples were seen but none had a
// hit, also with no fit attempted.
type Result struct {
	Params
	Chi2     float64
	NDF      int
	SatCount int
	Trials   int
	Alive    bool
	Silent   bool
	Valid    bool
}

// Fitter fits channel histograms.
type Fitter struct {
	Config
	Log logr.Logger
}

// New creates a Fitter.
func New(cfg Config, log logr.Logger) *Fitter {
	return &Fitter{Config: cfg, Log: log}
}

// FitChannel fits one channel histogram.
func (f *Fitter) FitChannel(h *Histogram, rnd Rand) Result {
	r := Result{Alive: h.Alive()}
	if !r.Alive {
		return r
	}
	r.SatCount = h.SaturationCount(f.SatBoundary)
	if h.Total() == 0 {
		r.Silent = true
		return r
	}
	c := newChannelFit(h, f.Bounds)
	if len(c.x) <= 3 {
		// no degrees of freedom
		return r
	}
	ms := MultiStart{
		Trials:   f.Trials,
		Accept:   f.AcceptChi2,
		Schedule: f.seedSchedule(rnd),
	}
	best, ok, n := ms.Run(func(start Params) Trial {
		return c.eval(start, f.Iterations)
	})
	r.Trials = n
	if !ok {
		return r
	}
	r.Params = best.Params
	r.Chi2 = best.Chi2
	r.NDF = best.NDF
	r.Valid = true
	return r
}

// FitChip fits all channels of one chip.  Nil histograms are treated as
// channels with no samples.
func (f *Fitter) FitChip(chip int, hs *vfatmap.ChannelArray[*Histogram], rnd Rand) (rs vfatmap.ChannelArray[Result]) {
	log := f.Log.WithValues("chip", chip)
	for ch, h := range hs {
		if h == nil {
			continue
		}
		r := f.FitChannel(h, rnd)
		rs[ch] = r
		switch {
		case !r.Alive:
			log.V(logging.DEBUG).Info("dead channel, no fit", "channel", ch)
		case r.Silent:
			log.V(logging.DEBUG).Info("no hits, no fit", "channel", ch)
		case !r.Valid:
			log.V(logging.DEBUG).Info("no valid fit", "channel", ch,
				"trials", r.Trials, "total", h.Total())
		default:
			log.V(logging.TRACE).Info("fit", "channel", ch,
				"threshold", r.Threshold, "noise", r.Noise,
				"pedestal", r.Pedestal, "chi2", r.Chi2, "trials", r.Trials)
		}
	}
	return
}
