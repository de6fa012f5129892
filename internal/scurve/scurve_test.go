// Public domain.

package scurve_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

func ExampleHistogram_SaturationCount() {
	h := scurve.NewHistogram()
	h.Fill(100, 7)
	h.Fill(250, 3)
	h.Fill(251, 10)
	h.Fill(251, 5)
	h.Fill(255, 1)
	fmt.Println(h.SaturationCount(250), h.Total())
	// Output:
	// 16 26
}

// synthetic fills h with a noiseless S-curve.
func synthetic(h *scurve.Histogram, p scurve.Params) {
	scan(h, p, 1, nil)
}

// scan fills h with an S-curve sampled every step stimulus values.  With a
// non-nil src each point is a binomial draw of 2·Amplitude pulses.
func scan(h *scurve.Histogram, p scurve.Params, step int, src xrand.Source) (n int) {
	const pulses = 2 * scurve.Amplitude
	for x := 0; x < scurve.NBins; x += step {
		eff := p.Eval(float64(x)) / pulses
		hits := math.Round(eff * pulses)
		if src != nil && eff > 0 && eff < 1 {
			hits = distuv.Binomial{N: pulses, P: eff, Src: src}.Rand()
		}
		h.Fill(x, int(hits))
		n++
	}
	return
}

func newRand() *xrand.Rand {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(3)
	return rnd
}

func TestHistogramAccumulates(t *testing.T) {
	h := scurve.NewHistogram()
	assert.False(t, h.Alive())
	h.Fill(40, 300)
	h.Fill(40, 200)
	assert.True(t, h.Alive())
	assert.Equal(t, 500., h.Hits(40))
	h.Fill(60, 0)
	x, y := h.Points()
	// only sampled stimulus values
	assert.Equal(t, []float64{40, 60}, x)
	assert.Equal(t, []float64{500, 0}, y)
}

func TestNoSamples(t *testing.T) {
	f := scurve.New(scurve.DefaultConfig(), logr.Discard())
	r := f.FitChannel(scurve.NewHistogram(), newRand())
	assert.False(t, r.Alive)
	assert.False(t, r.Valid)
	assert.Zero(t, r.Trials)
}

func TestZeroCounts(t *testing.T) {
	h := scurve.NewHistogram()
	for x := 0; x < scurve.NBins; x += 5 {
		h.Fill(x, 0)
	}
	f := scurve.New(scurve.DefaultConfig(), logr.Discard())
	r := f.FitChannel(h, newRand())
	assert.True(t, r.Alive)
	assert.True(t, r.Silent)
	assert.False(t, r.Valid)
	assert.Equal(t, scurve.Params{}, r.Params)
	assert.Zero(t, r.Chi2)
	assert.Zero(t, r.Trials)
}

func TestTooFewPoints(t *testing.T) {
	h := scurve.NewHistogram()
	h.Fill(20, 0)
	h.Fill(60, 1000)
	h.Fill(100, 1000)
	r := scurve.New(scurve.DefaultConfig(), logr.Discard()).FitChannel(h, newRand())
	assert.True(t, r.Alive)
	assert.False(t, r.Silent)
	assert.False(t, r.Valid)
}

var fitCases = []struct {
	name     string
	truth    scurve.Params
	step     int
	noisy    bool
	tolThr   float64
	tolNoise float64
}{
	{"step 1", scurve.Params{Threshold: 40, Noise: 3}, 1, false, .5, .5},
	{"step 2", scurve.Params{Threshold: 40, Noise: 3}, 2, false, .5, .5},
	{"step 4", scurve.Params{Threshold: 40, Noise: 3}, 4, false, .5, .5},
	{"step 2 binomial", scurve.Params{Threshold: 40, Noise: 3}, 2, true, 1, .75},
	{"step 4 binomial", scurve.Params{Threshold: 80, Noise: 3}, 4, true, 1, .75},
}

func TestFitSynthetic(t *testing.T) {
	f := scurve.New(scurve.DefaultConfig(), logging.NewTestLogger())
	for _, c := range fitCases {
		h := scurve.NewHistogram()
		var src xrand.Source
		if c.noisy {
			src = newRand()
		}
		n := scan(h, c.truth, c.step, src)
		r := f.FitChannel(h, newRand())
		require.True(t, r.Valid, "%s: %+v", c.name, r)
		assert.InDelta(t, c.truth.Threshold, r.Threshold, c.tolThr, c.name)
		assert.InDelta(t, c.truth.Noise, r.Noise, c.tolNoise, c.name)
		assert.Equal(t, n-3, r.NDF, c.name)
		assert.Less(t, r.Chi2, float64(r.NDF), c.name)
		assert.LessOrEqual(t, r.Trials, 25, c.name)
	}
}

func TestDeterministic(t *testing.T) {
	var hs vfatmap.ChannelArray[*scurve.Histogram]
	for ch := 0; ch < 8; ch++ {
		hs[ch] = scurve.NewHistogram()
		synthetic(hs[ch], scurve.Params{
			Threshold: 30 + 4*float64(ch),
			Noise:     2 + float64(ch)/2,
		})
	}
	// two isolated points, whatever the fit makes of them
	hs[8] = scurve.NewHistogram()
	hs[8].Fill(100, 1000)
	hs[8].Fill(20, 1000)

	f := scurve.New(scurve.DefaultConfig(), logr.Discard())
	rs1 := f.FitChip(5, &hs, newRand())
	rs2 := f.FitChip(5, &hs, newRand())
	assert.Equal(t, rs1, rs2)
	assert.False(t, rs1[9].Alive)
}

func TestNoiseSeed(t *testing.T) {
	b := scurve.DefaultBounds
	rnd := newRand()
	for i := 0; i < 1000; i++ {
		v := b.NoiseSeed(rnd, 10, 5, 100)
		if v < 0 || v > 100 {
			t.Fatal("noise seed out of bounds:", v)
		}
	}
	// a distribution entirely out of bounds is clipped after the cap
	assert.Equal(t, 100., b.NoiseSeed(rnd, 1e6, 1, 3))
	assert.Equal(t, 0., b.NoiseSeed(rnd, -1e6, 1, 3))
}

func TestClip(t *testing.T) {
	p := scurve.DefaultBounds.Clip(scurve.Params{Threshold: -4, Noise: 200, Pedestal: 50})
	assert.Equal(t, scurve.Params{Threshold: .01, Noise: 100, Pedestal: 50}, p)
}

func TestModel(t *testing.T) {
	p := scurve.Params{Threshold: 50, Noise: 4, Pedestal: 10}
	assert.InDelta(t, scurve.Amplitude, p.Eval(50), 1e-9)
	assert.InDelta(t, 0, p.Eval(0), 1e-6)
	assert.InDelta(t, 2*scurve.Amplitude, p.Eval(255), 1e-6)
	// flat below the pedestal crossover
	assert.Equal(t, p.Eval(10), p.Eval(3))
	assert.InDelta(t, 0, p.EffPedestal(), 1e-6)

	hp := scurve.Params{Threshold: 50, Noise: 4, Pedestal: 60}
	assert.Greater(t, hp.EffPedestal(), .9)
}
