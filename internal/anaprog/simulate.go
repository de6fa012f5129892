// Public domain.

package anaprog

import (
	"fmt"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// SimOptions describe a synthetic S-curve scan.
type SimOptions struct {
	Chips int // chips 0 through Chips-1 are simulated
	Dead  int // channels per chip that never fire, the lowest numbered
	Hot   int // channels per chip with a raised threshold, the highest numbered
	Step  int // stimulus step
	Seed  uint64

	Threshold, ThresholdStd float64
	Noise, NoiseStd         float64
	HotOffset               float64
}

// DefaultSimOptions returns a one chip scan with healthy channels.
func DefaultSimOptions() SimOptions {
	return SimOptions{
		Chips:        1,
		Step:         1,
		Seed:         1,
		Threshold:    40,
		ThresholdStd: 2,
		Noise:        2,
		NoiseStd:     .2,
		HotOffset:    40,
	}
}

// validate checks o for a scan that can be generated.
func (o SimOptions) validate() error {
	switch {
	case o.Chips < 1 || o.Chips > vfatmap.NChips:
		return fmt.Errorf("chips must be in 1..%d, got %d", vfatmap.NChips, o.Chips)
	case o.Dead < 0 || o.Hot < 0 || o.Dead+o.Hot > vfatmap.NChannels:
		return fmt.Errorf("dead %d and hot %d channels exceed a chip", o.Dead, o.Hot)
	case o.Step < 1:
		return fmt.Errorf("step must be at least 1, got %d", o.Step)
	}
	return nil
}

// Simulate generates scan samples.  Each (stimulus, channel) point is a
// binomial draw of 2·Amplitude pulses with the model efficiency as the hit
// probability.
func Simulate(o SimOptions) ([]rootio.Sample, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(o.Seed)
	thr := distuv.Normal{Mu: o.Threshold, Sigma: o.ThresholdStd, Src: rnd}
	noise := distuv.Normal{Mu: o.Noise, Sigma: o.NoiseStd, Src: rnd}

	var samples []rootio.Sample
	for chip := 0; chip < o.Chips; chip++ {
		for ch := 0; ch < o.Dead; ch++ {
			for s := 0; s < scurve.NBins; s += o.Step {
				samples = append(samples, rootio.Sample{
					Chip: int32(chip), Channel: int32(ch), Stimulus: int32(s),
				})
			}
		}
		for ch := o.Dead; ch < vfatmap.NChannels; ch++ {
			p := scurve.Params{Threshold: thr.Rand(), Noise: noise.Rand()}
			if p.Noise < .5 {
				p.Noise = .5
			}
			if ch >= vfatmap.NChannels-o.Hot {
				p.Threshold += o.HotOffset
			}
			for s := 0; s < scurve.NBins; s += o.Step {
				samples = append(samples, rootio.Sample{
					Chip:     int32(chip),
					Channel:  int32(ch),
					Stimulus: int32(s),
					Hits:     int32(pulses(p.Eval(float64(s))/(2*scurve.Amplitude), rnd)),
				})
			}
		}
	}
	return samples, nil
}

// pulses draws the hit count of 2·Amplitude pulses at efficiency eff.
func pulses(eff float64, src xrand.Source) float64 {
	const n = 2 * scurve.Amplitude
	switch {
	case eff <= 0:
		return 0
	case eff >= 1:
		return n
	}
	return distuv.Binomial{N: n, P: eff, Src: src}.Rand()
}
