// Public domain.

package mask

import (
	"github.com/gem-daq/vfat3ana/internal/outlier"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// DeadSignature is the threshold and pedestal of a fit that never left the
// first trial's starting point.
const DeadSignature = 8

// Config holds classification parameters.
type Config struct {
	ZTrim     float64 // noise multiple subtracted from threshold for the trim target
	ZScore    float64 // modified z-score cut of the hot channel test
	Tail      outlier.Tail
	HighNoise float64 // noise above this is flagged HighNoise
	MaxEffPed float64 // effective pedestal fraction above this is flagged
}

// DefaultConfig returns the standard classification parameters.
func DefaultConfig() Config {
	return Config{
		ZTrim:     4,
		ZScore:    outlier.DefaultZThreshold,
		Tail:      outlier.HighTail,
		HighNoise: 20,
		MaxEffPed: .05,
	}
}

// Channel is the classification of one channel.
type Channel struct {
	Reason     Reason
	Dead, Hot  bool
	Masked     bool    // Dead || Hot
	TrimTarget float64 // threshold - ZTrim*noise, valid fits only
}

// IsDead reports the degenerate fit signature.  Channels never seen and
// channels scanned without a single hit are dead as well, having no fit at
// all.
func IsDead(r scurve.Result) bool {
	if !r.Alive || r.Silent {
		return true
	}
	return r.Threshold == DeadSignature && r.Pedestal == DeadSignature
}

// TrimTarget is the value the hot channel test runs on.
func (c Config) TrimTarget(r scurve.Result) float64 {
	return r.Threshold - c.ZTrim*r.Noise
}

// Classify classifies the channels of one chip.
//
// Dead channels are found first and independent of the statistical test,
// which then runs on the trim targets of live, validly fitted, non-dead
// channels only.  The final mask is dead OR hot.
func Classify(rs *vfatmap.ChannelArray[scurve.Result], cfg Config) (cs vfatmap.ChannelArray[Channel], err error) {
	dead := make([]bool, len(rs))
	var data []float64
	var ix []int // channel of each data value
	for ch, r := range rs {
		c := &cs[ch]
		dead[ch] = IsDead(r)
		c.Dead = dead[ch]
		if c.Dead {
			c.Reason |= DeadChannel
		}
		if r.Alive && !r.Silent && !r.Valid {
			c.Reason |= FitFailed
		}
		if !r.Valid {
			continue
		}
		c.TrimTarget = cfg.TrimTarget(r)
		if r.Noise > cfg.HighNoise {
			c.Reason |= HighNoise
		}
		if r.EffPedestal() > cfg.MaxEffPed {
			c.Reason |= HighEffPedestal
		}
		if !c.Dead {
			data = append(data, c.TrimTarget)
			ix = append(ix, ch)
		}
	}
	hot := make([]bool, len(rs))
	if len(data) > 0 {
		out, err := outlier.MAD{Threshold: cfg.ZScore, Tail: cfg.Tail}.Outliers(data)
		if err != nil {
			return cs, err
		}
		for i, o := range out {
			hot[ix[i]] = o
		}
	}
	masked, err := outlier.Combine(dead, hot)
	if err != nil {
		return cs, err
	}
	for ch := range cs {
		c := &cs[ch]
		c.Hot = hot[ch]
		if c.Hot {
			c.Reason |= HotChannel
		}
		c.Masked = masked[ch]
	}
	return cs, nil
}
