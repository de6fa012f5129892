// Public domain.

package mask_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"

	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// chip builds a chip of well behaved channels with a spread of thresholds.
func chip() *vfatmap.ChannelArray[scurve.Result] {
	var rs vfatmap.ChannelArray[scurve.Result]
	for ch := range rs {
		rs[ch] = scurve.Result{
			Params: scurve.Params{
				Threshold: 30 + float64(ch%7),
				Noise:     2 + float64(ch%3)*.1,
				Pedestal:  0,
			},
			Chi2:  20,
			NDF:   253,
			Alive: true,
			Valid: true,
		}
	}
	return &rs
}

func TestClassifyClean(t *testing.T) {
	cs, err := mask.Classify(chip(), mask.DefaultConfig())
	require.NoError(t, err)
	for ch, c := range cs {
		assert.Equal(t, mask.NotMasked, c.Reason, "channel %d", ch)
		assert.False(t, c.Masked)
	}
}

func TestClassify(t *testing.T) {
	rs := chip()
	rs[3].Threshold = 200 // hot, high tail of the trim target
	rs[10].Alive, rs[10].Valid = false, false
	rs[10].Params = scurve.Params{}
	rs[11].Valid = false
	rs[11].Params = scurve.Params{}
	rs[12].Threshold, rs[12].Pedestal = 8, 8
	rs[13].Noise = 25
	rs[14].Pedestal = 40 // flat above half height below 40

	cs, err := mask.Classify(rs, mask.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, mask.HotChannel, cs[3].Reason)
	assert.True(t, cs[3].Hot && cs[3].Masked && !cs[3].Dead)

	assert.Equal(t, mask.DeadChannel, cs[10].Reason)
	assert.True(t, cs[10].Dead && cs[10].Masked)

	assert.Equal(t, mask.FitFailed, cs[11].Reason)
	assert.False(t, cs[11].Masked)

	assert.True(t, cs[12].Reason.Has(mask.DeadChannel))
	assert.True(t, cs[12].Dead && cs[12].Masked)

	assert.True(t, cs[13].Reason.Has(mask.HighNoise))
	assert.True(t, cs[14].Reason.Has(mask.HighEffPedestal))

	for ch, c := range cs {
		assert.Equal(t, c.Dead || c.Hot, c.Masked, "channel %d", ch)
		assert.True(t, c.Reason.Valid())
	}
}

// A dead fit signature is dead even when the statistical test would not flag
// it, and is kept out of the test data.
func TestDeadWinsOverTest(t *testing.T) {
	rs := chip()
	rs[0].Threshold, rs[0].Pedestal = 8, 8
	cfg := mask.DefaultConfig()
	cfg.ZScore = 1e9 // nothing is hot
	cs, err := mask.Classify(rs, cfg)
	require.NoError(t, err)
	assert.True(t, cs[0].Dead)
	assert.False(t, cs[0].Hot)
	assert.True(t, cs[0].Masked)
}

func TestClassifyNothingAlive(t *testing.T) {
	var rs vfatmap.ChannelArray[scurve.Result]
	cs, err := mask.Classify(&rs, mask.DefaultConfig())
	require.NoError(t, err)
	for _, c := range cs {
		assert.True(t, c.Dead)
		assert.Equal(t, mask.DeadChannel, c.Reason)
	}
}

// A channel scanned at every step without a single hit is dead, not a
// failed fit.
func TestSilentChannelDead(t *testing.T) {
	var hs vfatmap.ChannelArray[*scurve.Histogram]
	hs[0] = scurve.NewHistogram()
	for x := 0; x < scurve.NBins; x++ {
		hs[0].Fill(x, 0)
	}
	rs := scurve.New(scurve.DefaultConfig(), logr.Discard()).FitChip(0, &hs, xrand.New(&xrand.PCGSource{}))
	require.True(t, rs[0].Alive)
	require.True(t, rs[0].Silent)

	cs, err := mask.Classify(&rs, mask.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, cs[0].Dead)
	assert.True(t, cs[0].Masked)
	assert.Equal(t, mask.DeadChannel, cs[0].Reason)
	assert.True(t, mask.IsDead(scurve.Result{Alive: true, Silent: true}))
}
