// Public domain.

package anaprog

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

func TestFitChipsOrder(t *testing.T) {
	hs := rootio.NewHistograms()
	cfg := config.Default()
	cfg.Workers = 5
	var got []int
	err := fitChips(cfg, hs, logging.NewTestLogger(), func(r *chipResult) error {
		got = append(got, r.chip)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, vfatmap.NChips)
	for i, chip := range got {
		if chip != i {
			t.Fatalf("result %d is chip %d", i, chip)
		}
	}
}

func TestFitChipsStops(t *testing.T) {
	stop := errors.New("stop")
	cfg := config.Default()
	cfg.Workers = 3
	n := 0
	err := fitChips(cfg, rootio.NewHistograms(), logging.NewTestLogger(), func(r *chipResult) error {
		n++
		if r.chip == 4 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 5, n)
}

func TestSummarize(t *testing.T) {
	var fits vfatmap.ChannelArray[scurve.Result]
	var masks vfatmap.ChannelArray[mask.Channel]
	for ch, thr := range []float64{30, 31, 35} {
		fits[ch] = scurve.Result{
			Params: scurve.Params{Threshold: thr, Noise: float64(ch + 1)},
			Alive:  true,
			Valid:  true,
		}
	}
	fits[3].Alive = true
	masks[3] = mask.Channel{Reason: mask.FitFailed}
	masks[2] = mask.Channel{Reason: mask.HotChannel, Hot: true, Masked: true}
	for ch := 4; ch < vfatmap.NChannels; ch++ {
		masks[ch] = mask.Channel{Reason: mask.DeadChannel, Dead: true, Masked: true}
	}
	s := summarize(7, &fits, &masks)
	assert.Equal(t, 4, s.Live)
	assert.Equal(t, 3, s.Valid)
	assert.Equal(t, vfatmap.NChannels-4, s.Dead)
	assert.Equal(t, 1, s.Hot)
	assert.Equal(t, vfatmap.NChannels-3, s.Masked)
	assert.Equal(t, 31., s.MedianThreshold)
	assert.Equal(t, 2., s.MedianNoise)
	assert.Equal(t, "   7     4     3   124     1    125      31.00      2.65       2.00", s.String())

	empty := summarize(0, &vfatmap.ChannelArray[scurve.Result]{}, &masks)
	assert.True(t, math.IsNaN(empty.MedianThreshold))
	assert.Contains(t, empty.String(), " - ")
}

func TestModuleNames(t *testing.T) {
	names, err := moduleNames([]string{"scans/GE11-1.root", "GE11-2.root", "x/y/GE11-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GE11-1", "GE11-2", "GE11-3"}, names)

	_, err = moduleNames([]string{"run1/GE11-1.root", "GE11-2.root", "run2/GE11-1.root"})
	assert.ErrorContains(t, err, "GE11-1")
}
