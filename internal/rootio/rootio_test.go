// Public domain.

package rootio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"

	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/scurve"
)

func TestScanRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "scan.root")
	samples := []rootio.Sample{
		{Chip: 0, Channel: 0, Stimulus: 10, Hits: 3},
		{Chip: 0, Channel: 0, Stimulus: 10, Hits: 4},
		{Chip: 23, Channel: 127, Stimulus: 251, Hits: 1000},
		{Chip: 5, Channel: 9, Stimulus: 0, Hits: 0},
		{Chip: 24, Channel: 0, Stimulus: 10, Hits: 1},
		{Chip: 1, Channel: 128, Stimulus: 10, Hits: 1},
	}
	require.NoError(t, rootio.WriteSamples(fn, "scurveTree", samples))

	hs, st, err := rootio.ReadScan(fn, "scurveTree", logging.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, rootio.ReadStats{Entries: 6, Skipped: 2}, st)
	assert.Equal(t, 7., hs[0][0].Hits(10))
	assert.Equal(t, 1000, hs[23][127].SaturationCount(250))
	assert.True(t, hs[5][9].Alive())
	assert.Zero(t, hs[5][9].Total())
	assert.False(t, hs[5][10].Alive())

	_, _, err = rootio.ReadScan(fn, "noSuchTree", logging.NewTestLogger())
	assert.Error(t, err)
}

func TestResultsRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "fit.root")
	r := scurve.Result{
		Params:   scurve.Params{Threshold: 41.5, Noise: 2.25, Pedestal: 3},
		Chi2:     12.5,
		NDF:      253,
		SatCount: 17,
		Alive:    true,
		Valid:    true,
	}
	c := mask.Channel{Reason: mask.HotChannel | mask.HighNoise, Hot: true, Masked: true}
	recs := []rootio.Record{
		rootio.NewRecord(2, 7, 120, r, c),
		rootio.NewRecord(2, 8, 119, scurve.Result{}, mask.Channel{Reason: mask.DeadChannel, Dead: true, Masked: true}),
	}
	h := hbook.NewH1D(10, 0, 100)
	h.Fill(41.5, 1)
	h.Ann["name"] = "threshold_vfat2"
	m := hbook.NewH2D(24, -.5, 23.5, 128, -.5, 127.5)
	m.Fill(2, 7, 9)
	m.Ann["name"] = "maskMap"
	require.NoError(t, rootio.WriteResults(fn, recs, []*hbook.H1D{h}, []*hbook.H2D{m}))

	got, err := rootio.ReadResults(fn)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
	assert.Equal(t, mask.HotChannel|mask.HighNoise, got[0].Reason())
	assert.True(t, got[1].Masked())

	hh, err := rootio.ReadHistogram(fn, "threshold_vfat2")
	require.NoError(t, err)
	assert.Equal(t, 1., hh.SumW())

	_, err = rootio.ReadHistogram(fn, rootio.ResultTree)
	assert.Error(t, err)
}

func TestUnnamedHistogram(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "fit.root")
	err := rootio.WriteResults(fn, nil, []*hbook.H1D{hbook.NewH1D(1, 0, 1)}, nil)
	assert.Error(t, err)
}
