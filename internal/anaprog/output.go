// Public domain.

package anaprog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"go-hep.org/x/hep/hbook"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/plots"
	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/store"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// Output file names within the output directory.
const (
	ResultFile = "SCurveFitData.root"
	MaskFile   = "ChannelMask.txt"
	PlotDir    = "plots"
)

// Write writes the ROOT results, the channel mask list and, as configured,
// plots and a database record of the run.  module labels the run in the
// database.
func Write(ctx context.Context, a *Analysis, cfg config.Config, module string, log logr.Logger) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}
	recs := a.Records()
	fn := filepath.Join(cfg.OutDir, ResultFile)
	if err := rootio.WriteResults(fn, recs, a.chipHistograms(),
		[]*hbook.H2D{plots.MaskMap(&a.Masks)}); err != nil {
		return err
	}
	log.V(logging.VERBOSE).Info("results written", "file", fn, "records", len(recs))

	fn = filepath.Join(cfg.OutDir, MaskFile)
	if err := a.writeMaskList(fn); err != nil {
		return err
	}
	log.V(logging.VERBOSE).Info("mask list written", "file", fn)

	if cfg.Plots {
		if err := a.writePlots(filepath.Join(cfg.OutDir, PlotDir), log); err != nil {
			return err
		}
	}
	if cfg.DB != "" {
		s, err := store.Open(cfg.DB)
		if err != nil {
			return err
		}
		id, err := s.InsertRun(ctx, store.Run{
			Started: time.Now(),
			Input:   a.Input,
			Module:  module,
		}, recs)
		if cerr := s.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.DB, err)
		}
		log.Info("run recorded", "db", cfg.DB, "run", id)
	}
	return nil
}

// ThresholdName and NoiseName name the per-chip summary histograms.
func ThresholdName(chip int) string { return fmt.Sprintf("vfat%02d_threshold", chip) }
func NoiseName(chip int) string     { return fmt.Sprintf("vfat%02d_noise", chip) }

// chipHistograms returns threshold and noise distributions of the valid
// fits of each chip.
func (a *Analysis) chipHistograms() []*hbook.H1D {
	hs := make([]*hbook.H1D, 0, 2*vfatmap.NChips)
	for chip := range a.Fits {
		thr := hbook.NewH1D(scurve.NBins, -.5, scurve.NBins-.5)
		thr.Ann["name"] = ThresholdName(chip)
		thr.Ann["title"] = fmt.Sprintf("VFAT %d threshold", chip)
		noise := hbook.NewH1D(100, 0, 20)
		noise.Ann["name"] = NoiseName(chip)
		noise.Ann["title"] = fmt.Sprintf("VFAT %d noise", chip)
		for _, r := range a.Fits[chip] {
			if r.Valid {
				thr.Fill(r.Threshold, 1)
				noise.Fill(r.Noise, 1)
			}
		}
		hs = append(hs, thr, noise)
	}
	return hs
}

// writeMaskList writes one line per channel: chip, channel, final mask
// and the reason bits in hex.
func (a *Analysis) writeMaskList(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "vfatN\tvfatCH\tmask\treason")
	for chip := range a.Masks {
		for ch, c := range a.Masks[chip] {
			m := 0
			if c.Masked {
				m = 1
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t0x%02X\n", chip, ch, m, uint8(c.Reason))
		}
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (a *Analysis) writePlots(dir string, log logr.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var thr, noise []float64
	for chip := range a.Fits {
		live := false
		for _, h := range a.Hists[chip] {
			if h != nil && h.Alive() {
				live = true
				break
			}
		}
		if !live {
			continue
		}
		fn := filepath.Join(dir, fmt.Sprintf("vfat%02d_scurves.png", chip))
		if err := plots.SCurves(fn, chip, &a.Hists[chip], &a.Fits[chip]); err != nil {
			return err
		}
		log.V(logging.DEBUG).Info("plotted", "file", fn)
		for _, r := range a.Fits[chip] {
			if r.Valid {
				thr = append(thr, r.Threshold)
				noise = append(noise, r.Noise)
			}
		}
	}
	if err := plots.Distribution(filepath.Join(dir, "threshold.png"),
		"threshold", "threshold (DAC)", thr, 64); err != nil {
		return err
	}
	if err := plots.Distribution(filepath.Join(dir, "noise.png"),
		"noise", "noise (DAC)", noise, 50); err != nil {
		return err
	}
	return plots.HeatMap(filepath.Join(dir, "maskMap.png"),
		"mask reasons", "VFAT", "channel", plots.MaskMap(&a.Masks))
}
