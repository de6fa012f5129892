// Public domain.

package anaprog

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// Analysis holds the results of analyzing one scan file.
type Analysis struct {
	Input     string
	Read      rootio.ReadStats
	Hists     *rootio.Histograms
	Fits      vfatmap.ModuleArray[scurve.Result]
	Masks     vfatmap.ModuleArray[mask.Channel]
	Summaries vfatmap.ChipArray[ChipSummary]
	Map       *vfatmap.ChannelMap
}

// Analyze reads a scan file, fits and classifies every channel.  A summary
// line per chip is written to w in chip order as chips complete.
func Analyze(cfg config.Config, input string, w io.Writer, log logr.Logger) (*Analysis, error) {
	a := &Analysis{Input: input, Map: vfatmap.Identity()}
	if cfg.ChannelMap != "" {
		m, err := vfatmap.ReadChannelMapFile(cfg.ChannelMap)
		if err != nil {
			return nil, err
		}
		a.Map = m
	}
	var err error
	a.Hists, a.Read, err = rootio.ReadScan(input, cfg.Tree, log)
	if err != nil {
		return nil, err
	}
	if a.Read.Skipped > 0 {
		log.Info("entries outside module skipped", "count", a.Read.Skipped)
	}

	// column headings, delayed until now to avoid printing headings only to
	// terminate with an error if reading fails.
	printHeadings(w)
	err = fitChips(cfg, a.Hists, log, func(r *chipResult) error {
		a.Fits[r.chip] = r.fits
		a.Masks[r.chip] = r.masks
		s := summarize(r.chip, &r.fits, &r.masks)
		a.Summaries[r.chip] = s
		log.V(logging.DEBUG).Info("chip done", "chip", r.chip,
			"valid", s.Valid, "masked", s.Masked)
		_, err := fmt.Fprintln(w, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Records returns the output records of all channels in chip, channel
// order.
func (a *Analysis) Records() []rootio.Record {
	recs := make([]rootio.Record, 0, vfatmap.NTotal)
	for chip := range a.Fits {
		for ch, r := range a.Fits[chip] {
			recs = append(recs, rootio.NewRecord(chip, ch,
				a.Map.Strip[chip][ch], r, a.Masks[chip][ch]))
		}
	}
	return recs
}

// Masked returns the final mask of each channel.
func (a *Analysis) Masked() *vfatmap.ModuleArray[bool] {
	var m vfatmap.ModuleArray[bool]
	for chip := range a.Masks {
		for ch, c := range a.Masks[chip] {
			m[chip][ch] = c.Masked
		}
	}
	return &m
}
