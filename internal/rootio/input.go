// Public domain.

// Package rootio reads scan data from and writes analysis results to ROOT
// files.
package rootio

import (
	"fmt"

	"github.com/go-logr/logr"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/gem-daq/vfat3ana/internal/logging"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// Sample is one entry of an S-curve scan tree.
type Sample struct {
	Chip     int32 `groot:"vfatN"`
	Channel  int32 `groot:"vfatCH"`
	Stimulus int32 `groot:"vcal"`
	Hits     int32 `groot:"Nhits"`
}

// Histograms holds one S-curve histogram per channel of a module.
type Histograms = vfatmap.ModuleArray[*scurve.Histogram]

// NewHistograms allocates an empty histogram for every channel.
func NewHistograms() *Histograms {
	var hs Histograms
	for chip := range hs {
		for ch := range hs[chip] {
			hs[chip][ch] = scurve.NewHistogram()
		}
	}
	return &hs
}

// ReadStats summarizes a scan tree read.
type ReadStats struct {
	Entries int64
	Skipped int64 // entries with an address outside the module
}

// ReadSamples calls fn for each entry of the named tree.
func ReadSamples(fn, tree string, f func(Sample) error) (n int64, err error) {
	rf, err := groot.Open(fn)
	if err != nil {
		return 0, err
	}
	defer rf.Close()
	obj, err := rf.Get(tree)
	if err != nil {
		return 0, err
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		return 0, fmt.Errorf("%s: %s is a %s, not a tree", fn, tree, obj.Class())
	}
	var s Sample
	r, err := rtree.NewReader(t, rtree.ReadVarsFromStruct(&s))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	defer r.Close()
	err = r.Read(func(ctx rtree.RCtx) error {
		n++
		return f(s)
	})
	return n, err
}

// ReadScan accumulates the scan tree of a file into per-channel histograms.
// Entries addressing a chip or channel outside the module are skipped and
// counted.
func ReadScan(fn, tree string, log logr.Logger) (*Histograms, ReadStats, error) {
	hs := NewHistograms()
	var st ReadStats
	n, err := ReadSamples(fn, tree, func(s Sample) error {
		chip, ch := int(s.Chip), int(s.Channel)
		if !vfatmap.ValidChip(chip) || !vfatmap.ValidChannel(ch) {
			if st.Skipped == 0 {
				log.Info("entry outside module skipped", "chip", chip, "channel", ch)
			}
			st.Skipped++
			return nil
		}
		hs[chip][ch].Fill(int(s.Stimulus), int(s.Hits))
		return nil
	})
	st.Entries = n
	if err != nil {
		return nil, st, err
	}
	log.V(logging.DEBUG).Info("scan read", "file", fn, "entries", st.Entries, "skipped", st.Skipped)
	return hs, st, nil
}

// WriteSamples writes samples as a scan tree.
func WriteSamples(fn, tree string, samples []Sample) error {
	f, err := groot.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()
	var s Sample
	w, err := rtree.NewWriter(f, tree, rtree.WriteVarsFromStruct(&s),
		rtree.WithTitle("VFAT3 S-curve scan"))
	if err != nil {
		return fmt.Errorf("could not create tree writer: %w", err)
	}
	defer w.Close()
	for _, s = range samples {
		if _, err = w.Write(); err != nil {
			return fmt.Errorf("could not write entry: %w", err)
		}
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("could not write tree: %w", err)
	}
	return f.Close()
}
