// Public domain.

package rootio

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/root"
	"go-hep.org/x/hep/groot/rtree"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"

	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/scurve"
)

// ResultTree is the name of the output tree.
const ResultTree = "scurveFitTree"

// Record is one entry of the output tree, the result for one channel.
type Record struct {
	Chip      int32   `groot:"vfatN"`
	Channel   int32   `groot:"vfatCH"`
	Strip     int32   `groot:"strip"`
	Threshold float64 `groot:"threshold"`
	Noise     float64 `groot:"noise"`
	Pedestal  float64 `groot:"pedestal"`
	Chi2      float64 `groot:"chi2"`
	NDF       int32   `groot:"ndf"`
	SatCount  int32   `groot:"satCount"`
	Mask      uint8   `groot:"mask"` // mask.Reason bits
	MaskDead  bool    `groot:"maskDead"`
	MaskHot   bool    `groot:"maskHot"`
	Valid     bool    `groot:"valid"`
}

// NewRecord builds the output record of a channel.
func NewRecord(chip, ch, strip int, r scurve.Result, c mask.Channel) Record {
	return Record{
		Chip:      int32(chip),
		Channel:   int32(ch),
		Strip:     int32(strip),
		Threshold: r.Threshold,
		Noise:     r.Noise,
		Pedestal:  r.Pedestal,
		Chi2:      r.Chi2,
		NDF:       int32(r.NDF),
		SatCount:  int32(r.SatCount),
		Mask:      uint8(c.Reason),
		MaskDead:  c.Dead,
		MaskHot:   c.Hot,
		Valid:     r.Valid,
	}
}

// Reason returns the mask reason bits of the record.
func (r Record) Reason() mask.Reason { return mask.Reason(r.Mask) }

// Masked is the final mask of the record.
func (r Record) Masked() bool { return r.MaskDead || r.MaskHot }

// WriteResults creates a ROOT file holding the result tree and the given
// histograms, which must be named.
func WriteResults(fn string, recs []Record, h1s []*hbook.H1D, h2s []*hbook.H2D) error {
	f, err := groot.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	var rec Record
	w, err := rtree.NewWriter(f, ResultTree, rtree.WriteVarsFromStruct(&rec),
		rtree.WithTitle("VFAT3 S-curve fit results"))
	if err != nil {
		return fmt.Errorf("could not create tree writer: %w", err)
	}
	defer w.Close()
	for _, rec = range recs {
		if _, err = w.Write(); err != nil {
			return fmt.Errorf("could not write record: %w", err)
		}
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("could not write tree: %w", err)
	}

	put := func(name string, obj root.Object) error {
		if name == "" {
			return fmt.Errorf("%s: unnamed histogram", fn)
		}
		if err := f.Put(name, obj); err != nil {
			return fmt.Errorf("could not write histogram %s: %w", name, err)
		}
		return nil
	}
	for _, h := range h1s {
		if err = put(h.Name(), rootcnv.FromH1D(h)); err != nil {
			return err
		}
	}
	for _, h := range h2s {
		if err = put(h.Name(), rootcnv.FromH2D(h)); err != nil {
			return err
		}
	}
	return f.Close()
}

// ReadResults reads back the result tree of a file written by WriteResults.
func ReadResults(fn string) ([]Record, error) {
	f, err := groot.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	obj, err := f.Get(ResultTree)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("%s: %s is a %s, not a tree", fn, ResultTree, obj.Class())
	}
	var rec Record
	r, err := rtree.NewReader(t, rtree.ReadVarsFromStruct(&rec))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	defer r.Close()
	recs := make([]Record, 0, t.Entries())
	err = r.Read(func(rtree.RCtx) error {
		recs = append(recs, rec)
		return nil
	})
	return recs, err
}

// ReadHistogram reads a named 1-dim histogram from a file.
func ReadHistogram(fn, name string) (*hbook.H1D, error) {
	f, err := groot.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	obj, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	h, ok := obj.(rhist.H1)
	if !ok {
		return nil, fmt.Errorf("%s: %s is a %s, not a 1-dim histogram", fn, name, obj.Class())
	}
	return rootcnv.H1D(h), nil
}
