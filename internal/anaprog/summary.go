// Public domain.

package anaprog

import (
	"fmt"
	"io"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// ChipSummary counts and averages over the channels of one chip.
type ChipSummary struct {
	Chip                         int
	Live, Valid                  int
	Dead, Hot, Masked            int
	MedianThreshold, MedianNoise float64 // over valid fits, NaN if none
	StdThreshold                 float64
}

func summarize(chip int, fits *vfatmap.ChannelArray[scurve.Result], masks *vfatmap.ChannelArray[mask.Channel]) ChipSummary {
	s := ChipSummary{Chip: chip}
	var thr, noise []float64
	for ch, r := range fits {
		m := masks[ch]
		if r.Alive {
			s.Live++
		}
		if r.Valid {
			s.Valid++
			thr = append(thr, r.Threshold)
			noise = append(noise, r.Noise)
		}
		if m.Dead {
			s.Dead++
		}
		if m.Hot {
			s.Hot++
		}
		if m.Masked {
			s.Masked++
		}
	}
	s.MedianThreshold, s.MedianNoise, s.StdThreshold = math.NaN(), math.NaN(), math.NaN()
	if len(thr) > 0 {
		slices.Sort(thr)
		s.MedianThreshold = stat.Quantile(.5, stat.Empirical, thr, nil)
		slices.Sort(noise)
		s.MedianNoise = stat.Quantile(.5, stat.Empirical, noise, nil)
		if len(thr) > 1 {
			_, s.StdThreshold = stat.MeanStdDev(thr, nil)
		}
	}
	return s
}

func printHeadings(w io.Writer) {
	fmt.Fprintln(w, "VFAT  Live Valid  Dead   Hot Masked   Thr(med)  Thr(std) Noise(med)")
}

func (s ChipSummary) String() string {
	return fmt.Sprintf("%4d %5d %5d %5d %5d %6d %10s %9s %10s",
		s.Chip, s.Live, s.Valid, s.Dead, s.Hot, s.Masked,
		num(s.MedianThreshold), num(s.StdThreshold), num(s.MedianNoise))
}

func num(x float64) string {
	if math.IsNaN(x) {
		return "-"
	}
	return fmt.Sprintf("%.2f", x)
}
