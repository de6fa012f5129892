// Public domain.

package mask

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// Confusion counts agreement of a computed mask with a reference mask.
// Positive means masked.
type Confusion struct {
	TP, FN, FP, TN int
}

// Compare tallies computed masks against reference masks.
func Compare(ref, got *vfatmap.ModuleArray[bool]) (c Confusion) {
	for chip := range ref {
		for ch, r := range ref[chip] {
			g := got[chip][ch]
			switch {
			case r && g:
				c.TP++
			case r:
				c.FN++
			case g:
				c.FP++
			default:
				c.TN++
			}
		}
	}
	return
}

// MCC is the Matthews correlation coefficient.  It is 0 when any marginal
// total is zero.
func (c Confusion) MCC() float64 {
	tp := float64(c.TP)
	fn := float64(c.FN)
	fp := float64(c.FP)
	tn := float64(c.TN)
	if d := (tp + fp) * (tp + fn) * (tn + fp) * (tn + fn); d > 0 {
		return (tp*tn - fp*fn) / math.Sqrt(d)
	}
	return 0
}

// Report writes the confusion table and MCC.
func (c Confusion) Report(w io.Writer) {
	fmt.Fprintln(w, "Total channels:    ", c.TP+c.FN+c.FP+c.TN)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "                      computed mask")
	fmt.Fprintln(w, "                    -----------------")
	fmt.Fprintln(w, "                     masked  unmasked")
	fmt.Fprintf(w, "Reference masked    %7d   %7d\n", c.TP, c.FN)
	fmt.Fprintf(w, "Reference unmasked  %7d   %7d\n", c.FP, c.TN)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Matthews correlation coefficient: %.2f\n", c.MCC())
}

// ReadList reads a list of masked channels, one "chip channel" pair per
// line.  A third column, if present, is a mask value and the channel is
// masked only if it is non-zero.  Lines that do not parse and addresses
// outside the module are counted in ignored.
func ReadList(r io.Reader) (m vfatmap.ModuleArray[bool], ignored int, err error) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		f := strings.Fields(s.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) < 2 {
			ignored++
			continue
		}
		chip, err1 := strconv.Atoi(f[0])
		ch, err2 := strconv.Atoi(f[1])
		if err1 != nil || err2 != nil ||
			!vfatmap.ValidChip(chip) || !vfatmap.ValidChannel(ch) {
			ignored++
			continue
		}
		masked := true
		if len(f) > 2 {
			v, err := strconv.ParseUint(f[2], 0, 8)
			if err != nil {
				ignored++
				continue
			}
			masked = v != 0
		}
		m[chip][ch] = masked
	}
	err = s.Err()
	return
}
