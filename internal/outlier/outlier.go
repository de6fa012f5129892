// Public domain.

// Package outlier implements robust outlier tests over a vector of per-channel
// values.  Tests return a mask aligned index for index with their input.
package outlier

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidInput is returned for empty input or inputs of mismatched length.
var ErrInvalidInput = errors.New("outlier: invalid input")

// Tail selects which side of the distribution is rejected.
type Tail int

const (
	TwoSided Tail = iota
	HighTail      // reject values above the bulk
	LowTail       // reject values below the bulk
)

func (t Tail) String() string {
	switch t {
	case TwoSided:
		return "two-sided"
	case HighTail:
		return "high"
	case LowTail:
		return "low"
	}
	return fmt.Sprintf("Tail(%d)", int(t))
}

// ParseTail parses the names produced by Tail.String.
func ParseTail(s string) (Tail, error) {
	switch s {
	case "two-sided", "both", "":
		return TwoSided, nil
	case "high":
		return HighTail, nil
	case "low":
		return LowTail, nil
	}
	return 0, fmt.Errorf("unknown tail %q", s)
}

// Test is the contract shared by the outlier tests.
type Test interface {
	Outliers(data []float64) ([]bool, error)
}

// Defaults for the tests.
const (
	DefaultZThreshold = 3.5
	DefaultIQRFactor  = 1.5

	// scales MAD to the standard deviation of a normal distribution
	madScale = 0.6745
)

// MAD is the median absolute deviation test.  When the deviation measure is
// zero it falls back to the IQR test with the same tail.
type MAD struct {
	Threshold float64 // modified z-score cut, DefaultZThreshold if zero
	Tail      Tail
}

// Outliers implements Test.
func (m MAD) Outliers(data []float64) ([]bool, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidInput)
	}
	thr := m.Threshold
	if thr == 0 {
		thr = DefaultZThreshold
	}
	med := Median(data)
	dev := make([]float64, len(data))
	for i, x := range data {
		dev[i] = math.Abs(x - med)
	}
	mad := Median(dev)
	if mad == 0 {
		return IQR{Tail: m.Tail}.Outliers(data)
	}
	out := make([]bool, len(data))
	for i, x := range data {
		// signed, so one-sided rejection knows which side x is on
		z := madScale * (x - med) / mad
		switch m.Tail {
		case HighTail:
			out[i] = z > thr
		case LowTail:
			out[i] = z < -thr
		default:
			out[i] = math.Abs(z) > thr
		}
	}
	return out, nil
}

// IQR is the interquartile range test.
type IQR struct {
	K    float64 // fence factor, DefaultIQRFactor if zero
	Tail Tail
}

// Outliers implements Test.  Comparisons against the fences are strict, so
// constant data never produces outliers.
func (q IQR) Outliers(data []float64) ([]bool, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidInput)
	}
	k := q.K
	if k == 0 {
		k = DefaultIQRFactor
	}
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	q1 := percentileSorted(sorted, .25)
	q3 := percentileSorted(sorted, .75)
	iqr := q3 - q1
	lo := q1 - k*iqr
	hi := q3 + k*iqr
	out := make([]bool, len(data))
	for i, x := range data {
		switch q.Tail {
		case HighTail:
			out[i] = x > hi
		case LowTail:
			out[i] = x < lo
		default:
			out[i] = x < lo || x > hi
		}
	}
	return out, nil
}

// Combine returns a[i] || b[i] for each i.  The inputs must be the same
// length.
func Combine(a, b []bool) ([]bool, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: length %d vs %d", ErrInvalidInput, len(a), len(b))
	}
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] || b[i]
	}
	return out, nil
}

// Median returns the median of data, averaging the middle pair for an even
// count.  It returns NaN for empty data.
func Median(data []float64) float64 {
	return Percentile(data, .5)
}

// Percentile returns the p-th quantile, p in [0,1], of data using linear
// interpolation between closest ranks.  The input is not modified.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(pos-float64(lower))
}
