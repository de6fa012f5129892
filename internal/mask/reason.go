// Public domain.

// Package mask classifies channels from their S-curve fit results and
// records why a channel is masked.
package mask

import (
	"fmt"
	"strings"
)

// Reason is a set of channel mask reasons.  Bit values appear in output
// files and must not change.
type Reason uint8

const (
	HotChannel      Reason = 0x01
	FitFailed       Reason = 0x02
	DeadChannel     Reason = 0x04
	HighNoise       Reason = 0x08
	HighEffPedestal Reason = 0x10

	NotMasked Reason = 0
)

// RList lists the named reasons in bit order.
var RList = []struct {
	Flag Reason
	Name string
}{
	{HotChannel, "HotChannel"},
	{FitFailed, "FitFailed"},
	{DeadChannel, "DeadChannel"},
	{HighNoise, "HighNoise"},
	{HighEffPedestal, "HighEffPedestal"},
}

const allReasons = HotChannel | FitFailed | DeadChannel | HighNoise | HighEffPedestal

// Valid reports whether r is made up of named flags only.
func (r Reason) Valid() bool {
	return r&^allReasons == 0
}

// Has reports whether all bits of f are set in r.
func (r Reason) Has(f Reason) bool {
	return r&f == f
}

// Flags returns the named flags set in r, in bit order.
func (r Reason) Flags() []Reason {
	var fs []Reason
	for _, c := range RList {
		if r&c.Flag != 0 {
			fs = append(fs, c.Flag)
		}
	}
	return fs
}

// String lists the names of the flags set in r joined by " | ".
// NotMasked prints as "NotMasked".  Unknown bits are shown in hex.
func (r Reason) String() string {
	if r == NotMasked {
		return "NotMasked"
	}
	var names []string
	for _, c := range RList {
		if r&c.Flag != 0 {
			names = append(names, c.Name)
		}
	}
	if u := r &^ allReasons; u != 0 {
		names = append(names, fmt.Sprintf("Unknown(0x%02X)", uint8(u)))
	}
	return strings.Join(names, " | ")
}
