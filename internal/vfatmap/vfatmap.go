// Public domain.

// Package vfatmap defines the chip and channel addressing of a detector
// module readout: 24 VFAT3 chips of 128 channels each.  Per-channel data
// is held in fixed size arrays indexed by chip then channel.
package vfatmap

import "fmt"

// Shape of one detector module.  These never change at run time.
const (
	NChips    = 24
	NChannels = 128
	NTotal    = NChips * NChannels
)

// ChipArray holds one value per chip.
type ChipArray[T any] [NChips]T

// ChannelArray holds one value per channel of one chip.
type ChannelArray[T any] [NChannels]T

// ModuleArray holds one value per channel of a whole detector module.
type ModuleArray[T any] [NChips]ChannelArray[T]

// ValidChip reports whether chip is a valid chip position.
func ValidChip(chip int) bool {
	return chip >= 0 && chip < NChips
}

// ValidChannel reports whether ch is a valid channel number.
func ValidChannel(ch int) bool {
	return ch >= 0 && ch < NChannels
}

// Index computes an index into the flat representation of a module.
// It panics on an address outside the module.
func Index(chip, ch int) int {
	if !ValidChip(chip) || !ValidChannel(ch) {
		panic(fmt.Sprintf("vfatmap: address out of range: chip %d channel %d", chip, ch))
	}
	return chip*NChannels + ch
}

// Address is the inverse of Index.
func Address(ix int) (chip, ch int) {
	if ix < 0 || ix >= NTotal {
		panic(fmt.Sprintf("vfatmap: flat index out of range: %d", ix))
	}
	return ix / NChannels, ix % NChannels
}
