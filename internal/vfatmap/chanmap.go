// Public domain.

package vfatmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ChannelMap relates VFAT channels to readout strips and connector pins.
type ChannelMap struct {
	Strip ModuleArray[int]
	Pin   ModuleArray[int]
}

// Identity returns a map where every channel reads out the strip of the same
// number.  Pins are unknown and set to -1.
func Identity() *ChannelMap {
	var m ChannelMap
	for chip := range m.Strip {
		for ch := range m.Strip[chip] {
			m.Strip[chip][ch] = ch
			m.Pin[chip][ch] = -1
		}
	}
	return &m
}

// ReadChannelMapFile reads a channel map file.  See ReadChannelMap.
func ReadChannelMapFile(fn string) (*ChannelMap, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadChannelMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return m, nil
}

// ReadChannelMap reads a whitespace separated channel map.
//
// Data lines hold four integers: vfat, strip, channel, pin.  A heading line
// such as "vfat/I:strip/I:channel/I:PanPin/I" and any other line that does not
// parse as data are quietly ignored, as are addresses outside the module.
// Channels not listed keep the identity mapping.
func ReadChannelMap(r io.Reader) (*ChannelMap, error) {
	m := Identity()
	var n int
	s := bufio.NewScanner(r)
	for s.Scan() {
		f := strings.Fields(s.Text())
		if len(f) < 4 {
			continue
		}
		var v [4]int
		ok := true
		for i := range v {
			x, err := strconv.Atoi(f[i])
			if err != nil {
				ok = false
				break
			}
			v[i] = x
		}
		if !ok {
			continue // heading or comment
		}
		chip, strip, ch, pin := v[0], v[1], v[2], v[3]
		if !ValidChip(chip) || !ValidChannel(ch) {
			continue
		}
		m.Strip[chip][ch] = strip
		m.Pin[chip][ch] = pin
		n++
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("no channel map data")
	}
	return m, nil
}
