// Public domain.

package vfatmap_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

func ExampleIndex() {
	ix := vfatmap.Index(2, 5)
	chip, ch := vfatmap.Address(ix)
	fmt.Println(ix, chip, ch)
	// Output:
	// 261 2 5
}

var addrCases = []struct {
	chip, ch int
	ok       bool
}{
	{0, 0, true},
	{23, 127, true},
	{24, 0, false},
	{0, 128, false},
	{-1, 3, false},
}

func TestIndexBounds(t *testing.T) {
	for _, c := range addrCases {
		if c.ok {
			ix := vfatmap.Index(c.chip, c.ch)
			chip, ch := vfatmap.Address(ix)
			if chip != c.chip || ch != c.ch {
				t.Fatalf("round trip (%d,%d) -> %d -> (%d,%d)", c.chip, c.ch, ix, chip, ch)
			}
			continue
		}
		assert.Panics(t, func() { vfatmap.Index(c.chip, c.ch) }, "chip %d channel %d", c.chip, c.ch)
	}
}

const mapText = `vfat/I:strip/I:channel/I:PanPin/I
0	63	0	1
0	62	1	2
3	0	127	128
99	1	1	1
not a data line
`

func TestReadChannelMap(t *testing.T) {
	m, err := vfatmap.ReadChannelMap(strings.NewReader(mapText))
	require.NoError(t, err)
	assert.Equal(t, 63, m.Strip[0][0])
	assert.Equal(t, 2, m.Pin[0][1])
	assert.Equal(t, 0, m.Strip[3][127])
	// unlisted channels keep identity mapping
	assert.Equal(t, 5, m.Strip[7][5])
	assert.Equal(t, -1, m.Pin[7][5])
}

func TestReadChannelMapEmpty(t *testing.T) {
	_, err := vfatmap.ReadChannelMap(strings.NewReader("vfat/I:strip/I:channel/I:PanPin/I\n"))
	assert.Error(t, err)
}

func TestChannelMapFile(t *testing.T) {
	m, err := vfatmap.ReadChannelMapFile("../../testdata/longChannelMap.txt")
	if err != nil {
		t.Skip(err)
	}
	t.Log("chip 0 channel 0 strip:", m.Strip[0][0], "pin:", m.Pin[0][0])
}
