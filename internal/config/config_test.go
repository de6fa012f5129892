// Public domain.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/outlier"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 25, c.Fit.Trials)
	assert.Equal(t, 50., c.Fit.AcceptChi2)
	assert.Equal(t, 250., c.Fit.SatBoundary)
	assert.Equal(t, 100, c.Fit.RedrawCap)
	assert.Equal(t, 4., c.Mask.ZTrim)
	assert.Equal(t, 3.5, c.Mask.ZScore)
	assert.Equal(t, outlier.HighTail, c.Mask.Tail)
	assert.Equal(t, "scurveTree", c.Tree)
	assert.Equal(t, uint64(3), c.Seed)
}

func TestMissingFile(t *testing.T) {
	f, err := config.LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	c := config.Default()
	require.NoError(t, f.Apply(&c))
	assert.Equal(t, config.Default(), c)
}

const fileText = `
[fit]
trials = 10
saturation = 240.0
repeatable = false

[mask]
ztrim = 3.0
tail = "two-sided"

[input]
tree = "scurve"

[output]
db = "results.db"
`

func TestLoadFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "vfat3ana.toml")
	require.NoError(t, os.WriteFile(fn, []byte(fileText), 0o644))
	f, err := config.LoadFile(fn)
	require.NoError(t, err)
	c := config.Default()
	require.NoError(t, f.Apply(&c))
	assert.Equal(t, 10, c.Fit.Trials)
	assert.Equal(t, 240., c.Fit.SatBoundary)
	assert.False(t, c.Repeatable)
	assert.Equal(t, 3., c.Mask.ZTrim)
	assert.Equal(t, outlier.TwoSided, c.Mask.Tail)
	assert.Equal(t, "scurve", c.Tree)
	assert.Equal(t, "results.db", c.DB)
	// untouched
	assert.Equal(t, 3.5, c.Mask.ZScore)
	assert.Equal(t, 50., c.Fit.AcceptChi2)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.toml":     "[fit\ntrials = 3",
		"unknown.toml": "[fit]\ntrails = 3\n",
	}
	for name, text := range cases {
		fn := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(fn, []byte(text), 0o644))
		_, err := config.LoadFile(fn)
		assert.Error(t, err, name)
	}
	_, err := config.LoadFile("")
	assert.Error(t, err)

	tail := "sideways"
	f := config.File{Mask: config.MaskSection{Tail: &tail}}
	c := config.Default()
	assert.Error(t, f.Apply(&c))
}

func TestValidate(t *testing.T) {
	for _, mod := range []func(*config.Config){
		func(c *config.Config) { c.Fit.Trials = 0 },
		func(c *config.Config) { c.Fit.Iterations = 0 },
		func(c *config.Config) { c.Fit.RedrawCap = -1 },
		func(c *config.Config) { c.Mask.ZScore = 0 },
		func(c *config.Config) { c.Mask.MaxEffPed = 2 },
		func(c *config.Config) { c.Workers = 0 },
		func(c *config.Config) { c.Tree = "" },
	} {
		c := config.Default()
		mod(&c)
		assert.Error(t, c.Validate())
	}
}
