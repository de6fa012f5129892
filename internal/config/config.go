// Public domain.

// Package config holds analysis settings.  Settings start from defaults, are
// overridden by an optional TOML file, then by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/outlier"
	"github.com/gem-daq/vfat3ana/internal/scurve"
)

// DefaultFile is the config file name looked for when none is given.
const DefaultFile = "vfat3ana.toml"

// Config is the complete analysis configuration.
type Config struct {
	Fit  scurve.Config
	Mask mask.Config

	Tree       string // input tree name
	ChannelMap string // channel map file, identity map if empty
	Repeatable bool   // seed each chip from Seed rather than the clock
	Seed       uint64
	Workers    int

	OutDir string // output directory
	DB     string // results database, none if empty
	Plots  bool
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Fit:        scurve.DefaultConfig(),
		Mask:       mask.DefaultConfig(),
		Tree:       "scurveTree",
		Repeatable: true,
		Seed:       3,
		Workers:    runtime.GOMAXPROCS(0),
		OutDir:     ".",
	}
}

// File maps the TOML config file.  Absent keys leave settings unchanged.
type File struct {
	Fit    FitSection    `toml:"fit"`
	Mask   MaskSection   `toml:"mask"`
	Input  InputSection  `toml:"input"`
	Output OutputSection `toml:"output"`
}

type FitSection struct {
	Trials      *int     `toml:"trials"`
	AcceptChi2  *float64 `toml:"accept-chi2"`
	NoiseMean   *float64 `toml:"noise-mean"`
	NoiseStd    *float64 `toml:"noise-std"`
	RedrawCap   *int     `toml:"redraw-cap"`
	SatBoundary *float64 `toml:"saturation"`
	Iterations  *int     `toml:"iterations"`
	Repeatable  *bool    `toml:"repeatable"`
	Seed        *uint64  `toml:"seed"`
	Workers     *int     `toml:"workers"`
}

type MaskSection struct {
	ZTrim     *float64 `toml:"ztrim"`
	ZScore    *float64 `toml:"zscore"`
	Tail      *string  `toml:"tail"`
	HighNoise *float64 `toml:"high-noise"`
	MaxEffPed *float64 `toml:"max-eff-pedestal"`
}

type InputSection struct {
	Tree       *string `toml:"tree"`
	ChannelMap *string `toml:"channel-map"`
}

type OutputSection struct {
	Dir   *string `toml:"dir"`
	DB    *string `toml:"db"`
	Plots *bool   `toml:"plots"`
}

// LoadFile reads a TOML config from the given path.  Missing file is not an
// error.
func LoadFile(path string) (File, error) {
	if path == "" {
		return File{}, errors.New("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return File{}, fmt.Errorf("%s: unrecognized key %s", path, u[0])
	}
	return f, nil
}

// Apply overrides c with the settings present in f.
func (f File) Apply(c *Config) error {
	set(&c.Fit.Trials, f.Fit.Trials)
	set(&c.Fit.AcceptChi2, f.Fit.AcceptChi2)
	set(&c.Fit.NoiseMean, f.Fit.NoiseMean)
	set(&c.Fit.NoiseStd, f.Fit.NoiseStd)
	set(&c.Fit.RedrawCap, f.Fit.RedrawCap)
	set(&c.Fit.SatBoundary, f.Fit.SatBoundary)
	set(&c.Fit.Iterations, f.Fit.Iterations)
	set(&c.Repeatable, f.Fit.Repeatable)
	set(&c.Seed, f.Fit.Seed)
	set(&c.Workers, f.Fit.Workers)

	set(&c.Mask.ZTrim, f.Mask.ZTrim)
	set(&c.Mask.ZScore, f.Mask.ZScore)
	set(&c.Mask.HighNoise, f.Mask.HighNoise)
	set(&c.Mask.MaxEffPed, f.Mask.MaxEffPed)
	if f.Mask.Tail != nil {
		t, err := outlier.ParseTail(*f.Mask.Tail)
		if err != nil {
			return err
		}
		c.Mask.Tail = t
	}

	set(&c.Tree, f.Input.Tree)
	set(&c.ChannelMap, f.Input.ChannelMap)
	set(&c.OutDir, f.Output.Dir)
	set(&c.DB, f.Output.DB)
	set(&c.Plots, f.Output.Plots)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks settings for values the analysis cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Fit.Trials < 1:
		return fmt.Errorf("trials must be at least 1, got %d", c.Fit.Trials)
	case c.Fit.Iterations < 1:
		return fmt.Errorf("iterations must be at least 1, got %d", c.Fit.Iterations)
	case c.Fit.RedrawCap < 0:
		return fmt.Errorf("redraw cap must not be negative, got %d", c.Fit.RedrawCap)
	case c.Fit.NoiseStd < 0:
		return fmt.Errorf("noise seed std must not be negative, got %g", c.Fit.NoiseStd)
	case c.Mask.ZScore <= 0:
		return fmt.Errorf("zscore must be positive, got %g", c.Mask.ZScore)
	case c.Mask.ZTrim < 0:
		return fmt.Errorf("ztrim must not be negative, got %g", c.Mask.ZTrim)
	case c.Mask.MaxEffPed <= 0 || c.Mask.MaxEffPed > 1:
		return fmt.Errorf("max effective pedestal must be in (0, 1], got %g", c.Mask.MaxEffPed)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.Tree == "":
		return errors.New("input tree name is empty")
	}
	return nil
}
