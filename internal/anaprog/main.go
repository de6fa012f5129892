// Public domain.

// Package anaprog implements the vfat3ana command.
package anaprog

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/soniakeys/exit"
	"github.com/spf13/cobra"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/logging"
)

const versionString = "vfat3ana version 0.3"
const copyrightString = "Public domain."

// Main runs the command line.  Deferred functions run before the process
// exits with a non-zero status.
func Main() {
	defer exit.Handler()

	err := NewRootCmd().Execute()
	var s StatusError
	switch {
	case err == nil:
	case errors.As(err, &s):
		exit.Code(int(s))
	default:
		exit.Log(err)
	}
}

// StatusError is returned by commands that finish with a non-zero status
// without a single error to report, a batch with failed tasks.
type StatusError int

func (s StatusError) Error() string {
	return fmt.Sprintf("exit status %d", int(s))
}

// app holds the settings shared by all subcommands.
type app struct {
	cfgPath   string
	verbosity int
	dev       bool
	log       logr.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: logr.Discard()}
	root := &cobra.Command{
		Use:           "vfat3ana",
		Short:         "VFAT3 S-curve calibration analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			l, err := logging.New(a.verbosity, a.dev)
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", config.DefaultFile, "config file")
	pf.CountVarP(&a.verbosity, "verbose", "v", "log verbosity, repeat for more")
	pf.BoolVar(&a.dev, "dev", false, "human readable development logging")

	root.AddCommand(
		a.newSCurveCmd(),
		a.newBatchCmd(),
		a.newCompareCmd(),
		a.newSimulateCmd(),
		a.newRunsCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig returns defaults overridden by the config file.
func (a *app) loadConfig() (config.Config, error) {
	cfg := config.Default()
	f, err := config.LoadFile(a.cfgPath)
	if err != nil {
		return cfg, err
	}
	if err = f.Apply(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", a.cfgPath, err)
	}
	return cfg, nil
}

// commonArgs returns the root flags to pass on to a subprocess.
func (a *app) commonArgs() []string {
	args := []string{"--config", a.cfgPath}
	for i := 0; i < a.verbosity; i++ {
		args = append(args, "-v")
	}
	if a.dev {
		args = append(args, "--dev")
	}
	return args
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString)
			fmt.Fprintln(cmd.OutOrStdout(), copyrightString)
		},
	}
}

// changed reports whether the named flag was given on the command line.
func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}

func applyFlag[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if changed(cmd, name) {
		*dst = v
	}
}
