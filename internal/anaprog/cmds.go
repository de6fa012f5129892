// Public domain.

package anaprog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/store"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

func (a *app) newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare reference candidate",
		Short: "Compare two channel masks",
		Long: `Compare reports how well a candidate channel mask agrees with a
reference mask.  Each mask is either a result ROOT file or a text list of
"chip channel [mask]" lines.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.readMask(args[0])
			if err != nil {
				return err
			}
			got, err := a.readMask(args[1])
			if err != nil {
				return err
			}
			mask.Compare(ref, got).Report(cmd.OutOrStdout())
			return nil
		},
	}
}

// readMask reads the final channel mask of a result file or a mask list.
func (a *app) readMask(fn string) (*vfatmap.ModuleArray[bool], error) {
	var m vfatmap.ModuleArray[bool]
	if strings.EqualFold(filepath.Ext(fn), ".root") {
		recs, err := rootio.ReadResults(fn)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			chip, ch := int(r.Chip), int(r.Channel)
			if !vfatmap.ValidChip(chip) || !vfatmap.ValidChannel(ch) {
				return nil, fmt.Errorf("%s: invalid address chip %d channel %d", fn, chip, ch)
			}
			m[chip][ch] = r.Masked()
		}
		return &m, nil
	}
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, ignored, err := mask.ReadList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	if ignored > 0 {
		a.log.Info("mask list lines ignored", "file", fn, "count", ignored)
	}
	return &m, nil
}

func (a *app) newSimulateCmd() *cobra.Command {
	o := DefaultSimOptions()
	var tree string
	cmd := &cobra.Command{
		Use:   "simulate [flags] scan.root",
		Short: "Write a synthetic S-curve scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := Simulate(o)
			if err != nil {
				return err
			}
			if err = rootio.WriteSamples(args[0], tree, samples); err != nil {
				return err
			}
			a.log.Info("scan written", "file", args[0], "entries", len(samples))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.Chips, "chips", o.Chips, "number of chips")
	f.IntVar(&o.Dead, "dead", o.Dead, "dead channels per chip")
	f.IntVar(&o.Hot, "hot", o.Hot, "hot channels per chip")
	f.IntVar(&o.Step, "step", o.Step, "stimulus step")
	f.Uint64Var(&o.Seed, "seed", o.Seed, "random seed")
	f.Float64Var(&o.Threshold, "threshold", o.Threshold, "mean channel threshold")
	f.Float64Var(&o.Noise, "noise", o.Noise, "mean channel noise")
	f.StringVar(&tree, "tree", config.Default().Tree, "tree name")
	return cmd
}

func (a *app) newRunsCmd() *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "runs [flags] [run-id]",
		Short: "List recorded runs, or the masked channels of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if db == "" {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				db = cfg.DB
			}
			if db == "" {
				return fmt.Errorf("no results database, use --db")
			}
			s, err := store.Open(db)
			if err != nil {
				return err
			}
			defer s.Close()
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := s.Runs(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintf(w, "%s  %s  %-12s %4d  %s\n", r.ID,
						r.Started.Local().Format("2006-01-02 15:04:05"),
						r.Module, r.Masked, r.Input)
				}
				return nil
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			recs, err := s.Records(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				return fmt.Errorf("run %s not found", id)
			}
			for _, r := range recs {
				if r.Masked() || r.Mask != 0 {
					fmt.Fprintf(w, "%2d %3d  %s\n", r.Chip, r.Channel, r.Reason())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "results database")
	return cmd
}
