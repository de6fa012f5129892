// Public domain.

package anaprog

import (
	"github.com/spf13/cobra"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/outlier"
)

// scurveFlags mirror the config settings that can be given on the command
// line.  Only flags actually given override the config file.
type scurveFlags struct {
	out, tree, chmap, db, module, tail string
	plots, random                      bool
	seed                               uint64
	workers, trials                    int
	ztrim, zscore, sat                 float64
}

func (a *app) newSCurveCmd() *cobra.Command {
	d := config.Default()
	var fl scurveFlags
	cmd := &cobra.Command{
		Use:   "scurve [flags] scan.root",
		Short: "Fit S-curves and mask channels of one module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err = fl.apply(cmd, &cfg); err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			log := a.log.WithValues("input", args[0])
			an, err := Analyze(cfg, args[0], cmd.OutOrStdout(), log)
			if err != nil {
				return err
			}
			return Write(cmd.Context(), an, cfg, fl.module, log)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.out, "out", "o", d.OutDir, "output directory")
	f.StringVar(&fl.tree, "tree", d.Tree, "input tree name")
	f.StringVar(&fl.chmap, "chmap", "", "channel map file")
	f.StringVar(&fl.db, "db", "", "results database")
	f.StringVar(&fl.module, "module", "", "detector module label for the database")
	f.BoolVar(&fl.plots, "plots", false, "write PNG plots")
	f.BoolVar(&fl.random, "random", false, "seed noise draws from the clock")
	f.Uint64Var(&fl.seed, "seed", d.Seed, "random seed of repeatable fits")
	f.IntVarP(&fl.workers, "workers", "j", d.Workers, "concurrent chip fits")
	f.IntVar(&fl.trials, "trials", d.Fit.Trials, "maximum trial fits per channel")
	f.Float64Var(&fl.ztrim, "ztrim", d.Mask.ZTrim, "noise multiple of the trim target")
	f.Float64Var(&fl.zscore, "zscore", d.Mask.ZScore, "hot channel z-score cut")
	f.StringVar(&fl.tail, "tail", d.Mask.Tail.String(), "hot channel tail: high, low or two-sided")
	f.Float64Var(&fl.sat, "sat", d.Fit.SatBoundary, "saturation boundary")
	return cmd
}

func (fl *scurveFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	applyFlag(cmd, "out", &cfg.OutDir, fl.out)
	applyFlag(cmd, "tree", &cfg.Tree, fl.tree)
	applyFlag(cmd, "chmap", &cfg.ChannelMap, fl.chmap)
	applyFlag(cmd, "db", &cfg.DB, fl.db)
	applyFlag(cmd, "plots", &cfg.Plots, fl.plots)
	applyFlag(cmd, "random", &cfg.Repeatable, !fl.random)
	applyFlag(cmd, "seed", &cfg.Seed, fl.seed)
	applyFlag(cmd, "workers", &cfg.Workers, fl.workers)
	applyFlag(cmd, "trials", &cfg.Fit.Trials, fl.trials)
	applyFlag(cmd, "ztrim", &cfg.Mask.ZTrim, fl.ztrim)
	applyFlag(cmd, "zscore", &cfg.Mask.ZScore, fl.zscore)
	applyFlag(cmd, "sat", &cfg.Fit.SatBoundary, fl.sat)
	if changed(cmd, "tail") {
		t, err := outlier.ParseTail(fl.tail)
		if err != nil {
			return err
		}
		cfg.Mask.Tail = t
	}
	return nil
}
