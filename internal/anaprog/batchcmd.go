// Public domain.

package anaprog

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gem-daq/vfat3ana/internal/dispatch"
)

type batchFlags struct {
	out, db, exe string
	jobs         int
	plots        bool
}

func (a *app) newBatchCmd() *cobra.Command {
	var fl batchFlags
	cmd := &cobra.Command{
		Use:   "batch [flags] scan.root...",
		Short: "Analyze many modules, one process per module",
		Long: `Batch runs the scurve command on each scan file in a separate process.
Each module writes to a subdirectory of the output directory named after the
scan file.  The exit status is that of the first failing module, in argument
order.  An interrupt stops all running analyses.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exe := fl.exe
			if exe == "" {
				var err error
				if exe, err = os.Executable(); err != nil {
					return err
				}
			}
			modules, err := moduleNames(args)
			if err != nil {
				return err
			}
			tasks := make([]dispatch.Task, len(args))
			for i, in := range args {
				module := modules[i]
				targs := append(a.commonArgs(), "scurve",
					"--out", filepath.Join(fl.out, module),
					"--module", module)
				if fl.db != "" {
					targs = append(targs, "--db", fl.db)
				}
				if fl.plots {
					targs = append(targs, "--plots")
				}
				targs = append(targs, in)
				tasks[i] = dispatch.Task{Name: module, Run: dispatch.Command(exe, targs...)}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			results, status := dispatch.Run(ctx, fl.jobs, tasks, a.log)
			printResults(cmd, results)
			if ctx.Err() != nil && cmd.Context().Err() == nil {
				a.log.Info("batch interrupted")
			}
			if status != 0 {
				if status == dispatch.Canceled {
					return context.Canceled
				}
				return StatusError(status)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.out, "out", "o", ".", "output directory")
	f.StringVar(&fl.db, "db", "", "results database shared by all modules")
	f.IntVarP(&fl.jobs, "jobs", "j", 4, "modules analyzed at once")
	f.BoolVar(&fl.plots, "plots", false, "write PNG plots")
	f.StringVar(&fl.exe, "exe", "", "analysis program, this program if empty")
	f.MarkHidden("exe")
	return cmd
}

// moduleName is the scan file name without directory or extension.
func moduleName(fn string) string {
	b := filepath.Base(fn)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// moduleNames returns the module name of each scan file.  Names label
// output directories and database runs so they must be distinct.
func moduleNames(fns []string) ([]string, error) {
	names := make([]string, len(fns))
	seen := make(map[string]string, len(fns))
	for i, fn := range fns {
		m := moduleName(fn)
		if prev, ok := seen[m]; ok {
			return nil, fmt.Errorf("%s and %s are both module %s", prev, fn, m)
		}
		seen[m] = fn
		names[i] = m
	}
	return names, nil
}

func printResults(cmd *cobra.Command, results []dispatch.Result) {
	w := cmd.OutOrStdout()
	for _, r := range results {
		switch r.Status {
		case 0:
			fmt.Fprintf(w, "== %s: ok\n", r.Name)
		case dispatch.Canceled:
			fmt.Fprintf(w, "== %s: canceled\n", r.Name)
		default:
			fmt.Fprintf(w, "== %s: status %d\n", r.Name, r.Status)
		}
		w.Write(r.Output)
	}
}
