// Public domain.

// Package dispatch runs batch tasks, typically one analysis subprocess per
// detector module, through a bounded pool of workers.
package dispatch

import (
	"context"
	"errors"
	"os/exec"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/gem-daq/vfat3ana/internal/logging"
)

// Task is one unit of batch work.  Run returns the task output and an error
// carrying the failure status, if any.
type Task struct {
	Name string
	Run  func(ctx context.Context) ([]byte, error)
}

// Result is the outcome of one task.
type Result struct {
	Name   string
	Status int
	Output []byte
	Err    error
}

// Canceled is the status of a task stopped or never started because the
// batch was canceled.
const Canceled = -1

// Status maps a task error to an exit status: 0 for success, the process
// exit code for a subprocess that ran, Canceled for cancellation, and 1 for
// anything else.
func Status(err error) int {
	var ee *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Canceled
	case errors.As(err, &ee):
		if c := ee.ExitCode(); c != 0 {
			return c
		}
	}
	return 1
}

// Command returns a Run function executing a program.  The process is
// killed when the context is canceled.
func Command(name string, args ...string) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
		if err != nil && ctx.Err() != nil {
			// killed
			return out, ctx.Err()
		}
		return out, err
	}
}

// Run runs tasks with at most workers running at once.  A failing task does
// not affect its siblings.  Results are in task order, and status is the
// first non-zero task status in task order, or 0.  When ctx is canceled,
// running tasks are stopped and tasks not yet started are not run.
func Run(ctx context.Context, workers int, tasks []Task, log logr.Logger) (results []Result, status int) {
	results = make([]Result, len(tasks))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, t := range tasks {
		results[i].Name = t.Name
		if ctx.Err() != nil {
			results[i].Status = Canceled
			results[i].Err = ctx.Err()
			continue
		}
		g.Go(func() error {
			r := &results[i]
			if err := ctx.Err(); err != nil {
				r.Status, r.Err = Canceled, err
				return nil
			}
			log.V(logging.DEBUG).Info("task started", "task", t.Name)
			r.Output, r.Err = t.Run(ctx)
			r.Status = Status(r.Err)
			if r.Status != 0 {
				log.Info("task failed", "task", t.Name, "status", r.Status, "error", r.Err)
			} else {
				log.V(logging.DEBUG).Info("task done", "task", t.Name)
			}
			return nil
		})
	}
	g.Wait()
	for _, r := range results {
		if r.Status != 0 {
			return results, r.Status
		}
	}
	return results, 0
}
