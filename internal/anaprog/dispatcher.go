// Public domain.

package anaprog

import (
	"time"

	"github.com/go-logr/logr"
	xrand "golang.org/x/exp/rand"

	"github.com/gem-daq/vfat3ana/internal/config"
	"github.com/gem-daq/vfat3ana/internal/mask"
	"github.com/gem-daq/vfat3ana/internal/rootio"
	"github.com/gem-daq/vfat3ana/internal/scurve"
	"github.com/gem-daq/vfat3ana/internal/vfatmap"
)

// chipResult is the fit and classification of one chip.
type chipResult struct {
	chip  int
	fits  vfatmap.ChannelArray[scurve.Result]
	masks vfatmap.ChannelArray[mask.Channel]
	err   error
}

type chipSeq struct {
	chip int
	rch  chan *chipResult
}

// fitChips fits and classifies all chips of a module concurrently.  each is
// called with the result of each chip, in chip order, as results become
// available.  It stops at the first error returned by each.
func fitChips(cfg config.Config, hs *rootio.Histograms, log logr.Logger, each func(*chipResult) error) error {
	fitter := scurve.New(cfg.Fit, log)

	// prCh is used to keep results in chip order.  it is a buffered
	// channel so that a fast worker can drop off the result without
	// waiting for workers ahead of it.  the size of the buffer must be at
	// least maxWorkers.
	maxWorkers := cfg.Workers
	prCh := make(chan chan *chipResult, maxWorkers*2)
	chipChSeq := make(chan *chipSeq)
	done := make(chan struct{})
	defer close(done)

	// dispatcher.  for each chip, attach a return channel that works like a
	// ticket for picking up the result.  wait for an available worker, send
	// the chip to the worker and drop the ticket in the queue for output.
	go func() {
		defer close(prCh)
		defer close(chipChSeq)
		for chip := 0; chip < vfatmap.NChips; chip++ {
			rch := make(chan *chipResult, 1)
			select {
			case chipChSeq <- &chipSeq{chip, rch}:
			case <-done:
				return
			}
			select {
			case prCh <- rch:
			case <-done:
				return
			}
		}
	}()

	// workers are not all started up front, but only as the dispatcher
	// calls for them.  once the maximum number are started this is done.
	go func() {
		for n := 0; n < maxWorkers; n++ {
			c, ok := <-chipChSeq
			if !ok {
				return
			}
			go fitWorker(fitter, cfg, hs, c, chipChSeq)
		}
	}()

	// wait for each ticket in chip order, then for its result.
	for rch := range prCh {
		r := <-rch
		if r.err == nil {
			r.err = each(r)
		}
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

// fitWorker fits chips until the dispatcher closes chipCh.  The first chip
// to fit is c.
func fitWorker(fitter *scurve.Fitter, cfg config.Config, hs *rootio.Histograms, c *chipSeq, chipCh chan *chipSeq) {
	rnd := xrand.New(&xrand.PCGSource{})
	if !cfg.Repeatable {
		rnd.Seed(uint64(time.Now().UnixNano()))
	}
	for ok := true; ok; c, ok = <-chipCh {
		if cfg.Repeatable {
			// seeded per chip so results do not depend on which worker
			// fits which chip
			rnd.Seed(cfg.Seed + uint64(c.chip))
		}
		r := &chipResult{chip: c.chip}
		r.fits = fitter.FitChip(c.chip, &hs[c.chip], rnd)
		r.masks, r.err = mask.Classify(&r.fits, cfg.Mask)
		c.rch <- r // buffered.  just drop off results and continue
	}
}
