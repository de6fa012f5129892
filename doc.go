/*
Command vfat3ana fits VFAT3 S-curve calibration scans and decides which
channels of a detector module to mask.

# Program overview

A detector module is read out by 24 VFAT3 chips of 128 channels each.  An
S-curve scan injects charge pulses of increasing amplitude into every channel
and counts hits.  Input is a ROOT file holding the scan as a tree, one entry
per (chip, channel, stimulus) with its hit count.  Output is a ROOT file of
fit results, one entry per channel, a text list of channel masks, and
optionally plots and a record in a results database.

# Command line usage

	vfat3ana [global flags] command [flags] args

Global flags:

	--config file   config file, default vfat3ana.toml.  A missing file is
	                not an error.
	-v              log verbosity.  Repeat for more: -vvv verbose, -vvvv debug,
	                -vvvvv trace.
	--dev           human readable development logging.

Commands:

	scurve scan.root      analyze one module.  A summary line is printed for
	                      each chip.
	batch scan.root...    analyze many modules, one process each.  -j limits
	                      the number of processes running at once.  The exit
	                      status is that of the first module to fail, in
	                      argument order.  An interrupt stops all analyses.
	compare ref cand      compare two channel masks, printing a confusion
	                      matrix and the Matthews correlation coefficient.
	simulate scan.root    write a synthetic scan, for testing.
	runs [run-id]         list runs recorded in the results database, or the
	                      masked channels of one run.
	version               print version.

Run vfat3ana help command for the flags of each command.  Flags given on the
command line override the config file.

# Configuration

The config file is TOML.  All keys are optional.  Shown with defaults:

	[fit]
	trials = 25          # maximum trial fits per channel
	accept-chi2 = 50     # stop trials once chi-square is below this
	noise-mean = 10      # noise seed distribution
	noise-std = 5
	redraw-cap = 100     # noise seed redraws before clipping into bounds
	saturation = 250     # saturation count is of stimulus above this
	iterations = 200     # Levenberg-Marquardt iteration limit
	repeatable = true    # seed each chip from seed rather than the clock
	seed = 3
	# workers = 8        # chips fitted at once, default number of CPUs

	[mask]
	ztrim = 4.0          # trim target is threshold - ztrim*noise
	zscore = 3.5         # hot channel modified z-score cut
	tail = "high"        # high, low or two-sided
	high-noise = 20
	max-eff-pedestal = 0.05

	[input]
	tree = "scurveTree"
	channel-map = ""     # file relating channels to strips

	[output]
	dir = "."
	db = ""              # SQLite results database
	plots = false

# File formats

The scan tree has int32 branches vfatN, vfatCH, vcal and Nhits.  Entries
addressing chips or channels outside the module are skipped.

The result file SCurveFitData.root holds the tree scurveFitTree with branches
vfatN, vfatCH, strip, threshold, noise, pedestal, chi2, ndf, satCount, mask,
maskDead, maskHot and valid, histograms vfatNN_threshold and vfatNN_noise of
each chip and the 2D histogram maskMap of mask reason bits.

The mask reason bits are

	0x01  HotChannel
	0x02  FitFailed
	0x04  DeadChannel
	0x08  HighNoise
	0x10  HighEffPedestal

A channel is masked when it is dead or hot.  The other reasons are
informational.  ChannelMask.txt lists every channel as chip, channel, mask
(0 or 1) and reason bits.  The compare command reads this format, with the
mask column optional.

The channel map is a text file of lines "vfat strip channel pin".  A heading
line is ignored.

# Algorithm outline

Hits are accumulated into a histogram per channel, 256 bins of stimulus.
Only stimulus values the scan sampled take part in the fit, so a scan may
step the stimulus by any amount.

Each channel is fitted to

	A·erf((max(pedestal, x) − threshold) / (√2·noise)) + A

with A = 500, by Levenberg-Marquardt with parameters bounded.  Up to trials
fits are run from different starting points.  Threshold and pedestal start
at 8, 16, 24 and so on, noise at a normal random draw.  The lowest valid
chi-square wins, and trials stop early once it is below accept-chi2.

A channel is dead if it has no samples, has samples but not a single hit,
or its fit never left the first starting point, threshold and pedestal both
exactly 8.

Among the remaining validly fitted channels of a chip, the trim target
threshold − ztrim·noise is tested for outliers by modified z-score using the
median absolute deviation.  Where the MAD is zero the interquartile range
test is used instead.  Outliers in the selected tail are hot.

-------------
Public domain.
*/
package main
