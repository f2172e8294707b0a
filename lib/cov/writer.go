//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/regions"
)

// RegionStat couples one target region with its own depth histogram.
type RegionStat struct {
	Region regions.Region
	Stats  CoverageStats
}

// GapFeed receives every emitted position in order.
type GapFeed func(chrom string, pos, depth int) error

// RegionWriter walks one chromosome's depth vector over the target
// sub-regions, emitting per-base records in ascending position order and
// updating the sample-wide and per-region statistics. All sinks are optional.
type RegionWriter struct {
	PerBase     io.Writer
	KmerOut     io.Writer
	Downsampled io.Writer
	Factor      int

	Stats        CoverageStats
	RegionStats  []*RegionStat
	TrackRegions bool

	Gap GapFeed
}

// WriteContig emits one chromosome. kdepth carries the kmer-weighted vector
// and may be nil when weighting is off.
func (w *RegionWriter) WriteContig(chrom string, regs []regions.Region, depth, kdepth []uint16) error {
	for _, reg := range regs {
		var rs *RegionStat
		if w.TrackRegions {
			rs = &RegionStat{Region: reg}
			w.RegionStats = append(w.RegionStats, rs)
		}
		var win window
		for pos := reg.From; pos < reg.To; pos++ {
			d := DepthAt(depth, pos)
			if w.PerBase != nil {
				if _, err := fmt.Fprintf(w.PerBase, "%s\t%d\t%d\n", chrom, pos, d); err != nil {
					return errors.Wrap(err, "writing per-base output")
				}
			}
			if w.KmerOut != nil {
				if _, err := fmt.Fprintf(w.KmerOut, "%s\t%d\t%d\n", chrom, pos, DepthAt(kdepth, pos)); err != nil {
					return errors.Wrap(err, "writing kmer-adjusted output")
				}
			}
			w.Stats.Add(d)
			if rs != nil {
				rs.Stats.Add(d)
			}
			if w.Downsampled != nil && w.Factor > 0 {
				if err := w.downsample(&win, chrom, reg, pos, d); err != nil {
					return err
				}
			}
			if w.Gap != nil {
				if err := w.Gap(chrom, pos, d); err != nil {
					return err
				}
			}
		}
		if w.Downsampled != nil && w.Factor > 0 {
			if err := win.flush(w.Downsampled, chrom, reg.To-1); err != nil {
				return err
			}
		}
	}
	return nil
}

// window accumulates depths between downsample emission points.
type window struct {
	sum     float64
	n       int
	emitted bool
}

// downsample groups positions into windows of Factor bases. The window's mean
// is written at offset Factor/2 and the accumulator is reset at each window
// start; a window cut short by the region boundary is flushed there instead.
func (w *RegionWriter) downsample(win *window, chrom string, reg regions.Region, pos, d int) error {
	off := (pos - reg.From) % w.Factor
	if off == 0 {
		win.sum, win.n, win.emitted = 0, 0, false
	}
	if off == w.Factor/2 {
		mean := float64(d)
		if win.n > 0 {
			mean = win.sum / float64(win.n)
		}
		win.emitted = true
		return emitMean(w.Downsampled, chrom, pos, mean)
	}
	win.sum += float64(d)
	win.n++
	return nil
}

func (win *window) flush(out io.Writer, chrom string, lastPos int) error {
	if win.emitted || win.n == 0 {
		return nil
	}
	win.emitted = true
	return emitMean(out, chrom, lastPos, win.sum/float64(win.n))
}

func emitMean(out io.Writer, chrom string, pos int, mean float64) error {
	_, err := fmt.Fprintf(out, "%s\t%d\t%s\n", chrom, pos, strconv.FormatFloat(mean, 'f', -1, 64))
	return errors.Wrap(err, "writing downsampled output")
}
