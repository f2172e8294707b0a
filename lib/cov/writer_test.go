//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/regions"
)

func depthVector(depths ...int) []uint16 {
	v := make([]uint16, len(depths))
	for i, d := range depths {
		v[i] = uint16(d)
	}
	return v
}

func TestWriterPerBaseAndStats(t *testing.T) {
	c := qt.New(t)
	var perBase bytes.Buffer
	w := &RegionWriter{PerBase: &perBase, TrackRegions: true}
	regs := []regions.Region{
		{Chrom: "c1", From: 0, To: 3},
		{Chrom: "c1", From: 5, To: 8},
	}
	err := w.WriteContig("c1", regs, depthVector(4, 4, 4, 9, 9, 2, 2, 2), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(perBase.String(), qt.Equals,
		"c1\t0\t4\nc1\t1\t4\nc1\t2\t4\nc1\t5\t2\nc1\t6\t2\nc1\t7\t2\n")
	// Sum of per-region totals equals the targeted base count.
	var regTotal int64
	for _, rs := range w.RegionStats {
		regTotal += rs.Stats.Total()
	}
	c.Assert(regTotal, qt.Equals, w.Stats.Total())
	c.Assert(w.Stats.Total(), qt.Equals, int64(6))
	c.Assert(w.Stats.Mean(), qt.Equals, 3.0)
}

func TestWriterImplicitZeroTail(t *testing.T) {
	c := qt.New(t)
	var perBase bytes.Buffer
	w := &RegionWriter{PerBase: &perBase}
	err := w.WriteContig("c1", []regions.Region{{Chrom: "c1", From: 0, To: 4}}, depthVector(7, 7), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(perBase.String(), qt.Equals, "c1\t0\t7\nc1\t1\t7\nc1\t2\t0\nc1\t3\t0\n")
}

func TestWriterDownsampling(t *testing.T) {
	c := qt.New(t)
	var down bytes.Buffer
	w := &RegionWriter{Downsampled: &down, Factor: 5}
	err := w.WriteContig("c1", []regions.Region{{Chrom: "c1", From: 0, To: 10}},
		depthVector(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), nil)
	c.Assert(err, qt.IsNil)
	// Window means are written at offset 2 of each 5-base window; the
	// emitting position itself does not feed the accumulator.
	c.Assert(down.String(), qt.Equals, "c1\t2\t1.5\nc1\t7\t6.5\n")
}

func TestWriterDownsamplingTrailingWindow(t *testing.T) {
	c := qt.New(t)
	var down bytes.Buffer
	w := &RegionWriter{Downsampled: &down, Factor: 5}
	err := w.WriteContig("c1", []regions.Region{{Chrom: "c1", From: 0, To: 7}},
		depthVector(1, 2, 3, 4, 5, 6, 8), nil)
	c.Assert(err, qt.IsNil)
	// The second window ends at the region boundary before reaching its
	// emission offset: it flushes there with the accumulated samples.
	c.Assert(down.String(), qt.Equals, "c1\t2\t1.5\nc1\t6\t7\n")
}

func TestWriterDownsamplingFactorOne(t *testing.T) {
	c := qt.New(t)
	var down bytes.Buffer
	w := &RegionWriter{Downsampled: &down, Factor: 1}
	err := w.WriteContig("c1", []regions.Region{{Chrom: "c1", From: 3, To: 6}}, depthVector(0, 0, 0, 5, 6, 7), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(down.String(), qt.Equals, "c1\t3\t5\nc1\t4\t6\nc1\t5\t7\n")
}

func TestWriterGapFeedOrder(t *testing.T) {
	c := qt.New(t)
	var fed []int
	w := &RegionWriter{Gap: func(chrom string, pos, depth int) error {
		fed = append(fed, pos)
		return nil
	}}
	err := w.WriteContig("c1", []regions.Region{{Chrom: "c1", From: 2, To: 5}, {Chrom: "c1", From: 8, To: 10}},
		depthVector(1, 1, 1, 1, 1), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(fed, qt.DeepEquals, []int{2, 3, 4, 8, 9})
}
