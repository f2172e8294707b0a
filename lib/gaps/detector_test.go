//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package gaps

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func collectBlocks(d *Detector) *[]Block {
	blocks := &[]Block{}
	d.Emit = func(b Block) error {
		*blocks = append(*blocks, b)
		return nil
	}
	return blocks
}

func TestDetectorRuns(t *testing.T) {
	c := qt.New(t)
	d := &Detector{Threshold: 3}
	blocks := collectBlocks(d)
	depths := []int{5, 5, 1, 1, 1, 5, 5, 2, 2, 5, 5}
	for i, depth := range depths {
		c.Assert(d.Offer("c1", 10+i, depth), qt.IsNil)
	}
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(*blocks, qt.DeepEquals, []Block{
		{Chrom: "c1", Start: 12, End: 14, Samples: []int{1, 1, 1}},
		{Chrom: "c1", Start: 17, End: 18, Samples: []int{2, 2}},
	})
}

func TestDetectorFlushClosesOpenBlock(t *testing.T) {
	c := qt.New(t)
	d := &Detector{Threshold: 10}
	blocks := collectBlocks(d)
	c.Assert(d.Offer("c1", 5, 0), qt.IsNil)
	c.Assert(d.Offer("c1", 6, 2), qt.IsNil)
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(*blocks, qt.DeepEquals, []Block{
		{Chrom: "c1", Start: 5, End: 6, Samples: []int{0, 2}},
	})
	// A second flush is a no-op.
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(*blocks, qt.HasLen, 1)
}

func TestDetectorChromChangeClosesBlock(t *testing.T) {
	c := qt.New(t)
	d := &Detector{Threshold: 5}
	blocks := collectBlocks(d)
	c.Assert(d.Offer("c1", 100, 1), qt.IsNil)
	c.Assert(d.Offer("c2", 0, 1), qt.IsNil)
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(*blocks, qt.DeepEquals, []Block{
		{Chrom: "c1", Start: 100, End: 100, Samples: []int{1}},
		{Chrom: "c2", Start: 0, End: 0, Samples: []int{1}},
	})
}

func TestDetectorDiscontiguousPositionsSplit(t *testing.T) {
	c := qt.New(t)
	d := &Detector{Threshold: 5}
	blocks := collectBlocks(d)
	// Positions jump across a target region boundary.
	c.Assert(d.Offer("c1", 10, 1), qt.IsNil)
	c.Assert(d.Offer("c1", 11, 1), qt.IsNil)
	c.Assert(d.Offer("c1", 50, 1), qt.IsNil)
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(*blocks, qt.DeepEquals, []Block{
		{Chrom: "c1", Start: 10, End: 11, Samples: []int{1, 1}},
		{Chrom: "c1", Start: 50, End: 50, Samples: []int{1}},
	})
}

func TestDetectorAtThresholdIsNotAGap(t *testing.T) {
	c := qt.New(t)
	d := &Detector{Threshold: 3}
	blocks := collectBlocks(d)
	c.Assert(d.Offer("c1", 0, 3), qt.IsNil)
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(*blocks, qt.HasLen, 0)
}

func TestBlockStats(t *testing.T) {
	c := qt.New(t)
	b := Block{Chrom: "c1", Start: 10, End: 14, Samples: []int{4, 1, 3, 2, 5}}
	c.Assert(b.Size(), qt.Equals, 5)
	c.Assert(b.Min(), qt.Equals, 1)
	c.Assert(b.Max(), qt.Equals, 5)
	c.Assert(b.Mean(), qt.Equals, 3.0)
	c.Assert(b.Median(), qt.Equals, 3)
}
