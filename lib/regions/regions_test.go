//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package regions

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func writeBED(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "targets.bed")
	c.Assert(os.WriteFile(path, []byte(content), 0666), qt.IsNil)
	return path
}

func TestOpenBED(t *testing.T) {
	c := qt.New(t)
	path := writeBED(c, "# comment\ntrack name=test\nchr1\t10\t20\tAMPL1\textra\nchr2\t0\t5\n")
	regs, err := OpenBED(path)
	c.Assert(err, qt.IsNil)
	c.Assert(regs, qt.DeepEquals, []Region{
		{Chrom: "chr1", From: 10, To: 20, RefID: -1, Extra: []string{"AMPL1", "extra"}},
		{Chrom: "chr2", From: 0, To: 5, RefID: -1},
	})
}

func TestOpenBEDRejectsMalformed(t *testing.T) {
	c := qt.New(t)
	_, err := OpenBED(writeBED(c, "chr1\t10\n"))
	c.Assert(err, qt.IsNotNil)
	_, err = OpenBED(writeBED(c, "chr1\tx\t20\n"))
	c.Assert(err, qt.IsNotNil)
	_, err = OpenBED(writeBED(c, "chr1\t20\t10\n"))
	c.Assert(err, qt.IsNotNil)
}

func TestNewTargetsMergesAndOrders(t *testing.T) {
	c := qt.New(t)
	refIDs := map[string]int{"chr2": 0, "chr1": 1}
	targets, err := NewTargets([]Region{
		{Chrom: "chr1", From: 10, To: 20},
		{Chrom: "chr2", From: 5, To: 8},
		{Chrom: "chr1", From: 15, To: 30}, // overlaps
		{Chrom: "chr1", From: 30, To: 40}, // adjacent
		{Chrom: "chr1", From: 50, To: 60},
	}, refIDs)
	c.Assert(err, qt.IsNil)
	// chr2 first: reference order, not name order.
	c.Assert(targets.Chroms(), qt.DeepEquals, []string{"chr2", "chr1"})
	c.Assert(targets.Regions, qt.DeepEquals, []Region{
		{Chrom: "chr2", From: 5, To: 8, RefID: 0},
		{Chrom: "chr1", From: 10, To: 40, RefID: 1},
		{Chrom: "chr1", From: 50, To: 60, RefID: 1},
	})
	c.Assert(targets.Size(), qt.Equals, 43)
}

func TestNewTargetsIdempotent(t *testing.T) {
	c := qt.New(t)
	refIDs := map[string]int{"chr1": 0}
	first, err := NewTargets([]Region{
		{Chrom: "chr1", From: 0, To: 10},
		{Chrom: "chr1", From: 5, To: 15},
	}, refIDs)
	c.Assert(err, qt.IsNil)
	second, err := NewTargets(first.Regions, refIDs)
	c.Assert(err, qt.IsNil)
	c.Assert(second.Regions, qt.DeepEquals, first.Regions)
}

func TestNewTargetsMissingContig(t *testing.T) {
	c := qt.New(t)
	_, err := NewTargets([]Region{{Chrom: "chrZ", From: 0, To: 1}}, map[string]int{"chr1": 0})
	c.Assert(err, qt.ErrorMatches, ".*chrZ absent from alignment header.*")
}

func TestByChrom(t *testing.T) {
	c := qt.New(t)
	targets, err := NewTargets([]Region{
		{Chrom: "chr1", From: 0, To: 5},
		{Chrom: "chr2", From: 0, To: 5},
		{Chrom: "chr1", From: 10, To: 15},
	}, map[string]int{"chr1": 0, "chr2": 1})
	c.Assert(err, qt.IsNil)
	c.Assert(targets.ByChrom("chr1"), qt.DeepEquals, []Region{
		{Chrom: "chr1", From: 0, To: 5, RefID: 0},
		{Chrom: "chr1", From: 10, To: 15, RefID: 0},
	})
	c.Assert(targets.ByChrom("chrX"), qt.IsNil)
}

func TestOverlapSet(t *testing.T) {
	c := qt.New(t)
	set, err := BuildOverlapSet([]Region{
		{Chrom: "chr1", From: 10, To: 20},
		{Chrom: "chr1", From: 30, To: 40},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(set.Overlaps("chr1", 15, 25), qt.IsTrue)
	c.Assert(set.Overlaps("chr1", 20, 30), qt.IsFalse)
	c.Assert(set.Overlaps("chr2", 15, 25), qt.IsFalse)
	got := set.Intersect("chr1", 15, 35)
	c.Assert(got, qt.HasLen, 2)
	c.Assert(got[0].From, qt.Equals, 10)
	c.Assert(got[1].From, qt.Equals, 30)
}
