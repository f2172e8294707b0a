//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package regions

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
)

// Integer-specific intervals

type IntInterval struct {
	Start, End int
	UID        uintptr
	Region     Region
}

func (i IntInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i IntInterval) ID() uintptr {
	return i.UID
}

func (i IntInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i IntInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d", i.Start, i.End, i.UID)
}

// OverlapSet answers interval overlap queries against a fixed region set, one
// tree per chromosome.
type OverlapSet struct {
	trees map[string]*interval.IntTree
}

// BuildOverlapSet builds a per-chromosome tree of the given regions.
func BuildOverlapSet(regs []Region) (*OverlapSet, error) {
	s := &OverlapSet{trees: make(map[string]*interval.IntTree)}
	for icoord, reg := range regs {
		// New tree for unseen chromosome
		tree, ok := s.trees[reg.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			s.trees[reg.Chrom] = tree
		}
		iv := IntInterval{Start: reg.From, End: reg.To, UID: uintptr(icoord), Region: reg}
		if err := tree.Insert(iv, false); err != nil {
			return nil, err
		}
	}
	for k := range s.trees {
		s.trees[k].AdjustRanges()
	}
	return s, nil
}

// Overlaps reports whether [from,to) on chrom intersects any region of the set.
func (s *OverlapSet) Overlaps(chrom string, from, to int) bool {
	tree, ok := s.trees[chrom]
	if !ok {
		return false
	}
	q := IntInterval{Start: from, End: to}
	return len(tree.Get(q)) > 0
}

// Intersect returns the regions of the set intersecting [from,to) on chrom,
// sorted by start.
func (s *OverlapSet) Intersect(chrom string, from, to int) []Region {
	tree, ok := s.trees[chrom]
	if !ok {
		return nil
	}
	q := IntInterval{Start: from, End: to}
	var regs []Region
	for _, iv := range tree.Get(q) {
		regs = append(regs, iv.(IntInterval).Region)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].From < regs[j].From })
	return regs
}
