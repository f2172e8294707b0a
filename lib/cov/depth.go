//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

import (
	"math"
)

func clampDepth(v int) uint16 {
	if v > MaxDepth {
		return MaxDepth
	}
	return uint16(v)
}

// CountCoverage turns one chromosome's spans, sorted by Start, into a dense
// depth vector indexed by reference position. Position p holds the number of
// spans with Start <= p < End, saturated at MaxDepth. Positions beyond the
// last covered base are not materialized and read as depth 0 downstream.
func CountCoverage(spans []ReadSpan) []uint16 {
	return countCoverage(spans, nil)
}

// CountCoverageWeighted is CountCoverage with each span contributing
// factors[span.Kmer] instead of 1. Spans with an out-of-range Kmer contribute
// 1. The weighted sum is computed in double precision, floored, then
// saturated.
func CountCoverageWeighted(spans []ReadSpan, factors []float64) []uint16 {
	return countCoverage(spans, factors)
}

func countCoverage(spans []ReadSpan, factors []float64) []uint16 {
	if len(spans) == 0 {
		return nil
	}
	var maxEnd int32
	for _, s := range spans {
		if s.End > maxEnd {
			maxEnd = s.End
		}
	}
	depth := make([]uint16, maxEnd)
	var tracker OverlapTracker
	var pos int32
	for _, s := range spans {
		for ; pos < s.Start; pos++ {
			tracker.RemoveNonOverlaps(pos)
			depth[pos] = coverageAt(&tracker, factors)
		}
		tracker.Add(s)
	}
	for ; pos < maxEnd; pos++ {
		tracker.RemoveNonOverlaps(pos)
		depth[pos] = coverageAt(&tracker, factors)
	}
	return depth
}

func coverageAt(tracker *OverlapTracker, factors []float64) uint16 {
	if factors == nil {
		return clampDepth(tracker.Size())
	}
	var sum float64
	for _, s := range tracker.Iterate() {
		if s.Kmer >= 0 && int(s.Kmer) < len(factors) {
			sum += factors[s.Kmer]
		} else {
			sum += 1
		}
	}
	return clampDepth(int(math.Floor(sum)))
}

// DepthAt reads a depth vector with the implicit-zero tail.
func DepthAt(depth []uint16, pos int) int {
	if pos < 0 || pos >= len(depth) {
		return 0
	}
	return int(depth[pos])
}
