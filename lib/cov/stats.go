//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

// MaxDepth is the saturation bound of stored depth values. Deeper pileups are
// counted as exactly MaxDepth, in the depth vectors and in every statistic
// derived from them.
const MaxDepth = 1000

// CoverageStats accumulates a bounded histogram over depth values [0,MaxDepth]
// and answers mean, median and fraction-above queries. Depths beyond MaxDepth
// accumulate into the top bucket.
type CoverageStats struct {
	buckets [MaxDepth + 1]int64
	total   int64
}

// Add records one observed depth.
func (s *CoverageStats) Add(depth int) {
	if depth > MaxDepth {
		depth = MaxDepth
	}
	s.buckets[depth]++
	s.total++
}

// Total returns the number of recorded depths.
func (s *CoverageStats) Total() int64 {
	return s.total
}

// Mean returns the mean depth, or 0 for an empty accumulator.
func (s *CoverageStats) Mean() float64 {
	if s.total == 0 {
		return 0
	}
	var sum int64
	for depth, n := range s.buckets {
		sum += int64(depth) * n
	}
	return float64(sum) / float64(s.total)
}

// Median returns the median depth, or 0 for an empty accumulator. For an even
// count the lower middle value is returned.
func (s *CoverageStats) Median() int {
	if s.total == 0 {
		return 0
	}
	mid := (s.total + 1) / 2
	var cum int64
	for depth, n := range s.buckets {
		cum += n
		if cum >= mid {
			return depth
		}
	}
	return MaxDepth
}

// FractionAbove returns the fraction of recorded depths that are at least k.
func (s *CoverageStats) FractionAbove(k int) float64 {
	if s.total == 0 {
		return 0
	}
	if k > MaxDepth {
		k = MaxDepth
	}
	var above int64
	for depth := k; depth <= MaxDepth; depth++ {
		above += s.buckets[depth]
	}
	return float64(above) / float64(s.total)
}
