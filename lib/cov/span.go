//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

// ReadSpan is the half-open reference interval [Start,End) covered by one
// retained alignment, after mate-overlap clipping. Kmer is the index into the
// sample kmer-factor vector, or -1 when the read has no usable kmer or
// weighting is off.
type ReadSpan struct {
	Start, End int32
	Kmer       int32
}

// OverlapTracker maintains the set of spans covering a query position, for
// queries at strictly non-decreasing positions. Spans must be added in Start
// order. Eviction compacts the retained spans in place: each span is appended
// once and dropped once, and a scan visits only the spans still retained.
type OverlapTracker struct {
	active []ReadSpan
}

// Add appends a span to the active set.
func (t *OverlapTracker) Add(s ReadSpan) {
	t.active = append(t.active, s)
}

// RemoveNonOverlaps evicts every retained span with End <= pos.
func (t *OverlapTracker) RemoveNonOverlaps(pos int32) {
	kept := t.active[:0]
	for _, s := range t.active {
		if s.End > pos {
			kept = append(kept, s)
		}
	}
	t.active = kept
}

// Size returns the current active count.
func (t *OverlapTracker) Size() int {
	return len(t.active)
}

// Iterate returns the retained spans. The slice is owned by the tracker and
// valid until the next Add or RemoveNonOverlaps.
func (t *OverlapTracker) Iterate() []ReadSpan {
	return t.active
}

// Reset empties the tracker, keeping its backing storage.
func (t *OverlapTracker) Reset() {
	t.active = t.active[:0]
}
