//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

import (
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

// OverlapMode selects the policy for bases covered by both mates of a pair.
type OverlapMode int

const (
	// OverlapNone clips the mate that aligns first at the other mate's start
	// so no base is counted twice. When both mates start at the same
	// position, the first-of-pair read is dropped entirely and the mate kept
	// whole.
	OverlapNone OverlapMode = iota
	// OverlapHalf is the legacy policy: the first-of-pair side is clipped to
	// end one base before the mate start. It does not clip when the second
	// of pair aligns first, and is kept for backward compatibility.
	OverlapHalf
)

// ParseOverlapMode maps the command-line spelling to an OverlapMode.
func ParseOverlapMode(s string) (OverlapMode, error) {
	switch s {
	case "none":
		return OverlapNone, nil
	case "half":
		return OverlapHalf, nil
	}
	return OverlapNone, errors.Wrapf(ErrConfig, "overlap mode %q not one of none, half", s)
}

// RecordIterator yields the primary alignment records of one chromosome in
// coordinate order. It matches the iterator of biogo's bam package.
type RecordIterator interface {
	Next() bool
	Record() *sam.Record
	Error() error
	Close() error
}

// AlignmentProvider hands out per-chromosome record iterators plus the header
// metadata the engine needs.
type AlignmentProvider interface {
	// Refs returns the reference sequences declared in the header.
	Refs() []*sam.Reference
	// EstimatedAligned returns the index-derived aligned record count for a
	// reference, or 0 when unknown.
	EstimatedAligned(ref *sam.Reference) int
	// ContigIterator opens an iterator over one reference's records.
	ContigIterator(ref *sam.Reference) (RecordIterator, error)
}

// KmerFunc returns a read's kmer-factor index, or -1 when it has none.
type KmerFunc func(rec *sam.Record) int32

// SpanReader extracts filtered, overlap-clipped read spans from an alignment
// provider, one chromosome at a time.
type SpanReader struct {
	Provider  AlignmentProvider
	MinMQ     byte
	AllowDups bool
	Mode      OverlapMode
	Kmer      KmerFunc
}

// ReadContig drains one chromosome and returns its spans in non-decreasing
// Start order. Rejection by any filter is silent.
func (r *SpanReader) ReadContig(ref *sam.Reference) ([]ReadSpan, error) {
	it, err := r.Provider.ContigIterator(ref)
	if err != nil {
		return nil, errors.Wrapf(ErrProvider, "opening iterator for %s: %v", ref.Name(), err)
	}
	defer it.Close()

	spans := make([]ReadSpan, 0, r.Provider.EstimatedAligned(ref))
	for it.Next() {
		rec := it.Record()
		if rec.Ref == nil || rec.Ref.ID() != ref.ID() {
			continue
		}
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			continue
		}
		if rec.MapQ < r.MinMQ {
			continue
		}
		if rec.Flags&sam.Duplicate != 0 && !r.AllowDups {
			continue
		}
		start, end, keep := clipMateOverlap(rec, r.Mode)
		if !keep || end <= start {
			continue
		}
		kidx := int32(-1)
		if r.Kmer != nil {
			kidx = r.Kmer(rec)
		}
		spans = append(spans, ReadSpan{Start: int32(start), End: int32(end), Kmer: kidx})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(ErrProvider, "reading %s: %v", ref.Name(), err)
	}
	return spans, nil
}

// clipMateOverlap applies the configured overlap policy to one record and
// returns its possibly clipped half-open span. keep is false when the record
// is dropped outright.
func clipMateOverlap(rec *sam.Record, mode OverlapMode) (start, end int, keep bool) {
	start, end = rec.Pos, rec.End()
	if rec.Flags&sam.Paired == 0 {
		return start, end, true
	}
	mateHere := rec.Flags&sam.MateUnmapped == 0 &&
		rec.MateRef != nil && rec.Ref != nil && rec.MateRef.ID() == rec.Ref.ID()
	if !mateHere {
		return start, end, true
	}
	first := rec.Flags&sam.Read1 != 0
	mateStart := rec.MatePos
	switch mode {
	case OverlapNone:
		if first && mateStart == start {
			// Identical starts: keep the second-of-pair read whole.
			return 0, 0, false
		}
		if start < mateStart && mateStart <= end {
			end = mateStart
		}
	case OverlapHalf:
		if first && start <= mateStart && mateStart <= end {
			end = mateStart - 1
		}
	}
	return start, end, true
}
