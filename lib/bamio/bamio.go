//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bamio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/cov"
)

// Provider reads a coordinate-sorted, indexed BAM file and serves
// per-chromosome record iterators. Wire coordinates are 1-based inclusive;
// biogo normalizes them to 0-based half-open at this boundary.
type Provider struct {
	path   string
	f      *os.File
	reader *bam.Reader
	index  *bam.Index
	header *sam.Header
}

// Open opens the alignment file and its index. indexPath may be empty, in
// which case path+".bai" is used. CRAM input is recognized but decoding is
// not supported; callers must have validated the -reference requirement
// before reaching this point.
func Open(path, indexPath string, readWorkers int) (*Provider, error) {
	if strings.HasSuffix(path, ".cram") {
		return nil, errors.Wrapf(cov.ErrInputMismatch, "%s: CRAM decoding is not supported, convert to BAM first", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(cov.ErrInputMismatch, "opening alignment file: %v", err)
	}
	reader, err := bam.NewReader(f, readWorkers)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(cov.ErrInputMismatch, "reading BAM header of %s: %v", path, err)
	}
	if indexPath == "" {
		indexPath = path + ".bai"
	}
	fi, err := os.Open(indexPath)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(cov.ErrInputMismatch, "opening BAM index: %v", err)
	}
	defer fi.Close()
	index, err := bam.ReadIndex(fi)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(cov.ErrInputMismatch, "reading BAM index %s: %v", indexPath, err)
	}
	return &Provider{path: path, f: f, reader: reader, index: index, header: reader.Header()}, nil
}

// Close releases the underlying file.
func (p *Provider) Close() error {
	return p.f.Close()
}

// Refs returns the reference sequences declared in the header.
func (p *Provider) Refs() []*sam.Reference {
	return p.header.Refs()
}

// EstimatedAligned returns the mapped record count recorded in the index for
// one reference, or 0 when the index carries no stats for it.
func (p *Provider) EstimatedAligned(ref *sam.Reference) int {
	stats, ok := p.index.ReferenceStats(ref.ID())
	if !ok {
		return 0
	}
	return int(stats.Mapped)
}

// ContigIterator opens an iterator over one reference's records. A reference
// with no index entries yields an empty iterator.
func (p *Provider) ContigIterator(ref *sam.Reference) (cov.RecordIterator, error) {
	chunks, err := p.index.Chunks(ref, 0, ref.Len())
	if err != nil {
		// The index has nothing for this reference.
		return emptyIterator{}, nil
	}
	it, err := bam.NewIterator(p.reader, chunks)
	if err != nil {
		return nil, err
	}
	return it, nil
}

type emptyIterator struct{}

func (emptyIterator) Next() bool          { return false }
func (emptyIterator) Record() *sam.Record { return nil }
func (emptyIterator) Error() error        { return nil }
func (emptyIterator) Close() error        { return nil }

// SampleName derives the sample name from the alignment file name.
func SampleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
