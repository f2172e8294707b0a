//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cov

import (
	"context"
	"io"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/gaps"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/regions"
)

const (
	// contigPipelineDepth bounds the contig-level hand-off channels: one
	// message carries a whole contig, so a small depth is enough to keep
	// every stage busy.
	contigPipelineDepth = 2
	// gapMailboxSoftLimit bounds the per-block mailbox of the gap annotator.
	// A Go channel has a single high-water mark, so the soft limit is the
	// blocking bound; the 100k hard limit of the original two-level policy
	// is never reached.
	gapMailboxSoftLimit = 20000
)

// Config wires one coverage run.
type Config struct {
	Provider AlignmentProvider
	Targets  *regions.Targets

	MinMQ     byte
	AllowDups bool
	Mode      OverlapMode

	// Kmer weighting; both nil/empty when off.
	Kmer        KmerFunc
	KmerFactors []float64

	PerBase          io.Writer
	KmerOut          io.Writer
	Downsampled      io.Writer
	DownsampleFactor int
	TrackRegions     bool

	// Gap detection; Annotator nil when off.
	GapThreshold int
	Annotator    *gaps.Annotator

	Progress func(format string, a ...interface{})
}

// Results carries the accumulated statistics of a completed run.
type Results struct {
	Stats       *CoverageStats
	RegionStats []*RegionStat
}

type contigSpans struct {
	chrom string
	spans []ReadSpan
}

type contigDepth struct {
	chrom  string
	regs   []regions.Region
	depth  []uint16
	kdepth []uint16
}

// Run executes the staged pipeline: span reader → depth computer → region
// writer (→ gap detector → annotator). Stages run as independent workers
// joined by bounded channels; the first error cancels the group and
// propagates out.
func (cfg *Config) Run(ctx context.Context) (*Results, error) {
	refByName := make(map[string]*sam.Reference)
	for _, ref := range cfg.Provider.Refs() {
		refByName[ref.Name()] = ref
	}
	chroms := cfg.Targets.Chroms()
	for _, chrom := range chroms {
		if _, ok := refByName[chrom]; !ok {
			return nil, errors.Wrapf(ErrInputMismatch, "target chromosome %s absent from alignment header", chrom)
		}
	}

	reader := &SpanReader{
		Provider:  cfg.Provider,
		MinMQ:     cfg.MinMQ,
		AllowDups: cfg.AllowDups,
		Mode:      cfg.Mode,
		Kmer:      cfg.Kmer,
	}
	writer := &RegionWriter{
		PerBase:      cfg.PerBase,
		KmerOut:      cfg.KmerOut,
		Downsampled:  cfg.Downsampled,
		Factor:       cfg.DownsampleFactor,
		TrackRegions: cfg.TrackRegions,
	}

	g, gctx := errgroup.WithContext(ctx)

	chSpans := make(chan contigSpans, contigPipelineDepth)
	chDepth := make(chan contigDepth, contigPipelineDepth)
	var chBlocks chan gaps.Block
	if cfg.Annotator != nil {
		chBlocks = make(chan gaps.Block, gapMailboxSoftLimit)
	}

	// Span reader
	g.Go(func() error {
		defer close(chSpans)
		for _, chrom := range chroms {
			spans, err := reader.ReadContig(refByName[chrom])
			if err != nil {
				return err
			}
			if cfg.Progress != nil {
				cfg.Progress("%s: %d spans", chrom, len(spans))
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chSpans <- contigSpans{chrom: chrom, spans: spans}:
			}
		}
		return nil
	})

	// Depth computer
	g.Go(func() error {
		defer close(chDepth)
		for cs := range chSpans {
			cd := contigDepth{
				chrom: cs.chrom,
				regs:  cfg.Targets.ByChrom(cs.chrom),
				depth: CountCoverage(cs.spans),
			}
			if cfg.KmerFactors != nil {
				cd.kdepth = CountCoverageWeighted(cs.spans, cfg.KmerFactors)
			}
			// The span array is read exactly once; release it before the
			// next contig.
			cs.spans = nil
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chDepth <- cd:
			}
		}
		return nil
	})

	// Region writer, feeding the gap detector
	g.Go(func() error {
		if chBlocks != nil {
			defer close(chBlocks)
			detector := &gaps.Detector{
				Threshold: cfg.GapThreshold,
				Emit: func(b gaps.Block) error {
					select {
					case <-gctx.Done():
						return gctx.Err()
					case chBlocks <- b:
						return nil
					}
				},
			}
			writer.Gap = detector.Offer
			for cd := range chDepth {
				if err := writer.WriteContig(cd.chrom, cd.regs, cd.depth, cd.kdepth); err != nil {
					return err
				}
			}
			return detector.Flush()
		}
		for cd := range chDepth {
			if err := writer.WriteContig(cd.chrom, cd.regs, cd.depth, cd.kdepth); err != nil {
				return err
			}
		}
		return nil
	})

	// Gap annotator
	if cfg.Annotator != nil {
		g.Go(func() error {
			return cfg.Annotator.Run(chBlocks)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Results{Stats: &writer.Stats, RegionStats: writer.RegionStats}, nil
}
