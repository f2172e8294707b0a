//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package gaps

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/fatih/set.v0"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/refgene"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/regions"
)

// Annotator drains detected blocks, optionally restricts them to the gap
// target set (splitting a block at the intersection boundaries), annotates
// each piece against refgene, and writes the gap CSV. It is the terminal
// stage of the gap pipeline and runs as its own worker.
type Annotator struct {
	Targets *regions.OverlapSet
	Genes   *refgene.DB
	Out     io.Writer

	nextID int
}

// Run consumes blocks until the channel closes. The header is written first,
// rows follow in arrival order.
func (a *Annotator) Run(blocks <-chan Block) error {
	if err := a.writeHeader(); err != nil {
		return err
	}
	for b := range blocks {
		for _, piece := range a.restrict(b) {
			if err := a.writeBlock(piece); err != nil {
				return err
			}
		}
	}
	return nil
}

// restrict intersects a block with the gap target set. Without a target set
// the block passes through whole.
func (a *Annotator) restrict(b Block) []Block {
	if a.Targets == nil {
		return []Block{b}
	}
	var pieces []Block
	for _, reg := range a.Targets.Intersect(b.Chrom, b.Start, b.End+1) {
		start, end := b.Start, b.End
		if reg.From > start {
			start = reg.From
		}
		if reg.To-1 < end {
			end = reg.To - 1
		}
		pieces = append(pieces, Block{
			Chrom:   b.Chrom,
			Start:   start,
			End:     end,
			Samples: b.Samples[start-b.Start : end-b.Start+1],
		})
	}
	return pieces
}

func (a *Annotator) writeHeader() error {
	cols := []string{"id", "chr", "start", "end", "size", "min", "max", "mean", "median"}
	if a.Genes != nil {
		cols = append(cols, "gene", "exons")
	}
	_, err := fmt.Fprintln(a.Out, strings.Join(cols, ","))
	return errors.Wrap(err, "writing gap output")
}

func (a *Annotator) writeBlock(b Block) error {
	cols := []string{
		strconv.Itoa(a.nextID),
		b.Chrom,
		strconv.Itoa(b.Start),
		strconv.Itoa(b.End),
		strconv.Itoa(b.Size()),
		strconv.Itoa(b.Min()),
		strconv.Itoa(b.Max()),
		strconv.FormatFloat(b.Mean(), 'f', -1, 64),
		strconv.Itoa(b.Median()),
	}
	if a.Genes != nil {
		genes, exons := a.annotate(b)
		cols = append(cols, strings.Join(genes, ";"), strconv.Itoa(exons))
	}
	a.nextID++
	_, err := fmt.Fprintln(a.Out, strings.Join(cols, ","))
	return errors.Wrap(err, "writing gap output")
}

// annotate returns the distinct gene symbols overlapping the block, in first
// seen order, and the number of their exons the block touches.
func (a *Annotator) annotate(b Block) (genes []string, exons int) {
	seen := set.New(set.NonThreadSafe)
	for _, tx := range a.Genes.Query(b.Chrom, b.Start, b.End+1) {
		if !seen.Has(tx.Symbol) {
			seen.Add(tx.Symbol)
			genes = append(genes, tx.Symbol)
		}
		for _, exon := range tx.Exons {
			if exon[1] > b.Start && exon[0] <= b.End {
				exons++
			}
		}
	}
	return genes, exons
}
