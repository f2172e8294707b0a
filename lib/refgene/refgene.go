//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package refgene

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Transcript is one refGene row: a transcript span with its exons, 0-based
// half-open.
type Transcript struct {
	Name    string
	Symbol  string
	Chrom   string
	Strand  int8
	TxStart int
	TxEnd   int
	Exons   [][]int
}

type txInterval struct {
	start, end int
	uid        uintptr
	tx         *Transcript
}

func (i txInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.end > b.Start && i.start < b.End
}

func (i txInterval) ID() uintptr { return i.uid }

func (i txInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// DB indexes transcripts by chromosome for overlap queries.
type DB struct {
	trees map[string]*interval.IntTree
}

// Open parses a UCSC refGene.txt or refGene.txt.gz annotation table and builds
// the lookup index. Expected columns: bin, name, chrom, strand, txStart,
// txEnd, cdsStart, cdsEnd, exonCount, exonStarts, exonEnds, score, name2, ...
func Open(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening refgene file")
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "opening gzip refgene file %s", path)
		}
		defer gz.Close()
		rd = gz
	}

	db := &DB{trees: make(map[string]*interval.IntTree)}
	var uid uintptr
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var nline int
	for scanner.Scan() {
		nline++
		line := scanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 13 {
			return nil, errors.Errorf("refgene file %s line %d: expected 13+ columns, got %d", path, nline, len(fields))
		}
		tx := &Transcript{Name: fields[1], Chrom: fields[2], Symbol: fields[12]}
		if fields[3] == "-" {
			tx.Strand = -1
		} else {
			tx.Strand = 1
		}
		if tx.TxStart, err = strconv.Atoi(fields[4]); err != nil {
			return nil, errors.Wrapf(err, "refgene file %s line %d", path, nline)
		}
		if tx.TxEnd, err = strconv.Atoi(fields[5]); err != nil {
			return nil, errors.Wrapf(err, "refgene file %s line %d", path, nline)
		}
		starts, err := splitCoords(fields[9])
		if err != nil {
			return nil, errors.Wrapf(err, "refgene file %s line %d", path, nline)
		}
		ends, err := splitCoords(fields[10])
		if err != nil {
			return nil, errors.Wrapf(err, "refgene file %s line %d", path, nline)
		}
		if len(starts) != len(ends) {
			return nil, errors.Errorf("refgene file %s line %d: %d exon starts but %d ends", path, nline, len(starts), len(ends))
		}
		for i := range starts {
			tx.Exons = append(tx.Exons, []int{starts[i], ends[i]})
		}
		tree, ok := db.trees[tx.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			db.trees[tx.Chrom] = tree
		}
		if err := tree.Insert(txInterval{start: tx.TxStart, end: tx.TxEnd, uid: uid, tx: tx}, false); err != nil {
			return nil, err
		}
		uid++
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading refgene file %s", path)
	}
	for k := range db.trees {
		db.trees[k].AdjustRanges()
	}
	return db, nil
}

// splitCoords parses the trailing-comma coordinate lists of refGene rows.
func splitCoords(s string) (coords []int, err error) {
	for _, c := range strings.Split(strings.TrimSuffix(s, ","), ",") {
		if c == "" {
			continue
		}
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, err
		}
		coords = append(coords, n)
	}
	return coords, nil
}

// Query returns the transcripts overlapping [from,to) on chrom.
func (db *DB) Query(chrom string, from, to int) []*Transcript {
	tree, ok := db.trees[chrom]
	if !ok {
		return nil
	}
	var txs []*Transcript
	for _, iv := range tree.Get(txInterval{start: from, end: to}) {
		txs = append(txs, iv.(txInterval).tx)
	}
	return txs
}
