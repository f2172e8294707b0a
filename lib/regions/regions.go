//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package regions

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Region is a half-open target interval [From,To) on Chrom. Extra keeps any
// columns beyond the first three of the input line as opaque strings.
type Region struct {
	Chrom string
	From  int
	To    int
	RefID int
	Extra []string
}

// Size returns the number of bases covered by the region.
func (r Region) Size() int {
	return r.To - r.From
}

// Overlaps reports whether the region intersects [from,to) on chrom.
func (r Region) Overlaps(chrom string, from, to int) bool {
	return r.Chrom == chrom && r.To > from && r.From < to
}

// Targets is a normalized target region set: merged, non-overlapping regions
// sorted by reference index then start coordinate.
type Targets struct {
	Regions []Region
}

// Sorting functions: By coordinate within the same ordering of chromosomes
type byRefCoord []Region

func (r byRefCoord) Len() int      { return len(r) }
func (r byRefCoord) Swap(i, j int) { r[i], r[j] = r[j], r[i] }
func (r byRefCoord) Less(i, j int) bool {
	if r[i].RefID != r[j].RefID {
		return r[i].RefID < r[j].RefID
	}
	if r[i].Chrom != r[j].Chrom {
		return r[i].Chrom < r[j].Chrom
	}
	return r[i].From < r[j].From
}

// OpenBED parses a 3+ column tab-separated interval file (0-based half-open)
// and returns the raw region list. Lines starting with "#", "track" or
// "browser" are skipped. Files ending in .gz are decompressed on the fly.
func OpenBED(path string) (regs []Region, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening target file")
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "opening gzip target file %s", path)
		}
		defer gz.Close()
		rd = gz
	}

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var nline int
	for scanner.Scan() {
		nline++
		line := scanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, errors.Errorf("target file %s line %d: expected at least 3 columns", path, nline)
		}
		from, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "target file %s line %d", path, nline)
		}
		to, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "target file %s line %d", path, nline)
		}
		if to < from {
			return nil, errors.Errorf("target file %s line %d: end %d before start %d", path, nline, to, from)
		}
		reg := Region{Chrom: fields[0], From: from, To: to, RefID: -1}
		if len(fields) > 3 {
			reg.Extra = fields[3:]
		}
		regs = append(regs, reg)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading target file %s", path)
	}
	return regs, nil
}

// NewTargets normalizes raw regions into a target set: regions are ordered by
// reference index (refIDs maps chromosome name to index) then by start, and
// overlapping or adjacent same-chromosome regions are merged. Every chromosome
// named in regs must be present in refIDs.
func NewTargets(regs []Region, refIDs map[string]int) (*Targets, error) {
	sorted := make([]Region, len(regs))
	copy(sorted, regs)
	for i := range sorted {
		id, ok := refIDs[sorted[i].Chrom]
		if !ok {
			return nil, errors.Errorf("target chromosome %s absent from alignment header", sorted[i].Chrom)
		}
		sorted[i].RefID = id
	}
	sort.Stable(byRefCoord(sorted))

	// Merge overlapping and adjacent intervals
	merged := make([]Region, 0, len(sorted))
	for _, reg := range sorted {
		if n := len(merged); n > 0 && merged[n-1].Chrom == reg.Chrom && reg.From <= merged[n-1].To {
			if reg.To > merged[n-1].To {
				merged[n-1].To = reg.To
			}
			continue
		}
		merged = append(merged, reg)
	}
	return &Targets{Regions: merged}, nil
}

// Chroms returns the distinct chromosome names in target order.
func (t *Targets) Chroms() []string {
	var chroms []string
	for _, reg := range t.Regions {
		if n := len(chroms); n == 0 || chroms[n-1] != reg.Chrom {
			chroms = append(chroms, reg.Chrom)
		}
	}
	return chroms
}

// ByChrom returns the sub-regions of one chromosome, in start order.
func (t *Targets) ByChrom(chrom string) []Region {
	var regs []Region
	for _, reg := range t.Regions {
		if reg.Chrom == chrom {
			regs = append(regs, reg)
		}
	}
	return regs
}

// Size returns the total number of targeted bases.
func (t *Targets) Size() (size int) {
	for _, reg := range t.Regions {
		size += reg.Size()
	}
	return
}
