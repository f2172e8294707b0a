//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package kmer

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Profile holds one sample's kmer weighting factors. Factors[i] multiplies
// the depth contribution of reads whose leading K bases equal the i-th kmer
// of the profile matrix.
type Profile struct {
	K       int
	Index   map[string]int32
	Factors []float64
}

// Load parses a kmer count matrix (rows are samples, columns are kmers,
// tab-separated, first column the sample name, header row the kmer strings)
// and returns the normalized factor vector of the named sample.
//
// Normalization: each row is divided by its row sum, each column by its
// column sum, then every cell is inverted; cells that were zero, and cells
// that became NaN, are set to 1.0.
func Load(path, sample string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening kmer profile")
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "opening gzip kmer profile %s", path)
		}
		defer gz.Close()
		rd = gz
	}

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrapf(err, "reading kmer profile %s", path)
		}
		return nil, errors.Errorf("kmer profile %s is empty", path)
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 2 {
		return nil, errors.Errorf("kmer profile %s: header has no kmer columns", path)
	}
	kmers := header[1:]
	k := len(kmers[0])
	index := make(map[string]int32, len(kmers))
	for i, km := range kmers {
		if len(km) != k {
			return nil, errors.Errorf("kmer profile %s: kmer %q length differs from %d", path, km, k)
		}
		index[strings.ToUpper(km)] = int32(i)
	}

	var names []string
	var matrix [][]float64
	var nline int
	for scanner.Scan() {
		nline++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != len(header) {
			return nil, errors.Errorf("kmer profile %s line %d: %d columns, header has %d", path, nline+1, len(fields), len(header))
		}
		row := make([]float64, len(kmers))
		for i, v := range fields[1:] {
			if row[i], err = strconv.ParseFloat(v, 64); err != nil {
				return nil, errors.Wrapf(err, "kmer profile %s line %d", path, nline+1)
			}
		}
		names = append(names, fields[0])
		matrix = append(matrix, row)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading kmer profile %s", path)
	}

	normalize(matrix)

	for i, name := range names {
		if name == sample {
			return &Profile{K: k, Index: index, Factors: matrix[i]}, nil
		}
	}
	return nil, errors.Errorf("kmer profile %s: no row for sample %s", path, sample)
}

func normalize(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}
	ncol := len(matrix[0])
	// Rows by row sum
	for _, row := range matrix {
		var sum float64
		for _, v := range row {
			sum += v
		}
		for i := range row {
			row[i] /= sum
		}
	}
	// Columns by column sum
	for j := 0; j < ncol; j++ {
		var sum float64
		for _, row := range matrix {
			sum += row[j]
		}
		for _, row := range matrix {
			row[j] /= sum
		}
	}
	// Invert, zeros and NaN become neutral weights
	for _, row := range matrix {
		for i, v := range row {
			if v == 0 || math.IsNaN(v) {
				row[i] = 1.0
				continue
			}
			row[i] = 1.0 / v
			if math.IsNaN(row[i]) {
				row[i] = 1.0
			}
		}
	}
}

// ReadIndex returns the factor index of a read's leading kmer, or -1 when the
// read is shorter than K or its kmer is not in the profile.
func (p *Profile) ReadIndex(rec *sam.Record) int32 {
	if rec.Seq.Length < p.K {
		return -1
	}
	seq := rec.Seq.Expand()
	if len(seq) < p.K {
		return -1
	}
	if idx, ok := p.Index[strings.ToUpper(string(seq[:p.K]))]; ok {
		return idx
	}
	return -1
}
