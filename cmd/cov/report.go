//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/cov"
)

// thresholds of the perc_bases_above_* sample summary columns.
var summaryThresholds = []int{1, 5, 10, 20, 50}

// WriteSampleSummary writes the one-row sample-wide coverage summary TSV.
func WriteSampleSummary(path string, stats *cov.CoverageStats) error {
	header := []string{"Median Coverage", "Mean Coverage"}
	row := []string{
		strconv.Itoa(stats.Median()),
		strconv.FormatFloat(stats.Mean(), 'f', -1, 64),
	}
	for _, k := range summaryThresholds {
		header = append(header, fmt.Sprintf("perc_bases_above_%d", k))
		row = append(row, strconv.FormatFloat(100*stats.FractionAbove(k), 'f', -1, 64))
	}
	lines := strings.Join(header, "\t") + "\n" + strings.Join(row, "\t") + "\n"
	if path == "-" {
		fmt.Print(lines)
		return nil
	}
	return os.WriteFile(path, []byte(lines), 0666)
}

// WriteCoverageJS writes the coverage JS file: a "covs = // NOJSON" prefix
// followed by pretty-printed means and medians keyed by sample.
func WriteCoverageJS(path, sample string, stats *cov.CoverageStats) error {
	payload := struct {
		Means   map[string]float64 `json:"means"`
		Medians map[string]int     `json:"medians"`
	}{
		Means:   map[string]float64{sample: stats.Mean()},
		Medians: map[string]int{sample: stats.Median()},
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "covs = // NOJSON\n%s\n", body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteIntervalSummary writes the two-row per-region mean coverage TSV. A
// region is named by its first extra BED column when present, otherwise by
// its coordinates. NaN means are coerced to 0.
func WriteIntervalSummary(path, sample string, regionStats []*cov.RegionStat) error {
	header := []string{"sample"}
	row := []string{sample}
	for _, rs := range regionStats {
		name := fmt.Sprintf("%s:%d-%d", rs.Region.Chrom, rs.Region.From, rs.Region.To)
		if len(rs.Region.Extra) > 0 && rs.Region.Extra[0] != "" {
			name = rs.Region.Extra[0]
		}
		header = append(header, name)
		mean := rs.Stats.Mean()
		if math.IsNaN(mean) {
			mean = 0
		}
		row = append(row, strconv.FormatFloat(mean, 'f', -1, 64))
	}
	lines := strings.Join(header, "\t") + "\n" + strings.Join(row, "\t") + "\n"
	return os.WriteFile(path, []byte(lines), 0666)
}
