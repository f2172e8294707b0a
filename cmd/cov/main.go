//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/bamio"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/cov"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/gaps"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/kmer"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/output"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/refgene"
	"github.com/SebastianHollizeck/groovy-ngs-utils/lib/regions"
)

var version = "DEV"

func main() {
	// Arguments: Input
	var pathAlignment, pathTargets, pathReference, sampleName string
	flag.StringVar(&pathAlignment, "a", "", "Path to coordinate-sorted, indexed alignment file (BAM)")
	flag.StringVar(&pathTargets, "L", "", "Path to target intervals (BED, 0-based half-open)")
	flag.StringVar(&pathReference, "reference", "", "Path to reference FASTA (required for CRAM input)")
	flag.StringVar(&sampleName, "sample", "", "Sample name (default: alignment file name)")
	// Arguments: Filtering
	var minMQ int
	var allowDups bool
	flag.IntVar(&minMQ, "minMQ", 1, "Minimum read mapping quality")
	flag.BoolVar(&allowDups, "dups", false, "Count reads flagged as duplicates")
	// Arguments: Overlap handling
	var overlapModeRaw string
	flag.StringVar(&overlapModeRaw, "om", "none", "Pair overlap mode: 'none' or 'half'")
	// Arguments: Output
	var pathPerBase, pathDownsampled, pathSampleSummary, pathIntervalSummary, pathCovJS string
	var downsampleFactor int
	flag.StringVar(&pathPerBase, "o", "", "Path to per-base coverage output (stdout with -, .gz/.bgz/.lz4 compressed by suffix)")
	flag.StringVar(&pathDownsampled, "do", "", "Path to downsampled coverage output")
	flag.IntVar(&downsampleFactor, "df", 0, "Downsample factor (window size in bases)")
	flag.StringVar(&pathSampleSummary, "samplesummary", "", "Path to sample summary output (stdout with -)")
	flag.StringVar(&pathIntervalSummary, "intervalsummary", "", "Path to interval summary output")
	flag.StringVar(&pathCovJS, "covo", "", "Path to coverage JS output")
	// Arguments: Gaps
	var pathGaps, pathGapTargets, pathRefgene string
	var gapThreshold int
	flag.StringVar(&pathGaps, "gaps", "", "Path to coverage gap output (CSV)")
	flag.IntVar(&gapThreshold, "gt", 20, "Gap threshold: report runs of bases with depth below this value")
	flag.StringVar(&pathGapTargets, "gaptarget", "", "Path to gap target intervals (BED); only gaps overlapping these are reported")
	flag.StringVar(&pathRefgene, "refgene", "", "Path to UCSC refGene.txt(.gz) for gap annotation")
	// Arguments: Kmer weighting
	var pathKmer, pathKmerOut string
	flag.StringVar(&pathKmer, "kmer", "", "Path to kmer profile matrix")
	flag.StringVar(&pathKmerOut, "okmer", "", "Path to kmer-adjusted per-base coverage output")
	// Arguments: General
	var verbose, printVersion bool
	flag.BoolVar(&verbose, "v", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Time start
	timeStart := time.Now()

	// Check arguments
	if pathAlignment == "" {
		log.Fatal("No alignment input (see -a)")
	} else if _, err := os.Stat(pathAlignment); os.IsNotExist(err) {
		log.Fatalln(pathAlignment, "not found")
	}
	if pathTargets == "" {
		log.Fatal("No target intervals (see -L)")
	} else if _, err := os.Stat(pathTargets); os.IsNotExist(err) {
		log.Fatalln(pathTargets, "not found")
	}
	if strings.HasSuffix(pathAlignment, ".cram") && pathReference == "" {
		log.Fatal("CRAM input requires -reference")
	}
	if pathGaps != "" && pathRefgene == "" {
		log.Fatal("Gap output requires -refgene")
	}
	if pathDownsampled != "" && downsampleFactor <= 0 {
		log.Fatal("Downsampled output requires a factor (see -df)")
	}
	if downsampleFactor > 0 && pathDownsampled == "" {
		log.Fatal("Downsample factor without output path (see -do)")
	}
	if pathKmerOut != "" && pathKmer == "" {
		log.Fatal("Kmer-adjusted output requires a kmer profile (see -kmer)")
	}
	overlapMode, err := cov.ParseOverlapMode(overlapModeRaw)
	if err != nil {
		log.Fatal(err)
	}

	// Sample name
	if sampleName == "" {
		sampleName = bamio.SampleName(pathAlignment)
	}

	// Open alignment
	provider, err := bamio.Open(pathAlignment, "", 1)
	if err != nil {
		log.Fatal(err)
	}
	defer provider.Close()
	refIDs := make(map[string]int)
	for _, ref := range provider.Refs() {
		refIDs[ref.Name()] = ref.ID()
	}

	// Open targets
	rawRegions, err := regions.OpenBED(pathTargets)
	if err != nil {
		log.Fatal(err)
	}
	targets, err := regions.NewTargets(rawRegions, refIDs)
	if err != nil {
		log.Fatal(err)
	}
	if verbose {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - %d target region(s) covering %d base(s)\n", timeNow.Sub(timeStart).Minutes(), len(targets.Regions), targets.Size())
	}

	cfg := cov.Config{
		Provider:         provider,
		Targets:          targets,
		MinMQ:            byte(minMQ),
		AllowDups:        allowDups,
		Mode:             overlapMode,
		DownsampleFactor: downsampleFactor,
		TrackRegions:     pathIntervalSummary != "",
		GapThreshold:     gapThreshold,
	}
	if verbose {
		cfg.Progress = func(format string, a ...interface{}) {
			timeNow := time.Now()
			fmt.Printf("%.1fmin - %s\n", timeNow.Sub(timeStart).Minutes(), fmt.Sprintf(format, a...))
		}
	}

	// Kmer profile
	if pathKmer != "" {
		profile, err := kmer.Load(pathKmer, sampleName)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Kmer = profile.ReadIndex
		cfg.KmerFactors = profile.Factors
		if verbose {
			timeNow := time.Now()
			fmt.Printf("%.1fmin - Kmer profile: %d kmer(s) of length %d\n", timeNow.Sub(timeStart).Minutes(), len(profile.Factors), profile.K)
		}
	}

	// Output sinks
	var sinks []*output.Sink
	openSink := func(path string) *output.Sink {
		s, err := output.Create(path)
		if err != nil {
			log.Fatal(err)
		}
		sinks = append(sinks, s)
		return s
	}
	if pathPerBase != "" {
		cfg.PerBase = openSink(pathPerBase)
	}
	if pathKmerOut != "" {
		cfg.KmerOut = openSink(pathKmerOut)
	}
	if pathDownsampled != "" {
		cfg.Downsampled = openSink(pathDownsampled)
	}

	// Gap pipeline
	if pathGaps != "" {
		annotator := &gaps.Annotator{Out: openSink(pathGaps)}
		if annotator.Genes, err = refgene.Open(pathRefgene); err != nil {
			log.Fatal(err)
		}
		if pathGapTargets != "" {
			gapRegions, err := regions.OpenBED(pathGapTargets)
			if err != nil {
				log.Fatal(err)
			}
			if annotator.Targets, err = regions.BuildOverlapSet(gapRegions); err != nil {
				log.Fatal(err)
			}
		}
		cfg.Annotator = annotator
	}

	// Run pipeline
	results, err := cfg.Run(context.Background())
	if err != nil {
		for _, s := range sinks {
			s.Close()
		}
		log.Fatal(err)
	}
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Fatal(err)
		}
	}

	// Output: Summaries
	if pathSampleSummary != "" {
		if err := WriteSampleSummary(pathSampleSummary, results.Stats); err != nil {
			log.Fatal(err)
		}
	}
	if pathCovJS != "" {
		if err := WriteCoverageJS(pathCovJS, sampleName, results.Stats); err != nil {
			log.Fatal(err)
		}
	}
	if pathIntervalSummary != "" {
		if err := WriteIntervalSummary(pathIntervalSummary, sampleName, results.RegionStats); err != nil {
			log.Fatal(err)
		}
	}

	if verbose {
		timeEnd := time.Now()
		fmt.Printf("%.1fmin - Done, %d base(s), mean %.2f\n", timeEnd.Sub(timeStart).Minutes(), results.Stats.Total(), results.Stats.Mean())
	}
}
