//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package gaps

// Detector is an online state machine turning an in-order stream of
// (chrom, pos, depth) points into maximal sub-threshold blocks. Blocks never
// cross a chromosome boundary, and at most one block is open at a time.
type Detector struct {
	Threshold int
	Emit      func(Block) error

	open    bool
	chrom   string
	start   int
	lastPos int
	samples []int
}

// Offer consumes the next depth point. Points must arrive in position order
// within a chromosome; a chromosome change closes any pending block.
func (d *Detector) Offer(chrom string, pos, depth int) error {
	if d.open && chrom != d.chrom {
		if err := d.close(); err != nil {
			return err
		}
	}
	if depth < d.Threshold {
		if d.open && pos != d.lastPos+1 {
			// Discontiguous target positions end the run.
			if err := d.close(); err != nil {
				return err
			}
		}
		if !d.open {
			d.open = true
			d.chrom = chrom
			d.start = pos
			d.samples = d.samples[:0]
		}
		d.lastPos = pos
		d.samples = append(d.samples, depth)
		return nil
	}
	if d.open {
		return d.close()
	}
	return nil
}

// Flush closes any open block at its last observed position. Call once at
// end of stream.
func (d *Detector) Flush() error {
	if d.open {
		return d.close()
	}
	return nil
}

func (d *Detector) close() error {
	samples := make([]int, len(d.samples))
	copy(samples, d.samples)
	d.open = false
	return d.Emit(Block{Chrom: d.chrom, Start: d.start, End: d.lastPos, Samples: samples})
}
