//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package output

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

const payload = "chr1\t100\t42\nchr1\t101\t43\n"

func writeSink(c *qt.C, path string) {
	s, err := Create(path)
	c.Assert(err, qt.IsNil)
	_, err = io.WriteString(s, payload)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Close(), qt.IsNil)
}

func TestSinkPlain(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "cov.tsv")
	writeSink(c, path)
	body, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, payload)
}

func TestSinkGzip(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "cov.tsv.gz")
	writeSink(c, path)
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	c.Assert(err, qt.IsNil)
	body, err := io.ReadAll(gz)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, payload)
}

func TestSinkBgzf(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "cov.tsv.bgz")
	writeSink(c, path)
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	bz, err := bgzf.NewReader(f, 1)
	c.Assert(err, qt.IsNil)
	body, err := io.ReadAll(bz)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, payload)
}

func TestSinkLZ4(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "cov.tsv.lz4")
	writeSink(c, path)
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	body, err := io.ReadAll(lz4.NewReader(f))
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, payload)
}
