//
// Copyright (C) 2018-2023 Sebastian Hollizeck
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package output

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Sink is a buffered, optionally compressed output stream. The compression is
// inferred from the path suffix: .gz (gzip), .bgz (bgzf) or .lz4. "-" writes
// to stdout uncompressed.
type Sink struct {
	f    *os.File
	comp io.WriteCloser
	buf  *bufio.Writer
}

// Create opens the sink, truncating any existing file.
func Create(path string) (*Sink, error) {
	if path == "-" {
		return &Sink{buf: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating output %s", path)
	}
	s := &Sink{f: f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		s.comp = gzip.NewWriter(f)
	case strings.HasSuffix(path, ".bgz"):
		s.comp = bgzf.NewWriter(f, 1)
	case strings.HasSuffix(path, ".lz4"):
		s.comp = lz4.NewWriter(f)
	}
	if s.comp != nil {
		s.buf = bufio.NewWriter(s.comp)
	} else {
		s.buf = bufio.NewWriter(f)
	}
	return s, nil
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Close flushes the buffer, finalizes the compressor and closes the file.
func (s *Sink) Close() error {
	if err := s.buf.Flush(); err != nil {
		return err
	}
	if s.comp != nil {
		if err := s.comp.Close(); err != nil {
			return err
		}
	}
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}
