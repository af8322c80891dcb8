// blastdiff: a tool for comparing BLAST tabular search results.
// Copyright (c) 2020-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/blastdiff/blob/master/LICENSE.txt>.

package utils

import (
	"bufio"
	"compress/gzip"
	"io"
)

// IsGzip peeks at the first byte of the given reader and reports
// whether it starts a gzip member. Empty input is not gzip.
func IsGzip(buf *bufio.Reader) (bool, error) {
	b, err := buf.Peek(2)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return b[0] == 0x1f && b[1] == 0x8b, nil
}

// HandleGzip returns a reader that transparently decompresses gzip
// (and BGZF, which is multi-member gzip) input, and returns buf
// unchanged otherwise.
func HandleGzip(buf *bufio.Reader) (io.Reader, error) {
	ok, err := IsGzip(buf)
	if err != nil || !ok {
		return buf, err
	}
	r, err := gzip.NewReader(buf)
	if err != nil {
		return nil, err
	}
	return r, nil
}
