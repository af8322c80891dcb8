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
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"
)

func TestIntern(t *testing.T) {
	s1 := Intern("KJ660346.2")
	s2 := Intern(strings.ToUpper("kj660346.2"))
	if s1 != s2 {
		t.Error("Intern returned different symbols for equal strings")
	}
	if Intern("KJ660346.1") == s1 {
		t.Error("Intern returned the same symbol for different strings")
	}
	if *s1 != "KJ660346.2" || SymbolString(s1) != "KJ660346.2" || SymbolString(nil) != "" {
		t.Error("Symbol does not dereference to its string")
	}
}

func TestHandleGzip(t *testing.T) {
	const content = "q\tgi|674810549|gb|KJ660346.2|\n"

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	for _, input := range [][]byte{compressed.Bytes(), []byte(content)} {
		r, err := HandleGzip(bufio.NewReader(bytes.NewReader(input)))
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != content {
			t.Errorf("unexpected content %q", data)
		}
	}

	r, err := HandleGzip(bufio.NewReader(bytes.NewReader(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if data, _ := io.ReadAll(r); len(data) != 0 {
		t.Error("empty input not empty")
	}
}
