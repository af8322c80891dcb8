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

package tabular

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/blastdiff/internal"
	"github.com/exascience/blastdiff/utils"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineLength     = math.MaxInt32
)

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func skipLine(line string) bool {
	return line == "" || line[0] == '#'
}

// Parse reads all hits from the given reader. The filename is only
// used for error messages and is recorded in the result.
func Parse(reader io.Reader, filename string) (file *File, err error) {
	input := bufio.NewReader(reader)
	file = &File{Filename: filename}

	// Comments before the first hit are kept, and the first hit
	// determines the layout of the whole file.
	var first string
	for {
		line, rerr := input.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, rerr
		}
		line = trimLine(line)
		if line != "" && line[0] == '#' {
			file.Comments = append(file.Comments, line)
		} else if line != "" {
			first = line
			break
		}
		if rerr == io.EOF {
			return file, nil
		}
	}
	if file.Format, err = DetectFormat(strings.Count(first, "\t") + 1); err != nil {
		return nil, fmt.Errorf("%v, in %v", err, filename)
	}
	hit, err := ParseHit(first, file.Format)
	if err != nil {
		return nil, fmt.Errorf("%v, while parsing BLAST hit %v in %v", err, first, filename)
	}
	file.Hits = append(file.Hits, hit)

	var p pipeline.Pipeline
	// Extended hits carry whole aligned sequences, so lines may be
	// far longer than the default scanner limit.
	scanner := pipeline.NewScanner(input)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineLength)
	p.Source(scanner)
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		hits := make([]*Hit, 0, len(lines))
		for _, line := range lines {
			line = trimLine(line)
			if skipLine(line) {
				continue
			}
			hit, err := ParseHit(line, file.Format)
			if err != nil {
				p.SetErr(fmt.Errorf("%v, while parsing BLAST hit %v in %v", err, line, filename))
				return hits
			}
			hits = append(hits, hit)
		}
		return hits
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		file.Hits = append(file.Hits, data.([]*Hit)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return file, nil
}

// ReadFile reads all hits from the named file, which may be gzip
// compressed.
func ReadFile(filename string) (file *File, err error) {
	pathname, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer internal.CloseOrKeep(f, &err)
	reader, err := utils.HandleGzip(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%v, while opening %v", err, filename)
	}
	return Parse(reader, filename)
}

// Write writes the given hits, one per line, including their status.
func Write(writer io.Writer, hits []*Hit) error {
	out := bufio.NewWriter(writer)
	for _, hit := range hits {
		if _, err := out.WriteString(hit.String()); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteFile writes the given hits to the named file, preceded by the
// given comment lines.
func WriteFile(filename string, comments []string, hits []*Hit) (err error) {
	pathname, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	output, err := os.Create(pathname)
	if err != nil {
		return err
	}
	defer internal.CloseOrKeep(output, &err)
	for _, comment := range comments {
		if _, err = fmt.Fprintln(output, comment); err != nil {
			return err
		}
	}
	return Write(output, hits)
}
