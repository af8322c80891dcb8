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
	"fmt"
	"strconv"
	"strings"

	"github.com/exascience/blastdiff/utils"
)

// Format distinguishes the short and extended tabular layouts.
type Format int

const (
	// Short is the standard 12 column layout.
	Short Format = iota
	// Extended is the 25 column Galaxy layout.
	Extended
)

func (f Format) String() string {
	switch f {
	case Short:
		return "short"
	case Extended:
		return "extended"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Column counts of the supported layouts.
const (
	ShortColumns       = 12
	MinExtendedColumns = 22
	ExtendedColumns    = 25
)

// Column indices, 0-based.
const (
	colQseqid = iota
	colSseqid
	colPident
	colLength
	colMismatch
	colGapopen
	colQstart
	colQend
	colSstart
	colSend
	colEvalue
	colBitscore
	colSallseqid
	colScore
	colNident
	colPositives
	colGaps
	colPpos
	colQframe
	colSframe
	colQseq
	colSseq
	colQlen
	colSlen
	colSalltitles
)

// DetectFormat returns the layout for a line with the given number of
// tab-separated columns.
func DetectFormat(columns int) (Format, error) {
	switch {
	case columns >= MinExtendedColumns:
		return Extended, nil
	case columns >= ShortColumns:
		return Short, nil
	default:
		return Short, fmt.Errorf("tabular line with %v columns, at least %v expected", columns, ShortColumns)
	}
}

// Status is the annotation a comparison attaches to a hit.
type Status string

// Annotations attached by comparing two searches.
const (
	NoStatus Status = ""
	// Equal hits appear unchanged in both searches.
	Equal Status = "equal"
	// Similar hits appear in both searches, but e-value or alignment
	// representation changed.
	Similar Status = "similar"
	// Unknown hits appear in only one of the searches.
	Unknown Status = "unknown"
)

// GeneID is an identifier of a sequence in a particular database,
// for example gi 1234567890 or gb KJ660346.2.
type GeneID struct {
	DB  utils.Symbol
	Num utils.Symbol
}

func (id GeneID) String() string {
	return utils.SymbolString(id.DB) + "|" + utils.SymbolString(id.Num)
}

// Tokens shorter than this are database tags, longer ones are ids.
const minIDLength = 5

/*
ParseIDs extracts the database identifiers from a BLAST subject id
such as "gi|674810549|gb|KJ660346.2|".

Leading and trailing bars are stripped and the remainder is split on
bars. Every token shorter than five characters is taken as a database
tag, and is paired with each of the following tokens that are at least
five characters long, up to the next short token. The length cut-off
is a heuristic: database tags (gi, gb, ref, emb, dbj, pdb, ...) are
short, accessions and gi numbers are not.
*/
func ParseIDs(s string) (ids []GeneID) {
	tokens := strings.Split(strings.Trim(s, "|"), "|")
	for n, db := range tokens {
		if len(db) >= minIDLength {
			continue
		}
		for _, num := range tokens[n+1:] {
			if len(num) < minIDLength {
				break
			}
			ids = append(ids, GeneID{DB: utils.Intern(db), Num: utils.Intern(num)})
		}
	}
	return ids
}

// IDsEqual reports whether both id lists contain the same ids in the
// same order.
func IDsEqual(ids1, ids2 []GeneID) bool {
	if len(ids1) != len(ids2) {
		return false
	}
	for i, id := range ids1 {
		if id != ids2[i] {
			return false
		}
	}
	return true
}

/*
Hit is one line of a BLAST tabular file.

Statistics are kept in their textual representation, so that
comparisons are exact with regard to what BLAST printed. Only the
alignment coordinates are parsed into integers.

The fields from Score onwards are only filled in for the extended
layout.
*/
type Hit struct {
	// Raw is the original line, without line terminator.
	Raw     string
	Format  Format
	Query   utils.Symbol
	Subject string
	IDs     []GeneID

	Identity   string
	Length     string
	Mismatches string
	GapOpens   string

	QueryStart, QueryEnd     int32
	SubjectStart, SubjectEnd int32

	EValue string
	// BitScore is never compared: BLAST prints it as 12261 in one run
	// and 1.226e+04 in another.
	BitScore string

	Score        string
	Identities   string
	Positives    string
	Gaps         string
	QueryFrame   string
	SubjectFrame string
	QuerySeq     string
	SubjectSeq   string
	Description  string

	Status Status
}

func parsePosition(field []string, index int, name string) (int32, error) {
	value, err := strconv.ParseInt(field[index], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %v column %q: %w", name, field[index], err)
	}
	return int32(value), nil
}

// ParseHit parses one tab-separated line in the given layout.
func ParseHit(line string, format Format) (hit *Hit, err error) {
	field := strings.Split(line, "\t")
	switch format {
	case Short:
		if len(field) < ShortColumns || len(field) >= MinExtendedColumns {
			return nil, fmt.Errorf("short tabular line with %v columns, %v to %v expected", len(field), ShortColumns, MinExtendedColumns-1)
		}
	case Extended:
		if len(field) < MinExtendedColumns {
			return nil, fmt.Errorf("extended tabular line with %v columns, at least %v expected", len(field), MinExtendedColumns)
		}
	default:
		return nil, fmt.Errorf("unknown tabular format %v", format)
	}
	hit = &Hit{
		Raw:        line,
		Format:     format,
		Query:      utils.Intern(field[colQseqid]),
		Subject:    field[colSseqid],
		IDs:        ParseIDs(field[colSseqid]),
		Identity:   field[colPident],
		Length:     field[colLength],
		Mismatches: field[colMismatch],
		GapOpens:   field[colGapopen],
		EValue:     field[colEvalue],
		BitScore:   field[colBitscore],
	}
	if hit.QueryStart, err = parsePosition(field, colQstart, "qstart"); err != nil {
		return nil, err
	}
	if hit.QueryEnd, err = parsePosition(field, colQend, "qend"); err != nil {
		return nil, err
	}
	if hit.SubjectStart, err = parsePosition(field, colSstart, "sstart"); err != nil {
		return nil, err
	}
	if hit.SubjectEnd, err = parsePosition(field, colSend, "send"); err != nil {
		return nil, err
	}
	if format == Extended {
		hit.Score = field[colScore]
		hit.Identities = field[colNident]
		hit.Positives = field[colPositives]
		hit.Gaps = field[colGaps]
		hit.QueryFrame = field[colQframe]
		hit.SubjectFrame = field[colSframe]
		hit.QuerySeq = field[colQseq]
		hit.SubjectSeq = field[colSseq]
		if len(field) > colSalltitles {
			hit.Description = field[colSalltitles]
		}
	}
	return hit, nil
}

// String returns the original line, followed by a tab and the status
// if a status is set.
func (hit *Hit) String() string {
	if hit.Status == NoStatus {
		return hit.Raw
	}
	return hit.Raw + "\t" + string(hit.Status)
}

// File is the content of a tabular file.
type File struct {
	Filename string
	Format   Format
	// Comments are the lines starting with # before the first hit.
	Comments []string
	Hits     []*Hit
}
