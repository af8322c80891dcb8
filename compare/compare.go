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

/*
Package compare matches the hits of two BLAST searches against each
other.

Two hits match when they describe the same local alignment: same
subject ids, same start positions and frames, and the same aligned
bases. Alignment representation may differ between BLAST versions
(C-TGC versus CT-GC), so only the bases A, C, G, and T of the aligned
sequences are compared. Matching hits that differ in e-value or
alignment statistics are similar, the others are equal.
*/
package compare

import (
	"strconv"
	"strings"

	"github.com/willf/bitset"

	"github.com/exascience/blastdiff/tabular"
	"github.com/exascience/blastdiff/utils"
)

// Difference names a statistic that changed between two matching hits.
type Difference string

// Differences reported for similar hits.
const (
	EValue    Difference = "evalue"
	Alignment Difference = "alignment"
)

// Options control which properties must be equal for hits to match.
type Options struct {
	// CheckIDs requires the subject ids to be equal. Database entries
	// are sometimes renamed without their sequence changing, so
	// disabling this finds such hits.
	CheckIDs bool
}

// DefaultOptions checks ids.
var DefaultOptions = Options{CheckIDs: true}

func bases(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 'A', 'C', 'G', 'T':
			b.WriteByte(c)
		}
	}
	return b.String()
}

func commonFormat(hits ...[]*tabular.Hit) tabular.Format {
	for _, h := range hits {
		for _, hit := range h {
			if hit.Format != tabular.Extended {
				return tabular.Short
			}
		}
	}
	return tabular.Extended
}

// key returns a string that is equal for two hits exactly when they
// match.
func key(hit *tabular.Hit, format tabular.Format, opts Options) string {
	var buf []byte
	if opts.CheckIDs {
		for _, id := range hit.IDs {
			buf = append(buf, utils.SymbolString(id.DB)...)
			buf = append(buf, '|')
			buf = append(buf, utils.SymbolString(id.Num)...)
			buf = append(buf, '|')
		}
	}
	buf = append(buf, 0)
	buf = strconv.AppendInt(buf, int64(hit.QueryStart), 10)
	buf = append(buf, 0)
	buf = strconv.AppendInt(buf, int64(hit.SubjectStart), 10)
	if format == tabular.Extended {
		buf = append(buf, 0)
		buf = append(buf, hit.QueryFrame...)
		buf = append(buf, 0)
		buf = append(buf, hit.SubjectFrame...)
		buf = append(buf, 0)
		buf = append(buf, bases(hit.QuerySeq)...)
		buf = append(buf, 0)
		buf = append(buf, bases(hit.SubjectSeq)...)
	}
	return string(buf)
}

func matches(a, b *tabular.Hit, format tabular.Format, opts Options) bool {
	if opts.CheckIDs && !tabular.IDsEqual(a.IDs, b.IDs) {
		return false
	}
	if a.QueryStart != b.QueryStart || a.SubjectStart != b.SubjectStart {
		return false
	}
	if format == tabular.Short {
		return true
	}
	return a.QueryFrame == b.QueryFrame &&
		a.SubjectFrame == b.SubjectFrame &&
		bases(a.QuerySeq) == bases(b.QuerySeq) &&
		bases(a.SubjectSeq) == bases(b.SubjectSeq)
}

// differences assumes that a and b match.
func differences(a, b *tabular.Hit, format tabular.Format) (diffs []Difference) {
	if a.EValue != b.EValue {
		diffs = append(diffs, EValue)
	}
	var changed bool
	if format == tabular.Extended {
		changed = a.Identities != b.Identities ||
			a.QuerySeq != b.QuerySeq ||
			a.SubjectSeq != b.SubjectSeq ||
			a.Score != b.Score ||
			a.Positives != b.Positives ||
			a.Gaps != b.Gaps ||
			a.Mismatches != b.Mismatches
	} else {
		changed = a.Identity != b.Identity ||
			a.Length != b.Length ||
			a.Mismatches != b.Mismatches ||
			a.GapOpens != b.GapOpens
	}
	if changed {
		diffs = append(diffs, Alignment)
	}
	return diffs
}

/*
Match reports whether a and b describe the same hit, and if so, which
statistics differ between them.

When either hit is in the short tabular layout, frames and aligned
sequences are not available, and alignment differences are judged on
percent identity, alignment length, mismatches, and gap opens.
*/
func Match(a, b *tabular.Hit, opts Options) (same bool, diffs []Difference) {
	format := commonFormat([]*tabular.Hit{a, b})
	if !matches(a, b, format, opts) {
		return false, nil
	}
	return true, differences(a, b, format)
}

// Partition divides the hits of one search by their status.
type Partition struct {
	Same    []*tabular.Hit
	Similar []*tabular.Hit
	Unknown []*tabular.Hit
	All     []*tabular.Hit
}

// Pair is a hit of the old search together with its match in the new
// search.
type Pair struct {
	Old, New    *tabular.Hit
	Differences []Difference
}

/*
Result is the outcome of comparing two searches.

Old.Same[i] matches New.Same[i], and Old.Similar[i] matches
New.Similar[i]. Pairs lists all matches in the order of the old
search.
*/
type Result struct {
	Format   tabular.Format
	Old, New Partition
	Pairs    []Pair
}

/*
Compare matches every hit of the old search with the first hit of
the new search, in input order, that matches it and has not been
matched before. Each hit is matched at most once.

The Status of every hit is set to Equal, Similar, or Unknown.

New hits are indexed by their match key, so the comparison takes
linear time on average, but pairs hits exactly as a pairwise scan of
the new hits in input order would.
*/
func Compare(oldHits, newHits []*tabular.Hit, opts Options) *Result {
	format := commonFormat(oldHits, newHits)
	result := &Result{
		Format: format,
		Old:    Partition{All: append([]*tabular.Hit(nil), oldHits...)},
		New:    Partition{All: append([]*tabular.Hit(nil), newHits...)},
	}

	index := make(map[string][]int, len(newHits))
	for j, hit := range newHits {
		k := key(hit, format, opts)
		index[k] = append(index[k], j)
	}
	consumed := bitset.New(uint(len(newHits)))

	for _, a := range oldHits {
		k := key(a, format, opts)
		candidates := index[k]
		if len(candidates) == 0 {
			a.Status = tabular.Unknown
			result.Old.Unknown = append(result.Old.Unknown, a)
			continue
		}
		j := candidates[0]
		if len(candidates) == 1 {
			delete(index, k)
		} else {
			index[k] = candidates[1:]
		}
		consumed.Set(uint(j))
		b := newHits[j]
		diffs := differences(a, b, format)
		if len(diffs) > 0 {
			a.Status, b.Status = tabular.Similar, tabular.Similar
			result.Old.Similar = append(result.Old.Similar, a)
			result.New.Similar = append(result.New.Similar, b)
		} else {
			a.Status, b.Status = tabular.Equal, tabular.Equal
			result.Old.Same = append(result.Old.Same, a)
			result.New.Same = append(result.New.Same, b)
		}
		result.Pairs = append(result.Pairs, Pair{Old: a, New: b, Differences: diffs})
	}

	for j, b := range newHits {
		if !consumed.Test(uint(j)) {
			b.Status = tabular.Unknown
			result.New.Unknown = append(result.New.Unknown, b)
		}
	}
	return result
}
