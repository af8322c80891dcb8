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

package compare

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/blastdiff/tabular"
	"github.com/exascience/blastdiff/utils"
)

// Summary counts the outcome of a comparison.
type Summary struct {
	RunID            uuid.UUID
	OldFile, NewFile string
	OldHits, NewHits int
	Equal, Similar   int
	EValueChanges    int
	AlignmentChanges int
	OnlyOld, OnlyNew int

	result *Result
}

// Summarize counts the outcome of the given comparison of the files
// oldFile and newFile.
func Summarize(runID uuid.UUID, oldFile, newFile string, result *Result) *Summary {
	s := &Summary{
		RunID:   runID,
		OldFile: oldFile,
		NewFile: newFile,
		OldHits: len(result.Old.All),
		NewHits: len(result.New.All),
		Equal:   len(result.Old.Same),
		Similar: len(result.Old.Similar),
		OnlyOld: len(result.Old.Unknown),
		OnlyNew: len(result.New.Unknown),
		result:  result,
	}
	for _, pair := range result.Pairs {
		for _, diff := range pair.Differences {
			switch diff {
			case EValue:
				s.EValueChanges++
			case Alignment:
				s.AlignmentChanges++
			}
		}
	}
	return s
}

// HitLess orders hits by query id, then query start, then subject
// start.
func HitLess(hit1, hit2 *tabular.Hit) bool {
	q1, q2 := utils.SymbolString(hit1.Query), utils.SymbolString(hit2.Query)
	switch {
	case q1 < q2:
		return true
	case q1 > q2:
		return false
	case hit1.QueryStart != hit2.QueryStart:
		return hit1.QueryStart < hit2.QueryStart
	default:
		return hit1.SubjectStart < hit2.SubjectStart
	}
}

type stableHitSorter []*tabular.Hit

func (s stableHitSorter) SequentialSort(i, j int) {
	hits := s[i:j]
	sort.SliceStable(hits, func(i, j int) bool {
		return HitLess(hits[i], hits[j])
	})
}

func (s stableHitSorter) NewTemp() psort.StableSorter {
	return stableHitSorter(make([]*tabular.Hit, len(s)))
}

func (s stableHitSorter) Len() int {
	return len(s)
}

func (s stableHitSorter) Less(i, j int) bool {
	return HitLess(s[i], s[j])
}

func (s stableHitSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableHitSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// SortedHits returns a copy of hits, stably sorted with HitLess.
func SortedHits(hits []*tabular.Hit) []*tabular.Hit {
	sorted := append([]*tabular.Hit(nil), hits...)
	psort.StableSort(stableHitSorter(sorted))
	return sorted
}

func differencesString(diffs []Difference) string {
	strs := make([]string, len(diffs))
	for i, diff := range diffs {
		strs[i] = string(diff)
	}
	return strings.Join(strs, ",")
}

/*
Write prints the summary as tab-separated key/value lines.

If list is true, it is followed by the similar pairs (old hit with its
differences, then the new hit) and by the hits that occur in only one
of the searches, each section sorted with HitLess.
*/
func (s *Summary) Write(writer io.Writer, list bool) error {
	out := bufio.NewWriter(writer)
	fmt.Fprintf(out, "# %v %v comparison summary\n", utils.ProgramName, utils.ProgramVersion)
	fmt.Fprintf(out, "# run-id\t%v\n", s.RunID)
	fmt.Fprintf(out, "# old\t%v\t%v hits\n", s.OldFile, s.OldHits)
	fmt.Fprintf(out, "# new\t%v\t%v hits\n", s.NewFile, s.NewHits)
	fmt.Fprintf(out, "equal\t%v\n", s.Equal)
	fmt.Fprintf(out, "similar\t%v\n", s.Similar)
	fmt.Fprintf(out, "similar-evalue\t%v\n", s.EValueChanges)
	fmt.Fprintf(out, "similar-alignment\t%v\n", s.AlignmentChanges)
	fmt.Fprintf(out, "only-old\t%v\n", s.OnlyOld)
	fmt.Fprintf(out, "only-new\t%v\n", s.OnlyNew)
	if list && s.result != nil {
		pairs := append([]Pair(nil), s.result.Pairs...)
		sort.SliceStable(pairs, func(i, j int) bool {
			return HitLess(pairs[i].Old, pairs[j].Old)
		})
		fmt.Fprintln(out, "\n## similar")
		for _, pair := range pairs {
			if len(pair.Differences) == 0 {
				continue
			}
			fmt.Fprintf(out, "< %v\t%v\n", pair.Old.Raw, differencesString(pair.Differences))
			fmt.Fprintf(out, "> %v\n", pair.New.Raw)
		}
		fmt.Fprintln(out, "\n## only-old")
		for _, hit := range SortedHits(s.result.Old.Unknown) {
			fmt.Fprintf(out, "< %v\n", hit.Raw)
		}
		fmt.Fprintln(out, "\n## only-new")
		for _, hit := range SortedHits(s.result.New.Unknown) {
			fmt.Fprintf(out, "> %v\n", hit.Raw)
		}
	}
	return out.Flush()
}
