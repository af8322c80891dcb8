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
Package tabular reads and writes BLAST search results in tabular
format.

Two layouts are supported. The short layout is the standard 12 column
output of BLAST+ -outfmt 6 (qseqid sseqid pident length mismatch
gapopen qstart qend sstart send evalue bitscore). The extended layout
is the 25 column output produced by the Galaxy BLAST+ wrappers, which
appends sallseqid score nident positives gaps ppos qframe sframe qseq
sseq qlen slen salltitles to the standard columns. Extended files must
provide at least the columns up to sseq.

Input files may be gzip or BGZF compressed. Parsing of large files is
done in parallel with a pargo pipeline; the order of hits in the input
is always preserved.
*/
package tabular
