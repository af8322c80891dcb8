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

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func ebolaHit(qstart, evalue string) string {
	return strings.Join([]string{
		"KJ660346", "gi|674810549|gb|KJ660346.2|", "100.00", "10", "0", "0",
		qstart, "100", "101", "110", evalue, "20.1",
		"gi|674810549|gb|KJ660346.2|", "10", "10", "10", "0", "100.00", "1", "1",
		"ACGTACGTAC", "ACGTACGTAC", "18959", "18959", "Zaire ebolavirus",
	}, "\t")
}

func writeTestFile(t *testing.T, name string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(strings.Join(lines, "\n")+"\n"), 0666); err != nil {
		t.Fatal(err)
	}
}

func TestParseCompareArgsPositional(t *testing.T) {
	c := parseCompareArgs([]string{"old.tabular", "new.tabular", "--list", "--summary", "result.txt"})
	if c.oldFile != "old.tabular" || c.newFile != "new.tabular" || !c.list || c.summaryFile != "result.txt" {
		t.Errorf("unexpected configuration %+v", c)
	}
	if c.all || c.annotatedOld != "" || c.annotatedNew != "" {
		t.Errorf("annotated output requested without --all: %+v", c)
	}
}

func TestCompareFixtureCommandLine(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "ebola_old.tabular")
	newFile := filepath.Join(dir, "ebola_new.tabular")
	summaryFile := filepath.Join(dir, "result.txt")
	writeTestFile(t, oldFile,
		"# BLASTN 2.2.29+",
		ebolaHit("1", "1e-05"),
		ebolaHit("20", "1e-05"),
		ebolaHit("40", "1e-05"),
	)
	writeTestFile(t, newFile,
		ebolaHit("1", "1e-05"),
		ebolaHit("20", "3e-05"),
		ebolaHit("60", "1e-05"),
	)

	c := parseCompareArgs([]string{"-o", oldFile, "-n", newFile, "-Al", "-s", summaryFile})
	if c.oldFile != oldFile || c.newFile != newFile || c.summaryFile != summaryFile || !c.all || !c.list {
		t.Fatalf("unexpected configuration %+v", c)
	}
	if c.annotatedOld != oldFile+AnnotatedSuffix || c.annotatedNew != newFile+AnnotatedSuffix {
		t.Fatalf("unexpected annotated files %v %v", c.annotatedOld, c.annotatedNew)
	}
	if !c.sanityChecks() {
		t.Fatal("sanity checks failed")
	}
	if err := c.run(uuid.New()); err != nil {
		t.Fatal(err)
	}

	summary, err := os.ReadFile(summaryFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"equal\t1\n", "similar\t1\n", "similar-evalue\t1\n", "only-old\t1\n", "only-new\t1\n",
		"## similar\n", "## only-old\n< " + ebolaHit("40", "1e-05") + "\n", "## only-new\n> " + ebolaHit("60", "1e-05") + "\n",
	} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary lacks %q:\n%s", want, summary)
		}
	}

	annotated, err := os.ReadFile(c.annotatedOld)
	if err != nil {
		t.Fatal(err)
	}
	wantOld := "# BLASTN 2.2.29+\n" +
		ebolaHit("1", "1e-05") + "\tequal\n" +
		ebolaHit("20", "1e-05") + "\tsimilar\n" +
		ebolaHit("40", "1e-05") + "\tunknown\n"
	if string(annotated) != wantOld {
		t.Errorf("unexpected annotated old file:\n%s", annotated)
	}
	annotated, err = os.ReadFile(c.annotatedNew)
	if err != nil {
		t.Fatal(err)
	}
	wantNew := ebolaHit("1", "1e-05") + "\tequal\n" +
		ebolaHit("20", "3e-05") + "\tsimilar\n" +
		ebolaHit("60", "1e-05") + "\tunknown\n"
	if string(annotated) != wantNew {
		t.Errorf("unexpected annotated new file:\n%s", annotated)
	}
}
