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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpandShortFlags(t *testing.T) {
	args := []string{"-o", "ebola_old.tabular", "-n", "ebola_new.tabular", "-Al", "-s", "result.txt", "--all", "-nr-of-threads=2", "-list"}
	want := []string{"-o", "ebola_old.tabular", "-n", "ebola_new.tabular", "-A", "-l", "-s", "result.txt", "--all", "-nr-of-threads=2", "-list"}
	if diff := cmp.Diff(want, expandShortFlags(args, "Al")); diff != "" {
		t.Errorf("expandShortFlags mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitPositional(t *testing.T) {
	positional, rest := splitPositional([]string{"old.tabular", "new.tabular", "--list"}, 2)
	if diff := cmp.Diff([]string{"old.tabular", "new.tabular"}, positional); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"--list"}, rest); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}
	positional, rest = splitPositional([]string{"-o", "old.tabular"}, 2)
	if len(positional) != 0 || len(rest) != 2 {
		t.Errorf("flags taken as positional: %v %v", positional, rest)
	}
	positional, rest = splitPositional([]string{"a", "b", "c"}, 2)
	if len(positional) != 2 || len(rest) != 1 {
		t.Errorf("too many positional arguments: %v %v", positional, rest)
	}
}

func TestCheckExistAndCreate(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.tabular")
	if err := os.WriteFile(existing, nil, 0666); err != nil {
		t.Fatal(err)
	}
	if !checkExist("--old", existing) {
		t.Error("checkExist failed on existing file")
	}
	if checkExist("--old", filepath.Join(dir, "missing.tabular")) {
		t.Error("checkExist succeeded on missing file")
	}
	if checkExist("--old", "") || checkExist("--old", "--list") {
		t.Error("checkExist accepted an invalid filename")
	}
	created := filepath.Join(dir, "sub", "result.txt")
	if !checkCreate("--summary", created) {
		t.Error("checkCreate failed on creatable file")
	}
	if _, err := os.Stat(created); !os.IsNotExist(err) {
		t.Error("checkCreate left a file behind")
	}
}
