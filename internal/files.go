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

package internal

import (
	"log"
	"os"
)

// FileCreate creates the named file, and panics on failure.
func FileCreate(name string) *os.File {
	f, err := os.Create(name)
	if err != nil {
		log.Panic(err)
	}
	return f
}

// Close closes the given file, and panics on failure.
func Close(f *os.File) {
	if err := f.Close(); err != nil {
		log.Panic(err)
	}
}

// MkdirAll creates the given directory and its parents, and panics
// on failure.
func MkdirAll(path string, perm os.FileMode) {
	if err := os.MkdirAll(path, perm); err != nil {
		log.Panic(err)
	}
}

// CloseOrKeep closes f and stores the close error in *err unless
// *err already holds an earlier error.
func CloseOrKeep(f *os.File, err *error) {
	if nerr := f.Close(); nerr != nil && *err == nil {
		*err = nerr
	}
}
