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

// blastdiff compares the results of two BLAST searches in tabular
// format, and reports which hits are unchanged, which changed only in
// e-value or alignment representation, and which appear in only one of
// the searches.
//
// Please see https://github.com/exascience/blastdiff for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/exascience/blastdiff/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: compare, entrez-summary")
	fmt.Fprint(os.Stderr, "\n", cmd.CompareHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.EntrezSummaryHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "compare":
		err = cmd.Compare(os.Args[2:])
	case "entrez-summary":
		err = cmd.EntrezSummary(os.Args[2:])
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			// blastdiff -o old.tabular -n new.tabular ...
			err = cmd.Compare(os.Args[1:])
		} else {
			log.Println("Unknown command", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}
