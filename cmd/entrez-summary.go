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
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/blastdiff/entrez"
	"github.com/exascience/blastdiff/internal"
	"github.com/exascience/blastdiff/tabular"
)

// EntrezSummaryHelp is the help string for the entrez-summary command.
const EntrezSummaryHelp = "\nentrez-summary parameters:\n" +
	"blastdiff entrez-summary tabular-file output-file\n" +
	"--email address\n" +
	"[--db db]\n" +
	"[--api-key key]\n" +
	"[--log-path path]\n"

// EntrezSummary implements the blastdiff entrez-summary command,
// which looks up the gi numbers of all hits of a tabular file.
func EntrezSummary(args []string) (err error) {
	var email, db, apiKey, logPath string

	var flags flag.FlagSet
	flags.StringVar(&email, "email", "", "email address sent to NCBI with each request")
	flags.StringVar(&db, "db", entrez.DefaultDatabase, "Entrez database")
	flags.StringVar(&apiKey, "api-key", os.Getenv("NCBI_API_KEY"), "NCBI API key")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	if len(args) > 0 && isHelp(args[0]) {
		fmt.Fprint(os.Stderr, EntrezSummaryHelp)
		os.Exit(0)
	}
	positional, rest := splitPositional(args, 2)
	if len(positional) < 2 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, EntrezSummaryHelp)
		os.Exit(1)
	}
	parseFlags(&flags, rest, EntrezSummaryHelp)
	input, output := positional[0], positional[1]

	setLogOutput(logPath)

	var sanityChecksFailed bool
	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if email == "" {
		sanityChecksFailed = true
		log.Println("Error: NCBI requires an email address. Please add the --email option to your call.")
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, EntrezSummaryHelp)
		os.Exit(1)
	}

	file, err := tabular.ReadFile(input)
	if err != nil {
		return err
	}
	ids := entrez.GIs(file.Hits)
	log.Printf("Looking up %v gi numbers of %v hits in Entrez database %v.\n", len(ids), len(file.Hits), db)
	summaries, err := entrez.NewClient(email, apiKey).Summaries(context.Background(), db, ids)
	if err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer internal.CloseOrKeep(f, &err)
	return entrez.WriteSummaries(f, summaries, ids)
}
