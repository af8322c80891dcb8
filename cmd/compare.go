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
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"

	"github.com/exascience/blastdiff/compare"
	"github.com/exascience/blastdiff/entrez"
	"github.com/exascience/blastdiff/internal"
	"github.com/exascience/blastdiff/tabular"
)

// CompareHelp is the help string for the compare command.
const CompareHelp = "compare parameters:\n" +
	"blastdiff compare old-tabular-file new-tabular-file\n" +
	"  (or: blastdiff -o old-tabular-file -n new-tabular-file)\n" +
	"[--summary file | -s file]\n" +
	"[--annotated-old file]\n" +
	"[--annotated-new file]\n" +
	"[--all | -A]\n" +
	"[--list | -l]\n" +
	"[--ignore-ids]\n" +
	"[--entrez-email address]\n" +
	"[--entrez-db db]\n" +
	"[--api-key key]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// AnnotatedSuffix is appended to input filenames for the annotated
// output files written with --all.
const AnnotatedSuffix = ".annotated"

func writeComparison(
	summaryFile string, summary *compare.Summary, list bool,
	entrezSummaries map[string]entrez.DocSummary, entrezIDs []string,
) (err error) {
	var output io.Writer
	if summaryFile == "" || summaryFile == "/dev/stdout" {
		output = os.Stdout
	} else {
		f, cerr := os.Create(summaryFile)
		if cerr != nil {
			return cerr
		}
		defer internal.CloseOrKeep(f, &err)
		output = f
	}
	out := bufio.NewWriter(output)
	if err = summary.Write(out, list); err != nil {
		return err
	}
	if entrezSummaries != nil {
		if _, err = fmt.Fprintln(out, "\n## entrez"); err != nil {
			return err
		}
		if err = entrez.WriteSummaries(out, entrezSummaries, entrezIDs); err != nil {
			return err
		}
	}
	return out.Flush()
}

type compareConfig struct {
	oldFile, newFile, summaryFile string
	annotatedOld, annotatedNew    string
	entrezEmail, entrezDB, apiKey string
	profile, logPath              string
	all, list, ignoreIDs, timed   bool
	nrOfThreads                   int
}

// parseCompareArgs resolves positional filenames, flags, and the
// bundled short flags of the compare command.
func parseCompareArgs(args []string) *compareConfig {
	c := &compareConfig{}

	var flags flag.FlagSet
	flags.StringVar(&c.oldFile, "o", "", "old tabular file")
	flags.StringVar(&c.oldFile, "old", "", "old tabular file")
	flags.StringVar(&c.newFile, "n", "", "new tabular file")
	flags.StringVar(&c.newFile, "new", "", "new tabular file")
	flags.StringVar(&c.summaryFile, "s", "", "write the summary to the specified file")
	flags.StringVar(&c.summaryFile, "summary", "", "write the summary to the specified file")
	flags.StringVar(&c.annotatedOld, "annotated-old", "", "write the old hits with their status to the specified file")
	flags.StringVar(&c.annotatedNew, "annotated-new", "", "write the new hits with their status to the specified file")
	flags.BoolVar(&c.all, "A", false, "write annotated files for both inputs")
	flags.BoolVar(&c.all, "all", false, "write annotated files for both inputs")
	flags.BoolVar(&c.list, "l", false, "list similar and unknown hits in the summary")
	flags.BoolVar(&c.list, "list", false, "list similar and unknown hits in the summary")
	flags.BoolVar(&c.ignoreIDs, "ignore-ids", false, "match hits regardless of their subject ids")
	flags.StringVar(&c.entrezEmail, "entrez-email", "", "look up unknown hits in Entrez, identifying with this email address")
	flags.StringVar(&c.entrezDB, "entrez-db", entrez.DefaultDatabase, "Entrez database for lookups")
	flags.StringVar(&c.apiKey, "api-key", os.Getenv("NCBI_API_KEY"), "NCBI API key")
	flags.IntVar(&c.nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&c.timed, "timed", false, "measure the runtime")
	flags.StringVar(&c.profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&c.logPath, "log-path", "", "write log files to the specified directory")

	if len(args) > 0 && isHelp(args[0]) {
		fmt.Fprint(os.Stderr, CompareHelp)
		os.Exit(0)
	}
	positional, rest := splitPositional(args, 2)
	parseFlags(&flags, expandShortFlags(rest, "Al"), CompareHelp)
	if len(positional) > 0 && c.oldFile == "" {
		c.oldFile = positional[0]
	}
	if len(positional) > 1 && c.newFile == "" {
		c.newFile = positional[1]
	}
	if c.all {
		if c.annotatedOld == "" && c.oldFile != "" {
			c.annotatedOld = c.oldFile + AnnotatedSuffix
		}
		if c.annotatedNew == "" && c.newFile != "" {
			c.annotatedNew = c.newFile + AnnotatedSuffix
		}
	}
	return c
}

func (c *compareConfig) sanityChecks() bool {
	ok := true
	if !checkExist("--old", c.oldFile) {
		ok = false
	}
	if !checkExist("--new", c.newFile) {
		ok = false
	}
	if c.summaryFile != "" && !checkCreate("--summary", c.summaryFile) {
		ok = false
	}
	if c.annotatedOld != "" && !checkCreate("--annotated-old", c.annotatedOld) {
		ok = false
	}
	if c.annotatedNew != "" && !checkCreate("--annotated-new", c.annotatedNew) {
		ok = false
	}
	if c.profile != "" && !checkCreate("--profile", c.profile) {
		ok = false
	}
	if c.nrOfThreads < 0 {
		ok = false
		log.Println("Error: Invalid nr-of-threads: ", c.nrOfThreads)
	}
	return ok
}

func (c *compareConfig) commandLine() string {
	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " compare ", c.oldFile, " ", c.newFile)
	if c.summaryFile != "" {
		fmt.Fprint(&command, " --summary ", c.summaryFile)
	}
	if c.annotatedOld != "" {
		fmt.Fprint(&command, " --annotated-old ", c.annotatedOld)
	}
	if c.annotatedNew != "" {
		fmt.Fprint(&command, " --annotated-new ", c.annotatedNew)
	}
	if c.list {
		fmt.Fprint(&command, " --list")
	}
	if c.ignoreIDs {
		fmt.Fprint(&command, " --ignore-ids")
	}
	if c.entrezEmail != "" {
		fmt.Fprint(&command, " --entrez-email ", c.entrezEmail, " --entrez-db ", c.entrezDB)
	}
	if c.nrOfThreads > 0 {
		fmt.Fprint(&command, " --nr-of-threads ", c.nrOfThreads)
	}
	if c.timed {
		fmt.Fprint(&command, " --timed")
	}
	if c.profile != "" {
		fmt.Fprint(&command, " --profile ", c.profile)
	}
	if c.logPath != "" {
		fmt.Fprint(&command, " --log-path ", c.logPath)
	}
	return command.String()
}

// run reads both inputs, compares them, and writes the summary and
// annotated files.
func (c *compareConfig) run(runID uuid.UUID) error {
	opts := compare.DefaultOptions
	opts.CheckIDs = !c.ignoreIDs

	var (
		oldTabular, newTabular *tabular.File
		result                 *compare.Result
		entrezSummaries        map[string]entrez.DocSummary
		entrezIDs              []string
	)

	if err := timedRun(c.timed, c.profile, "Reading BLAST results.", 1, func() error {
		var oldErr, newErr error
		parallel.Do(
			func() { oldTabular, oldErr = tabular.ReadFile(c.oldFile) },
			func() { newTabular, newErr = tabular.ReadFile(c.newFile) },
		)
		if oldErr != nil {
			return oldErr
		}
		return newErr
	}); err != nil {
		return err
	}
	log.Printf("Read %v %v hits from %v and %v %v hits from %v.\n",
		len(oldTabular.Hits), oldTabular.Format, c.oldFile,
		len(newTabular.Hits), newTabular.Format, c.newFile)
	if len(oldTabular.Hits) > 0 && len(newTabular.Hits) > 0 && oldTabular.Format != newTabular.Format {
		log.Println("Warning: The input files use different tabular layouts. Hits are compared on the columns of the short layout only.")
	}

	if err := timedRun(c.timed, c.profile, "Comparing hits.", 2, func() error {
		result = compare.Compare(oldTabular.Hits, newTabular.Hits, opts)
		return nil
	}); err != nil {
		return err
	}

	if c.entrezEmail != "" {
		if err := timedRun(c.timed, c.profile, "Looking up unknown hits in Entrez.", 3, func() error {
			unknown := append(append([]*tabular.Hit(nil), result.Old.Unknown...), result.New.Unknown...)
			entrezIDs = entrez.GIs(unknown)
			client := entrez.NewClient(c.entrezEmail, c.apiKey)
			var err error
			entrezSummaries, err = client.Summaries(context.Background(), c.entrezDB, entrezIDs)
			return err
		}); err != nil {
			return err
		}
	}

	summary := compare.Summarize(runID, c.oldFile, c.newFile, result)
	return timedRun(c.timed, c.profile, "Writing results.", 4, func() error {
		if err := writeComparison(c.summaryFile, summary, c.list, entrezSummaries, entrezIDs); err != nil {
			return err
		}
		if c.annotatedOld != "" {
			if err := tabular.WriteFile(c.annotatedOld, oldTabular.Comments, result.Old.All); err != nil {
				return err
			}
		}
		if c.annotatedNew != "" {
			if err := tabular.WriteFile(c.annotatedNew, newTabular.Comments, result.New.All); err != nil {
				return err
			}
		}
		return nil
	})
}

// Compare implements the blastdiff compare command.
func Compare(args []string) error {
	c := parseCompareArgs(args)

	setLogOutput(c.logPath)

	if !c.sanityChecks() {
		fmt.Fprint(os.Stderr, CompareHelp)
		os.Exit(1)
	}
	if c.nrOfThreads > 0 {
		runtime.GOMAXPROCS(c.nrOfThreads)
	}

	runID := uuid.New()
	log.Println("Executing command:\n", c.commandLine())
	log.Println("Run id:", runID)

	return c.run(runID)
}
