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
Package entrez looks up document summaries of sequence database
entries with the NCBI E-utilities esummary service.

Hits that appear in only one of two BLAST searches are often explained
by database updates: an entry was added, replaced, or withdrawn. The
summaries report creation and update dates and whether an entry is
still live.

NCBI asks clients to identify themselves with an email address, and
to stay below three requests per second, or ten with an API key. The
Client enforces these limits.
*/
package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/exascience/blastdiff/tabular"
	"github.com/exascience/blastdiff/utils"
)

// DefaultBaseURL is the location of the E-utilities.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultDatabase is the Entrez database BLAST nucleotide searches
// refer to.
const DefaultDatabase = "nucleotide"

const (
	defaultBatchSize   = 200
	defaultConcurrency = 2
	requestsPerSecond  = 3
	// with an API key
	keyedRequestsPerSecond = 10
)

// DocSummary is the part of an esummary record blastdiff reports.
type DocSummary struct {
	UID              string `json:"uid"`
	Caption          string `json:"caption"`
	Title            string `json:"title"`
	AccessionVersion string `json:"accessionversion"`
	CreateDate       string `json:"createdate"`
	UpdateDate       string `json:"updatedate"`
	Status           string `json:"status"`
	ReplacedBy       string `json:"replacedby"`
	Error            string `json:"error"`
}

// Client fetches document summaries.
type Client struct {
	BaseURL     string
	Email       string
	Tool        string
	APIKey      string
	BatchSize   int
	Concurrency int
	HTTPClient  *http.Client

	limiter *rate.Limiter
}

// NewClient returns a Client for the public E-utilities service.
func NewClient(email, apiKey string) *Client {
	limit := rate.Limit(requestsPerSecond)
	if apiKey != "" {
		limit = rate.Limit(keyedRequestsPerSecond)
	}
	return &Client{
		BaseURL:     DefaultBaseURL,
		Email:       email,
		Tool:        utils.ProgramName,
		APIKey:      apiKey,
		BatchSize:   defaultBatchSize,
		Concurrency: defaultConcurrency,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// GIs returns the distinct gi numbers of the given hits, in the order
// in which they first occur.
func GIs(hits []*tabular.Hit) []string {
	gi := utils.Intern("gi")
	seen := make(map[utils.Symbol]bool)
	var ids []string
	for _, hit := range hits {
		for _, id := range hit.IDs {
			if id.DB == gi && !seen[id.Num] {
				seen[id.Num] = true
				ids = append(ids, *id.Num)
			}
		}
	}
	return ids
}

type esummaryResponse struct {
	Error  string                     `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

func (c *Client) fetch(ctx context.Context, db string, ids []string) (map[string]DocSummary, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	query := url.Values{}
	query.Set("db", db)
	query.Set("id", strings.Join(ids, ","))
	query.Set("retmode", "json")
	if c.Tool != "" {
		query.Set("tool", c.Tool)
	}
	if c.Email != "" {
		query.Set("email", c.Email)
	}
	if c.APIKey != "" {
		query.Set("api_key", c.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/esummary.fcgi?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("esummary returned %v: %v", resp.Status, strings.TrimSpace(string(body)))
	}
	var response esummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%v, while decoding esummary response", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("esummary error: %v", response.Error)
	}
	summaries := make(map[string]DocSummary, len(ids))
	for uid, raw := range response.Result {
		if uid == "uids" {
			continue
		}
		var summary DocSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			return nil, fmt.Errorf("%v, while decoding esummary record %v", err, uid)
		}
		if summary.UID == "" {
			summary.UID = uid
		}
		summaries[summary.UID] = summary
	}
	return summaries, nil
}

// Summaries fetches the document summaries of the given ids from the
// given Entrez database, keyed by uid. Ids are requested in batches,
// and several batches may be in flight at the same time.
func (c *Client) Summaries(ctx context.Context, db string, ids []string) (map[string]DocSummary, error) {
	summaries := make(map[string]DocSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}
	batchSize := c.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	g, ctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	var m sync.Mutex
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		g.Go(func() error {
			result, err := c.fetch(ctx, db, batch)
			if err != nil {
				return err
			}
			m.Lock()
			defer m.Unlock()
			for uid, summary := range result {
				summaries[uid] = summary
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// SummaryHeader is the first line written by WriteSummaries.
const SummaryHeader = "#uid\taccession\tstatus\tcreated\tupdated\treplaced-by\ttitle"

// WriteSummaries writes one tab-separated line per id, in the given
// order. Ids without a summary are reported as missing.
func WriteSummaries(writer io.Writer, summaries map[string]DocSummary, ids []string) error {
	if _, err := fmt.Fprintln(writer, SummaryHeader); err != nil {
		return err
	}
	for _, id := range ids {
		summary, ok := summaries[id]
		var err error
		switch {
		case !ok:
			_, err = fmt.Fprintf(writer, "%v\t\tmissing\t\t\t\t\n", id)
		case summary.Error != "":
			_, err = fmt.Fprintf(writer, "%v\t\terror\t\t\t\t%v\n", id, summary.Error)
		default:
			_, err = fmt.Fprintf(writer, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n", id,
				summary.AccessionVersion, summary.Status, summary.CreateDate,
				summary.UpdateDate, summary.ReplacedBy, summary.Title)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
