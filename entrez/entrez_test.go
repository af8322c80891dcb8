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

package entrez

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/exascience/blastdiff/tabular"
)

func newTestServer(t *testing.T, requests *[]string) *httptest.Server {
	var m sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esummary.fcgi" {
			http.NotFound(w, r)
			return
		}
		query := r.URL.Query()
		if query.Get("retmode") != "json" || query.Get("db") != "nucleotide" || query.Get("email") != "someone@example.org" {
			t.Errorf("unexpected query %v", r.URL.RawQuery)
		}
		ids := strings.Split(query.Get("id"), ",")
		m.Lock()
		*requests = append(*requests, query.Get("id"))
		m.Unlock()
		var records []string
		for _, id := range ids {
			if id == "404" {
				records = append(records, fmt.Sprintf(`"%v":{"uid":"%v","error":"cannot get document summary"}`, id, id))
				continue
			}
			records = append(records, fmt.Sprintf(
				`"%v":{"uid":"%v","caption":"KJ%v","title":"Zaire ebolavirus %v","accessionversion":"KJ%v.2","createdate":"2014/04/22","updatedate":"2014/08/12","status":"live","replacedby":""}`,
				id, id, id, id, id))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"header":{"type":"esummary","version":"0.3"},"result":{"uids":["%v"],%v}}`,
			strings.Join(ids, `","`), strings.Join(records, ","))
	}))
}

func testClient(server *httptest.Server) *Client {
	return &Client{
		BaseURL:     server.URL,
		Email:       "someone@example.org",
		Tool:        "blastdiff",
		BatchSize:   2,
		Concurrency: 2,
		HTTPClient:  server.Client(),
	}
}

func TestSummaries(t *testing.T) {
	var requests []string
	server := newTestServer(t, &requests)
	defer server.Close()

	ids := []string{"101", "102", "103", "404", "105"}
	summaries, err := testClient(server).Summaries(context.Background(), DefaultDatabase, ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 3 {
		t.Errorf("expected 3 batched requests, got %v", requests)
	}
	if len(summaries) != len(ids) {
		t.Fatalf("expected %v summaries, got %v", len(ids), len(summaries))
	}
	want := DocSummary{
		UID:              "102",
		Caption:          "KJ102",
		Title:            "Zaire ebolavirus 102",
		AccessionVersion: "KJ102.2",
		CreateDate:       "2014/04/22",
		UpdateDate:       "2014/08/12",
		Status:           "live",
	}
	if diff := cmp.Diff(want, summaries["102"]); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if summaries["404"].Error == "" {
		t.Error("missing record error")
	}
}

func TestSummariesNoIDs(t *testing.T) {
	client := &Client{BaseURL: "http://invalid.invalid"}
	summaries, err := client.Summaries(context.Background(), DefaultDatabase, nil)
	if err != nil || len(summaries) != 0 {
		t.Errorf("unexpected result %v, %v", summaries, err)
	}
}

func TestSummariesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "500":
			http.Error(w, "internal error", http.StatusInternalServerError)
		case "bad":
			fmt.Fprint(w, `{"error":"Invalid uid bad at position=0"}`)
		default:
			fmt.Fprint(w, `not json`)
		}
	}))
	defer server.Close()
	client := testClient(server)
	for _, id := range []string{"500", "bad", "garbage"} {
		if _, err := client.Summaries(context.Background(), DefaultDatabase, []string{id}); err == nil {
			t.Errorf("no error for id %v", id)
		}
	}
}

func TestGIs(t *testing.T) {
	var hits []*tabular.Hit
	for _, subject := range []string{
		"gi|674810549|gb|KJ660346.2|",
		"ref|NC_002549.1|",
		"gi|674810549|gb|KJ660346.2|",
		"gi|10313991|ref|NC_002549.1|",
	} {
		line := strings.Join([]string{"q", subject, "100.00", "10", "0", "0", "1", "10", "1", "10", "1e-05", "20.1"}, "\t")
		hit, err := tabular.ParseHit(line, tabular.Short)
		if err != nil {
			t.Fatal(err)
		}
		hits = append(hits, hit)
	}
	if diff := cmp.Diff([]string{"674810549", "10313991"}, GIs(hits)); diff != "" {
		t.Errorf("GIs mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSummaries(t *testing.T) {
	summaries := map[string]DocSummary{
		"101": {UID: "101", AccessionVersion: "KJ101.2", Status: "live", CreateDate: "2014/04/22", UpdateDate: "2014/08/12", Title: "t"},
		"404": {UID: "404", Error: "cannot get document summary"},
	}
	var b strings.Builder
	if err := WriteSummaries(&b, summaries, []string{"101", "404", "999"}); err != nil {
		t.Fatal(err)
	}
	want := SummaryHeader + "\n" +
		"101\tKJ101.2\tlive\t2014/04/22\t2014/08/12\t\tt\n" +
		"404\t\terror\t\t\t\tcannot get document summary\n" +
		"999\t\tmissing\t\t\t\t\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("WriteSummaries mismatch (-want +got):\n%s", diff)
	}
}

func TestNewClientLimits(t *testing.T) {
	if limit := NewClient("a@b.c", "").limiter.Limit(); limit != requestsPerSecond {
		t.Errorf("unexpected limit %v without key", limit)
	}
	if limit := NewClient("a@b.c", "key").limiter.Limit(); limit != keyedRequestsPerSecond {
		t.Errorf("unexpected limit %v with key", limit)
	}
}
